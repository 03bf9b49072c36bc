package settings

import (
	"regexp"
	"slices"
)

// Field names of the standard catalog.
const (
	DebugMode                             = "debug_mode"
	DumpDefaults                          = "dump_defaults"
	SharedResourceIdentifier              = "shared_resource_identifier"
	AWSProfile                            = "aws_profile"
	AWSRegion                             = "aws_region"
	AWSAPIGatewayRootDomain               = "aws_apigateway_root_domain"
	AWSAPIGatewayCustomDomainNameCreate   = "aws_apigateway_custom_domain_name_create"
	AWSAPIGatewayCustomDomainName         = "aws_apigateway_custom_domain_name"
	AWSDynamoDBTableID                    = "aws_dynamodb_table_id"
	AWSRekognitionCollectionID            = "aws_rekognition_collection_id"
	AWSRekognitionFaceDetectMaxFaces      = "aws_rekognition_face_detect_max_faces_count"
	AWSRekognitionFaceDetectThreshold     = "aws_rekognition_face_detect_threshold"
	AWSRekognitionFaceDetectAttributes    = "aws_rekognition_face_detect_attributes"
	AWSRekognitionFaceDetectQualityFilter = "aws_rekognition_face_detect_quality_filter"
	LangchainMemoryKey                    = "langchain_memory_key"
	OpenAIAPIOrganization                 = "openai_api_organization"
	OpenAIAPIKey                          = "openai_api_key"
	OpenAIEndpointImageN                  = "openai_endpoint_image_n"
	OpenAIEndpointImageSize               = "openai_endpoint_image_size"
	PineconeAPIKey                        = "pinecone_api_key"
)

// Dump categories.
const (
	CategoryEnvironment = "environment"
	CategoryAWS         = "aws"
	CategoryAPIGateway  = "aws_api_gateway"
	CategoryDynamoDB    = "aws_dynamodb"
	CategoryRekognition = "aws_rekognition"
	CategoryOpenAI      = "openai_api"
	CategorySecrets     = "secrets"
)

// ValidDomainPattern matches a lower-case DNS name with at least two labels.
var ValidDomainPattern = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9][a-z0-9-]{0,61}[a-z0-9]$`)

var imageSizePattern = regexp.MustCompile(`^\d+x\d+$`)

// DefaultAWSRegions is the fixed allowed set for aws_region when no
// discovered list is supplied.
var DefaultAWSRegions = []string{
	"af-south-1",
	"ap-east-1",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ap-south-1",
	"ap-south-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-southeast-3",
	"ap-southeast-4",
	"ca-central-1",
	"ca-west-1",
	"eu-central-1",
	"eu-central-2",
	"eu-north-1",
	"eu-south-1",
	"eu-south-2",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"il-central-1",
	"me-central-1",
	"me-south-1",
	"sa-east-1",
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
}

// Catalog returns the declared settings in resolution order. regions replaces
// the allowed set for aws_region; nil keeps DefaultAWSRegions.
func Catalog(regions []string) []Field {
	if len(regions) == 0 {
		regions = DefaultAWSRegions
	}
	allowed := slices.Clone(regions)
	slices.Sort(allowed)

	return []Field{
		{Name: DebugMode, Kind: KindBool, Category: CategoryEnvironment, TFVar: "debug_mode"},
		{Name: DumpDefaults, Kind: KindBool, Category: CategoryEnvironment, TFVar: "dump_defaults"},
		{Name: SharedResourceIdentifier, Kind: KindString, Category: CategoryEnvironment, TFVar: "shared_resource_identifier"},
		{Name: AWSProfile, Kind: KindString, Category: CategoryAWS, TFVar: "aws_profile"},
		{Name: AWSRegion, Kind: KindString, Category: CategoryAWS, TFVar: "aws_region", Validator: OneOf(allowed...)},
		{Name: AWSAPIGatewayRootDomain, Kind: KindString, Category: CategoryAPIGateway, TFVar: "root_domain", Validator: Matches(ValidDomainPattern)},
		{Name: AWSAPIGatewayCustomDomainNameCreate, Kind: KindBool, Category: CategoryAPIGateway, TFVar: "create_custom_domain"},
		{
			Name:      AWSAPIGatewayCustomDomainName,
			Kind:      KindString,
			Category:  CategoryAPIGateway,
			Validator: Matches(ValidDomainPattern),
			Derive:    deriveCustomDomainName,
		},
		{Name: AWSDynamoDBTableID, Kind: KindString, Category: CategoryDynamoDB},
		{Name: AWSRekognitionCollectionID, Kind: KindString, Category: CategoryRekognition},
		{Name: AWSRekognitionFaceDetectMaxFaces, Kind: KindInt, Category: CategoryRekognition, Validator: GreaterThan(0)},
		{Name: AWSRekognitionFaceDetectThreshold, Kind: KindInt, Category: CategoryRekognition, Validator: GreaterThan(0)},
		{Name: AWSRekognitionFaceDetectAttributes, Kind: KindString, Category: CategoryRekognition, Validator: OneOf("DEFAULT", "ALL")},
		{Name: AWSRekognitionFaceDetectQualityFilter, Kind: KindString, Category: CategoryRekognition, Validator: OneOf("NONE", "AUTO", "LOW", "MEDIUM", "HIGH")},
		{Name: LangchainMemoryKey, Kind: KindString, Category: CategoryOpenAI},
		{Name: OpenAIAPIOrganization, Kind: KindString, Category: CategoryOpenAI},
		{Name: OpenAIAPIKey, Kind: KindString, Category: CategorySecrets, Secret: true},
		{Name: OpenAIEndpointImageN, Kind: KindInt, Category: CategoryOpenAI, Validator: Between(1, 10)},
		{Name: OpenAIEndpointImageSize, Kind: KindString, Category: CategoryOpenAI, Validator: Matches(imageSizePattern)},
		{Name: PineconeAPIKey, Kind: KindString, Category: CategorySecrets, Secret: true},
	}
}

// deriveCustomDomainName builds api.<shared_resource_identifier>.<root_domain>
// once a root domain is known.
func deriveCustomDomainName(lookup Lookup) (any, bool) {
	root, ok := lookup(AWSAPIGatewayRootDomain)
	if !ok {
		return nil, false
	}
	id, ok := lookup(SharedResourceIdentifier)
	if !ok {
		return nil, false
	}
	return "api." + id.(string) + "." + root.(string), true
}

// Defaults is the hard-coded bottom tier keyed by field name.
type Defaults map[string]any

// DefaultTable returns a fresh copy of the built-in defaults.
func DefaultTable() Defaults {
	return Defaults{
		DebugMode:                             false,
		DumpDefaults:                          false,
		SharedResourceIdentifier:              "openai",
		AWSRegion:                             "us-east-1",
		AWSAPIGatewayCustomDomainNameCreate:   false,
		AWSDynamoDBTableID:                    "rekognition",
		AWSRekognitionCollectionID:            "rekognition-collection",
		AWSRekognitionFaceDetectMaxFaces:      10,
		AWSRekognitionFaceDetectThreshold:     10,
		AWSRekognitionFaceDetectAttributes:    "DEFAULT",
		AWSRekognitionFaceDetectQualityFilter: "AUTO",
		LangchainMemoryKey:                    "chat_history",
		OpenAIEndpointImageN:                  4,
		OpenAIEndpointImageSize:               "1024x768",
	}
}
