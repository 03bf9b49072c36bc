package settings

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func mustResolve(t *testing.T, in Inputs) *Settings {
	t.Helper()

	s, err := Resolve(in)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return s
}

func TestResolveDefaults(t *testing.T) {
	s := mustResolve(t, Inputs{})

	for name, want := range DefaultTable() {
		got, ok := s.Get(name)
		if !ok {
			t.Fatalf("%s: expected default %v, got nothing", name, want)
		}
		if got != want {
			t.Fatalf("%s: expected default %v, got %v", name, want, got)
		}
		if src := s.Source(name); src != SourceDefault {
			t.Fatalf("%s: expected source default, got %s", name, src)
		}
	}

	if _, ok := s.Get(AWSProfile); ok {
		t.Fatalf("expected aws_profile to be unset")
	}
	if src := s.Source(OpenAIAPIKey); src != SourceUnset {
		t.Fatalf("expected openai_api_key to be unset, got %s", src)
	}
	if _, ok := s.Get(AWSAPIGatewayCustomDomainName); ok {
		t.Fatalf("expected custom domain to stay unset without a root domain")
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, ".env", "AWS_REGION=eu-west-1\nLANGCHAIN_MEMORY_KEY=dotenv_key\nOPENAI_ENDPOINT_IMAGE_N=3\n")
	tfvars := writeFile(t, dir, "terraform.tfvars", `
aws_region                 = "ap-south-1"
shared_resource_identifier = "tf"
debug_mode                 = true
aws_profile                = "tf-profile"
`)

	in := Inputs{
		Overrides: map[string]any{
			AWSRegion:            "us-west-2",
			OpenAIEndpointImageN: 7,
		},
		Env: map[string]string{
			"AWS_REGION":                 "ca-central-1",
			"LANGCHAIN_MEMORY_KEY":       "env_key",
			"SHARED_RESOURCE_IDENTIFIER": "env-id",
			"OPENAI_ENDPOINT_IMAGE_N":    "2",
		},
		DotenvPaths: []string{dotenv},
		TFVarsPath:  tfvars,
	}
	s := mustResolve(t, in)

	tests := []struct {
		name   string
		want   any
		source Source
	}{
		{AWSRegion, "us-west-2", SourceOverride},
		{OpenAIEndpointImageN, 7, SourceOverride},
		{LangchainMemoryKey, "dotenv_key", SourceDotenv},
		{SharedResourceIdentifier, "env-id", SourceEnv},
		{DebugMode, true, SourceTFVars},
		{AWSProfile, "tf-profile", SourceTFVars},
		{AWSDynamoDBTableID, "rekognition", SourceDefault},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := s.Get(tc.name)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if src := s.Source(tc.name); src != tc.source {
				t.Fatalf("expected source %s, got %s", tc.source, src)
			}
		})
	}
}

func TestResolveOverrideAlwaysWins(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, ".env", "LANGCHAIN_MEMORY_KEY=from_dotenv\n")
	tfvars := writeFile(t, dir, "terraform.tfvars", "aws_profile = \"tf\"\n")

	for _, f := range Catalog(nil) {
		if f.Kind != KindString || f.Validator != nil {
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			s := mustResolve(t, Inputs{
				Overrides:   map[string]any{f.Name: "explicit"},
				Env:         map[string]string{f.EnvName(): "from_env"},
				DotenvPaths: []string{dotenv},
				TFVarsPath:  tfvars,
			})
			got, _ := s.Get(f.Name)
			if f.Secret {
				if s.GetSecret(f.Name).Reveal() != "explicit" {
					t.Fatalf("expected override, got %v", got)
				}
			} else if got != "explicit" {
				t.Fatalf("expected override, got %v", got)
			}
			if s.Source(f.Name) != SourceOverride {
				t.Fatalf("expected override source, got %s", s.Source(f.Name))
			}
		})
	}
}

func TestResolveEmptyValuesFallThrough(t *testing.T) {
	s := mustResolve(t, Inputs{
		Overrides: map[string]any{AWSRegion: ""},
		Env:       map[string]string{"AWS_REGION": "  ", "LANGCHAIN_MEMORY_KEY": ""},
	})

	if got := s.AWSRegion(); got != "us-east-1" {
		t.Fatalf("expected default region, got %s", got)
	}
	if s.Source(LangchainMemoryKey) != SourceDefault {
		t.Fatalf("expected empty env value to fall through to the default")
	}
}

func TestResolveRegionValidation(t *testing.T) {
	for _, region := range DefaultAWSRegions {
		if _, err := Resolve(Inputs{Overrides: map[string]any{AWSRegion: region}}); err != nil {
			t.Fatalf("region %s: unexpected error: %v", region, err)
		}
	}

	_, err := Resolve(Inputs{Env: map[string]string{"AWS_REGION": "mars-north-1"}})
	var invalid *InvalidConfigurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigurationError, got %v", err)
	}
	if invalid.Field != AWSRegion || invalid.Value != "mars-north-1" {
		t.Fatalf("unexpected error details: %+v", invalid)
	}
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected errors.Is to match ErrInvalidConfiguration")
	}
}

func TestResolveReportsRegionsOfCatalogUsed(t *testing.T) {
	s := mustResolve(t, Inputs{
		Regions:   []string{"us-west-2", "eu-west-1", "us-east-1", "eu-west-1"},
		Overrides: map[string]any{AWSRegion: "eu-west-1"},
	})
	if want := []string{"eu-west-1", "us-east-1", "us-west-2"}; !slices.Equal(s.AWSRegions(), want) {
		t.Fatalf("expected sorted regions %v, got %v", want, s.AWSRegions())
	}

	custom := mustResolve(t, Inputs{
		Regions:  []string{"zz-1"},
		Fields:   []Field{{Name: "colour", Kind: KindString}},
		Defaults: Defaults{"colour": "blue"},
	})
	if got := custom.AWSRegions(); len(got) != 0 {
		t.Fatalf("expected no regions for a catalog without aws_region, got %v", got)
	}

	def := mustResolve(t, Inputs{})
	if !slices.Equal(def.AWSRegions(), DefaultAWSRegions) {
		t.Fatalf("expected the built-in regions, got %v", def.AWSRegions())
	}
}

func TestResolveDiscoveredRegionsReplaceAllowedSet(t *testing.T) {
	in := Inputs{
		Regions:   []string{"us-gov-west-1"},
		Overrides: map[string]any{AWSRegion: "us-gov-west-1"},
	}
	s := mustResolve(t, in)
	if !slices.Equal(s.AWSRegions(), []string{"us-gov-west-1"}) {
		t.Fatalf("unexpected regions: %v", s.AWSRegions())
	}

	in.Overrides[AWSRegion] = "us-east-1"
	if _, err := Resolve(in); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected region outside the discovered set to fail, got %v", err)
	}
}

func TestResolveDomainValidation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := mustResolve(t, Inputs{Overrides: map[string]any{AWSAPIGatewayRootDomain: "api.example.com"}})
		if got := s.GetString(AWSAPIGatewayRootDomain); got != "api.example.com" {
			t.Fatalf("unexpected root domain %s", got)
		}
	})

	for _, bad := range []string{"not a domain", "Example.COM", "localhost", "-bad.example.com"} {
		t.Run(bad, func(t *testing.T) {
			_, err := Resolve(Inputs{Overrides: map[string]any{AWSAPIGatewayRootDomain: bad}})
			var invalid *InvalidConfigurationError
			if !errors.As(err, &invalid) || invalid.Field != AWSAPIGatewayRootDomain {
				t.Fatalf("expected pattern failure for %q, got %v", bad, err)
			}
		})
	}
}

func TestResolveDerivesCustomDomainName(t *testing.T) {
	tfvars := writeFile(t, t.TempDir(), "terraform.tfvars", "root_domain = \"example.com\"\ncreate_custom_domain = true\n")

	s := mustResolve(t, Inputs{
		Env:        map[string]string{"SHARED_RESOURCE_IDENTIFIER": "chat"},
		TFVarsPath: tfvars,
	})

	if got := s.GetString(AWSAPIGatewayCustomDomainName); got != "api.chat.example.com" {
		t.Fatalf("expected derived domain, got %q", got)
	}
	if s.Source(AWSAPIGatewayCustomDomainName) != SourceDefault {
		t.Fatalf("expected derived value to report the default tier")
	}
	if !s.GetBool(AWSAPIGatewayCustomDomainNameCreate) {
		t.Fatalf("expected create_custom_domain from tfvars")
	}
}

func TestResolveNumericRanges(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		ok    bool
	}{
		{"image n lower bound", OpenAIEndpointImageN, "1", true},
		{"image n upper bound", OpenAIEndpointImageN, 10, true},
		{"image n too small", OpenAIEndpointImageN, 0, false},
		{"image n too large", OpenAIEndpointImageN, "11", false},
		{"image n not a number", OpenAIEndpointImageN, "four", false},
		{"max faces positive", AWSRekognitionFaceDetectMaxFaces, "5", true},
		{"max faces zero", AWSRekognitionFaceDetectMaxFaces, "0", false},
		{"threshold negative", AWSRekognitionFaceDetectThreshold, -3, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(Inputs{Overrides: map[string]any{tc.field: tc.value}})
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected InvalidConfigurationError, got %v", err)
			}
		})
	}
}

func TestResolveEnumFields(t *testing.T) {
	if _, err := Resolve(Inputs{Overrides: map[string]any{AWSRekognitionFaceDetectQualityFilter: "HIGH"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := Resolve(Inputs{Overrides: map[string]any{AWSRekognitionFaceDetectAttributes: "SOME"}})
	var invalid *InvalidConfigurationError
	if !errors.As(err, &invalid) || invalid.Field != AWSRekognitionFaceDetectAttributes {
		t.Fatalf("expected enum failure, got %v", err)
	}
}

func TestResolveBoolParsing(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "1", "t", "y", "yes"} {
		s := mustResolve(t, Inputs{Env: map[string]string{"DEBUG_MODE": raw}})
		if !s.DebugMode() {
			t.Fatalf("expected %q to parse as true", raw)
		}
	}
	for _, raw := range []string{"false", "0", "no", "N"} {
		s := mustResolve(t, Inputs{Env: map[string]string{"DEBUG_MODE": raw}})
		if s.DebugMode() {
			t.Fatalf("expected %q to parse as false", raw)
		}
	}
	if _, err := Resolve(Inputs{Env: map[string]string{"DEBUG_MODE": "maybe"}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid boolean to fail, got %v", err)
	}
}

func TestResolveRequiredFields(t *testing.T) {
	_, err := Resolve(Inputs{Require: []string{OpenAIAPIKey, PineconeAPIKey}})

	var missing *MissingRequiredValueError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredValueError, got %v", err)
	}
	if !errors.Is(err, ErrMissingRequiredValue) {
		t.Fatalf("expected errors.Is to match ErrMissingRequiredValue")
	}

	s := mustResolve(t, Inputs{
		Require: []string{OpenAIAPIKey},
		Env:     map[string]string{"OPENAI_API_KEY": "sk-test"},
	})
	if s.OpenAIAPIKey().Reveal() != "sk-test" {
		t.Fatalf("expected key from environment")
	}
}

func TestResolveCustomCatalogRequiredField(t *testing.T) {
	fields := []Field{{Name: "table_name", Kind: KindString, Required: true}}
	_, err := Resolve(Inputs{Fields: fields, Defaults: Defaults{}})
	if !errors.Is(err, ErrMissingRequiredValue) {
		t.Fatalf("expected missing required value, got %v", err)
	}

	s := mustResolve(t, Inputs{Fields: fields, Defaults: Defaults{"table_name": "orders"}})
	if s.GetString("table_name") != "orders" {
		t.Fatalf("expected default for custom field")
	}
}

func TestResolveListField(t *testing.T) {
	fields := []Field{{Name: "allowed_origins", Kind: KindList}}
	s := mustResolve(t, Inputs{
		Fields:   fields,
		Defaults: Defaults{},
		Env:      map[string]string{"ALLOWED_ORIGINS": "a.example.com, b.example.com,"},
	})

	got := s.GetList("allowed_origins")
	if want := []string{"a.example.com", "b.example.com"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	got[0] = "mutated"
	if s.GetList("allowed_origins")[0] != "a.example.com" {
		t.Fatalf("expected accessor to return a copy")
	}
}

func TestResolveRejectsUnknownNames(t *testing.T) {
	if _, err := Resolve(Inputs{Overrides: map[string]any{"aws_regoin": "us-east-1"}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected unknown override to fail, got %v", err)
	}
	if _, err := Resolve(Inputs{Require: []string{"nope"}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected unknown required name to fail, got %v", err)
	}
}

func TestResolveReportsEveryInvalidField(t *testing.T) {
	_, err := Resolve(Inputs{Overrides: map[string]any{
		AWSRegion:               "nowhere",
		AWSAPIGatewayRootDomain: "bad domain",
	}})

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var invalid *InvalidConfigurationError
		if errors.As(e, &invalid) {
			fields = append(fields, invalid.Field)
		}
	}
	if want := []string{AWSRegion, AWSAPIGatewayRootDomain}; !slices.Equal(fields, want) {
		t.Fatalf("expected errors for %v, got %v", want, fields)
	}
}

func TestResolveInvalidSecretIsNotEchoed(t *testing.T) {
	fields := []Field{{Name: "token", Kind: KindString, Secret: true, Validator: OneOf("never")}}
	_, err := Resolve(Inputs{Fields: fields, Defaults: Defaults{}, Overrides: map[string]any{"token": "sk-live-123"}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var invalid *InvalidConfigurationError
	if !errors.As(err, &invalid) || invalid.Value != "" {
		t.Fatalf("expected secret value to be withheld, got %+v", invalid)
	}
}

func TestResolveDotenvDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.env", "AWS_REGION=eu-west-1\n")
	b := writeFile(t, dir, "b.env", "AWS_REGION=eu-west-2\n")

	in := Inputs{DotenvPaths: []string{a, b}}
	for i := 0; i < 10; i++ {
		s := mustResolve(t, in)
		if s.AWSRegion() != "eu-west-1" {
			t.Fatalf("run %d: expected eu-west-1, got %s", i, s.AWSRegion())
		}
		if s.Source(AWSRegion) != SourceDotenv {
			t.Fatalf("expected dotenv source")
		}
	}
}

func TestResolveBrokenTFVarsFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "terraform.tfvars", "aws_region = \n")
	if _, err := Resolve(Inputs{TFVarsPath: path}); err == nil {
		t.Fatalf("expected tfvars parse error")
	}
}
