package settings

// Source is the tier a value was resolved from, highest precedence first.
type Source int

const (
	SourceUnset Source = iota
	SourceOverride
	SourceDotenv
	SourceEnv
	SourceTFVars
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "init argument"
	case SourceDotenv:
		return "dotenv file"
	case SourceEnv:
		return "environment variable"
	case SourceTFVars:
		return "terraform.tfvars"
	case SourceDefault:
		return "default"
	default:
		return "not set"
	}
}
