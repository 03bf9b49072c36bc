package settings

import "slices"

// Settings is the immutable result of Resolve. It is safe to share between
// goroutines; every accessor returns a copy.
type Settings struct {
	fields   []Field
	values   map[string]any
	sources  map[string]Source
	defaults Defaults

	dotenvFiles []string
	dotenvKeys  []string
	tfvarsPath  string
	tfvarsKeys  []string
	regions     []string
}

// Set always fails: settings cannot change after resolution.
func (s *Settings) Set(name string, _ any) error {
	return &ImmutableFieldError{Field: name}
}

// Fields returns the declared fields in resolution order.
func (s *Settings) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field returns the declaration for name.
func (s *Settings) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Source reports which tier supplied name.
func (s *Settings) Source(name string) Source {
	return s.sources[name]
}

// Get returns the coerced value for name. Secret values come back as Secret.
func (s *Settings) Get(name string) (any, bool) {
	v, ok := s.values[name]
	if !ok {
		return nil, false
	}
	if f, _ := s.Field(name); f.Secret {
		if str, ok := v.(string); ok {
			return Secret(str), true
		}
	}
	if list, ok := v.([]string); ok {
		return slices.Clone(list), true
	}
	return v, true
}

// GetString returns a string field, or "" when unset. Secret fields are
// returned redacted; use GetSecret to read them.
func (s *Settings) GetString(name string) string {
	v, _ := s.Get(name)
	switch t := v.(type) {
	case string:
		return t
	case Secret:
		return t.String()
	}
	return ""
}

func (s *Settings) GetInt(name string) int {
	v, _ := s.Get(name)
	n, _ := v.(int)
	return n
}

func (s *Settings) GetFloat(name string) float64 {
	v, _ := s.Get(name)
	n, _ := v.(float64)
	return n
}

func (s *Settings) GetBool(name string) bool {
	v, _ := s.Get(name)
	b, _ := v.(bool)
	return b
}

func (s *Settings) GetList(name string) []string {
	v, _ := s.Get(name)
	list, _ := v.([]string)
	return list
}

func (s *Settings) GetSecret(name string) Secret {
	v, _ := s.Get(name)
	secret, _ := v.(Secret)
	return secret
}

func (s *Settings) DebugMode() bool    { return s.GetBool(DebugMode) }
func (s *Settings) DumpDefaults() bool { return s.GetBool(DumpDefaults) }
func (s *Settings) AWSProfile() string { return s.GetString(AWSProfile) }
func (s *Settings) AWSRegion() string  { return s.GetString(AWSRegion) }

func (s *Settings) SharedResourceIdentifier() string {
	return s.GetString(SharedResourceIdentifier)
}

func (s *Settings) OpenAIAPIKey() Secret   { return s.GetSecret(OpenAIAPIKey) }
func (s *Settings) PineconeAPIKey() Secret { return s.GetSecret(PineconeAPIKey) }

// IsUsingDotenvFile reports whether at least one dotenv file was read.
func (s *Settings) IsUsingDotenvFile() bool {
	return len(s.dotenvFiles) > 0
}

// IsUsingTFVarsFile reports whether a tfvars file was read.
func (s *Settings) IsUsingTFVarsFile() bool {
	return s.tfvarsPath != ""
}

// AWSRegions is the allowed set aws_region was validated against.
func (s *Settings) AWSRegions() []string {
	return slices.Clone(s.regions)
}
