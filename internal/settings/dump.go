package settings

import (
	"encoding/json"
	"runtime"
	"slices"

	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/lambda-settings/internal/version"
)

// Dump groups the settings by category for diagnostics. Secret fields only
// appear as "<name>_source" entries under "secrets"; their values never leave
// the Settings value.
func (s *Settings) Dump() map[string]any {
	dump := map[string]any{
		CategorySecrets: map[string]any{},
		CategoryEnvironment: map[string]any{
			"is_using_dotenv_file": s.IsUsingDotenvFile(),
			"is_using_tfvars_file": s.IsUsingTFVarsFile(),
			"os":                   runtime.GOOS,
			"arch":                 runtime.GOARCH,
			"go_version":           runtime.Version(),
			"version":              version.Semantic(),
		},
	}
	provenance := make(map[string]any, len(s.fields))

	for _, f := range s.fields {
		source := s.sources[f.Name]
		provenance[f.Name] = source.String()

		if f.Secret {
			dump[CategorySecrets].(map[string]any)[f.Name+"_source"] = source.String()
			continue
		}

		category := f.Category
		if category == "" || category == CategorySecrets {
			category = CategoryEnvironment
		}
		group, ok := dump[category].(map[string]any)
		if !ok {
			group = map[string]any{}
			dump[category] = group
		}
		v, _ := s.Get(f.Name)
		group[f.Name] = v
	}
	dump["provenance"] = provenance

	env := dump[CategoryEnvironment].(map[string]any)
	if s.IsUsingDotenvFile() {
		env["dotenv"] = slices.Clone(s.dotenvKeys)
		env["dotenv_files"] = slices.Clone(s.dotenvFiles)
	}
	if s.IsUsingTFVarsFile() {
		env["tfvars"] = slices.Clone(s.tfvarsKeys)
	}

	if s.DumpDefaults() {
		dump["settings_defaults"] = s.defaultsSnapshot()
	}
	return dump
}

func (s *Settings) defaultsSnapshot() map[string]any {
	out := make(map[string]any, len(s.defaults)+2)
	for name, v := range s.defaults {
		if f, ok := s.Field(name); ok && f.Secret {
			out[name] = SourceDefault.String()
			continue
		}
		if list, ok := v.([]string); ok {
			v = slices.Clone(list)
		}
		out[name] = v
	}
	out["valid_domain_pattern"] = ValidDomainPattern.String()
	out["valid_aws_regions"] = s.AWSRegions()
	return out
}

// MarshalJSON renders the redacted dump.
func (s *Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Dump())
}

// MarshalLogObject lets zap.Object emit the redacted dump.
func (s *Settings) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	dump := s.Dump()
	for _, key := range sortedKeys(dump) {
		if err := enc.AddReflected(key, dump[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Settings) String() string {
	data, err := s.MarshalJSON()
	if err != nil {
		return "settings(unprintable)"
	}
	return string(data)
}
