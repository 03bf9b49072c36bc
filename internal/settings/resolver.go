package settings

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/eugenenazirov/lambda-settings/internal/sources"
)

// Inputs are the read-only sources consulted by Resolve.
type Inputs struct {
	// Overrides are explicit caller values keyed by field name.
	Overrides map[string]any
	// Env is a snapshot of the process environment.
	Env map[string]string
	// DotenvPaths are scanned in order; the first file defining a key wins.
	// Missing files are skipped.
	DotenvPaths []string
	// TFVarsPath is optional; a missing file disables the tier.
	TFVarsPath string
	// Defaults replaces DefaultTable when non-nil.
	Defaults Defaults
	// Fields replaces Catalog when non-nil.
	Fields []Field
	// Regions replaces DefaultAWSRegions for the standard catalog.
	Regions []string
	// Require marks additional fields as required.
	Require []string
}

type lookupFunc func(f Field) (any, bool)

type tier struct {
	source Source
	lookup lookupFunc
}

// Resolve merges every tier into an immutable Settings value. Each field takes
// the first non-empty value in precedence order: overrides, dotenv files,
// environment, tfvars, defaults. All field errors are reported together.
func Resolve(in Inputs) (*Settings, error) {
	fields := in.Fields
	if fields == nil {
		fields = Catalog(in.Regions)
	}
	defaults := in.Defaults
	if defaults == nil {
		defaults = DefaultTable()
	}
	defaults = maps.Clone(defaults)

	declared := make(map[string]Field, len(fields))
	for _, f := range fields {
		declared[f.Name] = f
	}

	var errs []error
	for _, name := range sortedKeys(in.Overrides) {
		if _, ok := declared[name]; !ok {
			errs = append(errs, &InvalidConfigurationError{Field: name, Reason: "is not a declared setting"})
		}
	}
	required := make(map[string]bool, len(in.Require))
	for _, name := range in.Require {
		if _, ok := declared[name]; !ok {
			errs = append(errs, &InvalidConfigurationError{Field: name, Reason: "is not a declared setting"})
			continue
		}
		required[name] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	dotenv, err := sources.LoadDotenv(in.DotenvPaths)
	if err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}
	tfvars, err := sources.LoadTFVars(in.TFVarsPath)
	if err != nil {
		return nil, fmt.Errorf("load tfvars: %w", err)
	}

	s := &Settings{
		fields:      slices.Clone(fields),
		values:      make(map[string]any, len(fields)),
		sources:     make(map[string]Source, len(fields)),
		defaults:    defaults,
		dotenvFiles: dotenv.Files,
		dotenvKeys:  sortedKeys(dotenv.Values),
		tfvarsPath:  tfvars.Path,
		tfvarsKeys:  sortedKeys(tfvars.Values),
		regions:     allowedRegions(fields),
	}

	resolved := func(name string) (any, bool) {
		v, ok := s.values[name]
		return v, ok
	}

	tiers := []tier{
		{source: SourceOverride, lookup: func(f Field) (any, bool) {
			v, ok := in.Overrides[f.Name]
			return v, ok
		}},
		{source: SourceDotenv, lookup: func(f Field) (any, bool) {
			v, ok := dotenv.Values[f.EnvName()]
			return v, ok
		}},
		{source: SourceEnv, lookup: func(f Field) (any, bool) {
			v, ok := in.Env[f.EnvName()]
			return v, ok
		}},
		{source: SourceTFVars, lookup: func(f Field) (any, bool) {
			if f.TFVar == "" {
				return nil, false
			}
			v, ok := tfvars.Values[f.TFVar]
			return v, ok
		}},
		{source: SourceDefault, lookup: func(f Field) (any, bool) {
			if v, ok := defaults[f.Name]; ok && !isEmpty(v) {
				return v, true
			}
			if f.Derive != nil {
				return f.Derive(resolved)
			}
			return nil, false
		}},
	}

	for _, f := range fields {
		raw, source := probe(tiers, f)
		if source == SourceUnset {
			s.sources[f.Name] = SourceUnset
			if f.Required || required[f.Name] {
				errs = append(errs, &MissingRequiredValueError{Field: f.Name})
			}
			continue
		}

		value, err := f.coerce(raw)
		if err == nil && f.Validator != nil {
			err = f.Validator.Validate(value)
		}
		if err != nil {
			errs = append(errs, &InvalidConfigurationError{
				Field:  f.Name,
				Value:  displayValue(f, raw),
				Reason: err.Error(),
			})
			continue
		}

		s.values[f.Name] = value
		s.sources[f.Name] = source
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// probe returns the first non-empty value across tiers.
func probe(tiers []tier, f Field) (any, Source) {
	for _, t := range tiers {
		v, ok := t.lookup(f)
		if ok && !isEmpty(v) {
			return v, t.source
		}
	}
	return nil, SourceUnset
}

// allowedRegions returns the sorted members aws_region is checked against in
// fields, or nil when the catalog does not restrict it.
func allowedRegions(fields []Field) []string {
	for _, f := range fields {
		if f.Name != AWSRegion {
			continue
		}
		if o, ok := f.Validator.(oneOf); ok {
			out := slices.Clone(o.allowed)
			slices.Sort(out)
			return slices.Compact(out)
		}
	}
	return nil
}

func displayValue(f Field, raw any) string {
	if f.Secret {
		return ""
	}
	return fmt.Sprint(raw)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
