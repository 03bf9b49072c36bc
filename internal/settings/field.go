package settings

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Kind is the value type a field is coerced to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Validator checks a coerced value. A non-nil return becomes the Reason of an
// InvalidConfigurationError for the field being resolved.
type Validator interface {
	Validate(value any) error
	Describe() string
}

// Lookup returns a value already resolved earlier in the catalog.
type Lookup func(name string) (any, bool)

// Field declares one named setting.
type Field struct {
	Name     string
	Kind     Kind
	Category string
	// TFVar is the tfvars variable feeding this field. Empty disables the tier.
	TFVar     string
	Secret    bool
	Required  bool
	Validator Validator
	// Derive computes a default from fields declared earlier when the defaults
	// table has no entry.
	Derive func(Lookup) (any, bool)
}

// EnvName is the upper-snake environment variable for the field.
func (f Field) EnvName() string {
	return strings.ToUpper(f.Name)
}

// coerce converts a raw value from any tier into the field's kind.
func (f Field) coerce(raw any) (any, error) {
	switch f.Kind {
	case KindString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case Secret:
			return v.Reveal(), nil
		case fmt.Stringer:
			return v.String(), nil
		case int, int64, float64, bool:
			return fmt.Sprint(v), nil
		}
	case KindInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("must be an integer")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be an integer")
			}
			return n, nil
		}
	case KindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			return n, nil
		}
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return parseBool(v)
		}
	case KindList:
		switch v := raw.(type) {
		case []string:
			return slices.Clone(v), nil
		case string:
			return splitList(v), nil
		}
	}
	return nil, fmt.Errorf("cannot be used as %s (got %T)", f.Kind, raw)
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "t", "y", "yes":
		return true, nil
	case "false", "0", "f", "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("must be a boolean")
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// isEmpty reports whether a raw value counts as "not defined" for its tier.
func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case Secret:
		return strings.TrimSpace(v.Reveal()) == ""
	case []string:
		return len(v) == 0
	}
	return false
}

type oneOf struct {
	allowed []string
}

// OneOf restricts a string field to a fixed set of members.
func OneOf(allowed ...string) Validator {
	return oneOf{allowed: slices.Clone(allowed)}
}

func (o oneOf) Validate(value any) error {
	s, _ := value.(string)
	if slices.Contains(o.allowed, s) {
		return nil
	}
	return fmt.Errorf("must be one of [%s]", strings.Join(o.allowed, ", "))
}

func (o oneOf) Describe() string {
	return "one of [" + strings.Join(o.allowed, ", ") + "]"
}

type matches struct {
	pattern *regexp.Regexp
}

// Matches requires a string field to match pattern.
func Matches(pattern *regexp.Regexp) Validator {
	return matches{pattern: pattern}
}

func (m matches) Validate(value any) error {
	s, _ := value.(string)
	if m.pattern.MatchString(s) {
		return nil
	}
	return fmt.Errorf("must match pattern %s", m.pattern.String())
}

func (m matches) Describe() string {
	return "matches " + m.pattern.String()
}

type numberRange struct {
	min, max       float64
	hasMin, hasMax bool
	exclusiveMin   bool
}

// Between requires a numeric field to lie in [min, max].
func Between(min, max float64) Validator {
	return numberRange{min: min, max: max, hasMin: true, hasMax: true}
}

// GreaterThan requires a numeric field to be strictly above min.
func GreaterThan(min float64) Validator {
	return numberRange{min: min, hasMin: true, exclusiveMin: true}
}

func (r numberRange) Validate(value any) error {
	var n float64
	switch v := value.(type) {
	case int:
		n = float64(v)
	case float64:
		n = v
	default:
		return fmt.Errorf("must be numeric")
	}
	if r.hasMin && (n < r.min || (r.exclusiveMin && n == r.min)) {
		return fmt.Errorf("must be %s", r.Describe())
	}
	if r.hasMax && n > r.max {
		return fmt.Errorf("must be %s", r.Describe())
	}
	return nil
}

func (r numberRange) Describe() string {
	switch {
	case r.hasMin && r.hasMax:
		return fmt.Sprintf("between %s and %s", formatNumber(r.min), formatNumber(r.max))
	case r.exclusiveMin:
		return "> " + formatNumber(r.min)
	case r.hasMin:
		return ">= " + formatNumber(r.min)
	default:
		return "<= " + formatNumber(r.max)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
