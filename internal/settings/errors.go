package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates a resolved value failed its validator.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrMissingRequiredValue indicates a required field resolved to nothing in every tier.
	ErrMissingRequiredValue = errors.New("missing required value")
	// ErrImmutableField indicates an attempt to change resolved settings.
	ErrImmutableField = errors.New("immutable settings")
)

// InvalidConfigurationError names the field that failed validation and why.
// Value is left empty for secret fields.
type InvalidConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s %s", ErrInvalidConfiguration, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// MissingRequiredValueError names a required field no tier defined.
type MissingRequiredValueError struct {
	Field string
}

func (e *MissingRequiredValueError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredValue, e.Field)
}

func (e *MissingRequiredValueError) Is(target error) bool {
	return target == ErrMissingRequiredValue
}

// ImmutableFieldError is returned by every mutation attempt on resolved settings.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s: cannot set %s", ErrImmutableField, e.Field)
}

func (e *ImmutableFieldError) Is(target error) bool {
	return target == ErrImmutableField
}
