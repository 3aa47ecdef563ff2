package ixurl

import (
	"errors"

	"github.com/AnyUserName/ixurl/internal/validate"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid builder configuration")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = validate.ErrInvalid
)

// ValidationError reports an out-of-range srcset argument such as a
// negative width or a tolerance below one percent. These are call-site
// bugs; retrying with the same arguments fails the same way.
type ValidationError = validate.Error

// ConfigurationError is returned by New when the builder cannot be
// constructed from the given domains and options.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "ixurl: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
