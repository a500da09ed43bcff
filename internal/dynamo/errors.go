package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation configuration and control.
var (
	// ErrInvalidConfig indicates a configuration value outside its valid domain.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNonPositiveStep indicates a frame or step duration that is zero or negative.
	ErrNonPositiveStep = errors.New("dynamo: timestep must be positive")

	// ErrStreamIndex indicates a stream index outside the configured streams.
	ErrStreamIndex = errors.New("dynamo: stream index out of range")

	// ErrInvalidBody indicates a body with non-positive mass or radius.
	ErrInvalidBody = errors.New("dynamo: body mass and radius must be positive")

	// ErrNotRunning indicates an operation that requires a running simulation.
	ErrNotRunning = errors.New("dynamo: simulation is not running")
)

// ConfigError wraps a configuration error with the offending field.
type ConfigError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %v", e.Wrapped.Error(), e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

// Invalid returns a ConfigError for field wrapping ErrInvalidConfig.
func Invalid(field string, value any) error {
	return &ConfigError{Field: field, Value: value, Wrapped: ErrInvalidConfig}
}
