package bisect

import (
	"errors"
	"fmt"
)

// Configuration errors. They are returned wrapped in *ConfigError.
var (
	ErrNoSignChange        = errors.New("bisect: function must have opposite signs at interval endpoints")
	ErrInvalidBounds       = errors.New("bisect: low must be less than high")
	ErrInvalidIterationCap = errors.New("bisect: max iterations must be positive")
	ErrInvalidDelay        = errors.New("bisect: delay must be positive")
)

// Sequencing errors. They are returned wrapped in *StepError.
var (
	ErrNotConfigured   = errors.New("bisect: engine not configured")
	ErrAlreadyTerminal = errors.New("bisect: run already finished")
	ErrAlreadyStarted  = errors.New("bisect: run already started")
	ErrAutoRunning     = errors.New("bisect: cannot step manually while auto run is active")
)

// ConfigError reports which field of a RunConfig failed validation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StepError reports an operation attempted in a state that does not allow it.
type StepError struct {
	Op    string
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s in state %s: %v", e.Op, e.State, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is a validation failure.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
