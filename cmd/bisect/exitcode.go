package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/bisect/internal/bisect"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorConfig   = 4
	ExitErrorCanceled = 130
)

// configError marks bad user input: flags, presets or config files.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

func newConfigError(format string, a ...any) error {
	return &configError{err: fmt.Errorf(format, a...)}
}

func exitCode(err error) int {
	var ce *configError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &ce), bisect.IsConfigError(err):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}
