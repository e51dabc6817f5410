package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/roach88/nostrpow/internal/event"
	"github.com/roach88/nostrpow/internal/pow"
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeGeneric          = "E001" // Generic/unknown error
	ErrCodeReadFailed       = "E002" // Input could not be read
	ErrCodeInvalidEvent     = "E003" // Event JSON has the wrong shape
	ErrCodeInvalidParameter = "E004" // pow INVALID_PARAMETER
	ErrCodeNotFound         = "E005" // Input or config path not found
	ErrCodeOutOfRange       = "E006" // pow DIFFICULTY_OUT_OF_RANGE
	ErrCodeInternal         = "E007" // pow INTERNAL_ERROR
	ErrCodeSearchFailed     = "E008" // Search engine error
	ErrCodeTimeout          = "E009" // Search cancelled or timed out
	ErrCodeConfig           = "E010" // Configuration error
)

// configError marks failures while resolving configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return "config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// readError marks failures while reading command input.
type readError struct {
	err error
}

func (e *readError) Error() string { return "read input: " + e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

type classification struct {
	code string
	exit int
}

// classify maps an error to its CLI code and exit status. Order matters:
// a missing file is reported as not found before it is a read failure.
func classify(err error) classification {
	var se *event.ShapeError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return classification{ErrCodeNotFound, ExitCommandError}
	case isA[*configError](err):
		return classification{ErrCodeConfig, ExitCommandError}
	case isA[*readError](err):
		return classification{ErrCodeReadFailed, ExitCommandError}
	case pow.IsDifficultyOutOfRange(err):
		return classification{ErrCodeOutOfRange, ExitCommandError}
	case pow.IsInvalidParameter(err) && errors.As(err, &se):
		return classification{ErrCodeInvalidEvent, ExitCommandError}
	case pow.IsInvalidParameter(err):
		return classification{ErrCodeInvalidParameter, ExitCommandError}
	case errors.As(err, &se):
		return classification{ErrCodeInvalidEvent, ExitCommandError}
	case pow.IsInternalError(err):
		return classification{ErrCodeInternal, ExitFailure}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return classification{ErrCodeTimeout, ExitFailure}
	case pow.IsEngineError(err):
		return classification{ErrCodeSearchFailed, ExitFailure}
	default:
		return classification{ErrCodeGeneric, ExitFailure}
	}
}

func isA[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
