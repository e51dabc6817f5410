package pow

import (
	"errors"
	"fmt"
)

// Error represents a failure detected by the proof-of-work core itself.
//
// Core errors include:
//   - Invalid parameter: the event or difficulty has the wrong shape
//   - Difficulty out of range: difficulty < 0 or > MaxDifficulty
//   - Internal error: no collision-free placeholder marker could be chosen
//
// Failures reported by a search engine are never wrapped in Error; they are
// returned unchanged. See IsEngineError.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause (optional).
	Err error
}

// ErrorCode categorizes core errors.
type ErrorCode string

const (
	// ErrCodeInvalidParameter indicates a malformed event or non-numeric difficulty.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeDifficultyOutOfRange indicates a difficulty outside [0, MaxDifficulty].
	ErrCodeDifficultyOutOfRange ErrorCode = "DIFFICULTY_OUT_OF_RANGE"

	// ErrCodeInternal indicates a broken invariant, such as marker exhaustion.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsInvalidParameter returns true if the error is an invalid parameter error.
// Uses errors.As to handle wrapped errors.
func IsInvalidParameter(err error) bool {
	return hasCode(err, ErrCodeInvalidParameter)
}

// IsDifficultyOutOfRange returns true if the error is a difficulty range error.
func IsDifficultyOutOfRange(err error) bool {
	return hasCode(err, ErrCodeDifficultyOutOfRange)
}

// IsInternalError returns true if the error is an internal invariant failure.
func IsInternalError(err error) bool {
	return hasCode(err, ErrCodeInternal)
}

// IsEngineError returns true if err came from the search engine, i.e. it is
// non-nil and is not a core *Error.
func IsEngineError(err error) bool {
	if err == nil {
		return false
	}
	var pe *Error
	return !errors.As(err, &pe)
}

func newInvalidParameter(err error, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidParameter, Message: fmt.Sprintf(format, args...), Err: err}
}

func newOutOfRange(d int64) *Error {
	if d < 0 {
		return &Error{Code: ErrCodeDifficultyOutOfRange, Message: fmt.Sprintf("difficulty %d cannot be negative", d)}
	}
	return &Error{Code: ErrCodeDifficultyOutOfRange, Message: fmt.Sprintf("difficulty %d cannot exceed %d", d, MaxDifficulty)}
}

func newInternal(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}
