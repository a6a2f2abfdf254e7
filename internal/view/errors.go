package view

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes view mutation failures.
type ErrorCode string

const (
	// ErrCodeInvalidKey indicates a non-index key written to a sequence view.
	ErrCodeInvalidKey ErrorCode = "INVALID_KEY"

	// ErrCodeNotAContainer indicates a view requested over a text or number.
	ErrCodeNotAContainer ErrorCode = "NOT_A_CONTAINER"

	// ErrCodeOutOfRange indicates an index outside the sequence.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeUnsupported indicates an operation sequence views refuse.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// MutationError is returned by view operations.
type MutationError struct {
	Code    ErrorCode
	Key     string
	Message string
}

// Error implements the error interface.
func (e *MutationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%q)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the code of a MutationError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

func newError(code ErrorCode, key, format string, args ...any) *MutationError {
	return &MutationError{Code: code, Key: key, Message: fmt.Sprintf(format, args...)}
}
