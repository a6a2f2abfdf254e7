package docpath

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes path resolution failures.
type ErrorCode string

const (
	// ErrCodeEmptyPath indicates a path with no non-empty segments.
	ErrCodeEmptyPath ErrorCode = "EMPTY_PATH"

	// ErrCodeWrongKind indicates a step reached a node that cannot be stepped into.
	ErrCodeWrongKind ErrorCode = "WRONG_KIND"

	// ErrCodeNotFound indicates a map key that does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeOutOfRange indicates a sequence index past the end.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeBoxHasNoRoot indicates a box map without the root sentinel entry.
	ErrCodeBoxHasNoRoot ErrorCode = "BOX_HAS_NO_ROOT"

	// ErrCodeNotADirectory indicates a non-directory entry at an intermediate step.
	ErrCodeNotADirectory ErrorCode = "NOT_A_DIRECTORY"

	// ErrCodeEntryNotFound indicates a name missing from a directory's children.
	ErrCodeEntryNotFound ErrorCode = "ENTRY_NOT_FOUND"

	// ErrCodeNotAText indicates a final box entry whose kind is not text.
	ErrCodeNotAText ErrorCode = "NOT_A_TEXT"

	// ErrCodePathTooShort indicates fewer segments than the operation needs.
	ErrCodePathTooShort ErrorCode = "PATH_TOO_SHORT"

	// ErrCodeNotImplemented indicates create mode through a box.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
)

// PathError is returned by every resolution function in this package.
type PathError struct {
	// Code identifies the failure.
	Code ErrorCode

	// Path is the full path being resolved.
	Path string

	// Step is the segment at which resolution failed, if any.
	Step string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s: %s (path=%q, at=%q)", e.Code, e.Message, e.Path, e.Step)
	}
	return fmt.Sprintf("%s: %s (path=%q)", e.Code, e.Message, e.Path)
}

// Is reports whether target is a PathError with the same code, so callers
// can match with errors.Is(err, &PathError{Code: ErrCodeNotFound}).
func (e *PathError) Is(target error) bool {
	var pe *PathError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Code == e.Code
}

// CodeOf returns the code of a PathError anywhere in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// HasCode reports whether err is a PathError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func newError(code ErrorCode, path, step, format string, args ...any) *PathError {
	return &PathError{
		Code:    code,
		Path:    path,
		Step:    step,
		Message: fmt.Sprintf(format, args...),
	}
}
