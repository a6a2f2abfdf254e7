package convert

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes conversion failures.
type ErrorCode string

const (
	// ErrCodeUnsupportedValueKind indicates a value outside the document
	// grammar: booleans, nulls and anything not built from numbers, strings,
	// sequences and tables.
	ErrCodeUnsupportedValueKind ErrorCode = "UNSUPPORTED_VALUE_KIND"

	// ErrCodeReservedKeyCollision indicates a table using the reserved
	// transport metadata key.
	ErrCodeReservedKeyCollision ErrorCode = "RESERVED_KEY_COLLISION"
)

// ConversionError reports where in a value conversion failed.
type ConversionError struct {
	Code ErrorCode

	// Path locates the offending value from the top, as keys and indices.
	Path []string

	Message string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, strings.Join(e.Path, "/"))
}

// IsReservedKey reports whether err is a reserved key collision.
func IsReservedKey(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce) && ce.Code == ErrCodeReservedKeyCollision
}

// IsUnsupported reports whether err is an unsupported value kind.
func IsUnsupported(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnsupportedValueKind
}
