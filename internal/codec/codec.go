package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/docproxy/internal/value"
)

// Codec converts between text and plain values. Both directions are pure.
// Decode fails on malformed or blank input rather than returning a partial
// value.
type Codec interface {
	Name() string
	Encode(v value.Value) (string, error)
	Decode(s string) (value.Value, error)
}

// DecodeError reports text a codec could not decode.
type DecodeError struct {
	Codec   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s decode: %s: %v", e.Codec, e.Message, e.Err)
	}
	return fmt.Sprintf("%s decode: %s", e.Codec, e.Message)
}

// Unwrap returns the underlying parser error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

var registry = map[string]Codec{
	"yaml": YAML{},
	"yml":  YAML{},
	"json": JSON{},
	"cue":  CUE{},
}

// Default is the codec used when none is named.
var Default Codec = YAML{}

// ByName looks a codec up by name, case-insensitively. An empty name
// returns Default.
func ByName(name string) (Codec, error) {
	if name == "" {
		return Default, nil
	}
	c, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names lists the registered codec names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkBlank rejects input with nothing to decode.
func checkBlank(codec, s string) error {
	if strings.TrimSpace(s) == "" {
		return &DecodeError{Codec: codec, Message: "input is blank"}
	}
	return nil
}
