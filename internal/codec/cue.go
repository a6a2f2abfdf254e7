package codec

import (
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"

	"github.com/roach88/docproxy/internal/value"
)

// CUE reads and writes CUE. Decoding evaluates the input, so references,
// defaults and constraints are resolved; the result must be concrete.
type CUE struct{}

// Name implements Codec.
func (CUE) Name() string { return "cue" }

// Encode implements Codec. JSON is valid CUE, so the canonical encoding is
// compiled and reformatted.
func (CUE) Encode(v value.Value) (string, error) {
	data, err := value.MarshalCanonical(v)
	if err != nil {
		return "", err
	}

	ctx := cuecontext.New()
	cv := ctx.CompileBytes(data)
	if err := cv.Err(); err != nil {
		return "", err
	}

	out, err := format.Node(cv.Syntax(cue.Final(), cue.Concrete(true)))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n") + "\n", nil
}

// Decode implements Codec.
func (CUE) Decode(s string) (value.Value, error) {
	if err := checkBlank("cue", s); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	cv := ctx.CompileString(s)
	if err := cv.Err(); err != nil {
		return nil, &DecodeError{Codec: "cue", Message: "malformed input", Err: err}
	}
	if err := cv.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return nil, &DecodeError{Codec: "cue", Message: "value is not concrete", Err: err}
	}

	data, err := cv.MarshalJSON()
	if err != nil {
		return nil, &DecodeError{Codec: "cue", Message: "cannot export", Err: err}
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return nil, &DecodeError{Codec: "cue", Message: "cannot export", Err: err}
	}
	return v, nil
}
