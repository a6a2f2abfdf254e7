package codec

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/docproxy/internal/value"
)

// JSON encodes indented JSON with sorted keys.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Encode implements Codec.
func (JSON) Encode(v value.Value) (string, error) {
	data, err := value.Marshal(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// Decode implements Codec.
func (JSON) Decode(s string) (value.Value, error) {
	if err := checkBlank("json", s); err != nil {
		return nil, err
	}
	v, err := value.Unmarshal([]byte(s))
	if err != nil {
		return nil, &DecodeError{Codec: "json", Message: "malformed input", Err: err}
	}
	return v, nil
}
