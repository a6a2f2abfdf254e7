// Package codec converts between document text and plain values.
//
// YAML is the default. JSON and CUE are also available by name:
//
//	c, err := codec.ByName("cue")
//
// Encoders write deterministic output with table keys in canonical order,
// so encoding the same value twice yields the same text.
package codec
