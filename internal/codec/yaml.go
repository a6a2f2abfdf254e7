package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docproxy/internal/value"
)

// YAML encodes block-style YAML with keys in canonical order.
type YAML struct{}

// Name implements Codec.
func (YAML) Name() string { return "yaml" }

// Encode implements Codec.
func (YAML) Encode(v value.Value) (string, error) {
	n, err := yamlNode(v)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Decode implements Codec. Exactly one document is accepted.
func (YAML) Decode(s string) (value.Value, error) {
	if err := checkBlank("yaml", s); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(strings.NewReader(s))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Codec: "yaml", Message: "malformed input", Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected document after the first")
		}
		return nil, &DecodeError{Codec: "yaml", Message: "more than one document", Err: err}
	}

	v, err := value.FromAny(raw)
	if err != nil {
		return nil, &DecodeError{Codec: "yaml", Message: "unsupported content", Err: err}
	}
	return v, nil
}

// yamlNode builds the node tree directly so mapping keys keep canonical
// order.
func yamlNode(v value.Value) (*yaml.Node, error) {
	switch x := v.(type) {
	case value.Table:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.SortedKeys() {
			child, err := yamlNode(x[k])
			if err != nil {
				return nil, err
			}
			key := &yaml.Node{}
			if err := key.Encode(k); err != nil {
				return nil, err
			}
			n.Content = append(n.Content, key, child)
		}
		return n, nil

	case value.Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x {
			child, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil

	case nil:
		return nil, fmt.Errorf("yaml encode: absent value")

	default:
		n := &yaml.Node{}
		if err := n.Encode(value.ToAny(v)); err != nil {
			return nil, err
		}
		return n, nil
	}
}
