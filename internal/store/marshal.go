package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/docproxy/internal/value"
)

// DomainSnapshot prefixes snapshot hashes. The version suffix allows a
// future change of algorithm.
const DomainSnapshot = "docproxy/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// marshalSnapshot encodes roots as canonical JSON TEXT and hashes it.
func marshalSnapshot(roots value.Table) (text, hash string, err error) {
	data, err := value.MarshalCanonical(roots)
	if err != nil {
		return "", "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), hashWithDomain(DomainSnapshot, data), nil
}

// unmarshalSnapshot decodes snapshot TEXT into a table of roots.
func unmarshalSnapshot(text string) (value.Table, error) {
	v, err := value.Unmarshal([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	roots, ok := v.(value.Table)
	if !ok {
		return nil, fmt.Errorf("unmarshal snapshot: expected table, got %s", value.KindName(v))
	}
	return roots, nil
}
