// Package value provides the plain value grammar that documents are projected
// into and built from.
//
// A Value is one of Number, String, Sequence or Table. Bool and Null are
// accepted from codecs but have no replicated counterpart, so converting them
// into nodes fails.
//
// Key design constraints:
//   - Values are snapshots, never live: mutating a Table does not touch any document
//   - Comparison goes through MarshalCanonical (RFC 8785), not reflect.DeepEqual
//   - Table iteration order is SortedKeys(), never map order
package value
