// Package convert translates between plain values and document nodes.
//
// FromNode takes a point-in-time snapshot of a node subtree. ToNode builds
// new detached nodes from a plain value; inserting them into a document is
// up to the caller. For every value v of the document grammar (numbers,
// strings, sequences and tables):
//
//	FromNode(ToNode(f, v)) equals v
//
// Node identity does not survive a round trip.
package convert
