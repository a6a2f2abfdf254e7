// Package node defines the contract between this module and the replicated
// document engine.
//
// The engine owns storage and merging. This package only names what the rest
// of the module needs from it: read a node, write a node inside a transaction,
// and observe deep changes. Nodes form a tagged union over Kind:
//
//	Map       string-keyed container
//	Sequence  index-ordered container
//	Text      character buffer
//	Number    scalar, stored by value
//
// Plain strings are always stored as Text.
package node
