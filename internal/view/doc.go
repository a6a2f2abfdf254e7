// Package view exposes container nodes as live map and sequence views.
//
// Views hold no state of their own. Every read materializes from the
// underlying node, so remote edits show up immediately, and every mutating
// call converts its arguments first and then runs exactly one document
// transaction. Observers never see a half-applied call.
//
// Views must not be mutated from inside a document transaction.
package view
