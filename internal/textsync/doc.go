// Package textsync binds a structured value to the contents of a text node.
//
// A Sync decodes the text whenever it changes and encodes values written
// with Set back into it. Before writing, Set compares the canonical form of
// what the text currently decodes to with the new value and skips the write
// when they are equal, so a write echoing back inbound ends there.
//
// Decode failures move the status to error and are returned to the caller.
// Failures during inbound decoding, which have no caller, are logged.
package textsync
