// Package memdoc is a single-replica, in-process document that satisfies the
// node contract.
//
// It does not merge concurrent replicas. It exists so the rest of the module
// can be exercised end to end: it groups edits into transactions, tracks
// parent links for deep observation, and delivers change events after commit
// on a dedicated dispatcher goroutine.
//
// ARCHITECTURE:
//
//  1. Edits lock the document, apply, and record an event against every deep
//     observer between the edited node and its root
//  2. On commit the recorded deliveries become one batch in a FIFO queue
//  3. The dispatcher goroutine drains the queue, calling each observer once
//     per batch, then commit hooks
//
// Observers therefore never run inside a transaction and never see a
// partially applied one.
package memdoc
