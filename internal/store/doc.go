// Package store provides a SQLite-backed offline cache for documents.
//
// Each document has one row in documents holding its latest snapshot as
// canonical JSON, and an append-only log in commits with one row per
// persisted transaction:
//
//   - seq orders the log and never restarts, even across process runs
//   - session and doc_seq record which document instance made the commit
//   - hash is SHA-256 over the snapshot, with domain separation
//
// Ordering uses seq, never timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Attach connects a memdoc.Doc to the cache as a provider.Provider.
package store
