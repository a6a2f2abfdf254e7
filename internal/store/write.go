package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/docproxy/internal/value"
)

// Snapshot is the stored state of one document.
type Snapshot struct {
	Name string
	// GUID identifies the document instance that wrote the snapshot.
	GUID  string
	Roots value.Table
	Hash  string
	// Seq is the number of commits logged for the document.
	Seq int64
}

// CommitRecord is one entry of a document's commit log.
type CommitRecord struct {
	Document string `json:"document"`
	// Seq is the position in the log, starting at 1. It never restarts.
	Seq int64 `json:"seq"`
	// Session is the GUID of the document instance that made the commit.
	Session string `json:"session"`
	// DocSeq is the commit's sequence number within its session.
	DocSeq  int64 `json:"doc_seq"`
	Changes int   `json:"changes"`
	// Hash is the hash of the snapshot taken after the commit.
	Hash string `json:"hash"`
}

// SaveSnapshot stores roots as the state of name without logging a commit.
// The log position is kept.
func (s *Store) SaveSnapshot(ctx context.Context, name, guid string, roots value.Table) error {
	text, hash, err := marshalSnapshot(roots)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, guid, snapshot, hash, seq)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(name) DO UPDATE SET
			guid = excluded.guid,
			snapshot = excluded.snapshot,
			hash = excluded.hash
	`, name, guid, text, hash)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// AppendCommit stores roots as the state of name and appends a commit to its
// log, in one database transaction.
func (s *Store) AppendCommit(ctx context.Context, name, session string, docSeq int64, changes int, roots value.Table) (CommitRecord, error) {
	text, hash, err := marshalSnapshot(roots)
	if err != nil {
		return CommitRecord{}, fmt.Errorf("append commit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CommitRecord{}, fmt.Errorf("append commit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM documents WHERE name = ?`, name).Scan(&seq)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return CommitRecord{}, fmt.Errorf("append commit: read seq: %w", err)
	}
	seq++

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (name, guid, snapshot, hash, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			guid = excluded.guid,
			snapshot = excluded.snapshot,
			hash = excluded.hash,
			seq = excluded.seq
	`, name, session, text, hash, seq)
	if err != nil {
		return CommitRecord{}, fmt.Errorf("append commit: write snapshot: %w", err)
	}

	rec := CommitRecord{
		Document: name,
		Seq:      seq,
		Session:  session,
		DocSeq:   docSeq,
		Changes:  changes,
		Hash:     hash,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO commits (document, seq, session, doc_seq, changes, hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Document, rec.Seq, rec.Session, rec.DocSeq, rec.Changes, rec.Hash)
	if err != nil {
		return CommitRecord{}, fmt.Errorf("append commit: write log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CommitRecord{}, fmt.Errorf("append commit: commit tx: %w", err)
	}
	return rec, nil
}

// DeleteDocument removes a document and its log. Deleting a missing
// document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
