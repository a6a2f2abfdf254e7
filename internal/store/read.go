package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LoadSnapshot returns the stored state of name. ok is false when the
// document has never been saved.
func (s *Store) LoadSnapshot(ctx context.Context, name string) (snap Snapshot, ok bool, err error) {
	var text string
	err = s.db.QueryRowContext(ctx, `
		SELECT name, guid, snapshot, hash, seq
		FROM documents
		WHERE name = ?
	`, name).Scan(&snap.Name, &snap.GUID, &text, &snap.Hash, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	snap.Roots, err = unmarshalSnapshot(text)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return snap, true, nil
}

// Commits returns the commit log of name in log order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Commits(ctx context.Context, name string) ([]CommitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document, seq, session, doc_seq, changes, hash
		FROM commits
		WHERE document = ?
		ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query commits: %w", err)
	}
	defer rows.Close()

	commits := []CommitRecord{}
	for rows.Next() {
		var c CommitRecord
		if err := rows.Scan(&c.Document, &c.Seq, &c.Session, &c.DocSeq, &c.Changes, &c.Hash); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commits: %w", err)
	}
	return commits, nil
}

// Documents returns the names of all stored documents, sorted.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM documents ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return names, nil
}
