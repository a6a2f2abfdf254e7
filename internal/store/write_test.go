package store

import (
	"context"
	"testing"

	"github.com/roach88/docproxy/internal/value"
)

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	roots := value.T(
		value.P("config", value.T(value.P("port", value.Number(8080)))),
		value.P("list", value.S(value.String("a"), value.Number(1))),
		value.P("notes", value.String("hello")),
	)
	if err := s.SaveSnapshot(ctx, "srv::doc", "guid-1", roots); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	snap, ok, err := s.LoadSnapshot(ctx, "srv::doc")
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if !ok {
		t.Fatal("LoadSnapshot() ok = false, want true")
	}
	if snap.GUID != "guid-1" || snap.Seq != 0 {
		t.Errorf("snapshot = %+v, want guid-1 at seq 0", snap)
	}
	if !value.Equal(snap.Roots, roots) {
		t.Errorf("roots = %v, want %v", snap.Roots, roots)
	}
	if len(snap.Hash) != 64 {
		t.Errorf("hash %q is not hex SHA-256", snap.Hash)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.LoadSnapshot(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if ok {
		t.Error("LoadSnapshot() ok = true for a missing document")
	}
}

func TestAppendCommitAdvancesSeqAcrossSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roots := value.T(value.P("notes", value.String("x")))

	for i, session := range []string{"a", "a", "b"} {
		rec, err := s.AppendCommit(ctx, "doc", session, int64(i+1), 1, roots)
		if err != nil {
			t.Fatalf("AppendCommit(%d) failed: %v", i, err)
		}
		if rec.Seq != int64(i+1) {
			t.Errorf("commit %d seq = %d, want %d", i, rec.Seq, i+1)
		}
	}

	commits, err := s.Commits(ctx, "doc")
	if err != nil {
		t.Fatalf("Commits() failed: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("len(commits) = %d, want 3", len(commits))
	}
	for i, c := range commits {
		if c.Seq != int64(i+1) {
			t.Errorf("commits[%d].Seq = %d, want %d", i, c.Seq, i+1)
		}
	}
	if commits[2].Session != "b" {
		t.Errorf("commits[2].Session = %q, want b", commits[2].Session)
	}

	snap, _, err := s.LoadSnapshot(ctx, "doc")
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if snap.Seq != 3 || snap.GUID != "b" {
		t.Errorf("snapshot seq/guid = %d/%q, want 3/b", snap.Seq, snap.GUID)
	}
}

func TestSaveSnapshotKeepsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roots := value.T(value.P("notes", value.String("x")))

	if _, err := s.AppendCommit(ctx, "doc", "a", 1, 1, roots); err != nil {
		t.Fatalf("AppendCommit() failed: %v", err)
	}
	if err := s.SaveSnapshot(ctx, "doc", "a", value.T(value.P("notes", value.String("y")))); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	snap, _, _ := s.LoadSnapshot(ctx, "doc")
	if snap.Seq != 1 {
		t.Errorf("seq = %d, want 1", snap.Seq)
	}
	if !value.Equal(snap.Roots["notes"], value.String("y")) {
		t.Errorf("notes = %v, want y", snap.Roots["notes"])
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a := value.T(value.P("b", value.Number(1)), value.P("a", value.String("x")))
	b := value.T(value.P("a", value.String("x")), value.P("b", value.Number(1)))

	_, ha, err := marshalSnapshot(a)
	if err != nil {
		t.Fatalf("marshalSnapshot() failed: %v", err)
	}
	_, hb, _ := marshalSnapshot(b)
	if ha != hb {
		t.Errorf("hashes differ for equal tables: %s vs %s", ha, hb)
	}

	_, hc, _ := marshalSnapshot(value.T(value.P("a", value.String("y"))))
	if ha == hc {
		t.Error("hashes equal for different tables")
	}
}

func TestDocumentsAndDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roots := value.Table{}

	for _, name := range []string{"b", "a"} {
		if _, err := s.AppendCommit(ctx, name, "s", 1, 1, roots); err != nil {
			t.Fatalf("AppendCommit(%s) failed: %v", name, err)
		}
	}

	names, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Documents() = %v, want [a b]", names)
	}

	if err := s.DeleteDocument(ctx, "a"); err != nil {
		t.Fatalf("DeleteDocument() failed: %v", err)
	}
	if err := s.DeleteDocument(ctx, "a"); err != nil {
		t.Errorf("second DeleteDocument() = %v, want nil", err)
	}

	commits, err := s.Commits(ctx, "a")
	if err != nil {
		t.Fatalf("Commits() failed: %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("commits of deleted document = %d, want 0", len(commits))
	}
	if commits == nil {
		t.Error("Commits() returned nil, want empty slice")
	}
}
