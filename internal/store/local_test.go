package store

import (
	"context"
	"testing"

	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/provider"
	"github.com/roach88/docproxy/internal/value"
)

func TestAttachPersistsAndRestores(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc := createTestDoc(t)
	local, err := Attach(ctx, doc, s, "srv::cfg")
	if err != nil {
		t.Fatalf("Attach() failed: %v", err)
	}
	if err := provider.WaitSynced(ctx, local); err != nil {
		t.Fatalf("WaitSynced() failed: %v", err)
	}

	cfg := doc.GetMap("config")
	err = doc.Transact(func() error {
		cfg.Set("port", node.Number(8080))
		cfg.Set("name", doc.NewText("api"))
		return nil
	})
	if err != nil {
		t.Fatalf("Transact() failed: %v", err)
	}
	doc.GetText("notes").Insert(0, "hi")

	if err := local.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	commits, err := s.Commits(ctx, "srv::cfg")
	if err != nil {
		t.Fatalf("Commits() failed: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("len(commits) = %d, want 2", len(commits))
	}
	if commits[0].Changes != 2 || commits[0].Session != doc.GUID() {
		t.Errorf("commits[0] = %+v, want 2 changes from %s", commits[0], doc.GUID())
	}

	// A fresh document picks the state up from the cache.
	other := createTestDoc(t)
	reloaded, err := Attach(ctx, other, s, "srv::cfg")
	if err != nil {
		t.Fatalf("second Attach() failed: %v", err)
	}
	defer reloaded.Close()

	want := value.T(
		value.P("config", value.T(
			value.P("name", value.String("api")),
			value.P("port", value.Number(8080)),
		)),
		value.P("notes", value.String("hi")),
	)
	if got := Capture(other); !value.Equal(got, want) {
		t.Errorf("restored roots = %v, want %v", got, want)
	}

	// Restoring is not a commit of its own.
	other.Flush()
	commits, _ = s.Commits(ctx, "srv::cfg")
	if len(commits) != 2 {
		t.Errorf("len(commits) after reload = %d, want 2", len(commits))
	}
}

func TestAttachEmptyCache(t *testing.T) {
	s := createTestStore(t)
	doc := createTestDoc(t)

	local, err := Attach(context.Background(), doc, s, "empty")
	if err != nil {
		t.Fatalf("Attach() failed: %v", err)
	}
	defer local.Close()

	if got := local.Current(); got != provider.StatusConnected {
		t.Errorf("status = %v, want connected", got)
	}
	if len(doc.Roots()) != 0 {
		t.Errorf("roots = %v, want none", doc.Roots())
	}
	if local.Name() != "empty" {
		t.Errorf("Name() = %q", local.Name())
	}
}

func TestAttachRootKindConflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.SaveSnapshot(ctx, "doc", "g", value.T(value.P("notes", value.String("x")))); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	doc := createTestDoc(t)
	doc.GetMap("notes")

	if _, err := Attach(ctx, doc, s, "doc"); err == nil {
		t.Fatal("Attach() succeeded over a root of another kind")
	}
}

func TestRestoreReplacesContents(t *testing.T) {
	doc := createTestDoc(t)
	doc.GetMap("config").Set("stale", node.Number(1))
	doc.GetSequence("list").Insert(0, node.Number(9))
	doc.GetText("notes").Insert(0, "old")

	roots := value.T(
		value.P("config", value.T(value.P("fresh", value.Number(2)))),
		value.P("list", value.S(value.Number(1), value.Number(2))),
		value.P("notes", value.String("new")),
	)

	var commits []memdoc.Commit
	doc.Flush()
	sub := doc.OnCommit(func(c memdoc.Commit) { commits = append(commits, c) })
	defer sub.Unsubscribe()

	if err := Restore(doc, roots); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	doc.Flush()

	if got := Capture(doc); !value.Equal(got, roots) {
		t.Errorf("Capture() = %v, want %v", got, roots)
	}
	if len(commits) != 1 {
		t.Errorf("commits = %d, want 1", len(commits))
	}
}

func TestRestoreRejectsNumberRoot(t *testing.T) {
	doc := createTestDoc(t)

	err := Restore(doc, value.T(value.P("n", value.Number(1))))
	if err == nil {
		t.Fatal("Restore() accepted a number root")
	}
	if len(doc.Roots()) != 0 {
		t.Errorf("roots = %v, want none after a failed restore", doc.Roots())
	}
}
