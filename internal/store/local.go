package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/provider"
)

// Local is a provider backed by the store: it loads the cached snapshot
// into a document and persists every later commit.
type Local struct {
	*provider.Notifier

	doc  *memdoc.Doc
	st   *Store
	name string

	hook      node.Subscription
	closeOnce sync.Once
}

var _ provider.Provider = (*Local)(nil)

// Attach loads the snapshot stored under name, if any, into doc and starts
// persisting doc's commits. Synced is closed before Attach returns.
func Attach(ctx context.Context, doc *memdoc.Doc, st *Store, name string) (*Local, error) {
	l := &Local{
		Notifier: provider.NewNotifier(4),
		doc:      doc,
		st:       st,
		name:     name,
	}
	l.SetStatus(provider.StatusConnecting)

	snap, ok, err := st.LoadSnapshot(ctx, name)
	if err != nil {
		l.Notifier.Close()
		return nil, err
	}
	if ok {
		if err := Restore(doc, snap.Roots); err != nil {
			l.Notifier.Close()
			return nil, fmt.Errorf("attach %q: %w", name, err)
		}
		slog.Debug("cache loaded", "doc", name, "seq", snap.Seq, "hash", snap.Hash)
	}

	// Registered after the restore so loading is not logged as a commit.
	l.hook = doc.OnCommit(l.persist)

	l.MarkSynced()
	l.SetStatus(provider.StatusConnected)
	return l, nil
}

// Name returns the cache key.
func (l *Local) Name() string {
	return l.name
}

func (l *Local) persist(c memdoc.Commit) {
	rec, err := l.st.AppendCommit(context.Background(), l.name, l.doc.GUID(), c.Seq, c.Changes, Capture(l.doc))
	if err != nil {
		slog.Error("persist commit failed", "doc", l.name, "seq", c.Seq, "err", err)
		return
	}
	slog.Debug("commit persisted", "doc", l.name, "seq", rec.Seq, "changes", rec.Changes)
}

// Close waits for pending commits to be persisted and stops persisting.
// Must not be called from an observer. Safe to call more than once.
func (l *Local) Close() error {
	l.closeOnce.Do(func() {
		l.doc.Flush()
		l.hook.Unsubscribe()
		l.SetStatus(provider.StatusDisconnected)
		l.Notifier.Close()
	})
	return nil
}
