package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/store"
	"github.com/roach88/docproxy/internal/testutil"
	"github.com/roach88/docproxy/internal/textsync"
	"github.com/roach88/docproxy/internal/value"
)

// Harness executes one scenario against a fresh document persisted to an
// in-memory store.
type Harness struct {
	store  *store.Store
	doc    *memdoc.Doc
	codec  codec.Codec
	logger *slog.Logger

	mu      sync.Mutex
	commits []memdoc.Commit // delivered but not yet traced
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. The document GUID is
// fixed so commit records are reproducible.
//
// Execution flow:
//  1. Seed the cache with the setup roots
//  2. Open the document from the cache
//  3. Apply flow steps, tracing each operation and the commits it caused
//  4. Close the session so every commit is persisted
//  5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	c := codec.Default
	if scenario.Codec != "" {
		if c, err = codec.ByName(scenario.Codec); err != nil {
			return nil, err
		}
	}

	roots, err := scenario.setupRoots()
	if err != nil {
		return nil, err
	}
	name := scenario.documentName()
	if len(roots) > 0 {
		if err := st.SaveSnapshot(ctx, name, scenario.session(), roots); err != nil {
			return nil, fmt.Errorf("failed to seed cache: %w", err)
		}
	}

	doc := memdoc.New(memdoc.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.session())))
	defer doc.Close()

	local, err := store.Attach(ctx, doc, st, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer local.Close()

	h := &Harness{
		store:  st,
		doc:    doc,
		codec:  c,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	hook := doc.OnCommit(h.recordCommit)
	defer hook.Unsubscribe()

	result := NewResult()
	for i, step := range scenario.Flow {
		h.executeStep(i, step, result)
	}

	if err := local.Close(); err != nil {
		return nil, fmt.Errorf("failed to close document: %w", err)
	}
	result.Final = store.Capture(doc)

	actx := &AssertionContext{
		Store:    st,
		Doc:      doc,
		Document: name,
		Ctx:      ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) recordCommit(c memdoc.Commit) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commits = append(h.commits, c)
}

// executeStep applies one step, then traces it and the commits it caused.
func (h *Harness) executeStep(i int, step Step, result *Result) {
	got, err := h.apply(step)

	outcome := OutcomeOK
	if err != nil {
		if outcome = docops.Code(err); outcome == "" {
			outcome = "ERROR"
		}
	}
	result.AddOpTrace(step.Op, step.Path, outcome, got)

	h.doc.Flush()
	h.mu.Lock()
	for _, c := range h.commits {
		result.AddCommitTrace(c.Seq, c.Changes)
	}
	h.commits = nil
	h.mu.Unlock()

	h.logger.Info("flow step completed",
		"step", i,
		"op", step.Op,
		"path", step.Path,
		"outcome", outcome,
	)

	if msg := checkExpect(i, step, outcome, got, err); msg != "" {
		result.AddError(msg)
	}
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(i int, step Step, outcome string, got value.Value, err error) string {
	want := OutcomeOK
	if step.Expect != nil && step.Expect.Error != "" {
		want = step.Expect.Error
	}
	if outcome != want {
		if err != nil {
			return fmt.Sprintf("flow[%d] %s %s: expected %s, got %s: %v", i, step.Op, step.Path, want, outcome, err)
		}
		return fmt.Sprintf("flow[%d] %s %s: expected %s, got %s", i, step.Op, step.Path, want, outcome)
	}

	if step.Expect == nil || step.Expect.Result == nil {
		return ""
	}
	expected, convErr := value.FromAny(step.Expect.Result)
	if convErr != nil {
		return fmt.Sprintf("flow[%d].expect.result: %v", i, convErr)
	}
	if !value.Equal(expected, got) {
		return fmt.Sprintf("flow[%d] %s %s: expected result %s, got %s",
			i, step.Op, step.Path, canonicalString(expected), canonicalString(got))
	}
	return ""
}

// apply runs the step's operation and returns its result value, if any.
func (h *Harness) apply(step Step) (value.Value, error) {
	switch step.Op {
	case OpSet:
		v, err := value.FromAny(step.Value)
		if err != nil {
			return nil, err
		}
		return nil, docops.Assign(h.doc, step.Path, v)

	case OpDelete:
		return nil, docops.Assign(h.doc, step.Path, nil)

	case OpGet:
		return docops.Get(h.doc, step.Path)

	case OpSplice:
		seq, err := docops.Sequence(h.doc, step.Path)
		if err != nil {
			return nil, err
		}
		items, err := plainItems(step.Items)
		if err != nil {
			return nil, err
		}
		removed, err := seq.SpliceAt(step.Start, step.Delete, items...)
		if err != nil {
			return nil, err
		}
		return value.Sequence(removed), nil

	case OpAppend:
		seq, err := docops.Sequence(h.doc, step.Path)
		if err != nil {
			return nil, err
		}
		items, err := plainItems(step.Items)
		if err != nil {
			return nil, err
		}
		return nil, seq.Append(items...)

	case OpWrite:
		v, err := value.FromAny(step.Value)
		if err != nil {
			return nil, err
		}
		ts, err := h.attachText(step, true)
		if err != nil {
			return nil, err
		}
		defer ts.Close()
		written, err := ts.Set(v)
		if err != nil {
			return nil, err
		}
		return value.Bool(written), nil

	case OpRead:
		ts, err := h.attachText(step, false)
		if err != nil {
			return nil, err
		}
		defer ts.Close()
		if err := ts.Err(); err != nil {
			return nil, err
		}
		return ts.Value(), nil
	}

	return nil, fmt.Errorf("unknown op %q", step.Op)
}

// attachText binds the text at the step's path to the step's codec. Text
// inside a box must already exist. A text that does not decode yet is still
// attached so it can be overwritten.
func (h *Harness) attachText(step Step, create bool) (*textsync.Sync, error) {
	c := h.codec
	if step.Codec != "" {
		var err error
		if c, err = codec.ByName(step.Codec); err != nil {
			return nil, err
		}
	}

	p, err := docpath.Parse(step.Path)
	if err != nil {
		return nil, err
	}
	create = create && p.BoxIndex() < 0

	text, err := docops.ResolveText(h.doc, step.Path, create)
	if err != nil {
		return nil, err
	}
	ts, err := textsync.Attach(h.doc, text, c)
	if err != nil {
		h.logger.Debug("existing text not decoded", "path", step.Path, "err", err)
	}
	return ts, nil
}

func plainItems(raw []any) ([]any, error) {
	items := make([]any, len(raw))
	for i, x := range raw {
		v, err := value.FromAny(x)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items[i] = v
	}
	return items, nil
}

func canonicalString(v value.Value) string {
	if v == nil {
		return "(none)"
	}
	b, err := value.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
