package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/store"
	"github.com/roach88/docproxy/internal/value"
)

func sampleTrace() []TraceEvent {
	r := NewResult()
	r.AddOpTrace(OpSet, "config/port", OutcomeOK, nil)
	r.AddCommitTrace(1, 1)
	r.AddOpTrace(OpGet, "config/port", OutcomeOK, value.Number(9090))
	r.AddOpTrace(OpGet, "config/host", "NOT_FOUND", nil)
	r.AddOpTrace(OpAppend, "todo", OutcomeOK, nil)
	r.AddCommitTrace(2, 1)
	return r.Trace
}

func TestResult_OpSeqSkipsCommits(t *testing.T) {
	trace := sampleTrace()
	assert.Equal(t, int64(1), trace[0].Seq)
	assert.Equal(t, int64(2), trace[2].Seq)
	assert.Equal(t, int64(3), trace[3].Seq)
	assert.Equal(t, int64(4), trace[4].Seq)
	assert.Equal(t, int64(2), trace[5].Seq)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Op: OpGet}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Op: OpGet, Path: "config/host"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Op: OpGet, Outcome: "NOT_FOUND"}))

	err := assertTraceContains(trace, Assertion{Op: OpGet, Path: "config/port", Outcome: "NOT_FOUND"})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "op get on config/port with outcome NOT_FOUND")
	assert.Contains(t, err.Error(), "[3] get config/host -> NOT_FOUND")

	assert.Error(t, assertTraceContains(trace, Assertion{Op: OpDelete}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{OpSet, OpGet, OpAppend}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{OpSet, OpAppend}}))

	err := assertTraceOrder(trace, Assertion{Ops: []string{OpAppend, OpSet}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append (pos 4) should be before set (pos 1)")

	err = assertTraceOrder(trace, Assertion{Ops: []string{OpSet, OpSplice}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing op: splice")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpGet, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: EventCommit, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpDelete, Count: 0}))

	err := assertTraceCount(trace, Assertion{Op: OpSet, Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 occurrences of set")
	assert.Contains(t, err.Error(), "Actual: 1 occurrences")
}

func TestAssertFinalValue(t *testing.T) {
	doc := memdoc.New()
	t.Cleanup(doc.Close)
	require.NoError(t, docops.Assign(doc, "config/port", value.Number(9090)))

	assert.NoError(t, assertFinalValue(doc, Assertion{Path: "config/port", Value: 9090}))
	assert.NoError(t, assertFinalValue(doc, Assertion{Path: "config", Value: map[string]any{"port": 9090}}))
	assert.NoError(t, assertFinalValue(doc, Assertion{Path: "config/host", Outcome: "NOT_FOUND"}))
	assert.NoError(t, assertFinalValue(doc, Assertion{Path: "config/port", Outcome: OutcomeOK}))

	err := assertFinalValue(doc, Assertion{Path: "config/port", Value: 8080})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config/port = 8080")
	assert.Contains(t, err.Error(), "config/port = 9090")

	err = assertFinalValue(doc, Assertion{Path: "config/port", Outcome: "NOT_FOUND"})
	require.Error(t, err)

	err = assertFinalValue(doc, Assertion{Path: "missing/x", Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestAssertCommitCount(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	roots := value.T(value.P("config", value.T(value.P("port", value.Number(1)))))
	_, err = st.AppendCommit(ctx, "notes", "s", 1, 1, roots)
	require.NoError(t, err)

	assert.NoError(t, assertCommitCount(ctx, st, "notes", Assertion{Count: 1}))
	assert.NoError(t, assertCommitCount(ctx, st, "other", Assertion{Count: 0}))

	err = assertCommitCount(ctx, st, "notes", Assertion{Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 persisted commits")
}

func TestEvaluateAssertions_MissingContext(t *testing.T) {
	result := NewResult()
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertFinalValue, Path: "config"},
		{Type: AssertCommitCount},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "final_value requires a document")
	assert.Contains(t, errs[1], "commit_count requires database context")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}
