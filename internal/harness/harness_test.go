package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docproxy/internal/value"
)

func opEvents(trace []TraceEvent) []TraceEvent {
	var out []TraceEvent
	for _, ev := range trace {
		if ev.Type == EventOp {
			out = append(out, ev)
		}
	}
	return out
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Flow: []Step{
			{Op: OpSet, Path: "config/port", Value: 8080},
		},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Op: OpSet},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	// One operation and the commit it produced.
	require.Len(t, result.Trace, 2)
	assert.Equal(t, TraceEvent{Type: EventOp, Seq: 1, Op: OpSet, Path: "config/port", Outcome: OutcomeOK}, result.Trace[0])
	assert.Equal(t, EventCommit, result.Trace[1].Type)
	assert.Equal(t, int64(1), result.Trace[1].Seq)
	assert.Equal(t, 1, result.Trace[1].Changes)
}

func TestRun_SetupIsNotTraced(t *testing.T) {
	scenario := &Scenario{
		Name:        "setup",
		Description: "Setup roots are loaded from the cache",
		Setup: map[string]any{
			"config": map[string]any{"port": 8080},
			"todo":   []any{"milk"},
			"notes":  "hello",
		},
		Flow: []Step{
			{Op: OpGet, Path: "config/port", Expect: &Expect{Result: 8080}},
			{Op: OpGet, Path: "todo", Expect: &Expect{Result: []any{"milk"}}},
			{Op: OpGet, Path: "notes", Expect: &Expect{Result: "hello"}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Op: EventCommit, Count: 0},
			{Type: AssertCommitCount, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 3)
	assert.True(t, value.Equal(value.String("hello"), result.Final["notes"]))
}

func TestRun_CommitSeqFollowsSetup(t *testing.T) {
	scenario := &Scenario{
		Name:        "seq",
		Description: "Loading the cache is the document's first commit",
		Setup:       map[string]any{"config": map[string]any{"port": 1}},
		Flow: []Step{
			{Op: OpSet, Path: "config/port", Value: 2},
			{Op: OpSet, Path: "config/port", Value: 3},
		},
		Assertions: []Assertion{{Type: AssertCommitCount, Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	var seqs []int64
	for _, ev := range result.Trace {
		if ev.Type == EventCommit {
			seqs = append(seqs, ev.Seq)
		}
	}
	assert.Equal(t, []int64{2, 3}, seqs)
}

func TestRun_ErrorOutcome(t *testing.T) {
	scenario := &Scenario{
		Name:        "errors",
		Description: "Failed operations record their code",
		Flow: []Step{
			{Op: OpGet, Path: "config/port", Expect: &Expect{Error: "NOT_FOUND"}},
			{Op: OpSplice, Path: "todo", Start: 4, Expect: &Expect{Error: "OUT_OF_RANGE"}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Op: OpGet, Outcome: "NOT_FOUND"},
			{Type: AssertCommitCount, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	ops := opEvents(result.Trace)
	require.Len(t, ops, 2)
	assert.Equal(t, "NOT_FOUND", ops[0].Outcome)
	assert.Equal(t, "OUT_OF_RANGE", ops[1].Outcome)
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "An operation that fails without an expect clause fails the scenario",
		Flow: []Step{
			{Op: OpGet, Path: "config"},
		},
		Assertions: []Assertion{{Type: AssertCommitCount}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flow[0] get config: expected ok, got NOT_FOUND")
}

func TestRun_ResultMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Results are compared by value",
		Setup:       map[string]any{"config": map[string]any{"port": 8080}},
		Flow: []Step{
			{Op: OpGet, Path: "config/port", Expect: &Expect{Result: 9090}},
		},
		Assertions: []Assertion{{Type: AssertCommitCount}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected result 9090, got 8080")
}

func TestRun_WriteAndRead(t *testing.T) {
	scenario := &Scenario{
		Name:        "text",
		Description: "Texts hold encoded values",
		Codec:       "json",
		Flow: []Step{
			{Op: OpWrite, Path: "files/a", Value: map[string]any{"x": 1}, Expect: &Expect{Result: true}},
			{Op: OpWrite, Path: "files/a", Value: map[string]any{"x": 1}, Expect: &Expect{Result: false}},
			{Op: OpRead, Path: "files/a", Expect: &Expect{Result: map[string]any{"x": 1}}},
			{Op: OpRead, Path: "files/a", Codec: "cue", Expect: &Expect{Result: map[string]any{"x": 1}}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Op: OpWrite, Count: 2},
			{Type: AssertTraceOrder, Ops: []string{OpWrite, OpRead}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ScenarioFiles(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_InvalidSetup(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "A root must be a table, sequence or string",
		Setup:       map[string]any{"port": 8080},
		Flow:        []Step{{Op: OpGet, Path: "port"}},
		Assertions:  []Assertion{{Type: AssertCommitCount}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
}
