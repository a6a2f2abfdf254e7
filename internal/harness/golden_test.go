package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docproxy/internal/value"
)

func goldenScenario() *Scenario {
	return &Scenario{
		Name:        "golden_config",
		Description: "Trace and final content of a short session",
		Setup:       map[string]any{"config": map[string]any{"port": 8080}},
		Flow: []Step{
			{Op: OpSet, Path: "config/port", Value: 9090},
			{Op: OpGet, Path: "config/port", Expect: &Expect{Result: 9090}},
			{Op: OpAppend, Path: "todo", Items: []any{"milk"}},
		},
		Assertions: []Assertion{{Type: AssertCommitCount, Count: 2}},
	}
}

func TestRunWithGolden(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden -update
	require.NoError(t, RunWithGolden(t, goldenScenario()))
}

func TestTraceSnapshot_Deterministic(t *testing.T) {
	first, err := Run(goldenScenario())
	require.NoError(t, err)
	require.True(t, first.Pass, "errors: %v", first.Errors)
	second, err := Run(goldenScenario())
	require.NoError(t, err)

	a, err := NewTraceSnapshot("golden_config", first).Canonical()
	require.NoError(t, err)
	b, err := NewTraceSnapshot("golden_config", second).Canonical()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestTraceSnapshot_OmitsEmptyFields(t *testing.T) {
	r := NewResult()
	r.AddOpTrace(OpDelete, "config/host", OutcomeOK, nil)
	r.AddCommitTrace(4, 2)

	data, err := NewTraceSnapshot("omit", r).Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"omit","trace":[{"op":"delete","outcome":"ok","path":"config/host","seq":1,"type":"op"},{"changes":2,"seq":4,"type":"commit"}]}`,
		string(data))

	r.Final = value.T(value.P("notes", value.String("hi")))
	data, err = NewTraceSnapshot("omit", r).Canonical()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"final":{"notes":"hi"}`)
}
