package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/docproxy/internal/value"
)

// TraceSnapshot is the golden form of a scenario execution: its trace and
// the final document content.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Final        value.Table  `json:"final,omitempty"`
}

// NewTraceSnapshot builds the snapshot of result under name.
func NewTraceSnapshot(name string, result *Result) *TraceSnapshot {
	return &TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Final:        result.Final,
	}
}

// Canonical returns the snapshot as canonical JSON. Two executions with the
// same trace and final content produce identical bytes.
func (s *TraceSnapshot) Canonical() ([]byte, error) {
	return value.MarshalCanonical(s.toValue())
}

// toValue converts the snapshot to a plain value, leaving out empty fields.
func (s *TraceSnapshot) toValue() value.Table {
	trace := make(value.Sequence, len(s.Trace))
	for i, event := range s.Trace {
		t := value.Table{
			"type": value.String(event.Type),
			"seq":  value.Number(event.Seq),
		}
		if event.Op != "" {
			t["op"] = value.String(event.Op)
		}
		if event.Path != "" {
			t["path"] = value.String(event.Path)
		}
		if event.Outcome != "" {
			t["outcome"] = value.String(event.Outcome)
		}
		if event.Result != nil {
			t["result"] = event.Result
		}
		if event.Changes != 0 {
			t["changes"] = value.Number(event.Changes)
		}
		trace[i] = t
	}

	out := value.Table{
		"scenario_name": value.String(s.ScenarioName),
		"trace":         trace,
	}
	if s.Final != nil {
		out["final"] = s.Final
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against the golden file
// named scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewTraceSnapshot(scenarioName, result).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
