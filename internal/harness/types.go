package harness

import (
	"github.com/roach88/docproxy/internal/value"
)

// Trace event types.
const (
	EventOp     = "op"
	EventCommit = "commit"
)

// OutcomeOK is the outcome of an operation that returned no error. Failed
// operations record the error's code instead.
const OutcomeOK = "ok"

// TraceEvent is one entry of a scenario trace: an operation applied to the
// document, or a commit the document produced.
type TraceEvent struct {
	Type string `json:"type"` // "op" or "commit"

	// Seq numbers operations from 1 in flow order. For commits it is the
	// document's commit sequence number.
	Seq int64 `json:"seq"`

	Op      string      `json:"op,omitempty"`
	Path    string      `json:"path,omitempty"`
	Outcome string      `json:"outcome,omitempty"`
	Result  value.Value `json:"result,omitempty"`

	// Changes counts the primitive edits of a commit.
	Changes int `json:"changes,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds operations and commits in the order they happened.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Final is the document content after the flow, one entry per root.
	Final value.Table `json:"final,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOpTrace appends an operation event numbered after the previous ones.
func (r *Result) AddOpTrace(op, path, outcome string, result value.Value) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventOp,
		Seq:     int64(r.countOps() + 1),
		Op:      op,
		Path:    path,
		Outcome: outcome,
		Result:  result,
	})
}

// AddCommitTrace appends a commit event.
func (r *Result) AddCommitTrace(seq int64, changes int) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventCommit,
		Seq:     seq,
		Changes: changes,
	})
}

func (r *Result) countOps() int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Type == EventOp {
			n++
		}
	}
	return n
}
