package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/docproxy/internal/docops"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/store"
	"github.com/roach88/docproxy/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			if event.Type == EventOp {
				fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Op, event.Path, event.Outcome)
			}
		}
	}

	return buf.String()
}

// assertTraceContains checks that some operation matches the assertion's
// op and, when given, its path and outcome.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type != EventOp || event.Op != assertion.Op {
			continue
		}
		if assertion.Path != "" && event.Path != assertion.Path {
			continue
		}
		if assertion.Outcome != "" && event.Outcome != assertion.Outcome {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeOp(assertion),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func describeOp(a Assertion) string {
	desc := "op " + a.Op
	if a.Path != "" {
		desc += " on " + a.Path
	}
	if a.Outcome != "" {
		desc += " with outcome " + a.Outcome
	}
	return desc
}

// assertTraceOrder checks that the first occurrences of the listed ops
// appear in order. Other operations may come between them.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for _, event := range trace {
		if event.Type == EventOp && positions[event.Op] == 0 {
			positions[event.Op] = int(event.Seq)
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev := assertion.Ops[i-1]
		curr := assertion.Ops[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the op appears exactly Count times.
// The op "commit" counts commit events.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		switch {
		case assertion.Op == EventCommit && event.Type == EventCommit:
			count++
		case event.Type == EventOp && event.Op == assertion.Op:
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalValue reads Path from the document after the flow. With an
// Outcome the read must fail with that code; otherwise it must return Value.
func assertFinalValue(doc *memdoc.Doc, assertion Assertion) error {
	got, err := docops.Get(doc, assertion.Path)

	if assertion.Outcome != "" {
		code := docops.Code(err)
		if err == nil {
			code = OutcomeOK
		}
		if code != assertion.Outcome {
			return &AssertionError{
				Type:     AssertFinalValue,
				Expected: fmt.Sprintf("reading %s fails with %s", assertion.Path, assertion.Outcome),
				Actual:   code,
			}
		}
		return nil
	}

	if err != nil {
		return &AssertionError{
			Type:     AssertFinalValue,
			Expected: fmt.Sprintf("value at %s", assertion.Path),
			Actual:   err.Error(),
		}
	}

	want, err := value.FromAny(assertion.Value)
	if err != nil {
		return fmt.Errorf("final_value %s: %w", assertion.Path, err)
	}
	if !value.Equal(want, got) {
		return &AssertionError{
			Type:     AssertFinalValue,
			Expected: fmt.Sprintf("%s = %s", assertion.Path, canonicalString(want)),
			Actual:   fmt.Sprintf("%s = %s", assertion.Path, canonicalString(got)),
		}
	}
	return nil
}

// assertCommitCount checks the number of commits persisted for the
// scenario's document.
func assertCommitCount(ctx context.Context, st *store.Store, name string, assertion Assertion) error {
	records, err := st.Commits(ctx, name)
	if err != nil {
		return &AssertionError{
			Type:     AssertCommitCount,
			Expected: fmt.Sprintf("commit log of %s", name),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	if len(records) != assertion.Count {
		return &AssertionError{
			Type:     AssertCommitCount,
			Expected: fmt.Sprintf("%d persisted commits", assertion.Count),
			Actual:   fmt.Sprintf("%d persisted commits", len(records)),
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store    *store.Store
	Doc      *memdoc.Doc
	Document string // cache key of Doc
	Ctx      context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// final_value needs actx.Doc; commit_count needs actx.Store.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalValue:
			if actx == nil || actx.Doc == nil {
				err = fmt.Errorf("assertion[%d]: final_value requires a document", i)
			} else {
				err = assertFinalValue(actx.Doc, assertion)
			}
		case AssertCommitCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: commit_count requires database context", i)
			} else {
				err = assertCommitCount(actx.Ctx, actx.Store, actx.Document, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
