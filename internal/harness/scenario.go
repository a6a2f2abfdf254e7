package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/value"
)

// Scenario is a scripted document session: roots loaded from the cache, a
// flow of path-addressed operations, and assertions on the resulting trace,
// document and commit log.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the cache key the session persists under. Defaults to
	// the scenario name.
	Document string `yaml:"document,omitempty"`

	// Session fixes the document GUID recorded with each commit. Defaults
	// to "scenario".
	Session string `yaml:"session,omitempty"`

	// Codec is the default codec of write and read steps. Defaults to
	// codec.Default.
	Codec string `yaml:"codec,omitempty"`

	// Setup holds the roots present in the cache before the session opens.
	// Loading them is not traced and does not append to the commit log.
	Setup map[string]any `yaml:"setup,omitempty"`

	// Flow is applied in order. Each step may carry an expect clause.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace, document and commit log.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation of a scenario flow.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Path addresses the node the operation applies to.
	Path string `yaml:"path"`

	// Value is assigned by set and encoded by write.
	Value any `yaml:"value,omitempty"`

	// Start and Delete position a splice.
	Start  int `yaml:"start,omitempty"`
	Delete int `yaml:"delete,omitempty"`

	// Items are inserted by splice and append.
	Items []any `yaml:"items,omitempty"`

	// Codec overrides the scenario codec for write and read.
	Codec string `yaml:"codec,omitempty"`

	// Expect is checked against the operation's outcome. Without it the
	// operation must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the outcome of a step.
type Expect struct {
	// Result is compared by value with what the operation returned.
	Result any `yaml:"result,omitempty"`

	// Error is the expected error code. Empty means the step succeeds.
	Error string `yaml:"error,omitempty"`
}

// Operation names.
const (
	OpSet    = "set"
	OpDelete = "delete"
	OpGet    = "get"
	OpSplice = "splice"
	OpAppend = "append"
	OpWrite  = "write"
	OpRead   = "read"
)

var ops = []string{OpSet, OpDelete, OpGet, OpSplice, OpAppend, OpWrite, OpRead}

// Assertion validates the trace, the final document or the commit log.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the operation matched by trace_contains and trace_count.
	Op string `yaml:"op,omitempty"`

	// Path narrows trace_contains to one path and names the node read by
	// final_value.
	Path string `yaml:"path,omitempty"`

	// Outcome narrows trace_contains to one outcome. On final_value it is
	// the error code expected when reading Path.
	Outcome string `yaml:"outcome,omitempty"`

	// Ops is the expected operation order (used by trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of matches (trace_count) or persisted
	// commits (commit_count).
	Count int `yaml:"count,omitempty"`

	// Value is the expected value at Path (used by final_value).
	Value any `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalValue    = "final_value"
	AssertCommitCount   = "commit_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// documentName returns the cache key of the scenario's session.
func (s *Scenario) documentName() string {
	if s.Document != "" {
		return s.Document
	}
	return s.Name
}

// session returns the fixed document GUID.
func (s *Scenario) session() string {
	if s.Session != "" {
		return s.Session
	}
	return "scenario"
}

// setupRoots converts the setup section to a table of roots.
func (s *Scenario) setupRoots() (value.Table, error) {
	roots := make(value.Table, len(s.Setup))
	for name, raw := range s.Setup {
		v, err := value.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("setup.%s: %w", name, err)
		}
		roots[name] = v
	}
	return roots, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Codec != "" {
		if _, err := codec.ByName(s.Codec); err != nil {
			return fmt.Errorf("codec: %w", err)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single flow step based on its operation.
func validateStep(index int, st *Step) error {
	if st.Op == "" {
		return fmt.Errorf("flow[%d]: op is required", index)
	}
	if !slices.Contains(ops, st.Op) {
		return fmt.Errorf("flow[%d]: unknown op %q", index, st.Op)
	}
	if st.Path == "" {
		return fmt.Errorf("flow[%d]: path is required", index)
	}

	switch st.Op {
	case OpSplice:
		if st.Delete < 0 {
			return fmt.Errorf("flow[%d]: delete must be non-negative", index)
		}
	case OpAppend:
		if len(st.Items) == 0 {
			return fmt.Errorf("flow[%d]: items are required for append", index)
		}
	case OpSet, OpWrite:
		if st.Value == nil {
			return fmt.Errorf("flow[%d]: value is required for %s", index, st.Op)
		}
	}

	if st.Codec != "" {
		if _, err := codec.ByName(st.Codec); err != nil {
			return fmt.Errorf("flow[%d]: codec: %w", index, err)
		}
	}

	if st.Expect != nil && st.Expect.Error != "" && st.Expect.Result != nil {
		return fmt.Errorf("flow[%d].expect: result and error are exclusive", index)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalValue:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_value", index)
		}
	case AssertCommitCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for commit_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
