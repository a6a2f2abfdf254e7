package docpath

import (
	"strconv"
	"strings"
)

// Separator splits path segments.
const Separator = "/"

// BoxMarker is the segment that hands the rest of a path to the box resolver.
const BoxMarker = "@"

// StepKind classifies a path segment.
type StepKind int

const (
	// StepName addresses a map key.
	StepName StepKind = iota + 1
	// StepIndex is a non-negative integer; it addresses a sequence element
	// and, on a map, the key with the same text.
	StepIndex
	// StepBox is the box indirection marker.
	StepBox
)

// Step is one parsed segment.
type Step struct {
	Kind  StepKind
	Name  string // raw segment text
	Index int    // valid when Kind == StepIndex
}

// Path is a parsed, non-empty sequence of steps.
type Path struct {
	raw   string
	steps []Step
}

// Parse splits s on "/", dropping empty segments.
// Leading, trailing and repeated slashes are ignored.
func Parse(s string) (Path, error) {
	var steps []Step
	for _, seg := range strings.Split(s, Separator) {
		if seg == "" {
			continue
		}
		steps = append(steps, classify(seg))
	}
	if len(steps) == 0 {
		return Path{}, newError(ErrCodeEmptyPath, s, "", "path has no segments")
	}
	return Path{raw: s, steps: steps}, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant paths.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func classify(seg string) Step {
	if seg == BoxMarker {
		return Step{Kind: StepBox, Name: seg}
	}
	if isIndex(seg) {
		if i, err := strconv.Atoi(seg); err == nil {
			return Step{Kind: StepIndex, Name: seg, Index: i}
		}
	}
	return Step{Kind: StepName, Name: seg}
}

// isIndex accepts only ASCII digits: no sign, no spaces.
func isIndex(seg string) bool {
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return seg != ""
}

// Raw returns the string the path was parsed from.
func (p Path) Raw() string {
	return p.raw
}

// Len returns the number of steps.
func (p Path) Len() int {
	return len(p.steps)
}

// Steps returns a copy of the steps.
func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Names returns the raw segment texts.
func (p Path) Names() []string {
	names := make([]string, len(p.steps))
	for i, st := range p.steps {
		names[i] = st.Name
	}
	return names
}

// String returns the normalized form: segments joined by a single "/".
func (p Path) String() string {
	return strings.Join(p.Names(), Separator)
}

// BoxIndex returns the position of the first box marker after the root
// segment, or -1. The root segment always names a root map.
func (p Path) BoxIndex() int {
	for i := 1; i < len(p.steps); i++ {
		if p.steps[i].Kind == StepBox {
			return i
		}
	}
	return -1
}
