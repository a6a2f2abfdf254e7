package node

import "fmt"

// Kind tags every replicated node. All dispatch goes through Kind, never
// through dynamic type inspection of engine types.
type Kind int

const (
	// KindMap is a string-keyed container.
	KindMap Kind = iota + 1
	// KindSequence is an index-ordered container.
	KindSequence
	// KindText is a mutable character buffer.
	KindText
	// KindNumber is the only scalar.
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsContainer reports whether k is a map or sequence.
func (k Kind) IsContainer() bool {
	return k == KindMap || k == KindSequence
}

// Node is a replicated node: a Map, Sequence, Text or Number.
type Node interface {
	Kind() Kind
}

// Number is a scalar stored by value inside containers.
type Number float64

// Kind implements Node.
func (Number) Kind() Kind { return KindNumber }

// Event describes one change observed below a deep observer.
type Event struct {
	// Target is the container or text that changed.
	Target Node
	// Path locates Target relative to the observed node. Empty when the
	// observed node itself changed.
	Path []string
}

// Subscription is an observer registration.
// Unsubscribe must be safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Observable is implemented by every non-scalar node.
type Observable interface {
	// ObserveDeep registers fn for changes to the node or any descendant.
	// fn runs after the transaction commits, never inside it, and receives
	// every event of that transaction in one call.
	ObserveDeep(fn func(events []Event)) Subscription
}

// Map is a replicated string-keyed table.
type Map interface {
	Node
	Observable
	Get(key string) (Node, bool)
	Set(key string, v Node)
	Delete(key string)
	Has(key string) bool
	// Keys returns the live key set in sorted order.
	Keys() []string
	Len() int
}

// Sequence is a replicated ordered list.
type Sequence interface {
	Node
	Observable
	Len() int
	Get(i int) (Node, bool)
	Insert(i int, items ...Node)
	Delete(i, n int)
}

// Text is a replicated character buffer. Offsets count runes.
type Text interface {
	Node
	Observable
	String() string
	Len() int
	Insert(i int, s string)
	Delete(i, n int)
}

// Factory creates detached nodes that become part of a document when
// inserted into an attached container.
type Factory interface {
	NewMap() Map
	NewSequence() Sequence
	NewText(s string) Text
}

// Doc is the document handle: the unit of sharing and the only way to
// group mutations.
type Doc interface {
	Factory

	// GetMap returns the named root map, creating it if absent.
	GetMap(name string) Map
	// GetSequence returns the named root sequence, creating it if absent.
	GetSequence(name string) Sequence
	// GetText returns the named root text, creating it if absent.
	GetText(name string) Text
	// Root returns the named root of any kind without creating it.
	Root(name string) (Node, bool)

	// Transact applies every mutation made by fn as one unit. Observers see
	// all of them or none. If fn returns an error the error is returned;
	// mutations already made are still committed, so callers validate first.
	Transact(fn func() error) error
}
