package node

// AsMap returns n as a Map when its kind is KindMap.
func AsMap(n Node) (Map, bool) {
	if n == nil || n.Kind() != KindMap {
		return nil, false
	}
	m, ok := n.(Map)
	return m, ok
}

// AsSequence returns n as a Sequence when its kind is KindSequence.
func AsSequence(n Node) (Sequence, bool) {
	if n == nil || n.Kind() != KindSequence {
		return nil, false
	}
	s, ok := n.(Sequence)
	return s, ok
}

// AsText returns n as a Text when its kind is KindText.
func AsText(n Node) (Text, bool) {
	if n == nil || n.Kind() != KindText {
		return nil, false
	}
	t, ok := n.(Text)
	return t, ok
}

// KindOf returns the kind of n, or 0 for nil.
func KindOf(n Node) Kind {
	if n == nil {
		return 0
	}
	return n.Kind()
}

// Visitor handles each node kind. Used with Visit for exhaustive dispatch.
type Visitor[R any] struct {
	Absent   func() R
	Map      func(Map) R
	Sequence func(Sequence) R
	Text     func(Text) R
	Number   func(Number) R
}

// Visit dispatches n to the matching Visitor function by Kind.
// A nil handler yields the zero value.
func Visit[R any](n Node, v Visitor[R]) R {
	var zero R
	switch KindOf(n) {
	case 0:
		if v.Absent != nil {
			return v.Absent()
		}
	case KindMap:
		if m, ok := AsMap(n); ok && v.Map != nil {
			return v.Map(m)
		}
	case KindSequence:
		if s, ok := AsSequence(n); ok && v.Sequence != nil {
			return v.Sequence(s)
		}
	case KindText:
		if t, ok := AsText(n); ok && v.Text != nil {
			return v.Text(t)
		}
	case KindNumber:
		if num, ok := n.(Number); ok && v.Number != nil {
			return v.Number(num)
		}
	}
	return zero
}
