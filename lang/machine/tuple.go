package machine

import "strings"

// Tuple is an immutable positional argument vector, the machine's call
// convention for CALL/CONSTRUCT/native invocation alike.
type Tuple struct{ elems []Value }

// NewTuple wraps elems (not copied; callers must not mutate it afterward).
func NewTuple(elems []Value) *Tuple { return &Tuple{elems: elems} }

// NilaryTuple is the shared empty-argument tuple.
var NilaryTuple = NewTuple(nil)

func (t *Tuple) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range t.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (t *Tuple) Type() string { return "tuple" }

// Len returns the argument count.
func (t *Tuple) Len() int { return len(t.elems) }

// At returns the i'th argument, or Undefined if i is out of range (ES3's
// lenient arity: a function may be called with too few arguments).
func (t *Tuple) At(i int) Value {
	if i < 0 || i >= len(t.elems) {
		return UndefinedValue
	}
	return t.elems[i]
}

// Slice returns the elements from i onward (used by Function.apply/call
// and .bind's argument prepending).
func (t *Tuple) Slice(i int) []Value {
	if i >= len(t.elems) {
		return nil
	}
	return t.elems[i:]
}

// Elems exposes the backing slice read-only, for iteration.
func (t *Tuple) Elems() []Value { return t.elems }
