// Package key implements the interned identifier table (spec component A):
// every identifier occurring in source, or constructed by host code, is
// interned once, and a Key compares equal iff the underlying byte sequence
// matched at intern time.
package key

import "github.com/dolthub/swiss"

// Key is an opaque identifier. Two Keys compare equal iff the text they were
// interned from is byte-equal. The zero Key is the "no key" sentinel
// returned by Search on a miss.
type Key uint32

// None is the sentinel "no key" value, never returned by Make.
const None Key = 0

// Table is a process-lifetime (or, as embedded here, per-interpreter) intern
// pool. It is not safe for concurrent use, matching the single-threaded
// invariant of the rest of the engine.
type Table struct {
	byText *swiss.Map[string, Key]
	texts  []string // index i holds the text for Key(i+1)
}

// NewTable creates an empty intern table.
func NewTable() *Table {
	return &Table{
		byText: swiss.NewMap[string, Key](256),
		texts:  make([]string, 0, 256),
	}
}

// Make interns text, copying it into owned storage, and returns its Key. A
// subsequent call with byte-equal text returns the same Key.
func (t *Table) Make(text string) Key {
	if k, ok := t.byText.Get(text); ok {
		return k
	}
	// copy: the caller's text may be a slice into a transient scan buffer.
	owned := string(append([]byte(nil), text...))
	t.texts = append(t.texts, owned)
	k := Key(len(t.texts))
	t.byText.Put(owned, k)
	return k
}

// Search looks up text without inserting it, returning None if it is not
// already interned.
func (t *Table) Search(text string) Key {
	if k, ok := t.byText.Get(text); ok {
		return k
	}
	return None
}

// Text returns the byte sequence a Key was interned from. It panics if k is
// None or was not produced by this Table.
func (t *Table) Text(k Key) string {
	if k == None || int(k) > len(t.texts) {
		panic("key: Text of invalid Key")
	}
	return t.texts[k-1]
}

// Len returns the number of distinct keys interned so far.
func (t *Table) Len() int { return len(t.texts) }
