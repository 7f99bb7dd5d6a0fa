package machine

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dolthub/swiss"
	"github.com/lorelei-lang/lorelei/lang/key"
)

// Object is the single heap-allocated representation for every ES3 object
// kind: plain objects, arrays, functions, errors, dates,
// regexps and the primitive wrapper objects. A Class tag plus a handful of
// optional kind-specific fields (Func, Array-ish Elems, Prim) stand in for
// "pointer to a type descriptor (name + mark/capture/finalize
// hooks)": lorelei has no finalizers (Go's GC reclaims everything once
// unreferenced) so only the "name" and "mark" roles survive, as Class and
// the ordinary Go-reachability graph respectively.
type Object struct {
	Class     string
	Prototype *Object
	Extensible bool
	sealed     bool // Object.seal: no new properties, existing non-configurable
	frozen     bool // Object.freeze: sealed + every data property non-writable

	// named properties: a swiss.Map for O(1) lookup by interned key, plus an
	// insertion-ordered key list for enumeration (hashmap is itself
	// unordered; ES3 doesn't mandate enumeration order either, but a stable
	// order makes for-in and JSON.stringify output deterministic, matching
	// what every real engine of that era did for own string keys).
	props     *swiss.Map[key.Key, *propSlot]
	propOrder []key.Key

	// dense element array ("element array"), indices [0, elemLen).
	// A hole (elemCheck[i] == false) is distinct from an explicit Undefined,
	// observable through `in`/enumeration.
	elems     []Value
	elemCheck []bool
	elemLen   uint32

	// Func is non-nil iff Class == ClassFunction (or a built-in callable
	// masquerading as one, e.g. bound functions): an object plus an
	// embedded environment.
	Func *FuncData

	// Prim holds the boxed primitive for wrapper classes (Boolean, Number,
	// String) created by ToObject/`new Boolean(...)` etc.
	Prim Value

	// Internal holds class-specific runtime data that doesn't fit the
	// general property model: a *regexpData for ClassRegExp, a time.Time-ish
	// float (ms since epoch) for ClassDate, held as Value/interface{} to
	// avoid every other Object paying for an unused field.
	Internal interface{}
}

// Object class tags (constructor set).
const (
	ClassObject    = "Object"
	ClassArray     = "Array"
	ClassFunction  = "Function"
	ClassError     = "Error"
	ClassDate      = "Date"
	ClassRegExp    = "RegExp"
	ClassString    = "String"
	ClassNumber    = "Number"
	ClassBoolean   = "Boolean"
	ClassArguments = "Arguments"
	ClassMath      = "Math"
	ClassJSON      = "JSON"
	ClassGlobal    = "global"
)

// propFlag bits mirror property descriptor flag byte.
type propFlag uint8

const (
	flagWritable propFlag = 1 << iota
	flagEnumerable
	flagConfigurable
	flagAccessor // Value holds the getter in 'get', setter in 'set' below
)

type propSlot struct {
	value      Value // data property value; unused (nil) for an accessor
	get, set   *Object
	flags      propFlag
}

func dataFlags(writable, enumerable, configurable bool) propFlag {
	var f propFlag
	if writable {
		f |= flagWritable
	}
	if enumerable {
		f |= flagEnumerable
	}
	if configurable {
		f |= flagConfigurable
	}
	return f
}

// NewObject creates a plain object with the given prototype (nil for none),
// extensible, with no own properties.
func NewObject(proto *Object) *Object {
	return &Object{
		Class:      ClassObject,
		Prototype:  proto,
		Extensible: true,
		props:      swiss.NewMap[key.Key, *propSlot](8),
	}
}

func newObjectOfClass(class string, proto *Object) *Object {
	o := NewObject(proto)
	o.Class = class
	return o
}

func (o *Object) String() string { return fmt.Sprintf("[object %s]", o.Class) }
func (o *Object) Type() string   { return "object" }

// IsExtensible reports whether new own properties may be added.
func (o *Object) IsExtensible() bool { return o.Extensible }

// Seal marks every own property non-configurable and disables extension.
func (o *Object) Seal() {
	o.Extensible = false
	o.sealed = true
	o.props.Iter(func(k key.Key, s *propSlot) bool {
		s.flags &^= flagConfigurable
		return false
	})
	// elements need no per-slot flag: ResizeElement treats every defined
	// element of a sealed object as non-configurable.
}

// Freeze marks every own data property non-writable in addition to Seal's
// non-configurable; accessor properties are unaffected (ES3/5 convention).
func (o *Object) Freeze() {
	o.Seal()
	o.frozen = true
	o.props.Iter(func(k key.Key, s *propSlot) bool {
		if s.flags&flagAccessor == 0 {
			s.flags &^= flagWritable
		}
		return false
	})
}

func (o *Object) IsSealed() bool { return o.sealed }
func (o *Object) IsFrozen() bool { return o.frozen }

// ---- named property access ----

// toIndex reports whether name is a canonical array index string ("0",
// "1", ... no leading zeros except "0" itself, < 2^32-1), and its value, so
// that `arr["5"]` behaves like `arr[5]`.
func toIndex(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	if name == "0" {
		return 0, true
	}
	if name[0] < '1' || name[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil || n >= elementMax {
		return 0, false
	}
	return uint32(n), true
}

const elementMax = 1<<32 - 1

// getOwnSlot looks up a named (non-index) own property, without consulting
// the prototype chain or invoking an accessor.
func (o *Object) getOwnSlot(k key.Key) (*propSlot, bool) {
	return o.props.Get(k)
}

// Get implements the full [[Get]] algorithm: own element, own named
// property (walking accessors), then the prototype chain.
func (o *Object) Get(th *Thread, name string) (Value, error) {
	if o.Class == ClassArray && name == "length" {
		return Int(o.arrayLength()), nil
	}
	if idx, ok := toIndex(name); ok {
		if v, ok := o.getElement(idx); ok {
			return v, nil
		}
	}
	k := th.intern(name)
	for cur := o; cur != nil; cur = cur.Prototype {
		if s, ok := cur.getOwnSlot(k); ok {
			if s.flags&flagAccessor != 0 {
				if s.get == nil {
					return UndefinedValue, nil
				}
				return Call(th, s.get, o, NewTuple(nil))
			}
			return s.value, nil
		}
	}
	return UndefinedValue, nil
}

// GetElement reads an integer-indexed property, falling back to the named
// path (stringified) for anything the dense array doesn't cover, then the
// prototype chain.
func (o *Object) GetElement(th *Thread, idx uint32) (Value, error) {
	if v, ok := o.getElement(idx); ok {
		return v, nil
	}
	return o.Get(th, strconv.FormatUint(uint64(idx), 10))
}

func (o *Object) getElement(idx uint32) (Value, bool) {
	if idx < o.elemLen && o.elemCheck[idx] {
		if c, ok := o.elems[idx].(*cell); ok {
			return c.v, true
		}
		return o.elems[idx], true
	}
	return nil, false
}

// Put implements [[Put]]: classify the key as element or named, consult an
// inherited accessor first, then write (creating an own data property if
// none existed). strict controls whether a failed write (readonly,
// non-extensible) raises TypeError or is silently ignored.
func (o *Object) Put(th *Thread, name string, v Value, strict bool) error {
	if o.Class == ClassArray && name == "length" {
		n, err := ToUint32(th, v)
		if err != nil {
			return err
		}
		if !o.SetLength(n) {
			return th.failWrite(strict, name)
		}
		return nil
	}
	if idx, ok := toIndex(name); ok {
		return o.PutElement(th, idx, v, strict)
	}
	k := th.intern(name)

	// An inherited (or own) accessor takes precedence over creating a data
	// property, per ES3 8.6.2.2.
	for cur := o; cur != nil; cur = cur.Prototype {
		if s, ok := cur.getOwnSlot(k); ok {
			if s.flags&flagAccessor != 0 {
				if s.set == nil {
					return th.failWrite(strict, name)
				}
				_, err := Call(th, s.set, o, NewTuple([]Value{v}))
				return err
			}
			if cur == o {
				if s.flags&flagWritable == 0 {
					return th.failWrite(strict, name)
				}
				s.value = v
				return nil
			}
			if s.flags&flagWritable == 0 {
				return th.failWrite(strict, name)
			}
			break
		}
	}
	if !o.Extensible {
		return th.failWrite(strict, name)
	}
	o.defineOwn(k, &propSlot{value: v, flags: dataFlags(true, true, true)})
	return nil
}

func (th *Thread) failWrite(strict bool, name string) error {
	if strict {
		return th.TypeError(fmt.Sprintf("cannot assign to read only property '%s'", name))
	}
	return nil
}

// PutElement writes an integer-indexed property, growing the dense array
// as needed.
func (o *Object) PutElement(th *Thread, idx uint32, v Value, strict bool) error {
	if !o.Extensible && idx >= o.elemLen {
		return th.failWrite(strict, strconv.FormatUint(uint64(idx), 10))
	}
	if idx < o.elemLen && o.elemCheck[idx] {
		if o.frozen || o.Class == ClassString {
			return th.failWrite(strict, strconv.FormatUint(uint64(idx), 10))
		}
		if c, ok := o.elems[idx].(*cell); ok {
			c.v = v
			return nil
		}
	}
	if idx >= uint32(len(o.elems)) {
		o.growElements(idx + 1)
	}
	if idx >= o.elemLen {
		o.elemLen = idx + 1
	}
	o.elems[idx] = v
	o.elemCheck[idx] = true
	if o.Class == ClassArray && idx+1 > o.arrayLength() {
		o.setArrayLength(idx + 1)
	}
	return nil
}

func (o *Object) growElements(n uint32) {
	if uint32(len(o.elems)) >= n {
		return
	}
	cap := uint32(len(o.elems))
	if cap == 0 {
		cap = 4
	}
	for cap < n {
		cap *= 2
	}
	elems := make([]Value, cap)
	check := make([]bool, cap)
	copy(elems, o.elems)
	copy(check, o.elemCheck)
	o.elems = elems
	o.elemCheck = check
}

// ResizeElement extends the element array with holes or truncates it,
// refusing to drop non-configurable elements; returns whether any such
// element was retained.
func (o *Object) ResizeElement(n uint32) bool {
	if n >= o.elemLen {
		if n > uint32(len(o.elems)) {
			elems := make([]Value, n)
			check := make([]bool, n)
			copy(elems, o.elems)
			copy(check, o.elemCheck)
			o.elems, o.elemCheck = elems, check
		}
		o.elemLen = n
		return false
	}
	retainedAny := o.sealed && o.elemLen > n
	if o.sealed {
		// sealed objects cannot shrink past an existing defined element.
		return retainedAny
	}
	for i := n; i < o.elemLen; i++ {
		o.elems[i] = nil
		o.elemCheck[i] = false
	}
	o.elemLen = n
	return false
}

// defineOwn installs or replaces a named own slot, tracking insertion order
// for enumeration exactly once per key.
func (o *Object) defineOwn(k key.Key, s *propSlot) {
	if _, existed := o.props.Get(k); !existed {
		o.propOrder = append(o.propOrder, k)
	}
	o.props.Put(k, s)
}

// DefineDataProperty installs k with explicit descriptor flags, used by
// built-in wiring (non-enumerable methods, read-only `prototype`, etc.) and
// by object-literal INITMEMBER.
func (o *Object) DefineDataProperty(th *Thread, name string, v Value, writable, enumerable, configurable bool) {
	o.defineOwn(th.intern(name), &propSlot{value: v, flags: dataFlags(writable, enumerable, configurable)})
}

// DefineAccessorProperty installs (or merges into) an accessor property,
// used by DEFGETTER/DEFSETTER.
func (o *Object) DefineAccessorProperty(th *Thread, name string, get, set *Object, enumerable, configurable bool) {
	k := th.intern(name)
	s, ok := o.props.Get(k)
	if !ok || s.flags&flagAccessor == 0 {
		s = &propSlot{flags: flagAccessor | dataFlags(false, enumerable, configurable)}
	}
	if get != nil {
		s.get = get
	}
	if set != nil {
		s.set = set
	}
	o.defineOwn(k, s)
}

// HasProperty implements the `in` operator and for-in membership tests,
// walking the prototype chain.
func (o *Object) HasProperty(th *Thread, name string) bool {
	if o.Class == ClassArray && name == "length" {
		return true
	}
	if idx, ok := toIndex(name); ok {
		if _, ok := o.getElement(idx); ok {
			return true
		}
	}
	k := th.intern(name)
	for cur := o; cur != nil; cur = cur.Prototype {
		if _, ok := cur.getOwnSlot(k); ok {
			return true
		}
	}
	return false
}

// HasOwnProperty tests only o's own properties (named or element), no
// prototype walk.
func (o *Object) HasOwnProperty(th *Thread, name string) bool {
	if o.Class == ClassArray && name == "length" {
		return true
	}
	if idx, ok := toIndex(name); ok {
		_, ok := o.getElement(idx)
		return ok
	}
	_, ok := o.getOwnSlot(th.intern(name))
	return ok
}

// DeleteProperty implements [[Delete]]: refuses to delete a non-
// configurable own slot.
// In strict mode this raises TypeError on refusal; otherwise it returns
// false.
func (o *Object) DeleteProperty(th *Thread, name string, strict bool) (bool, error) {
	if o.Class == ClassArray && name == "length" {
		if strict {
			return false, th.TypeError("property 'length' is non-configurable and can't be deleted")
		}
		return false, nil
	}
	if idx, ok := toIndex(name); ok {
		if idx < o.elemLen && o.elemCheck[idx] {
			if o.sealed || o.Class == ClassString {
				if strict {
					return false, th.TypeError(fmt.Sprintf("property '%s' is non-configurable and can't be deleted", name))
				}
				return false, nil
			}
			o.elemCheck[idx] = false
			o.elems[idx] = nil
			return true, nil
		}
		return true, nil
	}
	k := th.intern(name)
	s, ok := o.getOwnSlot(k)
	if !ok {
		return true, nil
	}
	if s.flags&flagConfigurable == 0 {
		if strict {
			return false, th.TypeError(fmt.Sprintf("property '%s' is non-configurable and can't be deleted", name))
		}
		return false, nil
	}
	o.props.Delete(k)
	for i, kk := range o.propOrder {
		if kk == k {
			o.propOrder = append(o.propOrder[:i], o.propOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

// OwnEnumerableKeys returns the own enumerable property names in insertion
// order, integer indices first (ascending), matching the enumeration order
// real ES3 engines converged on: used by for-in and JSON.stringify.
func (o *Object) OwnEnumerableKeys(th *Thread) []string {
	var indices []int
	for i := uint32(0); i < o.elemLen; i++ {
		if o.elemCheck[i] {
			indices = append(indices, int(i))
		}
	}
	sort.Ints(indices)
	names := make([]string, 0, len(indices)+len(o.propOrder))
	for _, i := range indices {
		names = append(names, strconv.Itoa(i))
	}
	for _, k := range o.propOrder {
		if s, ok := o.props.Get(k); ok && s.flags&flagEnumerable != 0 {
			names = append(names, th.text(k))
		}
	}
	return names
}

// arrayLength/setArrayLength implement the Array exotic `length` own
// property as a thin view over elemLen, kept consistent by PutElement and
// by explicit assignment to "length" (Put's "length" case, and the array
// built-ins in builtins/array.go, call SetLength, which discards elements
// at/above the new length, per ES3 15.4.5.2).
func (o *Object) arrayLength() uint32 { return o.elemLen }

func (o *Object) setArrayLength(n uint32) { o.ResizeElement(n) }

// SetLength is the Array.prototype "length" setter's primitive: truncates
// or extends the element array. Returns false (without raising) if a
// non-configurable element would have been discarded, matching
// ResizeElement's contract.
func (o *Object) SetLength(n uint32) bool {
	retainedAny := o.ResizeElement(n)
	return !retainedAny
}

// defineStringIndices installs the read-only, non-configurable numeric
// index properties a boxed String wrapper exposes (`new String("ab")[0]`),
// plus the non-writable, non-enumerable own "length" property ES3 15.5.5.1
// mandates (the array exotic "length" is a virtual view over elemLen
// instead; a boxed string's is a real own data property since nothing ever
// writes through it).
func (o *Object) defineStringIndices(th *Thread, s string) {
	rs := []rune(s)
	o.elemLen = uint32(len(rs))
	o.elems = make([]Value, len(rs))
	o.elemCheck = make([]bool, len(rs))
	for i, r := range rs {
		o.elems[i] = String(string(r))
		o.elemCheck[i] = true
	}
	o.Extensible = false
	o.DefineDataProperty(th, "length", Int(len(rs)), false, false, false)
}

// namedValues calls yield with the value of every named own data property
// and with the getter and setter of every accessor property; element
// values are not visited.
func (o *Object) namedValues(yield func(Value)) {
	o.props.Iter(func(_ key.Key, s *propSlot) bool {
		if s.flags&flagAccessor != 0 {
			if s.get != nil {
				yield(s.get)
			}
			if s.set != nil {
				yield(s.set)
			}
		} else if s.value != nil {
			yield(s.value)
		}
		return false
	})
}
