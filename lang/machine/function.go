package machine

import (
	"fmt"

	"github.com/lorelei-lang/lorelei/lang/compiler"
)

// cell is a box containing a Value: a local captured by a nested closure,
// or aliased by the arguments object, lives in one of these instead of
// directly in a frame slot, so every reference shares the same storage.
// GETLOCAL/SETLOCAL auto-deref through *cell (see run's derefCell/setCellOrLocal);
// GETLOCALRAW/GETFREERAW (NEWFUNC capture-building only) push the *cell
// itself, undereferenced.
type cell struct{ v Value }

// cell is never itself an observable script value (getElement/PutElement
// on the Arguments object transparently deref or write through one, see
// object.go), but it rides in an Object's Value-typed elems slice as an
// aliasing sentinel, so it must satisfy Value.
func (c *cell) String() string { return c.v.String() }
func (c *cell) Type() string   { return c.v.Type() }

// Module is one compiled unit (one chunk, or one eval'd string): the
// program's Funcode table plus the realized Value for every constant,
// built once when the program is loaded. A Value here is just a Go
// string/float64/int64 copy, needing no separate lifetime management.
type Module struct {
	Program   *compiler.Program
	Constants []Value
}

// NewModule realizes a compiler.Program's constant pool into Values.
func NewModule(p *compiler.Program) *Module {
	consts := make([]Value, len(p.Constants))
	for i, c := range p.Constants {
		switch c := c.(type) {
		case int64:
			consts[i] = Int(c)
		case float64:
			consts[i] = Float(c)
		case string:
			consts[i] = String(c)
		default:
			panic(fmt.Sprintf("machine: unexpected constant %T", c))
		}
	}
	return &Module{Program: p, Constants: consts}
}

// NativeFunc is a built-in function body: the uniform contract every
// built-in and user function alike goes through. this is Undefined for a
// bare call; args is the positional argument
// tuple, already length-adjusted by neither caller nor callee (built-ins
// read however many they need and ignore the rest, matching ES3's lenient
// arity).
type NativeFunc func(th *Thread, this Value, args *Tuple) (Value, error)

// FuncData is a function's runtime identity: a code object (Funcode) plus
// a captured environment (FreeVars, a vector of cells reached from the
// defining scope), a bound-this/bound-args pair (set only by .bind()), and
// a name. A FuncData with Native set is a built-in instead of a compiled
// body; Funcode is nil in that case.
type FuncData struct {
	Funcode *compiler.Funcode
	Module  *Module
	FreeVars []*cell

	Name      string
	NumParams int

	Native NativeFunc

	// Bound* are set by Function.prototype.bind: a call to the resulting
	// function prepends BoundArgs to its received arguments and invokes
	// Target with BoundThis.
	Target    *Object
	BoundThis Value
	BoundArgs []Value

	// IsConstructor marks a built-in constructor made by NewConstructor
	// (Array, Date, RegExp, Error, ...). Construct does not consult it: every
	// `new` runs the same algorithm (construct.go), and a native constructor
	// that returns its own object replaces the freshly allocated one.
	IsConstructor bool
}

// NewFunctionObject wraps fd in an Object of ClassFunction with the given
// prototype (typically Thread.protoFunction) and a "prototype" own
// property pointing at protoProp (nil for built-ins that should not expose
// one, e.g. bound functions).
func (th *Thread) NewFunctionObject(fd *FuncData, protoProp *Object) *Object {
	o := newObjectOfClass(ClassFunction, th.protoFunction)
	o.Func = fd
	th.pool.Track(o)
	o.DefineDataProperty(th, "length", Int(fd.NumParams), false, false, false)
	o.DefineDataProperty(th, "name", String(fd.Name), false, false, false)
	if protoProp != nil {
		protoProp.DefineDataProperty(th, "constructor", o, true, false, true)
		o.DefineDataProperty(th, "prototype", protoProp, true, false, false)
	}
	return o
}

// NewNativeFunction is a convenience constructor for built-in wiring
// (lang/builtins): a function object around a Go function body, with no
// "prototype" own property unless the caller installs one via
// NewFunctionObject directly (constructors do; plain methods don't).
func (th *Thread) NewNativeFunction(name string, numParams int, fn NativeFunc) *Object {
	return th.NewFunctionObject(&FuncData{Name: name, NumParams: numParams, Native: fn}, nil)
}

// NewConstructor is like NewNativeFunction but also wires up a fresh
// prototype object (or reuses proto if given) as the constructor's
// "prototype" property.
func (th *Thread) NewConstructor(name string, numParams int, proto *Object, fn NativeFunc) *Object {
	if proto == nil {
		proto = NewObject(th.protoObject)
	}
	fd := &FuncData{Name: name, NumParams: numParams, Native: fn, IsConstructor: true}
	return th.NewFunctionObject(fd, proto)
}
