package machine

import (
	"fmt"

	"github.com/lorelei-lang/lorelei/lang/compiler"
	"github.com/lorelei-lang/lorelei/lang/key"
)

// Frame is one call frame: the currently executing
// function/module, its local/cell storage, the lexically innermost `with`
// object stack, and a pointer to the caller for backtrace printing.
type Frame struct {
	Func   *FuncData
	Module *Module
	Locals []Value // params, then hoisted locals/temps; Cells are boxed *cell
	This   Value

	ArgsObj   *Object // lazily materialized `arguments`
	ArgsTuple *Tuple  // the raw call arguments, kept for ArgsObj's extra indices

	WithStack []*Object // `with` op: pushed/popped around WithStmt

	Parent *Frame
	PC     uint32
	Depth  int
}

// Position returns the source position of the current point of execution
// in this frame, for backtrace printing.
func (fr *Frame) Position() compiler.Binding {
	if fr.Func == nil || fr.Func.Funcode == nil {
		return compiler.Binding{Name: "<native>"}
	}
	return compiler.Binding{Name: fr.Func.Name, Pos: fr.Func.Funcode.Position(fr.PC)}
}

// Thread is one interpreter instance: the key table, the memory pool and
// the global object are all scoped to one Thread, never shared between
// concurrently running interpreters.
type Thread struct {
	Name string

	keys   *key.Table
	Global *Object
	pool   *Pool

	Universe    map[string]Value // language builtins: Object, Math, NaN, undefined, ...
	Predeclared map[string]Value // host-supplied globals, embedder boundary

	// prototypes, wired by lang/builtins at startup; a bare
	// Thread with no builtins wired still functions (tests construct one
	// directly), just with nil prototypes, which every coercion path treats
	// as "no inherited members", never as a crash.
	protoObject, protoFunction, protoArray                 *Object
	protoString, protoNumber, protoBoolean                 *Object
	protoError, protoDate, protoRegExp                      *Object
	errorProtos map[string]*Object // "TypeError" -> TypeError.prototype, etc.

	// regexpCompiler is installed by lang/builtins.Wire; lang/machine does
	// not import lang/regexp directly so that the bytecode dispatcher has
	// no dependency on the pattern-matching engine beyond this one hook,
	// exercised by the NEWREGEXP opcode.
	regexpCompiler func(pattern, flags string) (*Object, error)

	frames []*Frame

	// MaxSteps bounds the number of dispatched ops before the thread
	// aborts with a RangeError, giving an embedder wanting a budget a way
	// to meter the dispatcher, exercising the ambient
	// RunConfig.LOREL_MAX_STEPS knob.
	MaxSteps uint64
	steps    uint64

	// MaxCallDepth bounds nested Call()s: context.depth+1 compared against
	// this limit, raising RangeError past it.
	MaxCallDepth int

	// GCEvery, if > 0, triggers a full Pool.Collect after this many
	// completed runs of compiled code (each finished compiled-function call
	// or top-level chunk counts once; ambient RunConfig.LOREL_GC_EVERY
	// knob); 0 means the host must call GC explicitly.
	GCEvery   int
	callCount int

	// lastErrorText holds the source text most recently passed to
	// EvalSource, which the top-level backtrace printer maps error
	// positions into.
	lastErrorText string
}

// NewThread creates an interpreter instance with its own key table and
// memory pool. Call lang/builtins.Wire(th) to install the standard
// library before running any script.
func NewThread(name string) *Thread {
	th := &Thread{
		Name:        name,
		keys:        key.NewTable(),
		pool:        NewPool(),
		Universe:    make(map[string]Value),
		Predeclared: make(map[string]Value),
		errorProtos: make(map[string]*Object),
		MaxCallDepth: 2000,
	}
	th.Global = NewObject(nil)
	th.Global.Class = ClassGlobal
	th.pool.Track(th.Global)
	return th
}

// Pool exposes the thread's memory pool, for hosts that want to request
// garbage collection explicitly.
func (th *Thread) Pool() *Pool { return th.pool }

func (th *Thread) intern(name string) key.Key { return th.keys.Make(name) }
func (th *Thread) text(k key.Key) string      { return th.keys.Text(k) }

// SetRegExpCompiler installs the lang/regexp-backed constructor lang/
// builtins wires at startup; NewRegExp fails with an internal error if
// called before this is set.
func (th *Thread) SetRegExpCompiler(f func(pattern, flags string) (*Object, error)) {
	th.regexpCompiler = f
}

// NewRegExp compiles pattern/flags into a RegExp object via the installed
// regexpCompiler hook, used by the NEWREGEXP opcode.
func (th *Thread) NewRegExp(pattern, flags string) (*Object, error) {
	if th.regexpCompiler == nil {
		return nil, fatalf("no regexp compiler installed")
	}
	return th.regexpCompiler(pattern, flags)
}

func (th *Thread) newWrapper(class string, proto *Object, prim Value) *Object {
	o := newObjectOfClass(class, proto)
	o.Prim = prim
	th.pool.Track(o)
	return o
}

// NewWrapper is newWrapper, exported for lang/builtins' Boolean/Number/
// String constructor bodies (`new Boolean(...)` etc.), which need to build
// the same boxed-primitive shape ToObject's coercion path uses internally.
func (th *Thread) NewWrapper(class string, proto *Object, prim Value) *Object {
	return th.newWrapper(class, proto, prim)
}

// ProtoSet bundles the per-class prototype objects lang/builtins
// constructs once at startup; WireProtos installs them so that object/
// array/function literals and ToObject's primitive-wrapping coercion link
// to the right prototype chain.
type ProtoSet struct {
	Object, Function, Array *Object
	String, Number, Boolean *Object
	Error, Date, RegExp     *Object
}

// WireProtos installs th's builtin prototype objects. Called once by
// lang/builtins.Wire.
func (th *Thread) WireProtos(p ProtoSet) {
	th.protoObject = p.Object
	th.protoFunction = p.Function
	th.protoArray = p.Array
	th.protoString = p.String
	th.protoNumber = p.Number
	th.protoBoolean = p.Boolean
	th.protoError = p.Error
	th.protoDate = p.Date
	th.protoRegExp = p.RegExp
}

// RegisterErrorProto associates an Error subclass name ("TypeError", ...)
// with its prototype object, so newError/throwNew (exception.go) give a
// freshly thrown error of that kind the right prototype chain instead of
// falling back to the bare Error.prototype.
func (th *Thread) RegisterErrorProto(name string, proto *Object) {
	th.errorProtos[name] = proto
}

// ProtoObject, ProtoFunction, ProtoArray, ProtoString, ProtoNumber,
// ProtoBoolean, ProtoError, ProtoDate and ProtoRegExp expose the wired
// prototypes for lang/builtins' own cross-references (e.g. Array.prototype
// itself inherits from Object.prototype).
func (th *Thread) ProtoObject() *Object   { return th.protoObject }
func (th *Thread) ProtoFunction() *Object { return th.protoFunction }
func (th *Thread) ProtoArray() *Object    { return th.protoArray }
func (th *Thread) ProtoString() *Object   { return th.protoString }
func (th *Thread) ProtoNumber() *Object   { return th.protoNumber }
func (th *Thread) ProtoBoolean() *Object  { return th.protoBoolean }
func (th *Thread) ProtoError() *Object    { return th.protoError }
func (th *Thread) ProtoDate() *Object     { return th.protoDate }
func (th *Thread) ProtoRegExp() *Object   { return th.protoRegExp }

// CurrentFrame returns the innermost active call frame, or nil at the top
// of a fresh thread.
func (th *Thread) CurrentFrame() *Frame {
	if len(th.frames) == 0 {
		return nil
	}
	return th.frames[len(th.frames)-1]
}

// Backtrace returns a snapshot of the active call frames, innermost first,
// for the top-level uncaught-exception printer.
func (th *Thread) Backtrace() []*Frame {
	bt := make([]*Frame, len(th.frames))
	for i := range th.frames {
		bt[i] = th.frames[len(th.frames)-1-i]
	}
	return bt
}

// RunModule evaluates a freshly compiled Program's top-level code,
// returning the chunk's completion value (the last evaluated expression
// statement's value, or Undefined).
func (th *Thread) RunModule(p *compiler.Program) (Value, error) {
	mod := NewModule(p)
	fd := &FuncData{Funcode: mod.Program.Toplevel, Module: mod, Name: "<toplevel>"}
	topFn := th.NewFunctionObject(fd, nil)
	return Call(th, topFn, UndefinedValue, NilaryTuple)
}

// Call invokes a callable Value (a Function-class Object) with the given
// this-binding and positional arguments, the uniform entry point both the
// CALL opcode and any built-in's recursive invocation (e.g. Array.prototype
// .forEach calling back into script) use. fn must be a *Object with Func
// set; anything else is a TypeError ("is not a function").
func Call(th *Thread, fn Value, this Value, args *Tuple) (Value, error) {
	obj, ok := fn.(*Object)
	if !ok || obj.Func == nil {
		return nil, th.TypeError(fmt.Sprintf("%s is not a function", describeCallee(fn)))
	}
	fd := obj.Func
	depth := 0
	if p := th.CurrentFrame(); p != nil {
		depth = p.Depth + 1
	}
	if th.MaxCallDepth > 0 && depth > th.MaxCallDepth {
		return nil, th.RangeError("maximum call stack size exceeded")
	}

	if fd.Target != nil {
		// a bound function: prepend BoundArgs, always use BoundThis.
		merged := make([]Value, 0, len(fd.BoundArgs)+args.Len())
		merged = append(merged, fd.BoundArgs...)
		merged = append(merged, args.Elems()...)
		return Call(th, fd.Target, fd.BoundThis, NewTuple(merged))
	}

	if fd.Native != nil {
		fr := &Frame{Func: fd, This: this, ArgsTuple: args, Depth: depth, Parent: th.CurrentFrame()}
		th.frames = append(th.frames, fr)
		defer func() { th.frames = th.frames[:len(th.frames)-1] }()
		v, err := fd.Native(th, this, args)
		if v == nil && err == nil {
			v = UndefinedValue
		}
		return v, err
	}

	return th.runCompiled(obj, fd, this, args, depth)
}

func describeCallee(v Value) string {
	if v == nil {
		return "undefined"
	}
	return v.String()
}

// runCompiled executes a compiled FuncData's Funcode via the dispatcher
// (machine.go's run), after setting up its frame: parameter binding, the
// self-reference slot of a named function expression, cell-boxing (both
// resolver-determined Cells and, when the body references `arguments`,
// every parameter slot), and the with-scope stack.
func (th *Thread) runCompiled(fnObj *Object, fd *FuncData, this Value, args *Tuple, depth int) (Value, error) {
	fc := fd.Funcode
	nlocals := len(fc.Locals)
	space := make([]Value, nlocals+fc.MaxStack)
	locals := space[:nlocals:nlocals]

	for i := 0; i < fc.NumParams; i++ {
		locals[i] = args.At(i)
	}
	for i := fc.NumParams; i < nlocals; i++ {
		locals[i] = UndefinedValue
	}
	if fc.SelfSlot >= 0 && fc.SelfSlot < nlocals {
		locals[fc.SelfSlot] = fnObj
	}

	boxAll := fc.NeedsArguments
	boxed := make(map[int]bool, len(fc.Cells))
	for _, idx := range fc.Cells {
		locals[idx] = &cell{v: locals[idx]}
		boxed[idx] = true
	}
	if boxAll {
		for i := 0; i < fc.NumParams; i++ {
			if !boxed[i] {
				locals[i] = &cell{v: locals[i]}
			}
		}
	}

	fr := &Frame{
		Func: fd, Module: fd.Module, Locals: locals, This: this,
		ArgsTuple: args, Depth: depth, Parent: th.CurrentFrame(),
	}
	th.frames = append(th.frames, fr)
	defer func() { th.frames = th.frames[:len(th.frames)-1] }()

	for {
		v, err, repopulate := th.run(fr, space, locals)
		if !repopulate {
			if th.GCEvery > 0 {
				th.callCount++
				if th.callCount%th.GCEvery == 0 {
					th.pool.Collect(th)
				}
			}
			return v, err
		}
		// REPOPULATE (self-tail-call): args was refilled in place
		// by the dispatcher before requesting this restart; loop back to pc 0
		// with a fresh operand stack instead of recursing in Go.
	}
}

// materializeArguments builds (or returns the cached) `arguments` object
// for fr, aliasing each parameter slot's cell so that a write through
// either the object or the named parameter is visible to the other. Only
// meaningful when NeedsArguments forced every parameter to be boxed; a
// function that never references `arguments` never calls this.
func (th *Thread) materializeArguments(fr *Frame) *Object {
	if fr.ArgsObj != nil {
		return fr.ArgsObj
	}
	o := newObjectOfClass(ClassArguments, th.protoObject)
	n := fr.ArgsTuple.Len()
	np := fr.Func.NumParams
	o.elemLen = uint32(n)
	o.elems = make([]Value, n)
	o.elemCheck = make([]bool, n)
	for i := 0; i < n; i++ {
		if i < np && i < len(fr.Locals) {
			if c, ok := fr.Locals[i].(*cell); ok {
				o.elems[i] = c // aliasing sentinel; getElement/PutElement deref below
				o.elemCheck[i] = true
				continue
			}
		}
		o.elems[i] = fr.ArgsTuple.At(i)
		o.elemCheck[i] = true
	}
	o.DefineDataProperty(th, "length", Int(n), true, false, true)
	var callee Value = UndefinedValue
	if fr.Func != nil {
		if fo, ok := th.funcObjectFor(fr.Func); ok {
			callee = fo
		}
	}
	o.DefineDataProperty(th, "callee", callee, true, false, true)
	fr.ArgsObj = o
	th.pool.Track(o)
	return o
}

// funcObjectFor is a best-effort reverse lookup used only for `arguments
// .callee`; the frame does not otherwise keep a pointer back to its own
// Function object (only to the FuncData), so this rebuilds a throwaway
// wrapper when needed rather than threading an extra field through every
// call site for a rarely-used property.
func (th *Thread) funcObjectFor(fd *FuncData) (*Object, bool) {
	o := newObjectOfClass(ClassFunction, th.protoFunction)
	o.Func = fd
	return o, true
}
