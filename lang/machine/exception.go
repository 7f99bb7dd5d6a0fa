package machine

import "fmt"

// The engine-visible constructors Error, RangeError, ReferenceError,
// SyntaxError, TypeError and URIError are all wired by lang/builtins as
// ordinary Error subclasses sharing one prototype chain; these Go-level
// helpers build the corresponding Object and wrap it in a throwError for
// the dispatcher to unwind with. The discriminant is simply the Go `error`
// interface: a *throwError is a thrown Value in flight, any other error is
// a host/internal failure (out of memory, a Go panic recovered at the top
// level) that is not catchable by script `try`.
type throwError struct {
	Value Value

	// text is the "Name: message" rendering captured while a Thread was
	// still in scope (throwNew, or the THROW opcode for a thrown Error
	// object); Error() cannot reconstruct it later since property lookup
	// needs the thread's key table.
	text string

	// Frames is a snapshot of the call stack at the moment this value was
	// thrown (innermost first), taken while the faulting frame is still
	// live. Nil for a throwError built without a Thread in scope (tests
	// constructing one directly); the top-level backtrace printer falls
	// back to a bare "type: message" line in that case.
	Frames []*Frame
}

func (e *throwError) Error() string {
	if e.text != "" {
		return e.text
	}
	return e.Value.String()
}

// newError builds a plain Error-class object with the given constructor
// name (used as its "name" property, per ES3 15.11.7.9) and message, bound
// to the matching prototype registered on th (RangeError.prototype etc.),
// falling back to the generic Error prototype if name is unregistered
// (should not happen once builtins are wired, but keeps this package
// usable stand-alone, e.g. from tests that build a bare Thread).
func (th *Thread) newError(name, message string) *Object {
	proto := th.errorProtos[name]
	if proto == nil {
		proto = th.protoError
	}
	o := newObjectOfClass(ClassError, proto)
	th.pool.Track(o)
	o.DefineDataProperty(th, "message", String(message), true, false, true)
	if th.errorProtos[name] == nil {
		// unregistered kind (or a bare Thread with no builtins wired, as in
		// unit tests): stamp "name" directly since no dedicated prototype
		// carries it.
		o.DefineDataProperty(th, "name", String(name), true, false, true)
	}
	return o
}

// throwNew raises a new error of the given kind as a *throwError, the
// return type every fallible machine/builtin function uses.
func (th *Thread) throwNew(kind, message string) error {
	return &throwError{
		Value:  th.newError(kind, message),
		text:   fmt.Sprintf("%s: %s", kind, message),
		Frames: th.Backtrace(),
	}
}

// TypeError, RangeError, ReferenceError, SyntaxError and URIError build and
// return a *throwError for the corresponding ES3 error kind.
func (th *Thread) TypeError(msg string) error     { return th.throwNew("TypeError", msg) }
func (th *Thread) RangeError(msg string) error     { return th.throwNew("RangeError", msg) }
func (th *Thread) ReferenceError(msg string) error { return th.throwNew("ReferenceError", msg) }
func (th *Thread) SyntaxErrorAt(msg string) error  { return th.throwNew("SyntaxError", msg) }
func (th *Thread) URIError(msg string) error       { return th.throwNew("URIError", msg) }

// Throw wraps an arbitrary script Value as a thrown exception: a thrown
// value is presented to catch unchanged, any Value may be thrown, not just
// Error objects.
func Throw(v Value) error { return &throwError{Value: v} }

// AsThrown extracts the thrown Value from err if it is a *throwError.
func AsThrown(err error) (Value, bool) {
	te, ok := err.(*throwError)
	if !ok {
		return nil, false
	}
	return te.Value, true
}

// ThrownFrames returns the call-stack snapshot attached to err at the
// moment it was thrown, if any, for backtrace.go's top-level printer.
func ThrownFrames(err error) []*Frame {
	te, ok := err.(*throwError)
	if !ok {
		return nil
	}
	return te.Frames
}

// internalError marks an internal invariant violation, never reachable
// from script behavior. It does not call os.Exit itself (a library must
// never do that to its embedder); it is returned up through the same error
// channel and internal/maincmd's top-level handler decides the process
// exit code.
type internalError struct{ msg string }

func (e *internalError) Error() string { return "internal error: " + e.msg }

func fatalf(format string, args ...interface{}) error {
	return &internalError{msg: fmt.Sprintf(format, args...)}
}
