package resolver

import (
	"fmt"

	"github.com/lorelei-lang/lorelei/lang/ast"
)

// Scope classifies how a Binding is stored and reached at runtime.
type Scope uint8

const (
	Undefined   Scope = iota // name was never declared anywhere reachable
	Global                   // var/function declared at chunk top level: a property of the global object
	Local                    // local to the enclosing function, addressed by slot index
	Cell                     // function-local but captured by at least one nested closure
	Free                     // reference, from inside a closure, to an enclosing function's Cell
	Dynamic                  // lexically inside a `with` body: must be resolved via the scope chain at run time
	Predeclared              // supplied to the environment by the host embedding the interpreter
	Universal                // a language builtin (Object, Math, NaN, undefined, ...)
)

var scopeNames = [...]string{
	Undefined:   "undefined",
	Global:      "global",
	Local:       "local",
	Cell:        "cell",
	Free:        "free",
	Dynamic:     "dynamic",
	Predeclared: "predeclared",
	Universal:   "universal",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid Scope %d>", s)
	}
	return scopeNames[s]
}

// Binding ties together every *ast.Ident that denotes the same variable.
// Unlike the teacher's resolver, which stashes this on an AST field, lorelei
// keeps bindings in a side table (Info.Idents) to avoid giving lang/ast an
// import-cycle dependency on lang/resolver.
type Binding struct {
	Scope Scope

	// Index is the slot index into the owning function's Locals (Local,
	// Cell) or FreeVars (Free). Zero and meaningless for every other scope.
	Index int

	// Name is the declared identifier's spelling, for diagnostics.
	Name string

	// Const marks a binding that can never be the target of an assignment;
	// only the implicit per-iteration for-in/catch bindings do not use this,
	// ES3 has no const declarations, so it is always false today but is kept
	// for symmetry with how the compiler's assignability checks are phrased.
	Const bool

	// Decl is the node that introduced the binding (an *ast.Ident for var
	// declarators, function/catch params, or the FuncDecl/FuncExpr name).
	Decl ast.Node
}

// Function collects everything the compiler needs about one function's (or
// the top-level chunk's) local variable frame.
type Function struct {
	// Definition is the *ast.Chunk, *ast.FuncDecl or *ast.FuncExpr that owns
	// this frame.
	Definition ast.Node

	Locals   []*Binding // params first, then hoisted vars/functions, in declaration order
	FreeVars []*Binding // enclosing Cells this function captures, in capture order

	// HasDynamicScope is true when any part of this function's body lies
	// inside a `with` statement, which disables the slot-based fast path for
	// every identifier use within it (Dynamic bindings carry the same flag
	// implicitly, this is a convenience for the compiler to check once).
	HasDynamicScope bool

	// Self is the binding for a named function expression's self-reference
	// (`(function fact(n) { ... fact(n-1) ... })`), nil otherwise. ES3 13
	// makes this binding immutable, which is what lets the compiler treat a
	// tail call through it as provably self-recursive (REPOPULATE).
	Self *Binding

	// loops and switches count the nesting depth of unlabeled break/continue
	// targets; reset implicitly because every function gets its own Function
	// value.
	loops, switches int
}
