// Package resolver implements the resolver (spec component J) that binds
// every identifier reference in a parsed chunk to a Binding: a function-local
// slot, a captured closure cell, a global (the chunk-level variable/function
// environment, addressed by name), a predeclared/universal name, or a
// dynamic reference that can only be resolved against the scope chain at run
// time because it lies inside a `with` statement.
//
// # Scoping model
//
// ES3 scopes `var` and function declarations to the nearest enclosing
// function (or to the chunk itself, for top-level declarations), never to a
// block: `if (x) { var y = 1; }` declares y for the whole function. So unlike
// a block-scoped language, only three constructs introduce a new lexical
// scope here: a function body (for its parameters and hoisted locals), a
// catch clause (for its exception parameter), and a with statement (which
// does not so much introduce a scope as disable static resolution for
// everything lexically inside it).
//
// Hoisting is implemented as a two-pass walk of each function body: first,
// collectHoisted gathers every var declarator and function declaration name
// reachable without crossing into a nested function, and binds each to a
// slot; second, the ordinary statement walk resolves initializers and
// descends into nested functions, attaching each *ast.Ident encountered to
// its already-allocated Binding.
//
// # Global scope
//
// Top-level var/function declarations, and any identifier use that cannot be
// resolved lexically or as a predeclared/universal name, resolve to Global:
// ES3's global object is a real, mutable object, reachable through `with`,
// deletable in part, and open to new properties created by plain assignment,
// so "undefined identifier" is a run-time ReferenceError, never a resolve-time
// one.
package resolver

import (
	"context"
	"fmt"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/token"
)

// Mode is a set of bit flags that configures resolving. The zero value
// resolves every chunk and reports every error found.
type Mode uint

const (
	// NameBlocks assigns a unique, stable name to every scope block, useful
	// when dumping the resolved tree for debugging.
	NameBlocks Mode = 1 << iota
)

// Info is the result of a successful resolve: the binding of every
// identifier, and the per-function frame layout the compiler needs to emit
// slot-addressed loads/stores and closure captures.
type Info struct {
	Idents map[*ast.Ident]*Binding
	Funcs  map[ast.Node]*Function // keyed by *ast.Chunk, *ast.FuncDecl or *ast.FuncExpr
}

func newInfo() *Info {
	return &Info{Idents: make(map[*ast.Ident]*Binding), Funcs: make(map[ast.Node]*Function)}
}

// ResolveFiles resolves every chunk produced by a successful parse. An AST
// that contains parse errors should never be passed in; behavior is
// undefined.
//
// The returned error, if non-nil, is a token.ErrorList.
func ResolveFiles(ctx context.Context, fset *token.FileSet, chunks []*ast.Chunk, mode Mode,
	isPredeclared, isUniversal func(name string) bool) (*Info, error) {
	info := newInfo()
	if len(chunks) == 0 {
		return info, nil
	}

	var r resolver
	r.info = info
	r.isPredeclared = isPredeclared
	if isPredeclared == nil {
		r.isPredeclared = func(string) bool { return false }
	}
	r.isUniversal = isUniversal
	if isUniversal == nil {
		r.isUniversal = func(string) bool { return false }
	}

	for _, ch := range chunks {
		select {
		case <-ctx.Done():
			return info, ctx.Err()
		default:
		}

		start, _ := ch.Span()
		r.file = fset.File(start)
		r.globals = make(map[string]*Binding)
		r.labels = nil
		r.chunk(ch)

		if mode&NameBlocks != 0 {
			r.nameBlocks()
		}
	}
	r.errors.Sort()
	return info, r.errors.Err()
}

type labelFrame struct {
	name string
	loop bool
}

// block is a scope frontier: either the root of a function frame (fn set,
// bindings populated by hoisting) or a small lookup-only scope pushed for a
// catch parameter or to mark a with statement's dynamic extent.
type block struct {
	parent   *block
	fn       *Function
	bindings map[string]*Binding
	dynamic  bool

	// used only when Mode&NameBlocks is set.
	name     string
	children []*block
}

type resolver struct {
	file   *token.File
	errors token.ErrorList
	info   *Info

	env  *block
	root *block // the last chunk's root block, for nameBlocks

	// globals memoizes predeclared/universal bindings so repeated references
	// to the same host- or language-provided name share one Binding.
	globals map[string]*Binding

	isPredeclared, isUniversal func(name string) bool

	labels []labelFrame
}

func (r *resolver) errorf(p token.Pos, format string, args ...interface{}) {
	r.errors.Add(r.file.Position(p), fmt.Sprintf(format, args...))
}

func (r *resolver) push(b *block) {
	if r.env != nil {
		r.env.children = append(r.env.children, b)
		if b.fn == nil {
			b.fn = r.env.fn
		}
	}
	b.parent = r.env
	if b.bindings == nil {
		b.bindings = make(map[string]*Binding)
	}
	r.env = b
}

func (r *resolver) pop() { r.env = r.env.parent }

func (r *resolver) chunk(ch *ast.Chunk) {
	fn := &Function{Definition: ch}
	r.info.Funcs[ch] = fn
	r.push(&block{fn: fn})
	r.root = r.env
	defer r.pop()

	collectHoisted(ch.Block.Stmts, fn, r.env.bindings, true)
	r.stmts(ch.Block.Stmts)
}

// collectHoisted populates bindings with a slot for every var declarator and
// function declaration name reachable from stmts without crossing into a
// nested function body. isGlobal selects Global (name-addressed) bindings at
// chunk scope instead of Local (slot-addressed) ones.
func collectHoisted(stmts []ast.Stmt, fn *Function, bindings map[string]*Binding, isGlobal bool) {
	declare := func(name *ast.Ident) {
		if _, ok := bindings[name.Name]; ok {
			return
		}
		bdg := &Binding{Name: name.Name, Decl: name}
		if isGlobal {
			bdg.Scope = Global
		} else {
			bdg.Scope = Local
			bdg.Index = len(fn.Locals)
			fn.Locals = append(fn.Locals, bdg)
		}
		bindings[name.Name] = bdg
	}

	var walkStmt func(s ast.Stmt)
	walkStmts := func(ss []ast.Stmt) {
		for _, s := range ss {
			walkStmt(s)
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch s := s.(type) {
		case *ast.Block:
			walkStmts(s.Stmts)
		case *ast.VarDeclStmt:
			for _, d := range s.Decls {
				declare(d.Name)
			}
		case *ast.FuncDecl:
			declare(s.Name)
		case *ast.IfStmt:
			if b, ok := s.Then.(*ast.Block); ok {
				walkStmts(b.Stmts)
			} else {
				walkStmt(s.Then)
			}
			switch alt := s.Alt.(type) {
			case *ast.Block:
				walkStmts(alt.Stmts)
			case nil:
			default:
				walkStmt(alt)
			}
		case *ast.DoWhileStmt:
			walkBody(s.Body, walkStmts)
		case *ast.WhileStmt:
			walkBody(s.Body, walkStmts)
		case *ast.ForStmt:
			if d, ok := s.Init.(*ast.VarDeclStmt); ok {
				for _, d := range d.Decls {
					declare(d.Name)
				}
			}
			walkBody(s.Body, walkStmts)
		case *ast.ForInStmt:
			if d, ok := s.Left.(*ast.VarDeclStmt); ok {
				declare(d.Decls[0].Name)
			}
			walkBody(s.Body, walkStmts)
		case *ast.WithStmt:
			walkBody(s.Body, walkStmts)
		case *ast.LabeledStmt:
			walkStmt(s.Body)
		case *ast.SwitchStmt:
			for _, c := range s.Cases {
				walkStmts(c.Body)
			}
		case *ast.TryStmt:
			walkStmts(s.Block.Stmts)
			if s.CatchBlock != nil {
				walkStmts(s.CatchBlock.Stmts)
			}
			if s.FinallyBlock != nil {
				walkStmts(s.FinallyBlock.Stmts)
			}
		}
	}
	walkStmts(stmts)
}

func walkBody(body ast.Stmt, walkStmts func([]ast.Stmt)) {
	if b, ok := body.(*ast.Block); ok {
		walkStmts(b.Stmts)
		return
	}
	walkStmts([]ast.Stmt{body})
}

func (r *resolver) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.stmt(s)
	}
}

func (r *resolver) stmtBody(s ast.Stmt) {
	if b, ok := s.(*ast.Block); ok {
		r.stmts(b.Stmts)
		return
	}
	r.stmt(s)
}

func (r *resolver) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		// a bare block statement introduces no scope of its own in ES3.
		r.stmts(s.Stmts)

	case *ast.VarDeclStmt:
		for _, d := range s.Decls {
			r.rebind(d.Name)
			if d.Init != nil {
				r.expr(d.Init)
			}
		}

	case *ast.FuncDecl:
		r.rebind(s.Name)
		r.function(s, s.Name, s.Params, s.Body)

	case *ast.ExprStmt:
		r.expr(s.Expr)

	case *ast.IfStmt:
		r.expr(s.Cond)
		r.stmtBody(s.Then)
		if s.Alt != nil {
			r.stmtBody(s.Alt)
		}

	case *ast.DoWhileStmt:
		r.loop(func() { r.stmtBody(s.Body) })
		r.expr(s.Cond)

	case *ast.WhileStmt:
		r.expr(s.Cond)
		r.loop(func() { r.stmtBody(s.Body) })

	case *ast.ForStmt:
		if s.Init != nil {
			r.stmt(s.Init)
		}
		if s.Cond != nil {
			r.expr(s.Cond)
		}
		if s.Post != nil {
			r.expr(s.Post)
		}
		r.loop(func() { r.stmtBody(s.Body) })

	case *ast.ForInStmt:
		if d, ok := s.Left.(*ast.VarDeclStmt); ok {
			r.rebind(d.Decls[0].Name)
		} else if e, ok := s.Left.(ast.Expr); ok {
			r.expr(e)
		}
		r.expr(s.Right)
		r.loop(func() { r.stmtBody(s.Body) })

	case *ast.ContinueStmt:
		r.loopLabel(s.Start, s.Label, true)

	case *ast.BreakStmt:
		r.loopLabel(s.Start, s.Label, false)

	case *ast.ReturnStmt:
		if s.Value != nil {
			r.expr(s.Value)
		}

	case *ast.WithStmt:
		r.expr(s.Object)
		r.env.fn.HasDynamicScope = true
		r.push(&block{dynamic: true})
		r.stmtBody(s.Body)
		r.pop()

	case *ast.LabeledStmt:
		name := s.Label.Name
		for _, l := range r.labels {
			if l.name == name {
				r.errorf(s.Label.NamePos, "label already in use in this function: %s", name)
				break
			}
		}
		r.labels = append(r.labels, labelFrame{name: name, loop: s.Body.IsLoop()})
		r.stmt(s.Body)
		r.labels = r.labels[:len(r.labels)-1]

	case *ast.SwitchStmt:
		r.expr(s.Disc)
		r.env.fn.switches++
		for _, c := range s.Cases {
			if c.Test != nil {
				r.expr(c.Test)
			}
			r.stmts(c.Body)
		}
		r.env.fn.switches--

	case *ast.ThrowStmt:
		r.expr(s.Value)

	case *ast.TryStmt:
		r.stmts(s.Block.Stmts)
		if s.CatchBlock != nil {
			r.push(&block{})
			if s.Param != nil {
				r.bindLocal(s.Param)
			}
			r.stmts(s.CatchBlock.Stmts)
			r.pop()
		}
		if s.FinallyBlock != nil {
			r.stmts(s.FinallyBlock.Stmts)
		}

	case *ast.EmptyStmt, *ast.DebuggerStmt, *ast.BadStmt:
		// nothing to resolve

	default:
		panic(fmt.Sprintf("resolver: unexpected stmt %T", stmt))
	}
}

func (r *resolver) loop(body func()) {
	r.env.fn.loops++
	body()
	r.env.fn.loops--
}

func (r *resolver) loopLabel(pos token.Pos, label *ast.Ident, isContinue bool) {
	if label == nil {
		if isContinue && r.env.fn.loops == 0 {
			r.errorf(pos, "continue statement not within a loop")
		} else if !isContinue && r.env.fn.loops == 0 && r.env.fn.switches == 0 {
			r.errorf(pos, "break statement not within a loop or switch")
		}
		return
	}
	for _, l := range r.labels {
		if l.name == label.Name {
			if isContinue && !l.loop {
				r.errorf(label.NamePos, "label not associated with a loop: %s", label.Name)
			}
			return
		}
	}
	r.errorf(label.NamePos, "undefined label: %s", label.Name)
}

func (r *resolver) expr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		r.use(e)

	case *ast.ThisExpr, *ast.Literal, *ast.RegexpLit, *ast.BadExpr:
		// nothing to resolve

	case *ast.ArrayLit:
		for _, el := range e.Elements {
			if el != nil {
				r.expr(el)
			}
		}

	case *ast.ObjectLit:
		for _, p := range e.Props {
			// p.Key is never an identifier reference, even when it is an
			// *ast.Ident: `{ x: 1 }` declares the property named "x".
			r.expr(p.Value)
		}

	case *ast.FuncExpr:
		r.function(e, e.Name, e.Params, e.Body)

	case *ast.ParenExpr:
		r.expr(e.Expr)

	case *ast.MemberExpr:
		r.expr(e.Object)
		if e.Computed {
			r.expr(e.Property)
		}

	case *ast.NewExpr:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}

	case *ast.CallExpr:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}

	case *ast.UnaryExpr:
		r.expr(e.Operand)

	case *ast.UpdateExpr:
		r.expr(e.Operand)

	case *ast.BinaryExpr:
		r.expr(e.Left)
		r.expr(e.Right)

	case *ast.ConditionalExpr:
		r.expr(e.Cond)
		r.expr(e.Then)
		r.expr(e.Else)

	case *ast.AssignExpr:
		r.expr(e.Right)
		r.expr(e.Left)

	case *ast.SequenceExpr:
		for _, x := range e.Exprs {
			r.expr(x)
		}

	default:
		panic(fmt.Sprintf("resolver: unexpected expr %T", expr))
	}
}

// function resolves a FuncDecl's or FuncExpr's signature and body in a fresh
// frame. A FuncExpr's non-nil name is additionally bound inside that frame
// (a named function expression can refer to itself); a FuncDecl's name is
// bound in the enclosing scope only.
func (r *resolver) function(node ast.Node, name *ast.Ident, params []*ast.Ident, body *ast.Block) {
	fn := &Function{Definition: node}
	r.info.Funcs[node] = fn
	for env := r.env; env != nil; env = env.parent {
		if env.dynamic {
			fn.HasDynamicScope = true
			break
		}
	}

	savedLabels := r.labels
	r.labels = nil

	r.push(&block{fn: fn})
	for _, p := range params {
		r.bindParam(p)
	}
	// a named function expression's self-reference binds after the params so
	// parameter slots stay positional (the machine fills Locals[0..NumParams)
	// straight from the argument vector); a parameter of the same name wins.
	if _, isExpr := node.(*ast.FuncExpr); isExpr && name != nil {
		if _, taken := r.env.bindings[name.Name]; !taken {
			r.bindLocal(name)
			fn.Self = r.env.bindings[name.Name]
		}
	}
	collectHoisted(body.Stmts, fn, r.env.bindings, false)
	r.stmts(body.Stmts)
	r.pop()

	r.labels = savedLabels
}

// bindParam declares a parameter's slot. Every parameter gets its own
// positional slot, but a duplicate name rebinds the map entry so the last
// occurrence wins, ES3 10.1.3's sloppy-mode rule (the parser rejects
// duplicates in strict mode before resolution ever sees them).
func (r *resolver) bindParam(ident *ast.Ident) {
	bdg := &Binding{Scope: Local, Name: ident.Name, Decl: ident, Index: len(r.env.fn.Locals)}
	r.env.fn.Locals = append(r.env.fn.Locals, bdg)
	r.env.bindings[ident.Name] = bdg
	r.info.Idents[ident] = bdg
}

// bindLocal declares a fresh Local binding in the current block (used for
// a named function expression's self-reference and catch parameters),
// erroring if the name is already bound in this exact block.
func (r *resolver) bindLocal(ident *ast.Ident) {
	if _, ok := r.env.bindings[ident.Name]; ok {
		r.errorf(ident.NamePos, "already declared in this scope: %s", ident.Name)
		return
	}
	bdg := &Binding{Scope: Local, Name: ident.Name, Decl: ident, Index: len(r.env.fn.Locals)}
	r.env.fn.Locals = append(r.env.fn.Locals, bdg)
	r.env.bindings[ident.Name] = bdg
	r.info.Idents[ident] = bdg
}

// rebind attaches ident to the Binding already allocated for it by
// collectHoisted (var declarators and function declarations are always
// hoisted before the statement walk reaches their declaring statement).
// The walk may be several blocks deep at that point (inside a catch clause
// or a with body), so the lookup climbs to the function's own frontier
// rather than consulting only the innermost block.
func (r *resolver) rebind(ident *ast.Ident) {
	for env := r.env; env != nil && env.fn == r.env.fn; env = env.parent {
		if bdg, ok := env.bindings[ident.Name]; ok {
			r.info.Idents[ident] = bdg
			return
		}
	}
	// unreachable if collectHoisted and the statement walk agree on what
	// counts as a declaration; fall back to a fresh local so resolution
	// can still proceed.
	bdg := &Binding{Scope: Local, Name: ident.Name, Decl: ident, Index: len(r.env.fn.Locals)}
	r.env.fn.Locals = append(r.env.fn.Locals, bdg)
	r.env.bindings[ident.Name] = bdg
	r.info.Idents[ident] = bdg
}

func (r *resolver) use(ident *ast.Ident) {
	startFn := r.env.fn
	dynamic := false
	for env := r.env; env != nil; env = env.parent {
		if env.dynamic {
			// a with-object may shadow anything resolved beyond this point at
			// run time. Keep walking: the lexical binding (if any) must still
			// be found so closure captures get promoted, and the machine's
			// name-based fallback (lookupDynamic) can then reach it through
			// the frame's locals/freevars when no with-object has the name.
			dynamic = true
			continue
		}
		bdg, ok := env.bindings[ident.Name]
		if !ok {
			continue
		}
		if bdg.Scope != Global && env.fn != startFn {
			// captured across a function boundary: the enclosing local
			// becomes a cell, and this function gets its own Free slot
			// referencing it.
			if bdg.Scope == Local {
				bdg.Scope = Cell
			}
			ix := len(startFn.FreeVars)
			startFn.FreeVars = append(startFn.FreeVars, bdg)
			bdg = &Binding{Scope: Free, Name: bdg.Name, Decl: bdg.Decl, Index: ix}
			r.env.bindings[ident.Name] = bdg
		}
		if dynamic {
			r.info.Idents[ident] = &Binding{Scope: Dynamic, Name: ident.Name, Decl: ident}
			return
		}
		r.info.Idents[ident] = bdg
		return
	}

	if dynamic {
		r.info.Idents[ident] = &Binding{Scope: Dynamic, Name: ident.Name, Decl: ident}
		return
	}

	if r.isPredeclared(ident.Name) {
		r.info.Idents[ident] = r.global(ident.Name, Predeclared)
		return
	}
	if r.isUniversal(ident.Name) {
		r.info.Idents[ident] = r.global(ident.Name, Universal)
		return
	}

	// an identifier that resolves to nothing lexical, predeclared or
	// universal is a plain global: ES3 only raises ReferenceError for this
	// at run time, never at resolve time.
	r.info.Idents[ident] = r.global(ident.Name, Global)
}

func (r *resolver) global(name string, scope Scope) *Binding {
	if bdg, ok := r.globals[name]; ok {
		return bdg
	}
	bdg := &Binding{Scope: scope, Name: name}
	r.globals[name] = bdg
	return bdg
}
