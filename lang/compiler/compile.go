package compiler

import (
	"fmt"
	"math"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/resolver"
	"github.com/lorelei-lang/lorelei/lang/token"
)

// Compile lowers a resolved chunk into a Program: one Funcode per function
// literal (Functions[0] is always the chunk top level), sharing one constant
// pool and one name pool. info must be the resolver.Info produced by
// resolving chunk; behavior is undefined otherwise.
func Compile(fset *token.FileSet, chunk *ast.Chunk, info *resolver.Info) *Program {
	owner := fixupFreeVars(info, chunk)

	c := &compiler{
		prog:       &Program{Filename: chunk.Name},
		info:       info,
		owner:      owner,
		constIndex: make(map[interface{}]uint32),
		nameIndex:  make(map[string]uint32),
	}

	top := c.newFuncode(info.Funcs[chunk], "<toplevel>")
	top.Strict = useStrict(chunk.Block.Stmts)
	c.prog.Toplevel = top
	c.compileFunction(top, info.Funcs[chunk], chunk.Block.Stmts)
	return c.prog
}

type compiler struct {
	prog       *Program
	info       *resolver.Info
	owner      map[*resolver.Binding]*resolver.Function
	constIndex map[interface{}]uint32
	nameIndex  map[string]uint32
}

func (c *compiler) constant(v interface{}) uint32 {
	if idx, ok := c.constIndex[v]; ok {
		return idx
	}
	idx := uint32(len(c.prog.Constants))
	c.prog.Constants = append(c.prog.Constants, v)
	c.constIndex[v] = idx
	return idx
}

func (c *compiler) name(s string) uint32 {
	if idx, ok := c.nameIndex[s]; ok {
		return idx
	}
	idx := uint32(len(c.prog.Names))
	c.prog.Names = append(c.prog.Names, s)
	c.nameIndex[s] = idx
	return idx
}

func (c *compiler) newFuncode(rfn *resolver.Function, name string) *Funcode {
	fn := &Funcode{Prog: c.prog, Name: name, SelfSlot: -1}
	if rfn.Self != nil {
		fn.SelfSlot = rfn.Self.Index
	}
	for _, b := range rfn.Locals {
		fn.Locals = append(fn.Locals, Binding{Name: b.Name})
	}
	for i, b := range rfn.Locals {
		if b.Scope == resolver.Cell {
			fn.Cells = append(fn.Cells, i)
		}
	}
	for _, b := range rfn.FreeVars {
		fn.FreeVars = append(fn.FreeVars, Binding{Name: b.Name})
	}
	fn.HasDynamicScope = rfn.HasDynamicScope
	c.prog.Functions = append(c.prog.Functions, fn)
	return fn
}

// loopFrame tracks one active loop or switch's break/continue patch lists,
// the bytecode-stack analogue of spec §4.H's "breaker op with an aggregated
// depth count": instead of a runtime depth counter, break/continue compile
// directly to a JMP whose address is backpatched once the loop/switch's end
// (or, for continue, its post-test point) is known.
type loopFrame struct {
	labels          []string
	isSwitch        bool
	breakPatches    []uint32
	continuePatches []uint32
	// withDepth and triesDepth snapshot fnCompiler.withDepth and
	// len(fnCompiler.tries) at the moment this loop/switch was pushed, so a
	// break/continue targeting it knows how many with-scopes to pop and
	// which enclosing trys' finally blocks (if any) lie inside the loop
	// rather than outside it (see emitLoopJump).
	withDepth  int
	triesDepth int
}

// tryFrame tracks one active try statement's finally, so that a return
// compiled inside its try or catch block (emitReturn scans fc.tries for the
// nearest one with hasFinally) can be forwarded to it: hasFinally is known
// immediately from the AST, before the finally's own start address is
// known, so a return's JMP is left unpatched in pendingPatches until
// compileTry reaches the finally block and can resolve it. A try with no
// finally is simply invisible to emitReturn's scan; nothing routes through
// it.
type tryFrame struct {
	hasFinally     bool
	pendingPatches []uint32
	// depth is this try's own index in fnCompiler.tries at push time, baked
	// into its RESUMEPENDING as the tryDepth operand so a forwarded pending
	// jump (see emitLoopJump) can be bound-checked against the target
	// loop's own triesDepth at runtime.
	depth int
}

// fnCompiler compiles the body of one Funcode.
type fnCompiler struct {
	c    *compiler
	asm  *Assembler
	fn   *Funcode
	rfn  *resolver.Function
	info *resolver.Info

	loops     []*loopFrame
	pendLabel []string
	tries     []*tryFrame
	// withDepth is the number of with-scopes lexically active at the
	// current compilation point (spec §4.E's WithStmt), tracked so
	// break/continue can emit exactly the POPWITH instructions needed to
	// balance PUSHWITH across the jump.
	withDepth int
}

func (c *compiler) compileFunction(fn *Funcode, rfn *resolver.Function, stmts []ast.Stmt) {
	fc := &fnCompiler{c: c, asm: NewAssembler(fn), fn: fn, rfn: rfn, info: c.info}
	fc.hoistFuncDecls(stmts)
	for _, s := range stmts {
		fc.stmt(s)
	}
	fc.asm.Emit(RETURNUNDEF, 0)
	fc.asm.Finish()
}

// hoistFuncDecls compiles and binds every function declaration reachable
// from stmts without crossing into a nested function body, as a prologue
// before any other statement runs: ES3 13 installs declared functions at
// activation time, so `f(); function f() {}` calls the not-yet-reached
// declaration. Mirrors the resolver's collectHoisted traversal.
func (fc *fnCompiler) hoistFuncDecls(stmts []ast.Stmt) {
	forEachFuncDecl(stmts, func(d *ast.FuncDecl) {
		start, _ := d.Span()
		fc.asm.SetPos(start)
		fc.compileNestedFunction(d, d.Name, d.Params, d.Body)
		fc.setBinding(fc.bindingOf(d.Name))
		fc.asm.Emit(POP, -1)
	})
}

func forEachFuncDecl(stmts []ast.Stmt, f func(*ast.FuncDecl)) {
	var walkStmt func(ast.Stmt)
	walkStmts := func(ss []ast.Stmt) {
		for _, s := range ss {
			walkStmt(s)
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch s := s.(type) {
		case *ast.FuncDecl:
			f(s)
		case *ast.Block:
			walkStmts(s.Stmts)
		case *ast.IfStmt:
			walkStmt(s.Then)
			if s.Alt != nil {
				walkStmt(s.Alt)
			}
		case *ast.DoWhileStmt:
			walkStmt(s.Body)
		case *ast.WhileStmt:
			walkStmt(s.Body)
		case *ast.ForStmt:
			walkStmt(s.Body)
		case *ast.ForInStmt:
			walkStmt(s.Body)
		case *ast.WithStmt:
			walkStmt(s.Body)
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

// useStrict reports whether the first statement of a just-entered function
// or chunk body is the "use strict" pragma (spec §4.I).
func useStrict(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := es.Expr.(*ast.Literal)
	if !ok || lit.Kind != token.STRING {
		return false
	}
	s, _ := lit.Value.(string)
	return s == "use strict"
}

// ---- statements ----

func (fc *fnCompiler) stmts(ss []ast.Stmt) {
	for _, s := range ss {
		fc.stmt(s)
	}
}

func (fc *fnCompiler) stmt(s ast.Stmt) {
	start, _ := s.Span()
	fc.asm.SetPos(start)

	switch s := s.(type) {
	case *ast.Block:
		fc.stmts(s.Stmts)

	case *ast.VarDeclStmt:
		for _, d := range s.Decls {
			if d.Init == nil {
				continue
			}
			fc.expr(d.Init)
			fc.setBinding(fc.bindingOf(d.Name))
			fc.asm.Emit(POP, -1)
		}

	case *ast.FuncDecl:
		// compiled and installed into its slot by hoistFuncDecls' prologue;
		// the declaration site itself emits nothing.

	case *ast.ExprStmt:
		fc.expr(s.Expr)
		fc.asm.Emit(POPRESULT, -1)

	case *ast.EmptyStmt, *ast.DebuggerStmt, *ast.BadStmt:
		if _, ok := s.(*ast.DebuggerStmt); ok {
			fc.asm.Emit(DEBUGGER, 0)
		}

	case *ast.IfStmt:
		fc.expr(s.Cond)
		elseAt := fc.asm.EmitJump(JMPIFNOT, -1)
		fc.stmt(s.Then)
		if s.Alt != nil {
			endAt := fc.asm.EmitJump(JMP, 0)
			fc.asm.PatchJump(elseAt)
			fc.stmt(s.Alt)
			fc.asm.PatchJump(endAt)
		} else {
			fc.asm.PatchJump(elseAt)
		}

	case *ast.WhileStmt:
		lf := fc.pushLoop(false)
		top := fc.asm.Here()
		fc.expr(s.Cond)
		exitAt := fc.asm.EmitJump(JMPIFNOT, -1)
		fc.stmt(s.Body)
		backAt := fc.asm.EmitJump(JMP, 0)
		fc.asm.PatchJumpTo(backAt, top)
		fc.asm.PatchJump(exitAt)
		fc.patchContinues(lf, top)
		fc.popLoop(lf)

	case *ast.DoWhileStmt:
		lf := fc.pushLoop(false)
		top := fc.asm.Here()
		fc.stmt(s.Body)
		contPoint := fc.asm.Here()
		fc.expr(s.Cond)
		backAt := fc.asm.EmitJump(JMPIF, -1)
		fc.asm.PatchJumpTo(backAt, top)
		fc.patchContinues(lf, contPoint)
		fc.popLoop(lf)

	case *ast.ForStmt:
		if s.Init != nil {
			fc.stmt(s.Init)
		}
		lf := fc.pushLoop(false)
		top := fc.asm.Here()
		var exitAt uint32
		hasExit := s.Cond != nil
		if hasExit {
			if op, slot, limit, ok := fc.numericLoopCond(s.Cond); ok {
				fc.expr(limit)
				exitAt = fc.asm.EmitJumpArg(op, uint32(slot), -1)
			} else {
				fc.expr(s.Cond)
				exitAt = fc.asm.EmitJump(JMPIFNOT, -1)
			}
		}
		fc.stmt(s.Body)
		contPoint := fc.asm.Here()
		if s.Post != nil {
			if op, slot, ok := fc.numericLoopPost(s.Post); ok {
				fc.asm.EmitArg(op, uint32(slot), 0)
			} else {
				fc.expr(s.Post)
				fc.asm.Emit(POP, -1)
			}
		}
		backAt := fc.asm.EmitJump(JMP, 0)
		fc.asm.PatchJumpTo(backAt, top)
		if hasExit {
			fc.asm.PatchJump(exitAt)
		}
		fc.patchContinues(lf, contPoint)
		fc.popLoop(lf)

	case *ast.ForInStmt:
		fc.expr(s.Right)
		fc.asm.Emit(ENUMKEYS, 0)
		lf := fc.pushLoop(false)
		top := fc.asm.Here()
		exitAt := fc.asm.EmitJump(ENUMNEXT, +1)
		// ENUMNEXT pushed the next key.
		switch left := s.Left.(type) {
		case *ast.VarDeclStmt:
			fc.setBinding(fc.bindingOf(left.Decls[0].Name))
			fc.asm.Emit(POP, -1)
		case ast.Expr:
			fc.assignTo(left, nil)
			fc.asm.Emit(POP, -1)
		}
		fc.stmt(s.Body)
		backAt := fc.asm.EmitJump(JMP, 0)
		fc.asm.PatchJumpTo(backAt, top)
		// a break jumps here with the enumerator still on the stack; the
		// normal exit (ENUMNEXT exhausted) pops it itself and lands past
		// this POP.
		breakTarget := fc.asm.Here()
		fc.asm.Emit(POP, -1)
		fc.asm.PatchJump(exitAt)
		fc.patchContinues(lf, top)
		for _, at := range lf.breakPatches {
			fc.asm.PatchJumpTo(at, breakTarget)
		}
		lf.breakPatches = nil
		fc.popLoop(lf)

	case *ast.ContinueStmt:
		lf := fc.findLoop(s.Label, true)
		at := fc.emitLoopJump(lf)
		lf.continuePatches = append(lf.continuePatches, at)

	case *ast.BreakStmt:
		lf := fc.findLoop(s.Label, false)
		at := fc.emitLoopJump(lf)
		lf.breakPatches = append(lf.breakPatches, at)

	case *ast.ReturnStmt:
		if call, bdg := fc.selfTailCall(s.Value); call != nil {
			fc.getBinding(bdg)
			for _, a := range call.Args {
				fc.expr(a)
			}
			fc.fn.SelfTailCallable = true
			fc.asm.EmitArg(REPOPULATE, uint32(len(call.Args)), -1-len(call.Args))
			return
		}
		if s.Value != nil {
			fc.expr(s.Value)
		} else {
			fc.asm.Emit(UNDEF, +1)
		}
		fc.emitReturn()

	case *ast.WithStmt:
		fc.expr(s.Object)
		fc.asm.Emit(PUSHWITH, -1)
		fc.withDepth++
		fc.stmt(s.Body)
		fc.withDepth--
		fc.asm.Emit(POPWITH, 0)

	case *ast.LabeledStmt:
		fc.pendLabel = append(fc.pendLabel, s.Label.Name)
		fc.stmt(s.Body)

	case *ast.SwitchStmt:
		fc.compileSwitch(s)

	case *ast.ThrowStmt:
		fc.expr(s.Value)
		fc.asm.Emit(THROW, -1)

	case *ast.TryStmt:
		fc.compileTry(s)

	default:
		panic(fmt.Sprintf("compiler: unexpected stmt %T", s))
	}
}

// numericLoopCond recognizes the `i < limit` (and <=, >, >=) head of the
// classic counted for loop, the shape the fused ITERLT..ITERGE forms
// serve. The left operand must be a plain non-captured local so nothing
// outside this frame can rebind it mid-loop; the limit expression is
// re-evaluated every iteration exactly as the unfused lowering would.
func (fc *fnCompiler) numericLoopCond(cond ast.Expr) (Opcode, int, ast.Expr, bool) {
	be, ok := ast.Unwrap(cond).(*ast.BinaryExpr)
	if !ok {
		return 0, 0, nil, false
	}
	var op Opcode
	switch be.Op {
	case token.LT:
		op = ITERLT
	case token.LE:
		op = ITERLE
	case token.GT:
		op = ITERGT
	case token.GE:
		op = ITERGE
	default:
		return 0, 0, nil, false
	}
	id, ok := ast.Unwrap(be.Left).(*ast.Ident)
	if !ok {
		return 0, 0, nil, false
	}
	b := fc.bindingOf(id)
	if b == nil || b.Scope != resolver.Local {
		return 0, 0, nil, false
	}
	return op, b.Index, be.Right, true
}

// numericLoopPost recognizes a bare `i++`/`i--` post clause over a plain
// local, fused to ITERINCR/ITERDECR.
func (fc *fnCompiler) numericLoopPost(post ast.Expr) (Opcode, int, bool) {
	ue, ok := ast.Unwrap(post).(*ast.UpdateExpr)
	if !ok {
		return 0, 0, false
	}
	id, ok := ast.Unwrap(ue.Operand).(*ast.Ident)
	if !ok {
		return 0, 0, false
	}
	b := fc.bindingOf(id)
	if b == nil || b.Scope != resolver.Local {
		return 0, 0, false
	}
	if ue.Op == token.INC {
		return ITERINCR, b.Index, true
	}
	return ITERDECR, b.Index, true
}

func (fc *fnCompiler) pushLoop(isSwitch bool) *loopFrame {
	lf := &loopFrame{
		labels: fc.pendLabel, isSwitch: isSwitch,
		withDepth: fc.withDepth, triesDepth: len(fc.tries),
	}
	fc.pendLabel = nil
	fc.loops = append(fc.loops, lf)
	return lf
}

func (fc *fnCompiler) popLoop(lf *loopFrame) {
	for _, at := range lf.breakPatches {
		fc.asm.PatchJump(at)
	}
	fc.loops = fc.loops[:len(fc.loops)-1]
}

func (fc *fnCompiler) patchContinues(lf *loopFrame, target uint32) {
	for _, at := range lf.continuePatches {
		fc.asm.PatchJumpTo(at, target)
	}
	lf.continuePatches = nil
}

func (fc *fnCompiler) findLoop(label *ast.Ident, forContinue bool) *loopFrame {
	if label == nil {
		for i := len(fc.loops) - 1; i >= 0; i-- {
			lf := fc.loops[i]
			if forContinue && lf.isSwitch {
				continue
			}
			return lf
		}
		panic("compiler: break/continue outside loop/switch (resolver should have caught this)")
	}
	for i := len(fc.loops) - 1; i >= 0; i-- {
		lf := fc.loops[i]
		for _, l := range lf.labels {
			if l == label.Name {
				return lf
			}
		}
	}
	panic("compiler: unresolved label (resolver should have caught this): " + label.Name)
}

// compileSwitch lowers a switch statement as a chain of discriminant
// comparisons followed by one POP+JMP trampoline per case (including
// default, if present). Every path into a case body passes through exactly
// one trampoline, which pops the discriminant; a fallthrough from the
// previous case's body is a plain fall-off-the-end into the next case's
// body and never passes through a trampoline, so the discriminant is popped
// exactly once no matter which case, or none, matched.
func (fc *fnCompiler) compileSwitch(s *ast.SwitchStmt) {
	fc.expr(s.Disc)
	// every trampoline is entered by a jump with the discriminant still on
	// the stack, so each starts from this depth, not from the depth the
	// previous trampoline's POP left behind.
	discDepth := fc.asm.depth
	lf := fc.pushLoop(true)

	n := len(s.Cases)
	testJumps := make([]uint32, n)
	defaultIdx := -1
	for i, cc := range s.Cases {
		if cc.Test == nil {
			defaultIdx = i
			continue
		}
		fc.asm.Emit(DUP, +1)
		fc.expr(cc.Test)
		fc.asm.Emit(EQEQEQ, -1)
		testJumps[i] = fc.asm.EmitJump(JMPIF, -1)
	}
	noMatchJump := fc.asm.EmitJump(JMP, 0)
	hasDefault := defaultIdx >= 0

	trampolines := make([]uint32, n)
	var noMatchTrampoline uint32
	for i := range s.Cases {
		if i == defaultIdx {
			fc.asm.PatchJump(noMatchJump)
		} else {
			fc.asm.PatchJump(testJumps[i])
		}
		fc.asm.depth = discDepth
		fc.asm.Emit(POP, -1)
		trampolines[i] = fc.asm.EmitJump(JMP, 0)
	}
	if !hasDefault {
		fc.asm.PatchJump(noMatchJump)
		fc.asm.depth = discDepth
		fc.asm.Emit(POP, -1)
		noMatchTrampoline = fc.asm.EmitJump(JMP, 0)
	}

	bodyStarts := make([]uint32, n)
	for i, cc := range s.Cases {
		bodyStarts[i] = fc.asm.Here()
		fc.stmts(cc.Body)
	}
	switchEnd := fc.asm.Here()

	for i := range s.Cases {
		fc.asm.PatchJumpTo(trampolines[i], bodyStarts[i])
	}
	if !hasDefault {
		fc.asm.PatchJumpTo(noMatchTrampoline, switchEnd)
	}

	fc.popLoop(lf)
}

// compileTry lowers a try statement. A `return` lexically inside the try or
// catch block (found by emitReturn scanning fc.tries innermost-first for a
// frame with hasFinally) jumps to this try's finally instead of returning
// directly, as does a break/continue crossing it (emitLoopJump);
// pendingPatches collects those jump sites before the finally's address is
// known; they are backpatched the moment compileTry reaches it, the same
// pattern as a loop's continuePatches.
//
// A throw is not handled here at all: it is found dynamically by the
// machine scanning Funcode.Catches/Finals for the innermost region covering
// the faulting pc, since a throw can originate from arbitrarily deep nested
// evaluation, not just a statement boundary compileTry can see.
func (fc *fnCompiler) compileTry(s *ast.TryStmt) {
	withDepthAtTryStart := fc.withDepth
	tf := &tryFrame{hasFinally: s.FinallyBlock != nil, depth: len(fc.tries)}
	fc.tries = append(fc.tries, tf)

	tryStart := fc.asm.Here()
	fc.stmts(s.Block.Stmts)
	tryEnd := fc.asm.Here()
	afterTryJump := fc.asm.EmitJump(JMP, 0)

	catchPC := fc.asm.Here()
	catchEnd := catchPC
	if s.CatchBlock != nil {
		// the machine pushes the thrown value when it jumps here (handleFault).
		fc.asm.ReserveStack(+1)
		if s.Param != nil {
			// the catch parameter is always a plain frame slot (Local or,
			// if captured by a closure defined in the catch body, Cell):
			// CATCHBIND stores directly to it and consumes the thrown
			// value in one op, unlike a source-level assignment which
			// would leave it on the stack.
			b := fc.bindingOf(s.Param)
			fc.asm.EmitArg(CATCHBIND, uint32(b.Index), -1)
		} else {
			fc.asm.Emit(POP, -1)
		}
		fc.stmts(s.CatchBlock.Stmts)
		catchEnd = fc.asm.Here()
		fc.fn.Catches = append(fc.fn.Catches, CatchRegion{
			Start: tryStart, End: tryEnd, CatchPC: catchPC, WithDepth: withDepthAtTryStart,
		})
	}
	fc.asm.PatchJump(afterTryJump)

	if s.FinallyBlock == nil {
		fc.tries = fc.tries[:len(fc.tries)-1]
		return
	}

	afterNormal := fc.asm.EmitJump(JMP, 0)
	finallyStart := fc.asm.Here()
	for _, at := range tf.pendingPatches {
		fc.asm.PatchJumpTo(at, finallyStart)
	}

	// A return inside the finally body itself overrides whatever completion
	// reached it and must not route through this same finally again, so this
	// try's frame is popped before compiling the finally's statements: a
	// nested return inside it sees only the try's own enclosing frames.
	fc.tries = fc.tries[:len(fc.tries)-1]
	fc.stmts(s.FinallyBlock.Stmts)

	fc.asm.PatchJumpTo(afterNormal, finallyStart)
	patchAfter, patchOuter := fc.asm.EmitJump2(RESUMEPENDING, 0)
	fc.asm.emitFixed32(uint32(tf.depth))
	fc.asm.PatchJumpTo(patchAfter, fc.asm.Here())
	if outer := fc.nearestFinally(); outer != nil {
		outer.pendingPatches = append(outer.pendingPatches, patchOuter)
	} else {
		fc.asm.PatchJumpTo(patchOuter, NoOuterFinally)
	}

	fc.fn.Finals = append(fc.fn.Finals, FinalRegion{
		Start: tryStart, End: catchEnd, FinallyPC: finallyStart, WithDepth: withDepthAtTryStart,
	})
}

// nearestFinally returns the innermost active try frame with a finally, or
// nil if none encloses the current point.
func (fc *fnCompiler) nearestFinally() *tryFrame {
	return fc.nearestFinallyWithin(0)
}

// nearestFinallyWithin returns the innermost active try frame with a
// finally whose depth is at least minDepth, or nil if none — used to bound
// a break/continue's finally-crossing to the trys nested inside the
// loop/switch being exited, so a finally belonging to a try that merely
// encloses that loop is not considered at all.
func (fc *fnCompiler) nearestFinallyWithin(minDepth int) *tryFrame {
	for i := len(fc.tries) - 1; i >= minDepth; i-- {
		if fc.tries[i].hasFinally {
			return fc.tries[i]
		}
	}
	return nil
}

// emitLoopJump compiles the non-local exit for a break or continue
// targeting lf. It first pops any with-scopes entered since lf was pushed,
// balancing PUSHWITH/POPWITH across the jump exactly as a plain fall-through
// out of the with statement would. If no enclosing try with a finally lies
// between here and lf, it then compiles straight to a plain JMP; otherwise,
// like a return, it stashes a pending jump (the eventual loop-exit/continue
// address, backpatched by the caller into the returned offset, plus lf's
// own triesDepth as the forwarding bound) and routes through the nearest
// such finally. RESUMEPENDING stops forwarding once it would cross outside
// that bound (see machine.run), so a finally belonging to a try that
// encloses lf rather than sitting inside it runs later, normally, instead
// of early.
func (fc *fnCompiler) emitLoopJump(lf *loopFrame) uint32 {
	for i := fc.withDepth; i > lf.withDepth; i-- {
		fc.asm.Emit(POPWITH, 0)
	}
	tf := fc.nearestFinallyWithin(lf.triesDepth)
	if tf == nil {
		return fc.asm.EmitJump(JMP, 0)
	}
	patchAt := fc.asm.EmitPendingJump(uint32(lf.triesDepth))
	at := fc.asm.EmitJump(JMP, 0)
	tf.pendingPatches = append(tf.pendingPatches, at)
	return patchAt
}

// selfTailCall reports whether a return statement's value is a direct call
// to the immediately-enclosing function through its own declared name —
// either a named function expression's immutable self-binding (ES3 13), or
// a function declaration's name binding in the enclosing scope — the shape
// REPOPULATE turns into a frame refill instead of a recursive Call. The
// declaration-name case is only provisionally self-recursive (the name may
// have been reassigned by the time the call runs), so the compiled form
// pushes the resolved callee and the machine deoptimizes to an ordinary
// call when it no longer is this same function. Suppressed inside try (an
// enclosing finally must still run before the "return") and inside with
// (the with-scope stack would survive the restart), and for dynamic-scope
// functions generally, where the callee name cannot be resolved statically
// at all.
func (fc *fnCompiler) selfTailCall(v ast.Expr) (*ast.CallExpr, *resolver.Binding) {
	if v == nil || len(fc.tries) > 0 || fc.withDepth > 0 || fc.fn.HasDynamicScope {
		return nil, nil
	}
	call, ok := ast.Unwrap(v).(*ast.CallExpr)
	if !ok {
		return nil, nil
	}
	id, ok := ast.Unwrap(call.Callee).(*ast.Ident)
	if !ok || id.Name == "eval" {
		return nil, nil
	}
	b := fc.bindingOf(id)
	if b == nil {
		return nil, nil
	}
	var selfName ast.Node
	if fc.rfn.Self != nil {
		selfName = fc.rfn.Self.Decl
	} else if d, ok := fc.rfn.Definition.(*ast.FuncDecl); ok {
		selfName = d.Name
	}
	if selfName == nil || b.Decl != selfName {
		return nil, nil
	}
	return call, b
}

// emitReturn compiles a `return`. If no enclosing try has a finally, it
// compiles straight to RETURN. Otherwise it stashes the return value
// (SETPENDING_RETURN) and jumps to the nearest enclosing finally instead;
// that finally's RESUMEPENDING (emitted by compileTry) performs the pending
// return, or forwards it to the next enclosing finally, once it is done.
func (fc *fnCompiler) emitReturn() {
	tf := fc.nearestFinally()
	if tf == nil {
		fc.asm.Emit(RETURN, -1)
		return
	}
	fc.asm.Emit(SETPENDING_RETURN, -1)
	at := fc.asm.EmitJump(JMP, 0)
	tf.pendingPatches = append(tf.pendingPatches, at)
}

// ---- expressions ----

func (fc *fnCompiler) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
		fc.literal(e)

	case *ast.Ident:
		fc.getBinding(fc.bindingOf(e))

	case *ast.ThisExpr:
		fc.asm.Emit(GETTHIS, +1)

	case *ast.RegexpLit:
		idx := fc.c.constant(e.Raw)
		fc.asm.EmitArg(NEWREGEXP, idx, +1)

	case *ast.ArrayLit:
		for _, el := range e.Elements {
			if el == nil {
				fc.asm.Emit(UNDEF, +1)
			} else {
				fc.expr(el)
			}
		}
		fc.asm.EmitArg(NEWARRAY, uint32(len(e.Elements)), 1-len(e.Elements))

	case *ast.ObjectLit:
		fc.asm.Emit(NEWOBJECT, +1)
		for _, p := range e.Props {
			name := propName(p.Key)
			idx := fc.c.name(name)
			switch p.Kind {
			case ast.PropGet:
				fe := p.Value.(*ast.FuncExpr)
				fc.compileNestedFunction(fe, fe.Name, fe.Params, fe.Body)
				fc.asm.EmitArg(DEFGETTER, idx, -1)
			case ast.PropSet:
				fe := p.Value.(*ast.FuncExpr)
				fc.compileNestedFunction(fe, fe.Name, fe.Params, fe.Body)
				fc.asm.EmitArg(DEFSETTER, idx, -1)
			default:
				fc.expr(p.Value)
				fc.asm.EmitArg(INITMEMBER, idx, -1)
			}
		}

	case *ast.FuncExpr:
		fc.compileNestedFunction(e, e.Name, e.Params, e.Body)

	case *ast.ParenExpr:
		fc.expr(e.Expr)

	case *ast.MemberExpr:
		fc.expr(e.Object)
		if e.Computed {
			fc.expr(e.Property)
			fc.asm.Emit(GETELEM, -1)
		} else {
			idx := fc.c.name(e.Property.(*ast.Ident).Name)
			fc.asm.EmitArg(GETMEMBER, idx, 0)
		}

	case *ast.NewExpr:
		fc.expr(e.Callee)
		for _, a := range e.Args {
			fc.expr(a)
		}
		fc.asm.EmitArg(CONSTRUCT, uint32(len(e.Args)), -len(e.Args))

	case *ast.CallExpr:
		fc.compileCall(e)

	case *ast.UnaryExpr:
		fc.compileUnary(e)

	case *ast.UpdateExpr:
		fc.compileUpdate(e)

	case *ast.BinaryExpr:
		fc.compileBinary(e)

	case *ast.ConditionalExpr:
		fc.expr(e.Cond)
		elseAt := fc.asm.EmitJump(JMPIFNOT, -1)
		fc.expr(e.Then)
		endAt := fc.asm.EmitJump(JMP, 0)
		fc.asm.PatchJump(elseAt)
		fc.expr(e.Else)
		fc.asm.PatchJump(endAt)

	case *ast.AssignExpr:
		fc.compileAssign(e)

	case *ast.SequenceExpr:
		for i, x := range e.Exprs {
			if i > 0 {
				fc.asm.Emit(POP, -1)
			}
			fc.expr(x)
		}

	default:
		panic(fmt.Sprintf("compiler: unexpected expr %T", e))
	}
}

func propName(key ast.Expr) string {
	switch k := key.(type) {
	case *ast.Ident:
		return k.Name
	case *ast.Literal:
		if s, ok := k.Value.(string); ok {
			return s
		}
		return k.Raw
	default:
		panic(fmt.Sprintf("compiler: unexpected property key %T", key))
	}
}

func (fc *fnCompiler) literal(e *ast.Literal) {
	switch e.Kind {
	case token.NULL:
		fc.asm.Emit(NULLV, +1)
	case token.TRUE:
		fc.asm.Emit(TRUE, +1)
	case token.FALSE:
		fc.asm.Emit(FALSE, +1)
	case token.INT:
		idx := fc.c.constant(e.Value.(int64))
		fc.asm.EmitArg(CONSTANT, idx, +1)
	case token.FLOAT:
		idx := fc.c.constant(e.Value.(float64))
		fc.asm.EmitArg(CONSTANT, idx, +1)
	case token.STRING:
		idx := fc.c.constant(e.Value.(string))
		fc.asm.EmitArg(CONSTANT, idx, +1)
	default:
		panic(fmt.Sprintf("compiler: unexpected literal kind %v", e.Kind))
	}
}

func (fc *fnCompiler) compileCall(e *ast.CallExpr) {
	switch callee := ast.Unwrap(e.Callee).(type) {
	case *ast.MemberExpr:
		fc.expr(callee.Object)
		if callee.Computed {
			fc.expr(callee.Property)
			for _, a := range e.Args {
				fc.expr(a)
			}
			packed := uint32(len(e.Args))
			fc.asm.EmitArg(CALLELEM, packed, -1-len(e.Args))
		} else {
			idx := fc.c.name(callee.Property.(*ast.Ident).Name)
			if len(e.Args) > 255 {
				// CALLMEMBER packs the argument count into one byte; fall
				// back to the generic CALL shape with the receiver kept as
				// `this`.
				fc.asm.Emit(DUP, +1)
				fc.asm.EmitArg(GETMEMBER, idx, 0)
				fc.asm.Emit(EXCH, 0)
				for _, a := range e.Args {
					fc.expr(a)
				}
				fc.asm.EmitArg(CALL, uint32(len(e.Args)), -1-len(e.Args))
				return
			}
			for _, a := range e.Args {
				fc.expr(a)
			}
			packed := idx<<8 | uint32(len(e.Args))
			fc.asm.EmitArg(CALLMEMBER, packed, -len(e.Args))
		}

	case *ast.Ident:
		if callee.Name == "eval" {
			for _, a := range e.Args {
				fc.expr(a)
			}
			fc.asm.EmitArg(EVAL, uint32(len(e.Args)), 1-len(e.Args))
			return
		}
		fc.getBinding(fc.bindingOf(callee))
		fc.asm.Emit(UNDEF, +1) // no `this` for a bare call
		for _, a := range e.Args {
			fc.expr(a)
		}
		fc.asm.EmitArg(CALL, uint32(len(e.Args)), -1-len(e.Args))

	default:
		fc.expr(e.Callee)
		fc.asm.Emit(UNDEF, +1) // no `this` for a bare call
		for _, a := range e.Args {
			fc.expr(a)
		}
		fc.asm.EmitArg(CALL, uint32(len(e.Args)), -1-len(e.Args))
	}
}

func (fc *fnCompiler) compileUnary(e *ast.UnaryExpr) {
	if e.Op == token.DELETE {
		switch t := ast.Unwrap(e.Operand).(type) {
		case *ast.MemberExpr:
			fc.expr(t.Object)
			if t.Computed {
				fc.expr(t.Property)
				fc.asm.Emit(DELELEM, -1)
			} else {
				idx := fc.c.name(t.Property.(*ast.Ident).Name)
				fc.asm.EmitArg(DELMEMBER, idx, 0)
			}
		case *ast.Ident:
			b := fc.bindingOf(t)
			if b.Scope == resolver.Global {
				idx := fc.c.name(b.Name)
				fc.asm.EmitArg(DELGLOBAL, idx, +1)
			} else {
				fc.asm.Emit(FALSE, +1)
			}
		default:
			fc.expr(e.Operand)
			fc.asm.Emit(POP, -1)
			fc.asm.Emit(TRUE, +1)
		}
		return
	}
	if e.Op == token.TYPEOF {
		fc.expr(e.Operand)
		fc.asm.Emit(TYPEOF, 0)
		return
	}
	if e.Op == token.PLUS || e.Op == token.MINUS {
		if v, ok := foldNumeric(e); ok {
			fc.emitNumber(v)
			return
		}
	}
	fc.expr(e.Operand)
	switch e.Op {
	case token.PLUS:
		fc.asm.Emit(UPLUS, 0)
	case token.MINUS:
		fc.asm.Emit(UMINUS, 0)
	case token.TILDE:
		fc.asm.Emit(UBNOT, 0)
	case token.BANG:
		fc.asm.Emit(UNOT, 0)
	case token.VOID:
		fc.asm.Emit(VOID, 0)
	default:
		panic(fmt.Sprintf("compiler: unexpected unary op %v", e.Op))
	}
}

// compileUpdate lowers ++/-- (spec §4.B's UpdateExpr). Prefix form leaves the
// new value as the expression's result; postfix leaves the old value. Both
// rely on Set* opcodes leaving the stored value on the stack (they compile
// assignment-as-expression), which makes the prefix case trivial; postfix
// additionally stashes the old value in a compiler-synthesized temp local,
// since the operand stack alone has no way to keep a value "underneath" the
// store once a member's object/key must be consumed by SETELEM/SETMEMBER.
func (fc *fnCompiler) compileUpdate(e *ast.UpdateExpr) {
	op := ADD
	if e.Op == token.DEC {
		op = SUB
	}
	one := fc.c.constant(int64(1))
	switch t := ast.Unwrap(e.Operand).(type) {
	case *ast.Ident:
		b := fc.bindingOf(t)
		fc.getBinding(b)
		if e.Prefix {
			fc.asm.EmitArg(CONSTANT, one, +1)
			fc.asm.Emit(op, -1)
			fc.setBinding(b)
			return
		}
		fc.asm.Emit(DUP, +1)
		fc.asm.EmitArg(CONSTANT, one, +1)
		fc.asm.Emit(op, -1)
		fc.setBinding(b)
		fc.asm.Emit(POP, -1)

	case *ast.MemberExpr:
		fc.expr(t.Object)
		if t.Computed {
			fc.expr(t.Property)
			fc.asm.Emit(DUP2, +2)
			fc.asm.Emit(GETELEM, -1)
			tmp := -1
			if !e.Prefix {
				tmp = fc.tempLocal()
				fc.asm.EmitArg(SETLOCAL, uint32(tmp), 0)
			}
			fc.asm.EmitArg(CONSTANT, one, +1)
			fc.asm.Emit(op, -1)
			fc.asm.Emit(SETELEM, -2)
			if !e.Prefix {
				fc.asm.Emit(POP, -1)
				fc.asm.EmitArg(GETLOCAL, uint32(tmp), +1)
			}
		} else {
			idx := fc.c.name(t.Property.(*ast.Ident).Name)
			fc.asm.Emit(DUP, +1)
			fc.asm.EmitArg(GETMEMBER, idx, 0)
			tmp := -1
			if !e.Prefix {
				tmp = fc.tempLocal()
				fc.asm.EmitArg(SETLOCAL, uint32(tmp), 0)
			}
			fc.asm.EmitArg(CONSTANT, one, +1)
			fc.asm.Emit(op, -1)
			fc.asm.EmitArg(SETMEMBER, idx, -1)
			if !e.Prefix {
				fc.asm.Emit(POP, -1)
				fc.asm.EmitArg(GETLOCAL, uint32(tmp), +1)
			}
		}

	default:
		panic(fmt.Sprintf("compiler: invalid update target %T", t))
	}
}

// tempLocal allocates a new frame slot for compiler-internal use (never
// captured by a closure, never named in source), returning its index. The
// machine sizes each call frame as len(Locals)+MaxStack, so appending here
// after resolution has already fixed the named slots is safe.
func (fc *fnCompiler) tempLocal() int {
	idx := len(fc.fn.Locals)
	fc.fn.Locals = append(fc.fn.Locals, Binding{Name: "<temp>"})
	return idx
}

// foldNumeric evaluates e at compile time when it is pure arithmetic over
// numeric literals (unary +/- and the five arithmetic binary operators) —
// the constant-folding pass of spec §4.H, restricted to numbers: string
// concatenation in `+` chains is deliberately not folded (§4.I).
func foldNumeric(e ast.Expr) (float64, bool) {
	switch e := ast.Unwrap(e).(type) {
	case *ast.Literal:
		switch e.Kind {
		case token.INT:
			return float64(e.Value.(int64)), true
		case token.FLOAT:
			return e.Value.(float64), true
		}
		return 0, false
	case *ast.UnaryExpr:
		v, ok := foldNumeric(e.Operand)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case token.PLUS:
			return v, true
		case token.MINUS:
			return -v, true
		}
		return 0, false
	case *ast.BinaryExpr:
		l, ok := foldNumeric(e.Left)
		if !ok {
			return 0, false
		}
		r, ok := foldNumeric(e.Right)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case token.PLUS:
			return l + r, true
		case token.MINUS:
			return l - r, true
		case token.STAR:
			return l * r, true
		case token.SLASH:
			return l / r, true
		case token.PERCENT:
			return math.Mod(l, r), true
		}
		return 0, false
	}
	return 0, false
}

// emitNumber emits a folded numeric value as a single CONSTANT, choosing
// the int64 pool entry when the value is an exact safe integer (the same
// representation split the literal() path and the machine's numberValue
// make).
func (fc *fnCompiler) emitNumber(v float64) {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && v >= -(1<<53) && v <= (1<<53) {
		fc.asm.EmitArg(CONSTANT, fc.c.constant(int64(v)), +1)
		return
	}
	fc.asm.EmitArg(CONSTANT, fc.c.constant(v), +1)
}

func (fc *fnCompiler) compileBinary(e *ast.BinaryExpr) {
	if v, ok := foldNumeric(e); ok {
		fc.emitNumber(v)
		return
	}
	switch e.Op {
	case token.ANDAND:
		// ANDJMP pops its operand and falls through when truthy (leaving the
		// stack empty for e.Right to push the real result), or leaves it and
		// jumps straight past e.Right when falsy (short-circuiting with the
		// left operand itself as the result) — either way exactly one value
		// remains at the merge point.
		fc.expr(e.Left)
		at := fc.asm.EmitJump(ANDJMP, -1)
		fc.expr(e.Right)
		fc.asm.PatchJump(at)
		return
	case token.OROR:
		fc.expr(e.Left)
		at := fc.asm.EmitJump(ORJMP, -1)
		fc.expr(e.Right)
		fc.asm.PatchJump(at)
		return
	}

	fc.expr(e.Left)
	fc.expr(e.Right)
	op, ok := binOpcode[e.Op]
	if !ok {
		panic(fmt.Sprintf("compiler: unexpected binary op %v", e.Op))
	}
	fc.asm.Emit(op, -1)
}

var binOpcode = map[token.Token]Opcode{
	token.LT: LT, token.LE: LE, token.GT: GT, token.GE: GE,
	token.EQEQ: EQEQ, token.NEQ: NEQ, token.EQEQEQ: EQEQEQ, token.NEQEQ: NEQEQ,
	token.PLUS: ADD, token.MINUS: SUB, token.STAR: MUL, token.SLASH: DIV, token.PERCENT: MOD,
	token.LSHIFT: SHL, token.RSHIFT: SHR, token.URSHIFT: USHR,
	token.AMP: BAND, token.PIPE: BOR, token.CARET: BXOR,
	token.INSTANCEOF: INSTANCEOF, token.IN: IN,
}

func (fc *fnCompiler) compileAssign(e *ast.AssignExpr) {
	if e.Op == token.EQ {
		fc.expr(e.Right)
		fc.assignTo(e.Left, nil)
		return
	}
	binOp, ok := compoundBinOp[e.Op]
	if !ok {
		panic(fmt.Sprintf("compiler: unexpected compound assign op %v", e.Op))
	}
	fc.assignTo(e.Left, func() { fc.expr(e.Right); fc.asm.Emit(binOp, -1) })
}

var compoundBinOp = map[token.Token]Opcode{
	token.PLUS_EQ: ADD, token.MINUS_EQ: SUB, token.STAR_EQ: MUL, token.SLASH_EQ: DIV,
	token.PERCENT_EQ: MOD, token.LSHIFT_EQ: SHL, token.RSHIFT_EQ: SHR, token.URSHIFT_EQ: USHR,
	token.AMP_EQ: BAND, token.PIPE_EQ: BOR, token.CARET_EQ: BXOR,
}

// assignTo compiles an assignment to target. If combine is nil, the value to
// store is assumed already on the stack (simple assignment); otherwise
// combine is called with the target's current value already pushed, and
// must leave the value to store on top of the stack (compound assignment's
// read-modify-write).
func (fc *fnCompiler) assignTo(target ast.Expr, combine func()) {
	switch t := ast.Unwrap(target).(type) {
	case *ast.Ident:
		b := fc.bindingOf(t)
		if combine != nil {
			fc.getBinding(b)
			combine()
		}
		fc.setBinding(b)

	case *ast.MemberExpr:
		fc.expr(t.Object)
		if t.Computed {
			fc.expr(t.Property)
			if combine != nil {
				fc.asm.Emit(DUP2, +2)
				fc.asm.Emit(GETELEM, -1)
				combine()
			}
			fc.asm.Emit(SETELEM, -2)
		} else {
			idx := fc.c.name(t.Property.(*ast.Ident).Name)
			if combine != nil {
				fc.asm.Emit(DUP, +1)
				fc.asm.EmitArg(GETMEMBER, idx, 0)
				combine()
			}
			fc.asm.EmitArg(SETMEMBER, idx, -1)
		}

	default:
		panic(fmt.Sprintf("compiler: invalid assignment target %T", t))
	}
}

// ---- bindings ----

func (fc *fnCompiler) bindingOf(id *ast.Ident) *resolver.Binding {
	return fc.info.Idents[id]
}

func (fc *fnCompiler) getBinding(b *resolver.Binding) {
	switch b.Scope {
	case resolver.Local, resolver.Cell:
		fc.asm.EmitArg(GETLOCAL, uint32(b.Index), +1)
	case resolver.Free:
		fc.asm.EmitArg(GETFREE, uint32(b.Index), +1)
	case resolver.Global:
		fc.asm.EmitArg(GETGLOBAL, fc.c.name(b.Name), +1)
	case resolver.Dynamic:
		fc.asm.EmitArg(GETDYNAMIC, fc.c.name(b.Name), +1)
	case resolver.Predeclared:
		fc.asm.EmitArg(GETPREDECL, fc.c.name(b.Name), +1)
	case resolver.Universal:
		fc.asm.EmitArg(GETUNIVERSE, fc.c.name(b.Name), +1)
	default:
		panic(fmt.Sprintf("compiler: unexpected binding scope %v", b.Scope))
	}
}

func (fc *fnCompiler) setBinding(b *resolver.Binding) {
	switch b.Scope {
	case resolver.Local, resolver.Cell:
		fc.asm.EmitArg(SETLOCAL, uint32(b.Index), 0)
	case resolver.Free:
		fc.asm.EmitArg(SETFREE, uint32(b.Index), 0)
	case resolver.Global:
		fc.asm.EmitArg(SETGLOBAL, fc.c.name(b.Name), 0)
	case resolver.Dynamic:
		fc.asm.EmitArg(SETDYNAMIC, fc.c.name(b.Name), 0)
	case resolver.Predeclared, resolver.Universal:
		// assigning to a predeclared/universal name in sloppy mode creates (or
		// overwrites) a global of the same name, mirroring ES3's fall-through
		// to the global object when no lexical binding is writable.
		fc.asm.EmitArg(SETGLOBAL, fc.c.name(b.Name), 0)
	default:
		panic(fmt.Sprintf("compiler: unexpected binding scope %v", b.Scope))
	}
}

// freeVarIndex finds b's position within fc.rfn's own FreeVars list (a
// pass-through entry fixupFreeVars is guaranteed to have added there, since b
// is not owned by fc.rfn itself).
func (fc *fnCompiler) freeVarIndex(b *resolver.Binding) int {
	for i, x := range fc.rfn.FreeVars {
		if x == b {
			return i
		}
	}
	panic("compiler: free var not forwarded to capturing function: " + b.Name)
}

// ---- nested functions ----

func (fc *fnCompiler) compileNestedFunction(node ast.Node, name *ast.Ident, params []*ast.Ident, body *ast.Block) {
	rfn := fc.info.Funcs[node]
	nm := "<anonymous>"
	if name != nil {
		nm = name.Name
	}
	child := fc.c.newFuncode(rfn, nm)
	child.NumParams = len(params)
	child.Strict = useStrict(body.Stmts)
	for _, s := range body.Stmts {
		if refsArguments(s) {
			child.NeedsArguments = true
			break
		}
	}

	// Each entry in rfn.FreeVars is the captured variable's original Cell
	// binding, possibly forwarded here from an ancestor beyond fc.rfn by
	// fixupFreeVars. If fc.rfn itself owns it, it is one of fc.rfn's own
	// Locals slots (push raw via GETLOCALRAW); otherwise fixupFreeVars is
	// guaranteed to have given fc.rfn its own pass-through FreeVars entry for
	// the same binding, found here by identity (push raw via GETFREERAW).
	for _, b := range rfn.FreeVars {
		if fc.c.owner[b] == fc.rfn {
			fc.asm.EmitArg(GETLOCALRAW, uint32(b.Index), +1)
			continue
		}
		j := fc.freeVarIndex(b)
		fc.asm.EmitArg(GETFREERAW, uint32(j), +1)
	}

	idx := uint32(len(fc.c.prog.Functions) - 1)
	fc.asm.EmitArg(NEWFUNC, idx, 1-len(rfn.FreeVars))

	fc.c.compileFunction(child, rfn, body.Stmts)
}

// refsArguments does a shallow scan (no descent into nested functions) for
// any reference to the identifier "arguments", used to decide whether the
// frame prologue must materialize the arguments object (spec §4.F).
func refsArguments(s ast.Stmt) bool {
	found := false
	var v ast.VisitorFunc
	v = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if found || dir != ast.VisitEnter {
			return nil
		}
		switch n := n.(type) {
		case *ast.FuncExpr, *ast.FuncDecl:
			return nil
		case *ast.Ident:
			if n.Name == "arguments" {
				found = true
			}
		}
		return v
	}
	ast.Walk(v, s)
	return found
}
