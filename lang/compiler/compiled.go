package compiler

import "github.com/lorelei-lang/lorelei/lang/token"

// Version is bumped whenever the instruction encoding changes, so a future
// bytecode cache (none is implemented here; the spec has no on-disk format)
// would know to discard stale entries.
const Version = 1

// Binding describes one slot of a Funcode's Locals or FreeVars table, kept
// for diagnostics (backtraces, "referenced before assignment" messages).
type Binding struct {
	Name string
	Pos  token.Pos
}

// NoOuterFinally is the RESUMEPENDING sentinel meaning there is no further
// enclosing finally to forward a pending return to: the instruction should
// perform the pending action (the real return) instead of jumping onward.
const NoOuterFinally = 0xFFFFFFFF

// CatchRegion describes one try block's protected pc range [Start,End),
// mirroring the teacher's Defer/Catch mechanism: the machine scans this
// table, on a throw, for the innermost region covering the faulting pc and
// jumps to CatchPC with the thrown value pushed for CATCHBIND to consume.
// Covers only the try block itself, not its own catch or finally bodies.
type CatchRegion struct {
	Start, End uint32
	CatchPC    uint32
	CatchSlot  int32 // not filled in by compileTry (always 0); CATCHBIND's own operand names the slot the caught value binds to
	// WithDepth is the number of with-scopes active when the try statement
	// itself was entered; the machine truncates Frame.WithStack to this
	// length when jumping here, discarding any with-scopes a throw unwound
	// through inside the protected region.
	WithDepth int
}

// Covers reports whether pc lies within the catch's protected range.
func (c CatchRegion) Covers(pc int64) bool { return pc >= int64(c.Start) && pc < int64(c.End) }

// FinalRegion describes one try statement's protected pc range [Start,End),
// covering the try block AND its catch block (if any) combined: a finally
// runs whether the try block completed normally, threw, or ran its catch
// body. Consulted for every throw in addition to CatchRegion, and also
// reached directly by compiled code via SETPENDING_RETURN+JMP when a
// `return` inside the region needs to run the finally before actually
// returning.
type FinalRegion struct {
	Start, End uint32
	FinallyPC  uint32
	// WithDepth is the number of with-scopes active when the try statement
	// itself was entered; see CatchRegion.WithDepth.
	WithDepth int
}

// Covers reports whether pc lies within the final region's protected range.
func (f FinalRegion) Covers(pc int64) bool { return pc >= int64(f.Start) && pc < int64(f.End) }

// Funcode is the compiled form of one function body or the chunk top level,
// the spec's "OpList": a flat array of op records, here encoded as a byte
// stream read directly by the machine's dispatch loop.
type Funcode struct {
	Prog *Program

	Name      string
	Pos       token.Pos
	Code      []byte
	Locals    []Binding // params first, then hoisted vars/functions
	Cells     []int     // indices into Locals that are boxed (captured by a nested closure)
	FreeVars  []Binding // captured enclosing cells, for backtraces
	Catches   []CatchRegion
	Finals    []FinalRegion
	MaxStack  int
	NumParams int
	Strict    bool
	// NeedsArguments is true when the body references `arguments` anywhere,
	// requiring the machine to materialize the arguments object on entry
	// (spec §4.F's execution path 2/3).
	NeedsArguments bool
	// HasDynamicScope mirrors resolver.Function.HasDynamicScope: some
	// reference within this function lies inside a `with`, so the with-scope
	// chain must be consulted at GETDYNAMIC/SETDYNAMIC sites.
	HasDynamicScope bool
	// SelfTailCallable is true when the compiler proved at least one return
	// in this function's body is a self-recursive tail call through the
	// function's own name (a named function expression's self-binding or a
	// function declaration's name), lowered to REPOPULATE.
	SelfTailCallable bool
	// SelfSlot is the Locals index holding a named function expression's
	// self-reference, initialized with the function object itself on frame
	// entry; -1 when the function has no such binding.
	SelfSlot int

	// positions maps pcs to source positions for backtrace printing
	// (spec §6's caret/tilde diagnostic). Built in parallel with Code.
	positions []pcPos
}

type pcPos struct {
	pc  uint32
	pos token.Pos
}

// Position returns the source position most closely associated with pc.
func (fn *Funcode) Position(pc uint32) token.Pos {
	// positions is sorted by pc ascending; find last entry with pc' <= pc.
	lo, hi := 0, len(fn.positions)
	for lo < hi {
		mid := (lo + hi) / 2
		if fn.positions[mid].pc <= pc {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return token.NoPos
	}
	return fn.positions[lo-1].pos
}

// Program is the compiled form of one chunk (one unit of compilation),
// analogous to the teacher's compiler.Program: every Funcode reachable from
// the top level, plus the constant and name tables they index into.
type Program struct {
	Filename  string
	Toplevel  *Funcode
	Functions []*Funcode // Functions[0] == Toplevel
	Constants []interface{} // int64 | float64 | string
	Names     []string      // interned for GETMEMBER/GETGLOBAL/etc. operands
}
