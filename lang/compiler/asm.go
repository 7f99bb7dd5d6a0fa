package compiler

import "github.com/lorelei-lang/lorelei/lang/token"

// Assembler accumulates the byte-coded instruction stream for one Funcode,
// tracking operand-stack depth to compute MaxStack and supporting
// forward-jump patching the way the teacher's asm.go patches CJMP/ITERJMP
// addresses once the target block's address is known. Unlike the teacher's
// CFG-block linearization, lorelei's compiler emits directly in one
// depth-first pass over the (already resolved, already structured) AST and
// backpatches jump targets, a simpler approach that fits a tree with no
// gotos and a statically known statement order.
type Assembler struct {
	fn    *Funcode
	depth int
	max   int
	pos   token.Pos // most recently set position, for positions table dedup
}

// NewAssembler creates an Assembler that emits into fn.
func NewAssembler(fn *Funcode) *Assembler { return &Assembler{fn: fn} }

// SetPos records the source position to associate with subsequently emitted
// instructions, used to populate Funcode.positions for backtraces.
func (a *Assembler) SetPos(p token.Pos) {
	if p == a.pos {
		return
	}
	a.pos = p
	a.fn.positions = append(a.fn.positions, pcPos{pc: uint32(len(a.fn.Code)), pos: p})
}

// Here returns the current program counter (the address the next emitted
// instruction will occupy).
func (a *Assembler) Here() uint32 { return uint32(len(a.fn.Code)) }

// Emit appends a no-argument instruction and adjusts the tracked stack
// depth by effect.
func (a *Assembler) Emit(op Opcode, effect int) {
	a.fn.Code = append(a.fn.Code, byte(op))
	a.adjust(effect)
}

// EmitArg appends an instruction with a varint-encoded immediate operand.
func (a *Assembler) EmitArg(op Opcode, arg uint32, effect int) {
	a.fn.Code = append(a.fn.Code, byte(op))
	a.fn.Code = addUint32(a.fn.Code, arg, 0)
	a.adjust(effect)
}

// EmitJump appends a jump instruction with a placeholder 4-byte address and
// returns the byte offset to later patch with PatchJump.
func (a *Assembler) EmitJump(op Opcode, effect int) (patchAt uint32) {
	a.fn.Code = append(a.fn.Code, byte(op))
	patchAt = uint32(len(a.fn.Code))
	a.fn.Code = addUint32(a.fn.Code, 0, 4)
	a.adjust(effect)
	return patchAt
}

// EmitJump2 appends an instruction with two chained 4-byte placeholder
// addresses (used only by RESUMEPENDING) and returns both byte offsets for
// later patching with PatchJumpTo.
func (a *Assembler) EmitJump2(op Opcode, effect int) (patchAt1, patchAt2 uint32) {
	a.fn.Code = append(a.fn.Code, byte(op))
	patchAt1 = uint32(len(a.fn.Code))
	a.fn.Code = addUint32(a.fn.Code, 0, 4)
	patchAt2 = uint32(len(a.fn.Code))
	a.fn.Code = addUint32(a.fn.Code, 0, 4)
	a.adjust(effect)
	return patchAt1, patchAt2
}

// EmitPendingJump appends SETPENDING_JUMP with a placeholder 4-byte target
// address (patched later with PatchJump/PatchJumpTo, exactly like a plain
// JMP) followed by bound, a depth immediate known at emit time rather than
// backpatched.
func (a *Assembler) EmitPendingJump(bound uint32) (patchAt uint32) {
	a.fn.Code = append(a.fn.Code, byte(SETPENDING_JUMP))
	patchAt = uint32(len(a.fn.Code))
	a.fn.Code = append(a.fn.Code, 0, 0, 0, 0)
	a.emitFixed32(bound)
	return patchAt
}

// EmitJumpArg appends an instruction with a placeholder 4-byte jump address
// (returned for PatchJump) followed by a fixed-width operand known at emit
// time — the fused iteration ops' local slot.
func (a *Assembler) EmitJumpArg(op Opcode, arg uint32, effect int) (patchAt uint32) {
	a.fn.Code = append(a.fn.Code, byte(op))
	patchAt = uint32(len(a.fn.Code))
	a.fn.Code = append(a.fn.Code, 0, 0, 0, 0)
	a.emitFixed32(arg)
	a.adjust(effect)
	return patchAt
}

// emitFixed32 appends x as 4 raw little-endian bytes, unconditionally (no
// varint encoding or NOP padding): for operands known at emit time that are
// still read with readFixed32, such as RESUMEPENDING's trailing try-depth
// operand and EmitPendingJump's bound, where addUint32's varint-then-pad
// scheme would not round-trip for values >= 0x80.
func (a *Assembler) emitFixed32(x uint32) {
	a.fn.Code = append(a.fn.Code, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}

// PatchJump overwrites the 4-byte address at patchAt (as returned by
// EmitJump) with the current program counter.
func (a *Assembler) PatchJump(patchAt uint32) { a.PatchJumpTo(patchAt, a.Here()) }

// PatchJumpTo overwrites the 4-byte address at patchAt with an explicit
// target address, for backward jumps (loop heads) whose address is already
// known when the jump is emitted.
func (a *Assembler) PatchJumpTo(patchAt, target uint32) {
	b := a.fn.Code[patchAt : patchAt+4]
	b[0] = byte(target)
	b[1] = byte(target >> 8)
	b[2] = byte(target >> 16)
	b[3] = byte(target >> 24)
}

// ReadJumpTarget reads back a previously patched (or still placeholder)
// 4-byte jump address, used by the loop-shape recognizer to detect
// self-loops without re-threading state through every caller.
func (a *Assembler) ReadJumpTarget(patchAt uint32) uint32 {
	b := a.fn.Code[patchAt : patchAt+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// ReserveStack accounts for a value the machine pushes out-of-line — the
// thrown value delivered to a catch or finally entry point — so the depth
// tracking and MaxStack stay accurate without emitting an instruction.
func (a *Assembler) ReserveStack(n int) { a.adjust(n) }

func (a *Assembler) adjust(effect int) {
	a.depth += effect
	if a.depth > a.max {
		a.max = a.depth
	}
	if a.depth < 0 {
		// Underflow indicates a compiler bug in stack-effect bookkeeping, not a
		// reachable user error; callers unit-test this invariant directly.
		panic("compiler: operand stack underflow")
	}
}

// Finish records the computed maximum stack depth onto the Funcode. Must be
// called once, after every instruction has been emitted.
func (a *Assembler) Finish() { a.fn.MaxStack = a.max }

// addUint32 encodes x as a 7-bit little-endian varint, padded with NOPs up
// to min bytes (min==4 for fixed-width jump operands so PatchJump can
// overwrite them in place without re-threading every later address).
func addUint32(code []byte, x uint32, min int) []byte {
	end := len(code) + min
	for x >= 0x80 {
		code = append(code, byte(x)|0x80)
		x >>= 7
	}
	code = append(code, byte(x))
	for len(code) < end {
		code = append(code, byte(NOP))
	}
	return code
}
