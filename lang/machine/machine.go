package machine

import (
	"github.com/lorelei-lang/lorelei/lang/compiler"
)

// enumerator is the hidden iteration state ENUMKEYS/ENUMNEXT (for-in
// lowering) push onto the operand stack between a for-in loop's iterations.
// It is never exposed to script; like cell, it only needs to satisfy Value
// to ride the stack.
type enumerator struct {
	keys []string
	i    int
}

func (*enumerator) String() string { return "[enumerator]" }
func (*enumerator) Type() string   { return "enumerator" }

func readVarint(code []byte, pc uint32) (uint32, uint32) {
	var x uint32
	var shift uint
	for {
		b := code[pc]
		pc++
		x |= uint32(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	return x, pc
}

func readFixed32(code []byte, pc uint32) (uint32, uint32) {
	x := uint32(code[pc]) | uint32(code[pc+1])<<8 | uint32(code[pc+2])<<16 | uint32(code[pc+3])<<24
	return x, pc + 4
}

// pendingKind distinguishes which non-local completion a RESUMEPENDING is
// forwarding or performing: no completion at all (normal fall-through), a
// return crossing a finally (SETPENDING_RETURN), a throw passing through
// (set directly by handleFault, not by compiled bytecode), or a
// break/continue crossing a finally (SETPENDING_JUMP).
type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingReturnKind
	pendingThrowKind
	pendingJumpKind
)

// findProtection returns the innermost CatchRegion and/or FinalRegion of fn
// covering pc, preferring the tighter (smaller-span) one when both a catch
// and a final cover the same point (which happens for every throw inside a
// try block that has both). The regions of nested try statements lie
// strictly inside one another, so span comparison alone is enough to
// reconstruct nesting order from the flat tables the compiler emits.
func findProtection(fn *compiler.Funcode, pc uint32) (*compiler.CatchRegion, *compiler.FinalRegion) {
	var catch *compiler.CatchRegion
	var final *compiler.FinalRegion
	bestCatch, bestFinal := ^uint32(0), ^uint32(0)
	for i := range fn.Catches {
		c := &fn.Catches[i]
		if c.Covers(int64(pc)) {
			if span := c.End - c.Start; span < bestCatch {
				bestCatch, catch = span, c
			}
		}
	}
	for i := range fn.Finals {
		f := &fn.Finals[i]
		if f.Covers(int64(pc)) {
			if span := f.End - f.Start; span < bestFinal {
				bestFinal, final = span, f
			}
		}
	}
	if catch != nil && final != nil {
		if bestCatch <= bestFinal {
			final = nil
		} else {
			catch = nil
		}
	}
	return catch, final
}

// toCallTarget resolves the object to perform property lookup on and the
// value to bind as `this`, boxing a primitive receiver into its wrapper
// object (ES3 sloppy-mode method-call semantics) and rejecting null/
// undefined with the TypeError real engines raise for `x.y` on those.
func (th *Thread) toCallTarget(v Value) (*Object, Value, error) {
	if o, ok := v.(*Object); ok {
		return o, o, nil
	}
	switch v.(type) {
	case Undefined:
		return nil, nil, th.TypeError("cannot read property of undefined")
	case Null:
		return nil, nil, th.TypeError("cannot read property of null")
	}
	w, err := ToObject(th, v)
	if err != nil {
		return nil, nil, err
	}
	return w, w, nil
}

func (th *Thread) getMember(v Value, name string) (Value, error) {
	o, _, err := th.toCallTarget(v)
	if err != nil {
		return nil, err
	}
	return o.Get(th, name)
}

func (th *Thread) setMember(v Value, name string, val Value, strict bool) error {
	o, _, err := th.toCallTarget(v)
	if err != nil {
		return err
	}
	return o.Put(th, name, val, strict)
}

func (th *Thread) deleteMember(v Value, name string, strict bool) (bool, error) {
	o, _, err := th.toCallTarget(v)
	if err != nil {
		return false, err
	}
	return o.DeleteProperty(th, name, strict)
}

// enumerableNames walks obj's prototype chain collecting every distinct
// enumerable property name (own properties shadow an inherited one of the
// same name), the set a for-in loop iterates, per ES3 12.6.4.
func (th *Thread) enumerableNames(obj *Object) []string {
	seen := make(map[string]bool)
	var names []string
	for cur := obj; cur != nil; cur = cur.Prototype {
		for _, n := range cur.OwnEnumerableKeys(th) {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// run executes fr's compiled body starting at pc 0 over the shared
// space/locals backing array (operand stack occupies space[len(locals):]).
// It returns the function's completion value, a non-nil error either for
// an uncaught *throwError or an internal/host error, and repopulate==true
// when a REPOPULATE instruction asks runCompiled to restart this same Go
// call with refreshed parameter bindings instead of recursing.
func (th *Thread) run(fr *Frame, space []Value, locals []Value) (Value, error, bool) {
	fc := fr.Func.Funcode
	code := fc.Code
	names := fc.Prog.Names
	consts := fr.Module.Constants
	sp := len(locals)

	push := func(v Value) { space[sp] = v; sp++ }
	pop := func() Value { sp--; return space[sp] }
	peek := func() Value { return space[sp-1] }

	var pending pendingKind
	var pendingValue Value
	var pendingErr error
	var pendingJumpPC uint32
	var pendingBound uint32
	// completion is the value of the last POPRESULT, returned by the chunk
	// top level's RETURNUNDEF as the chunk's completion value.
	var completion Value = UndefinedValue

	// handleFault looks up the innermost protected region covering faultPC
	// for a thrown (script-catchable) error, pushing the thrown value and
	// jumping to a catch, or stashing it as the pending action and jumping
	// to a finally. Either way, Frame.WithStack is truncated back to the
	// depth recorded when the try was entered, discarding any with-scopes
	// the throw unwound through. It reports ok==false for a non-throwError
	// (an internal fatal, propagated straight out of run) or when nothing
	// covers faultPC (propagated out of run as an uncaught *throwError).
	handleFault := func(faultPC uint32, err error) (uint32, bool) {
		thrown, isThrown := AsThrown(err)
		if !isThrown {
			return 0, false
		}
		catch, final := findProtection(fc, faultPC)
		if catch != nil {
			sp = len(locals)
			fr.WithStack = fr.WithStack[:catch.WithDepth]
			push(thrown)
			return catch.CatchPC, true
		}
		if final != nil {
			sp = len(locals)
			fr.WithStack = fr.WithStack[:final.WithDepth]
			pending = pendingThrowKind
			pendingValue = thrown
			pendingErr = err
			return final.FinallyPC, true
		}
		return 0, false
	}

	pc := uint32(0)
	for {
		if th.MaxSteps > 0 {
			th.steps++
			if th.steps > th.MaxSteps {
				return nil, th.RangeError("script ran for too many steps"), false
			}
		}

		startPC := pc
		fr.PC = startPC
		op := compiler.Opcode(code[pc])
		pc++

		var arg uint32
		switch {
		case op == compiler.RESUMEPENDING, op == compiler.SETPENDING_JUMP:
			// operands read individually below
		case op >= compiler.ITERLT && op <= compiler.ITERGE:
			// two fixed operands, read below
		case op == compiler.SETPENDING_RETURN:
		case isControlJump(op):
			arg, pc = readFixed32(code, pc)
		case takesVarArg(op):
			arg, pc = readVarint(code, pc)
		}

		switch op {
		case compiler.NOP, compiler.DEBUGGER:

		case compiler.DUP:
			push(peek())
		case compiler.DUP2:
			a, b := space[sp-2], space[sp-1]
			push(a)
			push(b)
		case compiler.POP:
			pop()
		case compiler.EXCH:
			b, a := pop(), pop()
			push(b)
			push(a)

		case compiler.LT, compiler.LE, compiler.GT, compiler.GE,
			compiler.EQEQ, compiler.NEQ, compiler.EQEQEQ, compiler.NEQEQ,
			compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD,
			compiler.SHL, compiler.SHR, compiler.USHR, compiler.BAND, compiler.BOR, compiler.BXOR,
			compiler.INSTANCEOF, compiler.IN:
			b, a := pop(), pop()
			v, err := th.binOp(op, a, b)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)

		case compiler.UPLUS:
			n, err := ToNumber(th, peek())
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			pop()
			push(numberValue(n))
		case compiler.UMINUS:
			n, err := ToNumber(th, pop())
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(numberValue(-n))
		case compiler.UBNOT:
			n, err := ToInt32(th, pop())
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(numberValue(float64(^n)))
		case compiler.UNOT:
			push(BoolValue(!Truth(pop())))
		case compiler.TYPEOF:
			push(String(TypeOf(pop())))
		case compiler.VOID:
			pop()
			push(UndefinedValue)

		case compiler.UNDEF:
			push(UndefinedValue)
		case compiler.NULLV:
			push(NullValue)
		case compiler.TRUE:
			push(TrueValue)
		case compiler.FALSE:
			push(FalseValue)
		case compiler.CONSTANT:
			push(consts[arg])

		case compiler.NEWOBJECT:
			o := NewObject(th.protoObject)
			th.pool.Track(o)
			push(o)
		case compiler.NEWARRAY:
			n := int(arg)
			elems := make([]Value, n)
			copy(elems, space[sp-n:sp])
			sp -= n
			arr := newObjectOfClass(ClassArray, th.protoArray)
			arr.elemLen = uint32(n)
			arr.elems = elems
			arr.elemCheck = make([]bool, n)
			for i := range arr.elemCheck {
				arr.elemCheck[i] = true
			}
			th.pool.Track(arr)
			push(arr)
		case compiler.NEWFUNC:
			child := fc.Prog.Functions[arg]
			n := len(child.FreeVars)
			cells := make([]*cell, n)
			for i := 0; i < n; i++ {
				cells[i] = space[sp-n+i].(*cell)
			}
			sp -= n
			proto := NewObject(th.protoObject)
			th.pool.Track(proto)
			fn := th.NewFunctionObject(&FuncData{
				Funcode: child, Module: fr.Module, FreeVars: cells,
				Name: child.Name, NumParams: child.NumParams,
			}, proto)
			push(fn)
		case compiler.NEWREGEXP:
			raw, _ := consts[arg].(String)
			pattern, flags := splitRegexpLiteral(string(raw))
			re, err := th.NewRegExp(pattern, flags)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(re)
		case compiler.INITMEMBER:
			v := pop()
			o := peek().(*Object)
			o.DefineDataProperty(th, names[arg], v, true, true, true)
		case compiler.DEFGETTER:
			fn := pop().(*Object)
			o := peek().(*Object)
			o.DefineAccessorProperty(th, names[arg], fn, nil, true, true)
		case compiler.DEFSETTER:
			fn := pop().(*Object)
			o := peek().(*Object)
			o.DefineAccessorProperty(th, names[arg], nil, fn, true, true)

		case compiler.GETLOCAL:
			push(derefCell(locals[arg]))
		case compiler.SETLOCAL:
			v := peek()
			setCellOrLocal(locals, int(arg), v)
		case compiler.GETCELL:
			push(derefCell(locals[arg]))
		case compiler.SETCELL:
			v := peek()
			setCellOrLocal(locals, int(arg), v)
		case compiler.GETFREE:
			push(fr.Func.FreeVars[arg].v)
		case compiler.SETFREE:
			v := peek()
			fr.Func.FreeVars[arg].v = v
		case compiler.GETLOCALRAW:
			push(locals[arg])
		case compiler.GETFREERAW:
			push(fr.Func.FreeVars[arg])

		case compiler.GETGLOBAL:
			name := names[arg]
			if !th.Global.HasProperty(th, name) {
				err := th.ReferenceError(name + " is not defined")
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			v, err := th.Global.Get(th, name)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.SETGLOBAL:
			v := peek()
			if err := th.Global.Put(th, names[arg], v, fc.Strict); err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
		case compiler.DELGLOBAL:
			ok, err := th.Global.DeleteProperty(th, names[arg], fc.Strict)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(BoolValue(ok))
		case compiler.GETDYNAMIC:
			name := names[arg]
			v, err := th.lookupDynamic(fr, name)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.SETDYNAMIC:
			v := peek()
			if err := th.assignDynamic(fr, names[arg], v, fc.Strict); err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
		case compiler.GETPREDECL:
			if v, ok := th.Predeclared[names[arg]]; ok {
				push(v)
			} else {
				push(UndefinedValue)
			}
		case compiler.GETUNIVERSE:
			if v, ok := th.Universe[names[arg]]; ok {
				push(v)
			} else {
				push(UndefinedValue)
			}
		case compiler.GETARGUMENTS:
			push(th.materializeArguments(fr))

		case compiler.GETMEMBER:
			v, err := th.getMember(pop(), names[arg])
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.SETMEMBER:
			v := pop()
			o := pop()
			if err := th.setMember(o, names[arg], v, fc.Strict); err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.DELMEMBER:
			ok, err := th.deleteMember(pop(), names[arg], fc.Strict)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(BoolValue(ok))
		case compiler.GETELEM:
			key := pop()
			o := pop()
			name, err := ToString(th, key)
			if err == nil {
				var v Value
				v, err = th.getMember(o, name)
				if err == nil {
					push(v)
				}
			}
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
		case compiler.SETELEM:
			v := pop()
			key := pop()
			o := pop()
			name, err := ToString(th, key)
			if err == nil {
				err = th.setMember(o, name, v, fc.Strict)
			}
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.DELELEM:
			key := pop()
			o := pop()
			name, err := ToString(th, key)
			var ok bool
			if err == nil {
				ok, err = th.deleteMember(o, name, fc.Strict)
			}
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(BoolValue(ok))
		case compiler.GETTHIS:
			push(fr.This)

		case compiler.JMP:
			pc = arg
		case compiler.JMPIFNOT:
			if !Truth(pop()) {
				pc = arg
			}
		case compiler.JMPIF:
			if Truth(pop()) {
				pc = arg
			}
		case compiler.ANDJMP:
			if !Truth(peek()) {
				pc = arg
			} else {
				pop()
			}
		case compiler.ORJMP:
			if Truth(peek()) {
				pc = arg
			} else {
				pop()
			}

		case compiler.ENUMKEYS:
			v := pop()
			var names []string
			if o, ok := v.(*Object); ok {
				names = th.enumerableNames(o)
			} else if _, isUndef := v.(Undefined); !isUndef {
				if _, isNull := v.(Null); !isNull {
					if w, err := ToObject(th, v); err == nil {
						names = th.enumerableNames(w)
					}
				}
			}
			push(&enumerator{keys: names})
		case compiler.ENUMNEXT:
			en := peek().(*enumerator)
			if en.i >= len(en.keys) {
				pop()
				pc = arg
			} else {
				k := en.keys[en.i]
				en.i++
				push(String(k))
			}

		case compiler.CALL:
			argc := int(arg)
			args := make([]Value, argc)
			copy(args, space[sp-argc:sp])
			sp -= argc
			this := pop()
			fn := pop()
			v, err := Call(th, fn, this, NewTuple(args))
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.CALLMEMBER:
			argc := int(arg & 0xFF)
			nameIdx := arg >> 8
			args := make([]Value, argc)
			copy(args, space[sp-argc:sp])
			sp -= argc
			recv := pop()
			target, this, err := th.toCallTarget(recv)
			var v Value
			if err == nil {
				var fn Value
				fn, err = target.Get(th, names[nameIdx])
				if err == nil {
					v, err = Call(th, fn, this, NewTuple(args))
				}
			}
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.CALLELEM:
			argc := int(arg)
			args := make([]Value, argc)
			copy(args, space[sp-argc:sp])
			sp -= argc
			key := pop()
			recv := pop()
			name, err := ToString(th, key)
			var v Value
			if err == nil {
				var target *Object
				var this Value
				target, this, err = th.toCallTarget(recv)
				if err == nil {
					var fn Value
					fn, err = target.Get(th, name)
					if err == nil {
						v, err = Call(th, fn, this, NewTuple(args))
					}
				}
			}
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.CONSTRUCT:
			argc := int(arg)
			args := make([]Value, argc)
			copy(args, space[sp-argc:sp])
			sp -= argc
			ctor := pop()
			v, err := th.Construct(ctor, NewTuple(args))
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)
		case compiler.EVAL:
			argc := int(arg)
			args := make([]Value, argc)
			copy(args, space[sp-argc:sp])
			sp -= argc
			v, err := th.indirectEval(NewTuple(args))
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			push(v)

		case compiler.POPRESULT:
			completion = pop()
		case compiler.RETURNUNDEF:
			if fc == fc.Prog.Toplevel {
				return completion, nil, false
			}
			return UndefinedValue, nil, false
		case compiler.RETURN:
			return pop(), nil, false
		case compiler.THROW:
			v := pop()
			err := Throw(v)
			if te, ok := err.(*throwError); ok {
				te.Frames = th.Backtrace()
				if o, isObj := v.(*Object); isObj && o.Class == ClassError {
					name, msg := errorNameAndMessage(th, v)
					te.text = name + ": " + msg
				}
			}
			if np, ok := handleFault(startPC, err); ok {
				pc = np
				continue
			}
			return nil, err, false

		case compiler.CATCHBIND:
			v := pop()
			setCellOrLocal(locals, int(arg), v)

		case compiler.SETPENDING_RETURN:
			pendingValue = pop()
			pending = pendingReturnKind

		case compiler.SETPENDING_JUMP:
			var targetPC, bound uint32
			targetPC, pc = readFixed32(code, pc)
			bound, pc = readFixed32(code, pc)
			pendingJumpPC = targetPC
			pendingBound = bound
			pending = pendingJumpKind

		case compiler.RESUMEPENDING:
			var afterPC, outerPC, tryDepth uint32
			afterPC, pc = readFixed32(code, pc)
			outerPC, pc = readFixed32(code, pc)
			tryDepth, pc = readFixed32(code, pc)
			switch pending {
			case pendingNone:
				pc = afterPC
				continue
			case pendingThrowKind:
				if outerPC != compiler.NoOuterFinally {
					pc = outerPC
					continue
				}
				if np, ok := handleFault(startPC, pendingErr); ok {
					pc = np
					continue
				}
				return nil, pendingErr, false
			case pendingJumpKind:
				if outerPC != compiler.NoOuterFinally && tryDepth > pendingBound {
					pc = outerPC
					continue
				}
				pending = pendingNone
				pc = pendingJumpPC
				continue
			default: // pendingReturnKind
				if outerPC != compiler.NoOuterFinally {
					pc = outerPC
					continue
				}
				return pendingValue, nil, false
			}

		case compiler.ITERLT, compiler.ITERLE, compiler.ITERGT, compiler.ITERGE:
			var exitPC, slot uint32
			exitPC, pc = readFixed32(code, pc)
			slot, pc = readFixed32(code, pc)
			limit := pop()
			cmp := compiler.LT
			switch op {
			case compiler.ITERLE:
				cmp = compiler.LE
			case compiler.ITERGT:
				cmp = compiler.GT
			case compiler.ITERGE:
				cmp = compiler.GE
			}
			res, err := th.binOp(cmp, derefCell(locals[slot]), limit)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			if !Truth(res) {
				pc = exitPC
			}

		case compiler.ITERINCR, compiler.ITERDECR:
			n, err := ToNumber(th, derefCell(locals[arg]))
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			if op == compiler.ITERINCR {
				n++
			} else {
				n--
			}
			setCellOrLocal(locals, int(arg), numberValue(n))

		case compiler.PUSHWITH:
			v := pop()
			w, err := ToObject(th, v)
			if err != nil {
				if np, ok := handleFault(startPC, err); ok {
					pc = np
					continue
				}
				return nil, err, false
			}
			fr.WithStack = append(fr.WithStack, w)
		case compiler.POPWITH:
			fr.WithStack = fr.WithStack[:len(fr.WithStack)-1]

		case compiler.REPOPULATE:
			argc := int(arg)
			args := make([]Value, argc)
			copy(args, space[sp-argc:sp])
			sp -= argc
			callee := pop()
			co, isObj := callee.(*Object)
			if !isObj || co.Func != fr.Func {
				// deoptimize: the name this tail call resolves through no
				// longer denotes this same function. Tail position, so the
				// ordinary call's result is this function's result.
				v, err := Call(th, callee, UndefinedValue, NewTuple(args))
				if err != nil {
					if np, ok := handleFault(startPC, err); ok {
						pc = np
						continue
					}
					return nil, err, false
				}
				return v, nil, false
			}
			// a boxed slot gets a fresh cell rather than a write through the
			// old one: each restart is a new activation, and closures created
			// by the previous iteration keep the values they captured.
			refill := func(i int, v Value) {
				if _, boxed := locals[i].(*cell); boxed {
					locals[i] = &cell{v: v}
					return
				}
				locals[i] = v
			}
			for i := 0; i < fc.NumParams; i++ {
				v := UndefinedValue
				if i < len(args) {
					v = args[i]
				}
				refill(i, v)
			}
			for i := fc.NumParams; i < len(locals); i++ {
				if i == fc.SelfSlot {
					continue
				}
				refill(i, UndefinedValue)
			}
			fr.This = UndefinedValue
			fr.ArgsObj = nil
			fr.ArgsTuple = NewTuple(args)
			sp = len(locals)
			return nil, nil, true

		default:
			return nil, fatalf("unimplemented opcode %v", op), false
		}
	}
}

func derefCell(v Value) Value {
	if c, ok := v.(*cell); ok {
		return c.v
	}
	return v
}

func setCellOrLocal(locals []Value, idx int, v Value) {
	if c, ok := locals[idx].(*cell); ok {
		c.v = v
		return
	}
	locals[idx] = v
}

// isControlJump reports whether op's single operand is a fixed 4-byte
// address patched in place by the assembler (every jump, plus ENUMNEXT,
// which PatchJump targets exactly like a jump despite living outside the
// compiler's isJump range).
func isControlJump(op compiler.Opcode) bool {
	switch op {
	case compiler.JMP, compiler.JMPIFNOT, compiler.JMPIF, compiler.ANDJMP, compiler.ORJMP, compiler.ENUMNEXT:
		return true
	}
	return false
}

// takesVarArg reports whether op carries a varint immediate operand
// (CONSTANT, NEWARRAY, NEWFUNC, NEWREGEXP, INITMEMBER, DEFGETTER, DEFSETTER,
// every Get*/Set*/Del* name-or-slot op, the call family, CATCHBIND,
// REPOPULATE and ITERINCR/ITERDECR): everything the assembler emits via
// EmitArg rather than Emit/EmitJump/EmitJump2. Every other opcode either
// has no operand or has fixed 4-byte operands.
func takesVarArg(op compiler.Opcode) bool {
	switch op {
	case compiler.CONSTANT, compiler.NEWARRAY, compiler.NEWFUNC, compiler.NEWREGEXP,
		compiler.INITMEMBER, compiler.DEFGETTER, compiler.DEFSETTER,
		compiler.GETLOCAL, compiler.SETLOCAL, compiler.GETCELL, compiler.SETCELL,
		compiler.GETFREE, compiler.SETFREE, compiler.GETLOCALRAW, compiler.GETFREERAW,
		compiler.GETGLOBAL, compiler.SETGLOBAL, compiler.DELGLOBAL,
		compiler.GETDYNAMIC, compiler.SETDYNAMIC, compiler.GETPREDECL, compiler.GETUNIVERSE,
		compiler.GETMEMBER, compiler.SETMEMBER, compiler.DELMEMBER,
		compiler.CALL, compiler.CALLMEMBER, compiler.CALLELEM, compiler.CONSTRUCT, compiler.EVAL,
		compiler.CATCHBIND, compiler.REPOPULATE, compiler.ITERINCR, compiler.ITERDECR:
		return true
	}
	return false
}

// binOp dispatches a binary opcode to its operator implementation (ops.go),
// the machine's counterpart to compiler.binOpcode.
func (th *Thread) binOp(op compiler.Opcode, a, b Value) (Value, error) {
	switch op {
	case compiler.LT:
		return ltOp(th, a, b)
	case compiler.LE:
		return leOp(th, a, b)
	case compiler.GT:
		return gtOp(th, a, b)
	case compiler.GE:
		return geOp(th, a, b)
	case compiler.EQEQ:
		eq, err := looseEquals(th, a, b)
		return BoolValue(eq), err
	case compiler.NEQ:
		eq, err := looseEquals(th, a, b)
		return BoolValue(!eq), err
	case compiler.EQEQEQ:
		return BoolValue(strictEquals(a, b)), nil
	case compiler.NEQEQ:
		return BoolValue(!strictEquals(a, b)), nil
	case compiler.ADD:
		return addOp(th, a, b)
	case compiler.SUB:
		return subOp(th, a, b)
	case compiler.MUL:
		return mulOp(th, a, b)
	case compiler.DIV:
		return divOp(th, a, b)
	case compiler.MOD:
		return modOp(th, a, b)
	case compiler.SHL:
		return shlOp(th, a, b)
	case compiler.SHR:
		return shrOp(th, a, b)
	case compiler.USHR:
		return ushrOp(th, a, b)
	case compiler.BAND:
		return bandOp(th, a, b)
	case compiler.BOR:
		return borOp(th, a, b)
	case compiler.BXOR:
		return bxorOp(th, a, b)
	case compiler.INSTANCEOF:
		return instanceofOp(th, a, b)
	case compiler.IN:
		return inOp(th, a, b)
	default:
		return nil, fatalf("unhandled binary opcode %v", op)
	}
}

// lookupDynamic implements GETDYNAMIC: a binding a `with` block could shadow
// at run time is not resolvable statically, so every active with-object is
// consulted innermost-first, then the frame's own lexical bindings by name
// (locals, then captured freevars; the resolver guarantees the capture
// exists even for a reference it had to mark dynamic), then the global
// object, Universe and Predeclared.
func (th *Thread) lookupDynamic(fr *Frame, name string) (Value, error) {
	for i := len(fr.WithStack) - 1; i >= 0; i-- {
		if fr.WithStack[i].HasProperty(th, name) {
			return fr.WithStack[i].Get(th, name)
		}
	}
	if idx, kind := frameSlotByName(fr, name); kind != slotNone {
		if kind == slotLocal {
			return derefCell(fr.Locals[idx]), nil
		}
		return fr.Func.FreeVars[idx].v, nil
	}
	if th.Global.HasProperty(th, name) {
		return th.Global.Get(th, name)
	}
	if v, ok := th.Universe[name]; ok {
		return v, nil
	}
	if v, ok := th.Predeclared[name]; ok {
		return v, nil
	}
	return nil, th.ReferenceError(name + " is not defined")
}

func (th *Thread) assignDynamic(fr *Frame, name string, v Value, strict bool) error {
	for i := len(fr.WithStack) - 1; i >= 0; i-- {
		if fr.WithStack[i].HasProperty(th, name) {
			return fr.WithStack[i].Put(th, name, v, strict)
		}
	}
	if idx, kind := frameSlotByName(fr, name); kind != slotNone {
		if kind == slotLocal {
			setCellOrLocal(fr.Locals, idx, v)
		} else {
			fr.Func.FreeVars[idx].v = v
		}
		return nil
	}
	return th.Global.Put(th, name, v, strict)
}

type slotKind uint8

const (
	slotNone slotKind = iota
	slotLocal
	slotFree
)

// frameSlotByName resolves name against fr's compiled binding tables, the
// name-addressed counterpart of the slot-addressed GETLOCAL/GETFREE forms.
// Only GETDYNAMIC/SETDYNAMIC sites reach this, so the linear scan is off the
// hot path. Locals shadow freevars (a name is never in both tables of the
// same Funcode, but scanning locals first keeps the order self-evident).
func frameSlotByName(fr *Frame, name string) (int, slotKind) {
	fc := fr.Func.Funcode
	if fc == nil {
		return 0, slotNone
	}
	for i := range fc.Locals {
		if fc.Locals[i].Name == name {
			return i, slotLocal
		}
	}
	for i := range fc.FreeVars {
		if fc.FreeVars[i].Name == name {
			return i, slotFree
		}
	}
	return 0, slotNone
}

// splitRegexpLiteral separates a "/pattern/flags" source literal (as
// scanned verbatim into ast.RegexpLit.Raw) into its two parts.
func splitRegexpLiteral(raw string) (pattern, flags string) {
	if len(raw) < 2 || raw[0] != '/' {
		return raw, ""
	}
	for i := len(raw) - 1; i > 0; i-- {
		if raw[i] == '/' {
			return raw[1:i], raw[i+1:]
		}
	}
	return raw[1:], ""
}
