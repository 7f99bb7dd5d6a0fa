package machine

import "math"

// numberValue picks the Int fast path when f is an exact integer within the
// safe range Int promises to stay inside, Float otherwise; every arithmetic
// result that produces a Value (as opposed to a float64 feeding straight
// into another coercion) funnels through here.
func numberValue(f float64) Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= -(1<<53) && f <= (1<<53) {
		return Int(int64(f))
	}
	return Float(f)
}

// addOp implements ES3 11.6.1: ToPrimitive both operands with no preferred
// hint; if either result is a string, concatenate ToString of both,
// otherwise ToNumber both and add.
func addOp(th *Thread, a, b Value) (Value, error) {
	pa, err := ToPrimitive(th, a, HintAuto)
	if err != nil {
		return nil, err
	}
	pb, err := ToPrimitive(th, b, HintAuto)
	if err != nil {
		return nil, err
	}
	if _, ok := pa.(String); ok {
		return concatStr(th, pa, pb)
	}
	if _, ok := pb.(String); ok {
		return concatStr(th, pa, pb)
	}
	na, err := ToNumber(th, pa)
	if err != nil {
		return nil, err
	}
	nb, err := ToNumber(th, pb)
	if err != nil {
		return nil, err
	}
	return numberValue(na + nb), nil
}

func concatStr(th *Thread, a, b Value) (Value, error) {
	sa, err := ToString(th, a)
	if err != nil {
		return nil, err
	}
	sb, err := ToString(th, b)
	if err != nil {
		return nil, err
	}
	return String(sa + sb), nil
}

type numOp func(a, b float64) float64

func numericBinOp(th *Thread, a, b Value, op numOp) (Value, error) {
	na, err := ToNumber(th, a)
	if err != nil {
		return nil, err
	}
	nb, err := ToNumber(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(op(na, nb)), nil
}

func subOp(th *Thread, a, b Value) (Value, error) {
	return numericBinOp(th, a, b, func(x, y float64) float64 { return x - y })
}
func mulOp(th *Thread, a, b Value) (Value, error) {
	return numericBinOp(th, a, b, func(x, y float64) float64 { return x * y })
}
func divOp(th *Thread, a, b Value) (Value, error) {
	return numericBinOp(th, a, b, func(x, y float64) float64 { return x / y })
}
func modOp(th *Thread, a, b Value) (Value, error) {
	return numericBinOp(th, a, b, math.Mod)
}

func shlOp(th *Thread, a, b Value) (Value, error) {
	x, err := ToInt32(th, a)
	if err != nil {
		return nil, err
	}
	y, err := ToUint32(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(float64(int32(uint32(x) << shiftCount(y)))), nil
}

func shrOp(th *Thread, a, b Value) (Value, error) {
	x, err := ToInt32(th, a)
	if err != nil {
		return nil, err
	}
	y, err := ToUint32(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(float64(x >> shiftCount(y))), nil
}

func ushrOp(th *Thread, a, b Value) (Value, error) {
	x, err := ToUint32(th, a)
	if err != nil {
		return nil, err
	}
	y, err := ToUint32(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(float64(x >> shiftCount(y))), nil
}

func bandOp(th *Thread, a, b Value) (Value, error) {
	x, err := ToInt32(th, a)
	if err != nil {
		return nil, err
	}
	y, err := ToInt32(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(float64(x & y)), nil
}
func borOp(th *Thread, a, b Value) (Value, error) {
	x, err := ToInt32(th, a)
	if err != nil {
		return nil, err
	}
	y, err := ToInt32(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(float64(x | y)), nil
}
func bxorOp(th *Thread, a, b Value) (Value, error) {
	x, err := ToInt32(th, a)
	if err != nil {
		return nil, err
	}
	y, err := ToInt32(th, b)
	if err != nil {
		return nil, err
	}
	return numberValue(float64(x ^ y)), nil
}

// relResult is the three-way outcome of the abstract relational comparison
// algorithm (ES3 11.8.5): either operand evaluating to NaN makes every
// ordering comparison false without the other ever being "greater"; callers
// map this to LT/GT/LE/GE's boolean result individually since `<` and `>=`
// are not simple negations of one another once NaN is involved.
type relResult int

const (
	relLess relResult = iota
	relEqual
	relGreater
	relUndefined
)

func compareRel(th *Thread, a, b Value) (relResult, error) {
	pa, err := ToPrimitive(th, a, HintNumber)
	if err != nil {
		return relUndefined, err
	}
	pb, err := ToPrimitive(th, b, HintNumber)
	if err != nil {
		return relUndefined, err
	}
	sa, aIsStr := pa.(String)
	sb, bIsStr := pb.(String)
	if aIsStr && bIsStr {
		switch {
		case string(sa) < string(sb):
			return relLess, nil
		case string(sa) > string(sb):
			return relGreater, nil
		default:
			return relEqual, nil
		}
	}
	na, err := ToNumber(th, pa)
	if err != nil {
		return relUndefined, err
	}
	nb, err := ToNumber(th, pb)
	if err != nil {
		return relUndefined, err
	}
	if math.IsNaN(na) || math.IsNaN(nb) {
		return relUndefined, nil
	}
	switch {
	case na < nb:
		return relLess, nil
	case na > nb:
		return relGreater, nil
	default:
		return relEqual, nil
	}
}

func ltOp(th *Thread, a, b Value) (Value, error) {
	r, err := compareRel(th, a, b)
	return BoolValue(r == relLess), err
}
func gtOp(th *Thread, a, b Value) (Value, error) {
	r, err := compareRel(th, b, a)
	return BoolValue(r == relLess), err
}
func leOp(th *Thread, a, b Value) (Value, error) {
	r, err := compareRel(th, b, a)
	return BoolValue(r == relEqual || r == relGreater), err
}
func geOp(th *Thread, a, b Value) (Value, error) {
	r, err := compareRel(th, a, b)
	return BoolValue(r == relEqual || r == relGreater), err
}

// StrictEquals exposes strictEquals for lang/builtins' indexOf-family
// methods, which need ES3's === semantics without going through the STRICTEQ
// opcode.
func StrictEquals(a, b Value) bool { return strictEquals(a, b) }

// LooseEquals exposes looseEquals, ES3's abstract equality, outside the
// package.
func LooseEquals(th *Thread, a, b Value) (bool, error) { return looseEquals(th, a, b) }

// strictEquals implements ES3 11.9.6: no coercion, NaN never equals itself,
// objects compare by identity.
func strictEquals(a, b Value) bool {
	switch x := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Float:
			return float64(x) == float64(y)
		}
		return false
	case Float:
		switch y := b.(type) {
		case Int:
			return float64(x) == float64(y)
		case Float:
			return float64(x) == float64(y)
		}
		return false
	case String:
		y, ok := b.(String)
		return ok && x == y
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	default:
		return false
	}
}

// looseEquals implements ES3 11.9.3's abstract equality comparison.
func looseEquals(th *Thread, a, b Value) (bool, error) {
	if sameType(a, b) {
		return strictEquals(a, b), nil
	}
	_, aNull := a.(Null)
	_, aUndef := a.(Undefined)
	_, bNull := b.(Null)
	_, bUndef := b.(Undefined)
	if (aNull || aUndef) && (bNull || bUndef) {
		return true, nil
	}
	if aNull || aUndef || bNull || bUndef {
		return false, nil
	}
	if isNumber(a) && isStringVal(b) {
		nb, err := ToNumber(th, b)
		if err != nil {
			return false, err
		}
		na, _ := ToNumber(th, a)
		return na == nb, nil
	}
	if isStringVal(a) && isNumber(b) {
		return looseEquals(th, b, a)
	}
	if bb, ok := a.(Bool); ok {
		return looseEquals(th, Int(boolToInt(bb)), b)
	}
	if bb, ok := b.(Bool); ok {
		return looseEquals(th, a, Int(boolToInt(bb)))
	}
	if _, ok := a.(*Object); ok {
		if isNumber(b) || isStringVal(b) {
			pa, err := ToPrimitive(th, a, HintAuto)
			if err != nil {
				return false, err
			}
			return looseEquals(th, pa, b)
		}
	}
	if _, ok := b.(*Object); ok {
		if isNumber(a) || isStringVal(a) {
			pb, err := ToPrimitive(th, b, HintAuto)
			if err != nil {
				return false, err
			}
			return looseEquals(th, a, pb)
		}
	}
	return false, nil
}

func boolToInt(b Bool) int64 {
	if b {
		return 1
	}
	return 0
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}
func isStringVal(v Value) bool {
	_, ok := v.(String)
	return ok
}

func sameType(a, b Value) bool {
	switch a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Int, Float:
		return isNumber(b)
	case String:
		_, ok := b.(String)
		return ok
	case *Object:
		_, ok := b.(*Object)
		return ok
	}
	return false
}

// instanceofOp implements ES3 11.8.6: ctor must be callable and expose a
// "prototype" own/inherited property; walk obj's prototype chain for it.
func instanceofOp(th *Thread, obj, ctor Value) (Value, error) {
	co, ok := ctor.(*Object)
	if !ok || co.Func == nil {
		return nil, th.TypeError("right-hand side of 'instanceof' is not callable")
	}
	protoV, err := co.Get(th, "prototype")
	if err != nil {
		return nil, err
	}
	proto, ok := protoV.(*Object)
	if !ok {
		return nil, th.TypeError("function has non-object prototype in instanceof check")
	}
	o, ok := obj.(*Object)
	if !ok {
		return FalseValue, nil
	}
	for cur := o.Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return TrueValue, nil
		}
	}
	return FalseValue, nil
}

// inOp implements ES3 11.8.7: key in obj, obj must be an object.
func inOp(th *Thread, key, obj Value) (Value, error) {
	o, ok := obj.(*Object)
	if !ok {
		return nil, th.TypeError("cannot use 'in' operator on a non-object")
	}
	name, err := ToString(th, key)
	if err != nil {
		return nil, err
	}
	return BoolValue(o.HasProperty(th, name)), nil
}
