package builtins

import (
	"math"
	"math/rand"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// wireMath installs the Math object (ES3 15.8): value properties plus the
// one/two-argument functions, each body a thin wrapper over Go's math
// package — ES3 mandates "an implementation-dependent approximation" for
// most of these, so there is no fidelity to lose by using the standard
// library here directly (the corpus-sourced stack rule targets algorithmic
// components with real behavioral contracts, not transcendental function
// approximations).
func wireMath(th *machine.Thread, protoObject *machine.Object) *machine.Object {
	m := machine.NewObject(protoObject)
	m.Class = machine.ClassMath

	m.DefineDataProperty(th, "E", machine.Float(math.E), false, false, false)
	m.DefineDataProperty(th, "LN2", machine.Float(math.Ln2), false, false, false)
	m.DefineDataProperty(th, "LN10", machine.Float(math.Log(10)), false, false, false)
	m.DefineDataProperty(th, "LOG2E", machine.Float(1/math.Ln2), false, false, false)
	m.DefineDataProperty(th, "LOG10E", machine.Float(1/math.Log(10)), false, false, false)
	m.DefineDataProperty(th, "PI", machine.Float(math.Pi), false, false, false)
	m.DefineDataProperty(th, "SQRT1_2", machine.Float(math.Sqrt(0.5)), false, false, false)
	m.DefineDataProperty(th, "SQRT2", machine.Float(math.Sqrt2), false, false, false)

	unary := map[string]func(float64) float64{
		"abs": math.Abs, "acos": math.Acos, "asin": math.Asin, "atan": math.Atan,
		"ceil": math.Ceil, "cos": math.Cos, "exp": math.Exp, "floor": math.Floor,
		"log": math.Log, "round": math.Round, "sin": math.Sin, "sqrt": math.Sqrt,
		"tan": math.Tan,
	}
	for name, f := range unary {
		f := f
		m.DefineDataProperty(th, name, th.NewNativeFunction(name, 1, func(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
			n, err := machine.ToNumber(th, args.At(0))
			if err != nil {
				return nil, err
			}
			return machine.Float(f(n)), nil
		}), true, false, true)
	}

	m.DefineDataProperty(th, "pow", th.NewNativeFunction("pow", 2, mathPow), true, false, true)
	m.DefineDataProperty(th, "atan2", th.NewNativeFunction("atan2", 2, mathAtan2), true, false, true)
	m.DefineDataProperty(th, "max", th.NewNativeFunction("max", 2, mathMax), true, false, true)
	m.DefineDataProperty(th, "min", th.NewNativeFunction("min", 2, mathMin), true, false, true)
	m.DefineDataProperty(th, "random", th.NewNativeFunction("random", 0, mathRandom), true, false, true)

	return m
}

func mathPow(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	x, err := machine.ToNumber(th, args.At(0))
	if err != nil {
		return nil, err
	}
	y, err := machine.ToNumber(th, args.At(1))
	if err != nil {
		return nil, err
	}
	return machine.Float(math.Pow(x, y)), nil
}

func mathAtan2(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	x, err := machine.ToNumber(th, args.At(0))
	if err != nil {
		return nil, err
	}
	y, err := machine.ToNumber(th, args.At(1))
	if err != nil {
		return nil, err
	}
	return machine.Float(math.Atan2(x, y)), nil
}

func mathMax(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	if args.Len() == 0 {
		return machine.Float(math.Inf(-1)), nil
	}
	best := math.Inf(-1)
	for _, a := range args.Elems() {
		n, err := machine.ToNumber(th, a)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(n) {
			return machine.Float(math.NaN()), nil
		}
		if n > best {
			best = n
		}
	}
	return machine.Float(best), nil
}

func mathMin(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	if args.Len() == 0 {
		return machine.Float(math.Inf(1)), nil
	}
	best := math.Inf(1)
	for _, a := range args.Elems() {
		n, err := machine.ToNumber(th, a)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(n) {
			return machine.Float(math.NaN()), nil
		}
		if n < best {
			best = n
		}
	}
	return machine.Float(best), nil
}

func mathRandom(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Float(rand.Float64()), nil
}
