package builtins

import (
	"math"
	"strconv"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

func nanValue() float64 { return math.NaN() }

// wireNumber installs Number.prototype (ES3 15.7.4) plus the class
// constants (15.7.3) and returns the Number constructor.
func wireNumber(th *machine.Thread, proto *machine.Object) *machine.Object {
	proto.DefineDataProperty(th, "toString", th.NewNativeFunction("toString", 1, numberToString), true, false, true)
	proto.DefineDataProperty(th, "valueOf", th.NewNativeFunction("valueOf", 0, numberValueOf), true, false, true)
	proto.DefineDataProperty(th, "toFixed", th.NewNativeFunction("toFixed", 1, numberToFixed), true, false, true)

	ctor := th.NewConstructor("Number", 1, proto, numberConstructMethod)
	ctor.DefineDataProperty(th, "MAX_VALUE", machine.Float(math.MaxFloat64), false, false, false)
	ctor.DefineDataProperty(th, "MIN_VALUE", machine.Float(math.SmallestNonzeroFloat64), false, false, false)
	ctor.DefineDataProperty(th, "NaN", machine.Float(math.NaN()), false, false, false)
	ctor.DefineDataProperty(th, "POSITIVE_INFINITY", machine.Float(math.Inf(1)), false, false, false)
	ctor.DefineDataProperty(th, "NEGATIVE_INFINITY", machine.Float(math.Inf(-1)), false, false, false)
	return ctor
}

func thisNumber(th *machine.Thread, this machine.Value) (float64, error) {
	if o, ok := this.(*machine.Object); ok && o.Class == machine.ClassNumber {
		if n, err := machine.ToNumber(th, o.Prim); err == nil {
			return n, nil
		}
	}
	return machine.ToNumber(th, this)
}

func numberConstructMethod(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	n := 0.0
	if args.Len() > 0 {
		var err error
		n, err = machine.ToNumber(th, args.At(0))
		if err != nil {
			return nil, err
		}
	}
	if o, ok := this.(*machine.Object); ok && o.Class != machine.ClassGlobal {
		return th.NewWrapper(machine.ClassNumber, th.ProtoNumber(), numberValue(n)), nil
	}
	return numberValue(n), nil
}

func numberValue(n float64) machine.Value {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && n >= -(1<<53) && n <= (1<<53) {
		return machine.Int(int64(n))
	}
	return machine.Float(n)
}

func numberToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	n, err := thisNumber(th, this)
	if err != nil {
		return nil, err
	}
	radix := 10
	if args.Len() > 0 {
		if _, isUndef := args.At(0).(machine.Undefined); !isUndef {
			r, err := machine.ToInteger(th, args.At(0))
			if err != nil {
				return nil, err
			}
			radix = int(r)
		}
	}
	return machine.String(machine.FormatRadix(n, radix)), nil
}

func numberValueOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	n, err := thisNumber(th, this)
	if err != nil {
		return nil, err
	}
	return numberValue(n), nil
}

func numberToFixed(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	n, err := thisNumber(th, this)
	if err != nil {
		return nil, err
	}
	digits := 0
	if args.Len() > 0 {
		d, err := machine.ToInteger(th, args.At(0))
		if err != nil {
			return nil, err
		}
		digits = int(d)
	}
	if digits < 0 || digits > 20 {
		return nil, th.RangeError("toFixed() digits argument must be between 0 and 20")
	}
	return machine.String(strconv.FormatFloat(n, 'f', digits, 64)), nil
}
