package builtins

import "github.com/lorelei-lang/lorelei/lang/machine"

// wireBoolean installs Boolean.prototype (ES3 15.6.4) and returns the
// Boolean constructor.
func wireBoolean(th *machine.Thread, proto *machine.Object) *machine.Object {
	proto.DefineDataProperty(th, "toString", th.NewNativeFunction("toString", 0, booleanToString), true, false, true)
	proto.DefineDataProperty(th, "valueOf", th.NewNativeFunction("valueOf", 0, booleanValueOf), true, false, true)
	return th.NewConstructor("Boolean", 1, proto, booleanConstructMethod)
}

func thisBool(this machine.Value) bool {
	if o, ok := this.(*machine.Object); ok && o.Class == machine.ClassBoolean {
		if b, ok := o.Prim.(machine.Bool); ok {
			return bool(b)
		}
	}
	if b, ok := this.(machine.Bool); ok {
		return bool(b)
	}
	return machine.Truth(this)
}

func booleanConstructMethod(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	b := machine.Truth(args.At(0))
	if o, ok := this.(*machine.Object); ok && o.Class != machine.ClassGlobal {
		return th.NewWrapper(machine.ClassBoolean, th.ProtoBoolean(), machine.BoolValue(b)), nil
	}
	return machine.BoolValue(b), nil
}

func booleanToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	if thisBool(this) {
		return machine.String("true"), nil
	}
	return machine.String("false"), nil
}

func booleanValueOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.BoolValue(thisBool(this)), nil
}
