package builtins

import "github.com/lorelei-lang/lorelei/lang/machine"

// wireObject installs Object.prototype's own methods (ES3 15.2.4) and
// returns the Object constructor.
func wireObject(th *machine.Thread, proto *machine.Object) *machine.Object {
	proto.DefineDataProperty(th, "toString", th.NewNativeFunction("toString", 0, objectToString), true, false, true)
	proto.DefineDataProperty(th, "toLocaleString", th.NewNativeFunction("toLocaleString", 0, objectToString), true, false, true)
	proto.DefineDataProperty(th, "valueOf", th.NewNativeFunction("valueOf", 0, objectValueOf), true, false, true)
	proto.DefineDataProperty(th, "hasOwnProperty", th.NewNativeFunction("hasOwnProperty", 1, objectHasOwnProperty), true, false, true)
	proto.DefineDataProperty(th, "isPrototypeOf", th.NewNativeFunction("isPrototypeOf", 1, objectIsPrototypeOf), true, false, true)
	proto.DefineDataProperty(th, "propertyIsEnumerable", th.NewNativeFunction("propertyIsEnumerable", 1, objectPropertyIsEnumerable), true, false, true)

	return th.NewConstructor("Object", 1, proto, objectConstruct)
}

// objectConstruct implements ES3 15.2.2: `new Object(value)` with no
// argument (or undefined/null) yields a fresh plain object; any other
// value is coerced via ToObject, the same boxing `new Object(x)` and a
// bare call `Object(x)` share.
func objectConstruct(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	if args.Len() == 0 {
		return machine.NewObject(th.ProtoObject()), nil
	}
	v := args.At(0)
	if _, ok := v.(machine.Undefined); ok {
		return machine.NewObject(th.ProtoObject()), nil
	}
	if _, ok := v.(machine.Null); ok {
		return machine.NewObject(th.ProtoObject()), nil
	}
	return machine.ToObject(th, v)
}

func objectToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, ok := this.(*machine.Object)
	if !ok {
		return machine.String("[object Object]"), nil
	}
	return machine.String(o.String()), nil
}

func objectValueOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func objectHasOwnProperty(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	name, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	return machine.BoolValue(o.HasOwnProperty(th, name)), nil
}

func objectIsPrototypeOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	self, ok := this.(*machine.Object)
	if !ok {
		return machine.BoolValue(false), nil
	}
	other, ok := args.At(0).(*machine.Object)
	if !ok {
		return machine.BoolValue(false), nil
	}
	for p := other.Prototype; p != nil; p = p.Prototype {
		if p == self {
			return machine.BoolValue(true), nil
		}
	}
	return machine.BoolValue(false), nil
}

func objectPropertyIsEnumerable(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	name, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	for _, k := range o.OwnEnumerableKeys(th) {
		if k == name {
			return machine.BoolValue(true), nil
		}
	}
	return machine.BoolValue(false), nil
}
