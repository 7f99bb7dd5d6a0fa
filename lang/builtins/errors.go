package builtins

import "github.com/lorelei-lang/lorelei/lang/machine"

// errorSubclasses are the five native error kinds ES3 15.11.6 mandates
// beyond the base Error constructor, sharing Error.prototype's toString
// but each with their own distinct prototype object (so `instanceof
// RangeError` works) and a distinct own "name".
var errorSubclasses = []string{"RangeError", "ReferenceError", "SyntaxError", "TypeError", "URIError"}

// wireErrors installs Error.prototype and one prototype per subclass,
// returning every constructor keyed by name ("Error", "RangeError", ...)
// for builtins.go's universe assembly and for the Thread's
// RegisterErrorProto wiring (thread.go).
func wireErrors(th *machine.Thread, errorProto *machine.Object) map[string]*machine.Object {
	errorProto.DefineDataProperty(th, "name", machine.String("Error"), true, false, true)
	errorProto.DefineDataProperty(th, "message", machine.String(""), true, false, true)
	errorProto.DefineDataProperty(th, "toString", th.NewNativeFunction("toString", 0, errorToString), true, false, true)

	out := map[string]*machine.Object{
		"Error": th.NewConstructor("Error", 1, errorProto, errorConstructFor(errorProto)),
	}
	th.RegisterErrorProto("Error", errorProto)

	for _, name := range errorSubclasses {
		proto := machine.NewObject(errorProto)
		proto.DefineDataProperty(th, "name", machine.String(name), true, false, true)
		th.RegisterErrorProto(name, proto)
		out[name] = th.NewConstructor(name, 1, proto, errorConstructFor(proto))
	}
	return out
}

// errorConstructFor returns the constructor body for one error kind: sets
// "message" when given an argument, leaving "name" to the prototype
// (ES3 15.11.7.9's per-kind name lives on NativeError.prototype, not the
// instance, unless overridden). proto is the kind's own prototype, used
// when the constructor is invoked as a plain function (15.11.1: a bare
// `RangeError(msg)` behaves exactly like `new RangeError(msg)`).
func errorConstructFor(proto *machine.Object) machine.NativeFunc {
	return func(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
		var msg string
		if args.Len() > 0 {
			var err error
			msg, err = machine.ToString(th, args.At(0))
			if err != nil {
				return nil, err
			}
		}
		o, ok := this.(*machine.Object)
		if !ok || o.Class == machine.ClassGlobal {
			o = machine.NewObject(proto)
		}
		o.Class = machine.ClassError
		if args.Len() > 0 {
			o.DefineDataProperty(th, "message", machine.String(msg), true, false, true)
		}
		return o, nil
	}
}

func errorToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, ok := this.(*machine.Object)
	if !ok {
		return machine.String("Error"), nil
	}
	name := "Error"
	if nv, err := o.Get(th, "name"); err == nil {
		if s, err := machine.ToString(th, nv); err == nil && s != "" {
			name = s
		}
	}
	msg := ""
	if mv, err := o.Get(th, "message"); err == nil {
		if s, err := machine.ToString(th, mv); err == nil {
			msg = s
		}
	}
	if msg == "" {
		return machine.String(name), nil
	}
	return machine.String(name + ": " + msg), nil
}
