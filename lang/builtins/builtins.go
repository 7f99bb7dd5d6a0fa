// Package builtins wires the ES3 standard library into a fresh
// machine.Thread: Object, Function, Array, String, Number, Boolean, Date,
// Error (+5 subclasses), RegExp, Math, JSON and the global function set.
// Each constructor/prototype method is an ordinary
// func(*machine.Thread, machine.Value, *machine.Tuple) (machine.Value,
// error) registered the same way a user closure would be, per spec
// component L ("built-in wiring") — there is no separate built-in calling
// convention to learn.
package builtins

import (
	"math"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// Wire installs the full standard library on th and returns th for
// convenient chaining: builtins.Wire(machine.NewThread("main")). Safe to
// call exactly once per Thread; calling it twice double-registers every
// global.
func Wire(th *machine.Thread) *machine.Thread {
	protoObject := machine.NewObject(nil)

	protoFunction := machine.NewObject(protoObject)
	protoArray := machine.NewObject(protoObject)
	protoString := machine.NewObject(protoObject)
	protoNumber := machine.NewObject(protoObject)
	protoBoolean := machine.NewObject(protoObject)
	protoError := machine.NewObject(protoObject)
	protoDate := machine.NewObject(protoObject)
	protoRegExp := machine.NewObject(protoObject)

	th.WireProtos(machine.ProtoSet{
		Object: protoObject, Function: protoFunction, Array: protoArray,
		String: protoString, Number: protoNumber, Boolean: protoBoolean,
		Error: protoError, Date: protoDate, RegExp: protoRegExp,
	})

	objectCtor := wireObject(th, protoObject)
	functionCtor := wireFunction(th, protoFunction)
	arrayCtor := wireArray(th, protoArray)
	stringCtor := wireString(th, protoString)
	numberCtor := wireNumber(th, protoNumber)
	booleanCtor := wireBoolean(th, protoBoolean)
	dateCtor := wireDate(th, protoDate)
	errorCtors := wireErrors(th, protoError)
	regexpCtor := wireRegExp(th, protoRegExp)
	mathObj := wireMath(th, protoObject)
	jsonObj := wireJSON(th, protoObject)

	universe := map[string]machine.Value{
		"undefined": machine.UndefinedValue,
		"NaN":       machine.Float(math.NaN()),
		"Infinity":  machine.Float(math.Inf(1)),

		"Object":   objectCtor,
		"Function": functionCtor,
		"Array":    arrayCtor,
		"String":   stringCtor,
		"Number":   numberCtor,
		"Boolean":  booleanCtor,
		"Date":     dateCtor,
		"RegExp":   regexpCtor,
		"Math":     mathObj,
		"JSON":     jsonObj,
	}
	for name, ctor := range errorCtors {
		universe[name] = ctor
	}
	for name, v := range globalFunctions(th) {
		universe[name] = v
	}
	for name, v := range universe {
		th.Universe[name] = v
		th.Global.DefineDataProperty(th, name, v, true, false, true)
	}

	return th
}
