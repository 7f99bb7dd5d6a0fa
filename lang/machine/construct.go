package machine

import "fmt"

// Construct implements ES3 13.2.2, the `new` operator: create a fresh
// object whose prototype is the constructor's own "prototype" property (or
// Object.prototype if that property is not itself an object), invoke the
// constructor with `this` bound to the new object, and return whichever of
// the two is an object — the constructor's own return value if it produced
// one, the freshly created object otherwise. A native constructor (Array,
// Date, RegExp, Error, the primitive wrappers) commonly ignores the
// supplied `this` entirely and returns its own differently-classed object
// instead, which this algorithm picks up transparently since it only cares
// whether the result is an Object.
func (th *Thread) Construct(ctor Value, args *Tuple) (Value, error) {
	obj, ok := ctor.(*Object)
	if !ok || obj.Func == nil {
		return nil, th.TypeError(fmt.Sprintf("%s is not a constructor", describeCallee(ctor)))
	}

	proto := th.protoObject
	if pv, err := obj.Get(th, "prototype"); err == nil {
		if po, ok := pv.(*Object); ok {
			proto = po
		}
	}
	newObj := NewObject(proto)
	th.pool.Track(newObj)

	result, err := Call(th, obj, newObj, args)
	if err != nil {
		return nil, err
	}
	if ro, ok := result.(*Object); ok {
		return ro, nil
	}
	return newObj, nil
}
