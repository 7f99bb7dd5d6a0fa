package builtins

import (
	"sort"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// wireArray installs Array.prototype (ES3 15.4.4) and returns the Array
// constructor.
func wireArray(th *machine.Thread, proto *machine.Object) *machine.Object {
	methods := map[string]struct {
		n  int
		fn machine.NativeFunc
	}{
		"toString": {0, arrayToString},
		"join":     {1, arrayJoin},
		"push":     {1, arrayPush},
		"pop":      {0, arrayPop},
		"shift":    {0, arrayShift},
		"unshift":  {1, arrayUnshift},
		"slice":    {2, arraySlice},
		"splice":   {2, arraySplice},
		"concat":   {1, arrayConcat},
		"reverse":  {0, arrayReverse},
		"sort":     {1, arraySort},
		"indexOf":  {1, arrayIndexOf},
		"forEach":  {1, arrayForEach},
		"map":      {1, arrayMap},
		"filter":   {1, arrayFilter},
	}
	for name, m := range methods {
		proto.DefineDataProperty(th, name, th.NewNativeFunction(name, m.n, m.fn), true, false, true)
	}
	return th.NewConstructor("Array", 1, proto, arrayConstruct)
}

func newArray(th *machine.Thread, elems []machine.Value) *machine.Object {
	arr := machine.NewObject(th.ProtoArray())
	arr.Class = machine.ClassArray
	arr.SetLength(uint32(len(elems)))
	for i, v := range elems {
		arr.PutElement(th, uint32(i), v, false)
	}
	return arr
}

func arrayLen(th *machine.Thread, o *machine.Object) (uint32, error) {
	v, err := o.Get(th, "length")
	if err != nil {
		return 0, err
	}
	n, err := machine.ToInteger(th, v)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// arrayConstruct implements ES3 15.4.2: a single numeric argument sets
// length; any other arity becomes the initial elements.
func arrayConstruct(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	if args.Len() == 1 {
		if n, ok := args.At(0).(machine.Int); ok {
			arr := machine.NewObject(th.ProtoArray())
			arr.Class = machine.ClassArray
			arr.SetLength(uint32(n))
			return arr, nil
		}
		if f, ok := args.At(0).(machine.Float); ok {
			arr := machine.NewObject(th.ProtoArray())
			arr.Class = machine.ClassArray
			arr.SetLength(uint32(f))
			return arr, nil
		}
	}
	return newArray(th, args.Elems()), nil
}

func arrayToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return arrayJoin(th, this, machine.NilaryTuple)
}

func arrayJoin(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	sep := ","
	if args.Len() > 0 {
		if _, isUndef := args.At(0).(machine.Undefined); !isUndef {
			sep, err = machine.ToString(th, args.At(0))
			if err != nil {
				return nil, err
			}
		}
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	parts := make([]string, n)
	for i := uint32(0); i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		switch v.(type) {
		case machine.Undefined, machine.Null:
			parts[i] = ""
		default:
			s, err := machine.ToString(th, v)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
	}
	return machine.String(strings.Join(parts, sep)), nil
}

func arrayPush(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	for _, v := range args.Elems() {
		if err := o.PutElement(th, n, v, false); err != nil {
			return nil, err
		}
		n++
	}
	o.SetLength(n)
	return machine.Int(n), nil
}

func arrayPop(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return machine.UndefinedValue, nil
	}
	v, err := o.GetElement(th, n-1)
	if err != nil {
		return nil, err
	}
	o.DeleteProperty(th, itoa(n-1), false)
	o.SetLength(n - 1)
	return v, nil
}

func arrayShift(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return machine.UndefinedValue, nil
	}
	first, err := o.GetElement(th, 0)
	if err != nil {
		return nil, err
	}
	for i := uint32(1); i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		o.PutElement(th, i-1, v, false)
	}
	o.SetLength(n - 1)
	return first, nil
}

func arrayUnshift(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	k := uint32(len(args.Elems()))
	for i := n; i > 0; i-- {
		v, err := o.GetElement(th, i-1)
		if err != nil {
			return nil, err
		}
		o.PutElement(th, i-1+k, v, false)
	}
	for i, v := range args.Elems() {
		o.PutElement(th, uint32(i), v, false)
	}
	o.SetLength(n + k)
	return machine.Int(n + k), nil
}

func arraySlice(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(th, args.At(0), n, 0)
	if err != nil {
		return nil, err
	}
	end := n
	if args.Len() > 1 {
		if _, isUndef := args.At(1).(machine.Undefined); !isUndef {
			end, err = relativeIndex(th, args.At(1), n, n)
			if err != nil {
				return nil, err
			}
		}
	}
	var out []machine.Value
	for i := start; i < end; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return newArray(th, out), nil
}

func arraySplice(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(th, args.At(0), n, 0)
	if err != nil {
		return nil, err
	}
	deleteCount := n - start
	if args.Len() > 1 {
		dc, err := machine.ToInteger(th, args.At(1))
		if err != nil {
			return nil, err
		}
		if dc < 0 {
			dc = 0
		}
		if uint32(dc) < deleteCount {
			deleteCount = uint32(dc)
		}
	}
	var removed []machine.Value
	for i := uint32(0); i < deleteCount; i++ {
		v, err := o.GetElement(th, start+i)
		if err != nil {
			return nil, err
		}
		removed = append(removed, v)
	}
	inserted := args.Slice(min2(2, args.Len()))
	tail := make([]machine.Value, 0, n-start-deleteCount)
	for i := start + deleteCount; i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		tail = append(tail, v)
	}
	idx := start
	for _, v := range inserted {
		o.PutElement(th, idx, v, false)
		idx++
	}
	for _, v := range tail {
		o.PutElement(th, idx, v, false)
		idx++
	}
	newLen := idx
	o.SetLength(newLen)
	return newArray(th, removed), nil
}

func arrayConcat(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	var out []machine.Value
	appendAllElements := func(v machine.Value) error {
		if obj, ok := v.(*machine.Object); ok && obj.Class == machine.ClassArray {
			n, err := arrayLen(th, obj)
			if err != nil {
				return err
			}
			for i := uint32(0); i < n; i++ {
				ev, err := obj.GetElement(th, i)
				if err != nil {
					return err
				}
				out = append(out, ev)
			}
			return nil
		}
		out = append(out, v)
		return nil
	}
	if err := appendAllElements(o); err != nil {
		return nil, err
	}
	for _, v := range args.Elems() {
		if err := appendAllElements(v); err != nil {
			return nil, err
		}
	}
	return newArray(th, out), nil
}

func arrayReverse(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	for i, j := uint32(0), n; i < j; i, j = i+1, j-1 {
		vi, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		vj, err := o.GetElement(th, j-1)
		if err != nil {
			return nil, err
		}
		o.PutElement(th, i, vj, false)
		o.PutElement(th, j-1, vi, false)
	}
	return o, nil
}

// arraySort implements ES3 15.4.4.11 with a user comparator (argument 0)
// or default lexicographic string comparison.
func arraySort(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	elems := make([]machine.Value, n)
	for i := range elems {
		elems[i], err = o.GetElement(th, uint32(i))
		if err != nil {
			return nil, err
		}
	}
	var cmp *machine.Object
	if args.Len() > 0 {
		cmp, _ = asCallable(args.At(0))
	}
	var sortErr error
	sort.SliceStable(elems, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		if cmp != nil {
			res, err := machine.Call(th, cmp, machine.UndefinedValue, machine.NewTuple([]machine.Value{elems[i], elems[j]}))
			if err != nil {
				sortErr = err
				return false
			}
			n, err := machine.ToNumber(th, res)
			if err != nil {
				sortErr = err
				return false
			}
			return n < 0
		}
		si, err := machine.ToString(th, elems[i])
		if err != nil {
			sortErr = err
			return false
		}
		sj, err := machine.ToString(th, elems[j])
		if err != nil {
			sortErr = err
			return false
		}
		return si < sj
	})
	if sortErr != nil {
		return nil, sortErr
	}
	for i, v := range elems {
		o.PutElement(th, uint32(i), v, false)
	}
	return o, nil
}

func arrayIndexOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	target := args.At(0)
	start := uint32(0)
	if args.Len() > 1 {
		i, err := relativeIndex(th, args.At(1), n, 0)
		if err != nil {
			return nil, err
		}
		start = i
	}
	for i := start; i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		if machine.StrictEquals(v, target) {
			return machine.Int(i), nil
		}
	}
	return machine.Int(-1), nil
}

func arrayForEach(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(args.At(0))
	if !ok {
		return nil, th.TypeError("Array.prototype.forEach callback is not a function")
	}
	thisArg := args.At(1)
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		if _, err := machine.Call(th, fn, thisArg, machine.NewTuple([]machine.Value{v, machine.Int(i), o})); err != nil {
			return nil, err
		}
	}
	return machine.UndefinedValue, nil
}

func arrayMap(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(args.At(0))
	if !ok {
		return nil, th.TypeError("Array.prototype.map callback is not a function")
	}
	thisArg := args.At(1)
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	out := make([]machine.Value, n)
	for i := uint32(0); i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		r, err := machine.Call(th, fn, thisArg, machine.NewTuple([]machine.Value{v, machine.Int(i), o}))
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return newArray(th, out), nil
}

func arrayFilter(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, err := machine.ToObject(th, this)
	if err != nil {
		return nil, err
	}
	fn, ok := asCallable(args.At(0))
	if !ok {
		return nil, th.TypeError("Array.prototype.filter callback is not a function")
	}
	thisArg := args.At(1)
	n, err := arrayLen(th, o)
	if err != nil {
		return nil, err
	}
	var out []machine.Value
	for i := uint32(0); i < n; i++ {
		v, err := o.GetElement(th, i)
		if err != nil {
			return nil, err
		}
		r, err := machine.Call(th, fn, thisArg, machine.NewTuple([]machine.Value{v, machine.Int(i), o}))
		if err != nil {
			return nil, err
		}
		if machine.Truth(r) {
			out = append(out, v)
		}
	}
	return newArray(th, out), nil
}

// relativeIndex implements the common "negative counts from the end,
// clamp to [0, n]" index normalization ES3 array methods share (15.4.4.10
// and friends).
func relativeIndex(th *machine.Thread, v machine.Value, n uint32, def uint32) (uint32, error) {
	if _, isUndef := v.(machine.Undefined); isUndef {
		return def, nil
	}
	i, err := machine.ToInteger(th, v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += float64(n)
		if i < 0 {
			i = 0
		}
	}
	if i > float64(n) {
		i = float64(n)
	}
	return uint32(i), nil
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func itoa(n uint32) string {
	return machine.Int(n).String()
}
