package builtins

import (
	"strings"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// wireString installs String.prototype (ES3 15.5.4) and returns the String
// constructor.
func wireString(th *machine.Thread, proto *machine.Object) *machine.Object {
	methods := map[string]struct {
		n  int
		fn machine.NativeFunc
	}{
		"toString":       {0, stringToString},
		"valueOf":        {0, stringToString},
		"charAt":         {1, stringCharAt},
		"charCodeAt":     {1, stringCharCodeAt},
		"indexOf":        {1, stringIndexOf},
		"lastIndexOf":    {1, stringLastIndexOf},
		"slice":          {2, stringSlice},
		"substring":      {2, stringSubstring},
		"substr":         {2, stringSubstr},
		"split":          {2, stringSplit},
		"concat":         {1, stringConcat},
		"toUpperCase":    {0, stringToUpperCase},
		"toLowerCase":    {0, stringToLowerCase},
		"replace":        {2, stringReplace},
		"match":          {1, stringMatch},
		"search":         {1, stringSearch},
	}
	for name, m := range methods {
		proto.DefineDataProperty(th, name, th.NewNativeFunction(name, m.n, m.fn), true, false, true)
	}
	ctor := th.NewConstructor("String", 1, proto, stringConstructMethod)
	ctor.DefineDataProperty(th, "fromCharCode", th.NewNativeFunction("fromCharCode", 1, stringFromCharCode), true, false, true)
	return ctor
}

func thisString(th *machine.Thread, this machine.Value) (string, error) {
	if o, ok := this.(*machine.Object); ok && o.Class == machine.ClassString {
		if s, ok := o.Prim.(machine.String); ok {
			return string(s), nil
		}
	}
	return machine.ToString(th, this)
}

// stringConstructMethod handles both bare `String(x)` (ToString coercion)
// and `new String(x)` (a boxed wrapper object), telling them apart by this:
// a non-global object this (such as the fresh object Construct passes) gets
// a String wrapper, which Construct returns in place of its own object; any
// other this gets the primitive String.
func stringConstructMethod(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s := ""
	if args.Len() > 0 {
		var err error
		s, err = machine.ToString(th, args.At(0))
		if err != nil {
			return nil, err
		}
	}
	if o, ok := this.(*machine.Object); ok && o.Class != machine.ClassGlobal {
		return th.NewWrapper(machine.ClassString, th.ProtoString(), machine.String(s)), nil
	}
	return machine.String(s), nil
}

func stringFromCharCode(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	var b strings.Builder
	for _, a := range args.Elems() {
		n, err := machine.ToInteger(th, a)
		if err != nil {
			return nil, err
		}
		b.WriteRune(rune(uint16(n)))
	}
	return machine.String(b.String()), nil
}

func stringToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	return machine.String(s), nil
}

func stringCharAt(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rs := []rune(s)
	i, err := machine.ToInteger(th, args.At(0))
	if err != nil {
		return nil, err
	}
	if i < 0 || int(i) >= len(rs) {
		return machine.String(""), nil
	}
	return machine.String(string(rs[int(i)])), nil
}

func stringCharCodeAt(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rs := []rune(s)
	i, err := machine.ToInteger(th, args.At(0))
	if err != nil {
		return nil, err
	}
	if i < 0 || int(i) >= len(rs) {
		return machine.Float(nanValue()), nil
	}
	return machine.Int(rs[int(i)]), nil
}

func stringIndexOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	sub, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	start := 0
	if args.Len() > 1 {
		n, err := machine.ToInteger(th, args.At(1))
		if err != nil {
			return nil, err
		}
		start = int(n)
	}
	rs := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(rs) {
		start = len(rs)
	}
	idx := strings.Index(string(rs[start:]), sub)
	if idx < 0 {
		return machine.Int(-1), nil
	}
	return machine.Int(start + len([]rune(string(rs[start:])[:idx]))), nil
}

func stringLastIndexOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	sub, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	idx := strings.LastIndex(s, sub)
	if idx < 0 {
		return machine.Int(-1), nil
	}
	return machine.Int(len([]rune(s[:idx]))), nil
}

func stringSlice(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rs := []rune(s)
	n := uint32(len(rs))
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
	if end < start {
		end = start
	}
	return machine.String(string(rs[start:end])), nil
}

func stringSubstring(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rs := []rune(s)
	n := len(rs)
	clamp := func(v machine.Value, def int) (int, error) {
		if _, isUndef := v.(machine.Undefined); isUndef {
			return def, nil
		}
		f, err := machine.ToInteger(th, v)
		if err != nil {
			return 0, err
		}
		i := int(f)
		if i < 0 {
			i = 0
		}
		if i > n {
			i = n
		}
		return i, nil
	}
	a, err := clamp(args.At(0), 0)
	if err != nil {
		return nil, err
	}
	b, err := clamp(args.At(1), n)
	if err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}
	return machine.String(string(rs[a:b])), nil
}

func stringSubstr(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rs := []rune(s)
	n := len(rs)
	start, err := machine.ToInteger(th, args.At(0))
	if err != nil {
		return nil, err
	}
	si := int(start)
	if si < 0 {
		si += n
		if si < 0 {
			si = 0
		}
	}
	if si > n {
		si = n
	}
	length := n - si
	if args.Len() > 1 {
		if _, isUndef := args.At(1).(machine.Undefined); !isUndef {
			l, err := machine.ToInteger(th, args.At(1))
			if err != nil {
				return nil, err
			}
			length = int(l)
		}
	}
	if length < 0 {
		length = 0
	}
	if si+length > n {
		length = n - si
	}
	return machine.String(string(rs[si : si+length])), nil
}

func stringConcat(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString(s)
	for _, a := range args.Elems() {
		p, err := machine.ToString(th, a)
		if err != nil {
			return nil, err
		}
		b.WriteString(p)
	}
	return machine.String(b.String()), nil
}

func stringToUpperCase(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	return machine.String(strings.ToUpper(s)), nil
}

func stringToLowerCase(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	return machine.String(strings.ToLower(s)), nil
}

func stringSplit(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	if args.Len() == 0 {
		return newArray(th, []machine.Value{machine.String(s)}), nil
	}
	if re, ok := asRegExpObject(args.At(0)); ok {
		parts, err := splitByRegexp(th, re, s)
		if err != nil {
			return nil, err
		}
		out := make([]machine.Value, len(parts))
		for i, p := range parts {
			out[i] = machine.String(p)
		}
		return newArray(th, out), nil
	}
	sep, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]machine.Value, len(parts))
	for i, p := range parts {
		out[i] = machine.String(p)
	}
	return newArray(th, out), nil
}
