package builtins

import (
	"strconv"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/machine"
	"github.com/lorelei-lang/lorelei/lang/regexp"
)

// regexpData is the internal state of a RegExp instance (object.go's
// Internal field): the compiled matcher plus the literal source/flags
// ES3 exposes as the "source"/"global"/"ignoreCase"/"multiline" own
// properties (15.10.7).
type regexpData struct {
	re *regexp.Regexp
}

// wireRegExp installs RegExp.prototype's exec/test (ES3 15.10.6) and
// registers the Thread-level compiler hook the NEWREGEXP opcode goes through
// (machine/thread.go's SetRegExpCompiler); `new RegExp(...)` calls the same
// compileRegExpObject directly.
func wireRegExp(th *machine.Thread, proto *machine.Object) *machine.Object {
	proto.DefineDataProperty(th, "exec", th.NewNativeFunction("exec", 1, regexpExec), true, false, true)
	proto.DefineDataProperty(th, "test", th.NewNativeFunction("test", 1, regexpTest), true, false, true)
	proto.DefineDataProperty(th, "toString", th.NewNativeFunction("toString", 0, regexpToString), true, false, true)
	proto.DefineDataProperty(th, "lastIndex", machine.Int(0), true, false, false)

	th.SetRegExpCompiler(func(pattern, flagStr string) (*machine.Object, error) {
		return compileRegExpObject(th, pattern, flagStr)
	})

	return th.NewConstructor("RegExp", 2, proto, regexpConstructMethod)
}

func compileRegExpObject(th *machine.Thread, pattern, flagStr string) (*machine.Object, error) {
	flags, err := regexp.ParseFlags(flagStr)
	if err != nil {
		return nil, th.SyntaxErrorAt(err.Error())
	}
	re, err := regexp.Compile(pattern, flags)
	if err != nil {
		return nil, th.SyntaxErrorAt(err.Error())
	}
	o := machine.NewObject(th.ProtoRegExp())
	o.Class = machine.ClassRegExp
	o.Internal = &regexpData{re: re}
	o.DefineDataProperty(th, "source", machine.String(pattern), false, false, false)
	o.DefineDataProperty(th, "global", machine.BoolValue(flags.Global), false, false, false)
	o.DefineDataProperty(th, "ignoreCase", machine.BoolValue(flags.IgnoreCase), false, false, false)
	o.DefineDataProperty(th, "multiline", machine.BoolValue(flags.Multiline), false, false, false)
	o.DefineDataProperty(th, "lastIndex", machine.Int(0), true, false, false)
	return o, nil
}

// regexpConstructMethod implements `new RegExp(pattern, flags)`, also
// accepting an existing RegExp as the first argument (ES3 15.10.3.1): its
// source/flags are copied rather than nested.
func regexpConstructMethod(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	var pattern, flagStr string
	if re, ok := asRegExpObject(args.At(0)); ok {
		pattern = re.re.Source
		flagStr = flagString(re.re.Flags)
	} else if args.Len() > 0 {
		var err error
		pattern, err = machine.ToString(th, args.At(0))
		if err != nil {
			return nil, err
		}
	}
	if args.Len() > 1 {
		if _, isUndef := args.At(1).(machine.Undefined); !isUndef {
			var err error
			flagStr, err = machine.ToString(th, args.At(1))
			if err != nil {
				return nil, err
			}
		}
	}
	return compileRegExpObject(th, pattern, flagStr)
}

func flagString(f regexp.Flags) string {
	var b strings.Builder
	if f.Global {
		b.WriteByte('g')
	}
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	return b.String()
}

func asRegExpObject(v machine.Value) (*regexpData, bool) {
	o, ok := v.(*machine.Object)
	if !ok || o.Class != machine.ClassRegExp {
		return nil, false
	}
	rd, ok := o.Internal.(*regexpData)
	return rd, ok
}

// regexpExec implements ES3 15.10.6.2: returns a match-result array (the
// whole match plus captures, with "index"/"input" own properties) or null,
// advancing lastIndex when the "g" flag is set.
func regexpExec(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, ok := this.(*machine.Object)
	rd, ok2 := asRegExpObject(this)
	if !ok || !ok2 {
		return nil, th.TypeError("RegExp.prototype.exec called on non-RegExp")
	}
	input, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	start := 0
	if rd.re.Flags.Global {
		lv, _ := o.Get(th, "lastIndex")
		n, _ := machine.ToInteger(th, lv)
		start = int(n)
	}
	if start < 0 || start > regexp.RuneLen(input) {
		if rd.re.Flags.Global {
			o.Put(th, "lastIndex", machine.Int(0), false)
		}
		return machine.NullValue, nil
	}
	caps, err := rd.re.FindSubmatchIndex(input, start)
	if err != nil {
		return nil, th.RangeError(err.Error())
	}
	if caps == nil {
		if rd.re.Flags.Global {
			o.Put(th, "lastIndex", machine.Int(0), false)
		}
		return machine.NullValue, nil
	}
	if rd.re.Flags.Global {
		o.Put(th, "lastIndex", machine.Int(caps[1]), false)
	}
	return matchResultArray(th, input, caps), nil
}

func regexpTest(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	v, err := regexpExec(th, this, args)
	if err != nil {
		return nil, err
	}
	_, isNull := v.(machine.Null)
	return machine.BoolValue(!isNull), nil
}

func regexpToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	rd, ok := asRegExpObject(this)
	if !ok {
		return machine.String("/(?:)/"), nil
	}
	return machine.String("/" + rd.re.Source + "/" + flagString(rd.re.Flags)), nil
}

// matchResultArray builds the array RegExp.prototype.exec/String.prototype
// .match return: numeric elements are the whole match then each capture
// group (rune-sliced out of input via caps' rune offsets), plus "index"
// and "input".
func matchResultArray(th *machine.Thread, input string, caps []int) *machine.Object {
	rs := []rune(input)
	n := len(caps) / 2
	elems := make([]machine.Value, n)
	for i := 0; i < n; i++ {
		s, e := caps[2*i], caps[2*i+1]
		if s < 0 || e < 0 {
			elems[i] = machine.UndefinedValue
			continue
		}
		elems[i] = machine.String(string(rs[s:e]))
	}
	arr := newArray(th, elems)
	arr.DefineDataProperty(th, "index", machine.Int(caps[0]), true, true, true)
	arr.DefineDataProperty(th, "input", machine.String(input), true, true, true)
	return arr
}

// splitByRegexp implements the RegExp overload of String.prototype.split
// (15.5.4.14): splits input at every non-overlapping match, including
// captured groups as extra elements between the segments they fall inside
// (ES3 Annex B-compatible behavior most engines of that era share).
func splitByRegexp(th *machine.Thread, rd *regexpData, input string) ([]string, error) {
	rs := []rune(input)
	var out []string
	last := 0
	pos := 0
	for pos <= len(rs) {
		caps, err := rd.re.FindSubmatchIndex(input, pos)
		if err != nil {
			return nil, th.RangeError(err.Error())
		}
		if caps == nil {
			break
		}
		if caps[1] == last && caps[0] == caps[1] {
			pos++
			continue
		}
		out = append(out, string(rs[last:caps[0]]))
		for i := 1; i < len(caps)/2; i++ {
			s, e := caps[2*i], caps[2*i+1]
			if s < 0 || e < 0 {
				continue
			}
			out = append(out, string(rs[s:e]))
		}
		last = caps[1]
		pos = caps[1]
		if caps[0] == caps[1] {
			pos++
		}
	}
	out = append(out, string(rs[last:]))
	return out, nil
}

func stringReplace(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	replacement := args.At(1)
	replaceFn, isFn := asCallable(replacement)

	if rd, ok := asRegExpObject(args.At(0)); ok {
		rs := []rune(s)
		var b strings.Builder
		pos, last := 0, 0
		for pos <= len(rs) {
			caps, err := rd.re.FindSubmatchIndex(s, pos)
			if err != nil {
				return nil, th.RangeError(err.Error())
			}
			if caps == nil {
				break
			}
			b.WriteString(string(rs[last:caps[0]]))
			rep, err := expandReplacement(th, s, caps, replacement, replaceFn, isFn)
			if err != nil {
				return nil, err
			}
			b.WriteString(rep)
			last = caps[1]
			pos = caps[1]
			if caps[0] == caps[1] {
				if pos < len(rs) {
					b.WriteString(string(rs[pos]))
				}
				pos++
				last = pos
			}
			if !rd.re.Flags.Global {
				break
			}
		}
		if last <= len(rs) {
			b.WriteString(string(rs[last:]))
		}
		return machine.String(b.String()), nil
	}

	sub, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	idx := strings.Index(s, sub)
	if idx < 0 {
		return machine.String(s), nil
	}
	var rep string
	if isFn {
		r, err := machine.Call(th, replaceFn, machine.UndefinedValue, machine.NewTuple([]machine.Value{
			machine.String(sub), machine.Int(len([]rune(s[:idx]))), machine.String(s),
		}))
		if err != nil {
			return nil, err
		}
		rep, err = machine.ToString(th, r)
		if err != nil {
			return nil, err
		}
	} else {
		repStr, err := machine.ToString(th, replacement)
		if err != nil {
			return nil, err
		}
		rep = strings.ReplaceAll(repStr, "$&", sub)
	}
	return machine.String(s[:idx] + rep + s[idx+len(sub):]), nil
}

// expandReplacement computes one match's replacement text: either the
// callback's return value, or the literal string with $1.."$9"/$&/$`/$'
// substitutions (ES3 15.5.4.11).
func expandReplacement(th *machine.Thread, input string, caps []int, replacement machine.Value, fn *machine.Object, isFn bool) (string, error) {
	rs := []rune(input)
	whole := string(rs[caps[0]:caps[1]])
	if isFn {
		callArgs := []machine.Value{machine.String(whole)}
		for i := 1; i < len(caps)/2; i++ {
			s, e := caps[2*i], caps[2*i+1]
			if s < 0 || e < 0 {
				callArgs = append(callArgs, machine.UndefinedValue)
				continue
			}
			callArgs = append(callArgs, machine.String(string(rs[s:e])))
		}
		callArgs = append(callArgs, machine.Int(caps[0]), machine.String(input))
		r, err := machine.Call(th, fn, machine.UndefinedValue, machine.NewTuple(callArgs))
		if err != nil {
			return "", err
		}
		return machine.ToString(th, r)
	}
	tmpl, err := machine.ToString(th, replacement)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '$' || i+1 >= len(tmpl) {
			b.WriteByte(tmpl[i])
			continue
		}
		switch c := tmpl[i+1]; {
		case c == '&':
			b.WriteString(whole)
			i++
		case c == '`':
			b.WriteString(string(rs[:caps[0]]))
			i++
		case c == '\'':
			b.WriteString(string(rs[caps[1]:]))
			i++
		case c >= '1' && c <= '9':
			n, _ := strconv.Atoi(string(c))
			if 2*n+1 < len(caps) {
				s, e := caps[2*n], caps[2*n+1]
				if s >= 0 && e >= 0 {
					b.WriteString(string(rs[s:e]))
				}
			}
			i++
		default:
			b.WriteByte('$')
		}
	}
	return b.String(), nil
}

func stringMatch(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rd, ok := asRegExpObject(args.At(0))
	if !ok {
		pattern, err := machine.ToString(th, args.At(0))
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern, regexp.Flags{})
		if err != nil {
			return nil, th.SyntaxErrorAt(err.Error())
		}
		rd = &regexpData{re: re}
	}
	if !rd.re.Flags.Global {
		caps, err := rd.re.FindSubmatchIndex(s, 0)
		if err != nil {
			return nil, th.RangeError(err.Error())
		}
		if caps == nil {
			return machine.NullValue, nil
		}
		return matchResultArray(th, s, caps), nil
	}
	var out []machine.Value
	pos := 0
	rs := []rune(s)
	for pos <= len(rs) {
		caps, err := rd.re.FindSubmatchIndex(s, pos)
		if err != nil {
			return nil, th.RangeError(err.Error())
		}
		if caps == nil {
			break
		}
		out = append(out, machine.String(string(rs[caps[0]:caps[1]])))
		pos = caps[1]
		if caps[0] == caps[1] {
			pos++
		}
	}
	if out == nil {
		return machine.NullValue, nil
	}
	return newArray(th, out), nil
}

func stringSearch(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := thisString(th, this)
	if err != nil {
		return nil, err
	}
	rd, ok := asRegExpObject(args.At(0))
	if !ok {
		pattern, err := machine.ToString(th, args.At(0))
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern, regexp.Flags{})
		if err != nil {
			return nil, th.SyntaxErrorAt(err.Error())
		}
		rd = &regexpData{re: re}
	}
	caps, err := rd.re.FindSubmatchIndex(s, 0)
	if err != nil {
		return nil, th.RangeError(err.Error())
	}
	if caps == nil {
		return machine.Int(-1), nil
	}
	return machine.Int(caps[0]), nil
}
