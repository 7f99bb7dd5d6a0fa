package builtins

import (
	"bufio"
	"fmt"
	"math"
	"net/url"
	"os"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

var stdout = bufio.NewWriter(os.Stdout)

// globalFunctions returns the top-level functions ES3 15.1.2 mandates
// (parseInt, parseFloat, isNaN, isFinite, eval, the four URI codecs) plus
// two host conveniences every embedding of a scripting language like this
// one ends up needing: print (line-buffered stdout, flushed per call so a
// REPL sees output promptly) and gc (a direct hook onto Pool.Collect, spec
// §8's explicit memory-pool exercise).
func globalFunctions(th *machine.Thread) map[string]machine.Value {
	return map[string]machine.Value{
		"parseInt":           th.NewNativeFunction("parseInt", 2, globalParseInt),
		"parseFloat":         th.NewNativeFunction("parseFloat", 1, globalParseFloat),
		"isNaN":              th.NewNativeFunction("isNaN", 1, globalIsNaN),
		"isFinite":           th.NewNativeFunction("isFinite", 1, globalIsFinite),
		"eval":               th.NewNativeFunction("eval", 1, globalEval),
		"encodeURIComponent": th.NewNativeFunction("encodeURIComponent", 1, globalEncodeURIComponent),
		"decodeURIComponent": th.NewNativeFunction("decodeURIComponent", 1, globalDecodeURIComponent),
		"encodeURI":          th.NewNativeFunction("encodeURI", 1, globalEncodeURI),
		"decodeURI":          th.NewNativeFunction("decodeURI", 1, globalDecodeURI),
		"print":              th.NewNativeFunction("print", 1, globalPrint),
		"gc":                 th.NewNativeFunction("gc", 0, globalGC),
	}
}

func globalParseInt(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	radix := 0
	if args.Len() > 1 {
		n, err := machine.ToInteger(th, args.At(1))
		if err != nil {
			return nil, err
		}
		radix = int(n)
	}
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	if radix == 0 {
		if i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
			radix = 16
			i += 2
		} else {
			radix = 10
		}
	} else if radix == 16 && i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		i += 2
	}
	n, ok := machine.ParseSloppyNumber(s[i:], radix)
	if !ok {
		return machine.Float(math.NaN()), nil
	}
	if neg {
		n = -n
	}
	return numberValue(n), nil
}

func globalParseFloat(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	n, ok := machine.ParseSloppyFloat(s[i:])
	if !ok {
		return machine.Float(math.NaN()), nil
	}
	return numberValue(n), nil
}

func globalIsNaN(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	n, err := machine.ToNumber(th, args.At(0))
	if err != nil {
		return nil, err
	}
	return machine.BoolValue(math.IsNaN(n)), nil
}

func globalIsFinite(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	n, err := machine.ToNumber(th, args.At(0))
	if err != nil {
		return nil, err
	}
	return machine.BoolValue(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

// globalEval implements indirect eval when called as a bare function
// value (the EVAL opcode handles the direct-call-by-name case before this
// is ever reached; this body exists so a reference to `eval` captured into
// a variable and called later, e.g. `var e = eval; e("1+1")`, still works).
func globalEval(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	v := args.At(0)
	src, ok := v.(machine.String)
	if !ok {
		return v, nil
	}
	return th.EvalSource(string(src))
}

func globalEncodeURIComponent(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	return machine.String(url.QueryEscape(s)), nil
}

func globalDecodeURIComponent(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	dec, err := url.QueryUnescape(s)
	if err != nil {
		return nil, th.URIError(err.Error())
	}
	return machine.String(dec), nil
}

func globalEncodeURI(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	return machine.String(url.PathEscape(s)), nil
}

func globalDecodeURI(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	dec, err := url.PathUnescape(s)
	if err != nil {
		return nil, th.URIError(err.Error())
	}
	return machine.String(dec), nil
}

func globalPrint(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	parts := make([]interface{}, args.Len())
	for i, a := range args.Elems() {
		s, err := machine.ToString(th, a)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	fmt.Fprintln(stdout, parts...)
	stdout.Flush()
	return machine.UndefinedValue, nil
}

func globalGC(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	th.Pool().Collect(th)
	return machine.UndefinedValue, nil
}
