package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/lang/builtins"
	"github.com/lorelei-lang/lorelei/lang/machine"
)

func run(t *testing.T, src string) machine.Value {
	t.Helper()
	th := machine.NewThread("test")
	builtins.Wire(th)
	v, err := th.EvalSource(src)
	require.NoError(t, err)
	return v
}

// The six end-to-end scenarios from spec section 8, verbatim.

func TestArrayConcatJoinsWithCommas(t *testing.T) {
	v := run(t, `var a = [1,2,3]; a.concat([4,5]).toString();`)
	assert.Equal(t, machine.String("1,2,3,4,5"), v)
}

func TestFinallyOverridesCatchReturn(t *testing.T) {
	v := run(t, `
		(function(){
			try { throw 'a' } catch(b){ return b + 'b' } finally { return 'c' }
		})();
	`)
	assert.Equal(t, machine.String("c"), v)
}

func TestAccessorPropertyReadWrite(t *testing.T) {
	v := run(t, `
		var o = { _x: 0, get x(){ return this._x }, set x(v){ this._x = v } };
		o.x = 5;
		o.x + o._x;
	`)
	assert.Equal(t, machine.Int(10), v)
}

func TestRecursiveFibonacci(t *testing.T) {
	v := run(t, `
		function f(n){ return n < 2 ? n : f(n-1) + f(n-2) }
		f(10);
	`)
	assert.Equal(t, machine.Int(55), v)
}

func TestStringSliceIsRuneAware(t *testing.T) {
	assert.Equal(t, machine.String("b"), run(t, `'abせd'.slice(1,2);`))
	assert.Equal(t, machine.Int(4), run(t, `'abせd'.length;`))
}

func TestRegExpExecReturnsMatchAndCaptures(t *testing.T) {
	th := machine.NewThread("test")
	builtins.Wire(th)
	v, err := th.EvalSource(`
		var m = /a(b+)c/.exec('xxabbbc');
		[m[0], m[1], m.index].join("|");
	`)
	require.NoError(t, err)
	assert.Equal(t, machine.String("abbbc|bbb|2"), v)
}

// Additional built-in coverage beyond the spec's six named scenarios.

func TestRegExpGlobalExecAdvancesLastIndex(t *testing.T) {
	v := run(t, `
		var re = /\d+/g;
		var out = [];
		var m;
		while ((m = re.exec("a1 b22 c333")) !== null) {
			out.push(m[0]);
		}
		out.join(",");
	`)
	assert.Equal(t, machine.String("1,22,333"), v)
}

func TestJSONRoundTrip(t *testing.T) {
	v := run(t, `
		var o = { a: 1, b: [true, null, "x"], c: { d: 2.5 } };
		var s = JSON.stringify(o);
		var back = JSON.parse(s);
		back.a + "|" + back.b[2] + "|" + back.c.d;
	`)
	assert.Equal(t, machine.String("1|x|2.5"), v)
}

func TestArraySortAndReverse(t *testing.T) {
	v := run(t, `
		var a = [3,1,2];
		a.sort().join(",") + "|" + a.reverse().join(",");
	`)
	assert.Equal(t, machine.String("1,2,3|3,2,1"), v)
}

func TestStringSplitAndReplace(t *testing.T) {
	v := run(t, `
		"a,b,,c".split(",").length + "|" + "hello world".replace(/o/g, "0");
	`)
	assert.Equal(t, machine.String("4|hell0 w0rld"), v)
}

func TestMathWrapsStandardLibrary(t *testing.T) {
	v := run(t, `Math.max(1, Math.sqrt(16), 2) + Math.floor(2.9);`)
	assert.Equal(t, machine.Int(6), v)
}

func TestNumberAndBooleanBoxing(t *testing.T) {
	v := run(t, `
		var n = new Number(5);
		var b = new Boolean(false);
		(typeof n) + "|" + (n == 5) + "|" + (typeof b) + "|" + (b == false);
	`)
	assert.Equal(t, machine.String("object|true|object|true"), v)
}

func TestDateGetTimeIsFinite(t *testing.T) {
	v := run(t, `
		var d = new Date(2020, 0, 1);
		isFinite(d.getTime());
	`)
	assert.Equal(t, machine.BoolValue(true), v)
}

func TestErrorSubclassesInheritName(t *testing.T) {
	v := run(t, `
		var e = new TypeError("bad");
		e.name + ": " + e.message;
	`)
	assert.Equal(t, machine.String("TypeError: bad"), v)
}

func TestParseIntAndParseFloat(t *testing.T) {
	v := run(t, `parseInt("0x1F") + "|" + parseFloat("3.5abc");`)
	assert.Equal(t, machine.String("31|3.5"), v)
}

func TestObjectKeysAndPrototypeChain(t *testing.T) {
	v := run(t, `
		function Base() {}
		Base.prototype.greet = function () { return "hi"; };
		function Derived() {}
		Derived.prototype = new Base();
		var d = new Derived();
		d.greet() + "|" + (d instanceof Base);
	`)
	assert.Equal(t, machine.String("hi|true"), v)
}
