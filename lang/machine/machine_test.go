package machine_test

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

func runErr(t *testing.T, src string) (*machine.Thread, error) {
	t.Helper()
	th := machine.NewThread("test")
	builtins.Wire(th)
	_, err := th.EvalSource(src)
	require.Error(t, err)
	return th, err
}

func TestArithmeticAndCoercion(t *testing.T) {
	assert.Equal(t, machine.Int(7), run(t, "3 + 4;"))
	assert.Equal(t, machine.String("34"), run(t, "'3' + 4;"))
	assert.Equal(t, machine.Float(7), run(t, "'3' - -4;"))
	assert.Equal(t, machine.Bool(true), run(t, "1 == '1';"))
	assert.Equal(t, machine.Bool(false), run(t, "1 === '1';"))
}

func TestClosureCapturesSharedCell(t *testing.T) {
	v := run(t, `
		function counter() {
			var n = 0;
			return function () { n = n + 1; return n; };
		}
		var c = counter();
		c(); c(); c();
	`)
	assert.Equal(t, machine.Int(3), v)
}

func TestArgumentsAliasesParameter(t *testing.T) {
	v := run(t, `
		function f(a) {
			arguments[0] = 42;
			return a;
		}
		f(1);
	`)
	assert.Equal(t, machine.Int(42), v)
}

func TestTryFinallyRunsOnReturn(t *testing.T) {
	v := run(t, `
		var log = [];
		function f() {
			try {
				return 1;
			} finally {
				log.push("finally");
			}
		}
		f();
		log.length;
	`)
	assert.Equal(t, machine.Int(1), v)
}

func TestTryCatchBindsThrownValue(t *testing.T) {
	v := run(t, `
		var caught;
		try {
			throw "boom";
		} catch (e) {
			caught = e;
		}
		caught;
	`)
	assert.Equal(t, machine.String("boom"), v)
}

func TestWithResolvesDynamically(t *testing.T) {
	v := run(t, `
		var o = { x: 10 };
		var r;
		with (o) {
			r = x;
		}
		r;
	`)
	assert.Equal(t, machine.Int(10), v)
}

func TestSwitchFallthroughAndDefault(t *testing.T) {
	v := run(t, `
		function classify(n) {
			var out = "";
			switch (n) {
			case 1:
				out += "one";
			case 2:
				out += "two";
				break;
			default:
				out += "other";
			}
			return out;
		}
		classify(1) + "|" + classify(2) + "|" + classify(5);
	`)
	assert.Equal(t, machine.String("onetwo|two|other"), v)
}

func TestRangeErrorOnMaxCallDepth(t *testing.T) {
	th := machine.NewThread("test")
	builtins.Wire(th)
	th.MaxCallDepth = 10
	_, err := th.EvalSource(`
		function f() { return f(); }
		f();
	`)
	require.Error(t, err)
	v, ok := machine.AsThrown(err)
	require.True(t, ok)
	o, ok := v.(*machine.Object)
	require.True(t, ok)
	name, _ := o.Get(th, "name")
	assert.Equal(t, machine.String("RangeError"), name)
}

func TestUncaughtThrowFormatsWithSourceSpan(t *testing.T) {
	th := machine.NewThread("test")
	builtins.Wire(th)
	_, err := th.EvalSource("var x = 1;\nthrow new TypeError('bad');\n")
	require.Error(t, err)
	msg := th.FormatError(err)
	assert.Contains(t, msg, "TypeError")
	assert.Contains(t, msg, "bad")
	assert.Contains(t, msg, "^")
}

func TestReferenceErrorOnUndeclaredGlobal(t *testing.T) {
	th, err := runErr(t, "undeclaredThing;")
	v, ok := machine.AsThrown(err)
	require.True(t, ok)
	o := v.(*machine.Object)
	name, _ := o.Get(th, "name")
	assert.Equal(t, machine.String("ReferenceError"), name)
}
