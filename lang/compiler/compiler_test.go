// These tests exercise the compiler through the full parse-resolve-compile-
// run pipeline (machine.EvalSource): Funcode/Program on their own have no
// runtime to assert bytecode against, so behavior observed after execution
// is the oracle for whether a given construct was compiled correctly.
package compiler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/builtins"
	"github.com/lorelei-lang/lorelei/lang/compiler"
	"github.com/lorelei-lang/lorelei/lang/machine"
	"github.com/lorelei-lang/lorelei/lang/parser"
	"github.com/lorelei-lang/lorelei/lang/resolver"
	"github.com/lorelei-lang/lorelei/lang/token"
)

func run(t *testing.T, src string) machine.Value {
	t.Helper()
	th := machine.NewThread("test")
	builtins.Wire(th)
	v, err := th.EvalSource(src)
	require.NoError(t, err)
	return v
}

func TestSwitchEvaluatesCaseExpressionOnceEach(t *testing.T) {
	v := run(t, `
		var calls = 0;
		function tag(n) { calls += 1; return n; }
		var out = "";
		switch (2) {
		case tag(1):
			out += "one";
			break;
		case tag(2):
			out += "two";
			break;
		case tag(3):
			out += "three";
			break;
		}
		out + "|" + calls;
	`)
	assert.Equal(t, machine.String("two|2"), v)
}

func TestSwitchNoMatchNoDefaultIsNoop(t *testing.T) {
	v := run(t, `
		var out = "untouched";
		switch (99) {
		case 1:
			out = "one";
			break;
		}
		out;
	`)
	assert.Equal(t, machine.String("untouched"), v)
}

func TestPostfixIncrementOnMemberExpressionEvaluatesBaseOnce(t *testing.T) {
	v := run(t, `
		var calls = 0;
		var arr = [10];
		function idx() { calls += 1; return 0; }
		arr[idx()]++;
		arr[0] + "|" + calls;
	`)
	assert.Equal(t, machine.String("11|1"), v)
}

func TestPostfixIncrementReturnsOldValue(t *testing.T) {
	v := run(t, `
		var o = { n: 5 };
		var old = o.n++;
		old + "|" + o.n;
	`)
	assert.Equal(t, machine.String("5|6"), v)
}

func TestPrefixDecrementReturnsNewValue(t *testing.T) {
	v := run(t, `
		var n = 5;
		--n;
	`)
	assert.Equal(t, machine.Int(4), v)
}

func TestFinallyOverridesPendingReturn(t *testing.T) {
	v := run(t, `
		function f() {
			try {
				return 1;
			} finally {
				return 2;
			}
		}
		f();
	`)
	assert.Equal(t, machine.Int(2), v)
}

func TestFinallyWithoutOverrideForwardsPendingReturn(t *testing.T) {
	v := run(t, `
		function f() {
			try {
				return "inner";
			} finally {
				var noop = 1;
			}
		}
		f();
	`)
	assert.Equal(t, machine.String("inner"), v)
}

func TestFinallyRunsWhenExceptionPropagates(t *testing.T) {
	v := run(t, `
		var log = [];
		function f() {
			try {
				throw "boom";
			} finally {
				log.push("cleanup");
			}
		}
		var caught;
		try {
			f();
		} catch (e) {
			caught = e;
		}
		log.length + "|" + caught;
	`)
	assert.Equal(t, machine.String("1|boom"), v)
}

func TestCatchBindingDoesNotLeakOutsideCatchBlock(t *testing.T) {
	v := run(t, `
		var e = "outer";
		try {
			throw "inner";
		} catch (e) {
		}
		e;
	`)
	assert.Equal(t, machine.String("outer"), v)
}

func TestNestedClosuresForwardFreeVarsAcrossLevels(t *testing.T) {
	v := run(t, `
		function outer() {
			var x = 1;
			function middle() {
				function inner() {
					x += 1;
					return x;
				}
				return inner();
			}
			return middle() + "|" + middle();
		}
		outer();
	`)
	assert.Equal(t, machine.String("2|3"), v)
}

func TestMultipleClosuresOverSameLoopVariableShareBinding(t *testing.T) {
	// ES3 var scoping: a single function-scoped binding is captured by every
	// closure created across loop iterations, so each observes the final
	// value once the loop has finished.
	v := run(t, `
		var fns = [];
		for (var i = 0; i < 3; i++) {
			fns.push(function () { return i; });
		}
		fns[0]() + "|" + fns[1]() + "|" + fns[2]();
	`)
	assert.Equal(t, machine.String("3|3|3"), v)
}

func TestConstantFoldingNumericLiterals(t *testing.T) {
	fs := token.NewFileSet()
	ch, errs := parser.ParseChunk(fs, "t.js", []byte("2 * 3 + 1;"), 0)
	require.Empty(t, errs)
	info, err := resolver.ResolveFiles(context.Background(), fs, []*ast.Chunk{ch}, 0, nil, nil)
	require.NoError(t, err)

	// the whole expression folds to a single pooled constant; none of the
	// intermediate literals survive into the constant pool.
	prog := compiler.Compile(fs, ch, info)
	require.Equal(t, []interface{}{int64(7)}, prog.Constants)
}

func TestCountedLoopAccumulates(t *testing.T) {
	// `i` is a plain function local, so this takes the fused ITERLE/ITERINCR
	// lowering; the observable behavior must match the generic one exactly.
	v := run(t, `
		function sum(n) {
			var total = 0;
			for (var i = 1; i <= n; i++) {
				total += i;
			}
			return total;
		}
		sum(10);
	`)
	assert.Equal(t, machine.Int(55), v)
}

func TestCountedLoopBreakAndContinue(t *testing.T) {
	v := run(t, `
		function collect() {
			var out = "";
			for (var i = 0; i < 10; i++) {
				if (i === 3) { continue; }
				if (i === 6) { break; }
				out += i;
			}
			return out;
		}
		collect();
	`)
	assert.Equal(t, machine.String("01245"), v)
}

func TestSelfTailRecursionDoesNotGrowCallDepth(t *testing.T) {
	th := machine.NewThread("test")
	builtins.Wire(th)
	th.MaxCallDepth = 50
	v, err := th.EvalSource(`
		function countdown(n, acc) {
			if (n <= 0) {
				return acc;
			}
			return countdown(n - 1, acc + 1);
		}
		countdown(10000, 0);
	`)
	require.NoError(t, err)
	assert.Equal(t, machine.Int(10000), v)
}
