package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/parser"
	"github.com/lorelei-lang/lorelei/lang/resolver"
	"github.com/lorelei-lang/lorelei/lang/token"
)

func resolveOne(t *testing.T, src string) (*ast.Chunk, *resolver.Info) {
	t.Helper()
	fs := token.NewFileSet()
	ch, perrs := parser.ParseChunk(fs, "t.js", []byte(src), 0)
	require.Empty(t, perrs)

	isUniversal := func(name string) bool { return name == "Math" || name == "undefined" }
	info, err := resolver.ResolveFiles(context.Background(), fs, []*ast.Chunk{ch}, 0, nil, isUniversal)
	require.NoError(t, err)
	return ch, info
}

func TestResolveTopLevelVarIsGlobal(t *testing.T) {
	ch, info := resolveOne(t, "var x = 1; x;")
	decl := ch.Block.Stmts[0].(*ast.VarDeclStmt)
	use := ch.Block.Stmts[1].(*ast.ExprStmt).Expr.(*ast.Ident)

	declBdg := info.Idents[decl.Decls[0].Name]
	useBdg := info.Idents[use]
	require.NotNil(t, declBdg)
	assert.Equal(t, resolver.Global, declBdg.Scope)
	assert.Same(t, declBdg, useBdg)
}

func TestResolveFunctionParamsAndVarsAreLocal(t *testing.T) {
	ch, info := resolveOne(t, "function f(a) { var b = a; return b; }")
	decl := ch.Block.Stmts[0].(*ast.FuncDecl)
	fn := info.Funcs[decl]
	require.NotNil(t, fn)
	require.Len(t, fn.Locals, 2)
	assert.Equal(t, "a", fn.Locals[0].Name)
	assert.Equal(t, resolver.Local, fn.Locals[0].Scope)
	assert.Equal(t, "b", fn.Locals[1].Name)
}

func TestResolveClosureCapturesCell(t *testing.T) {
	ch, info := resolveOne(t, `
		function outer() {
			var x = 1;
			function inner() { return x; }
			return inner;
		}
	`)
	outer := ch.Block.Stmts[0].(*ast.FuncDecl)
	outerFn := info.Funcs[outer]
	require.Len(t, outerFn.Locals, 2) // x, inner
	xBdg := outerFn.Locals[0]
	assert.Equal(t, resolver.Cell, xBdg.Scope)

	innerDecl := outer.Body.Stmts[1].(*ast.FuncDecl)
	innerFn := info.Funcs[innerDecl]
	require.Len(t, innerFn.FreeVars, 1)
	assert.Same(t, xBdg, innerFn.FreeVars[0])

	ret := innerDecl.Body.Stmts[0].(*ast.ReturnStmt)
	useBdg := info.Idents[ret.Value.(*ast.Ident)]
	assert.Equal(t, resolver.Free, useBdg.Scope)
}

func TestResolveUndeclaredIdentIsGlobalNotError(t *testing.T) {
	_, info := resolveOne(t, "doSomething();")
	assert.NotEmpty(t, info.Idents)
	for _, bdg := range info.Idents {
		assert.Equal(t, resolver.Global, bdg.Scope)
	}
}

func TestResolveUniversalName(t *testing.T) {
	ch, info := resolveOne(t, "Math.floor(1);")
	call := ch.Block.Stmts[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	member := call.Callee.(*ast.MemberExpr)
	ident := member.Object.(*ast.Ident)
	assert.Equal(t, resolver.Universal, info.Idents[ident].Scope)
}

func TestResolveWithMakesReferencesDynamic(t *testing.T) {
	ch, info := resolveOne(t, `
		var x = 1;
		with (obj) {
			x;
		}
	`)
	withStmt := ch.Block.Stmts[1].(*ast.WithStmt)
	exprStmt := withStmt.Body.(*ast.Block).Stmts[0].(*ast.ExprStmt)
	ident := exprStmt.Expr.(*ast.Ident)
	assert.Equal(t, resolver.Dynamic, info.Idents[ident].Scope)
}

func TestResolveCatchParamScopedToCatchBlock(t *testing.T) {
	ch, info := resolveOne(t, `
		function f() {
			try { risky(); } catch (e) { use(e); }
			return e;
		}
	`)
	// the final "return e;" refers to an undeclared global e, not the catch
	// param, because ES3 scopes a catch parameter to its catch block only.
	decl := ch.Block.Stmts[0].(*ast.FuncDecl)
	ret := decl.Body.Stmts[1].(*ast.ReturnStmt)
	eUse := info.Idents[ret.Value.(*ast.Ident)]
	assert.Equal(t, resolver.Global, eUse.Scope)
}

func TestResolveLabeledBreakToLoopLabel(t *testing.T) {
	_, info := resolveOne(t, "outer: while (a) { break outer; }")
	assert.NotEmpty(t, info.Idents)
}

func TestResolveUnknownLabelIsError(t *testing.T) {
	fs := token.NewFileSet()
	ch, perrs := parser.ParseChunk(fs, "t.js", []byte("while (a) { break nope; }"), 0)
	require.Empty(t, perrs)
	_, err := resolver.ResolveFiles(context.Background(), fs, []*ast.Chunk{ch}, 0, nil, nil)
	require.Error(t, err)
}
