package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/token"
)

func parseOne(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	fs := token.NewFileSet()
	ch, errs := ParseChunk(fs, "t.js", []byte(src), 0)
	require.Empty(t, errs)
	return ch
}

func TestParseVarDecl(t *testing.T) {
	ch := parseOne(t, "var x = 1, y;")
	require.Len(t, ch.Block.Stmts, 1)
	v := ch.Block.Stmts[0].(*ast.VarDeclStmt)
	require.Len(t, v.Decls, 2)
	assert.Equal(t, "x", v.Decls[0].Name.Name)
	assert.NotNil(t, v.Decls[0].Init)
	assert.Nil(t, v.Decls[1].Init)
}

func TestParseIfElse(t *testing.T) {
	ch := parseOne(t, "if (a) b(); else c();")
	stmt := ch.Block.Stmts[0].(*ast.IfStmt)
	assert.NotNil(t, stmt.Then)
	assert.NotNil(t, stmt.Alt)
}

func TestParseForLoop(t *testing.T) {
	ch := parseOne(t, "for (var i = 0; i < 10; i++) { x(i); }")
	stmt := ch.Block.Stmts[0].(*ast.ForStmt)
	require.NotNil(t, stmt.Init)
	require.NotNil(t, stmt.Cond)
	require.NotNil(t, stmt.Post)
}

func TestParseForIn(t *testing.T) {
	ch := parseOne(t, "for (var k in obj) { use(k); }")
	stmt := ch.Block.Stmts[0].(*ast.ForInStmt)
	_, ok := stmt.Left.(*ast.VarDeclStmt)
	assert.True(t, ok)
}

func TestParseFunctionExprAndCall(t *testing.T) {
	ch := parseOne(t, "var f = function(a, b) { return a + b; };")
	v := ch.Block.Stmts[0].(*ast.VarDeclStmt)
	fn := v.Decls[0].Init.(*ast.FuncExpr)
	assert.Len(t, fn.Params, 2)
	require.Len(t, fn.Body.Stmts, 1)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinaryExpr)
	assert.Equal(t, token.PLUS, bin.Op)
}

func TestParseTryCatchFinally(t *testing.T) {
	ch := parseOne(t, "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }")
	tr := ch.Block.Stmts[0].(*ast.TryStmt)
	require.NotNil(t, tr.CatchBlock)
	require.NotNil(t, tr.FinallyBlock)
	assert.Equal(t, "e", tr.Param.Name)
}

func TestParseSwitchStmt(t *testing.T) {
	ch := parseOne(t, `switch (x) { case 1: a(); break; default: b(); }`)
	sw := ch.Block.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 2)
	assert.NotNil(t, sw.Cases[0].Test)
	assert.Nil(t, sw.Cases[1].Test)
}

func TestParseLabeledBreakContinue(t *testing.T) {
	ch := parseOne(t, "outer: while (a) { break outer; }")
	lbl := ch.Block.Stmts[0].(*ast.LabeledStmt)
	assert.Equal(t, "outer", lbl.Label.Name)
	wh := lbl.Body.(*ast.WhileStmt)
	brk := wh.Body.(*ast.Block).Stmts[0].(*ast.BreakStmt)
	require.NotNil(t, brk.Label)
	assert.Equal(t, "outer", brk.Label.Name)
}

func TestParseNewAndMemberChain(t *testing.T) {
	ch := parseOne(t, "var o = new Foo(1, 2).bar[0];")
	v := ch.Block.Stmts[0].(*ast.VarDeclStmt)
	member := v.Decls[0].Init.(*ast.MemberExpr)
	assert.True(t, member.Computed)
	inner := member.Object.(*ast.MemberExpr)
	assert.False(t, inner.Computed)
	_, ok := inner.Object.(*ast.NewExpr)
	assert.True(t, ok)
}

func TestParseObjectLiteralWithAccessors(t *testing.T) {
	ch := parseOne(t, `var o = { x: 1, get y() { return 2; }, set y(v) { } };`)
	v := ch.Block.Stmts[0].(*ast.VarDeclStmt)
	obj := v.Decls[0].Init.(*ast.ObjectLit)
	require.Len(t, obj.Props, 3)
	assert.Equal(t, ast.PropInit, obj.Props[0].Kind)
	assert.Equal(t, ast.PropGet, obj.Props[1].Kind)
	assert.Equal(t, ast.PropSet, obj.Props[2].Kind)
}

func TestParseASINoSemicolon(t *testing.T) {
	ch := parseOne(t, "var a = 1\nvar b = 2")
	require.Len(t, ch.Block.Stmts, 2)
}

func TestParseSyntaxErrorProducesBadStmt(t *testing.T) {
	fs := token.NewFileSet()
	ch, errs := ParseChunk(fs, "t.js", []byte("var ;\nvar ok = 1;"), 0)
	assert.NotEmpty(t, errs)
	require.Len(t, ch.Block.Stmts, 2)
	_, ok := ch.Block.Stmts[0].(*ast.BadStmt)
	assert.True(t, ok)
	v, ok := ch.Block.Stmts[1].(*ast.VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "ok", v.Decls[0].Name.Name)
}
