package parser

import (
	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/token"
)

func (p *parser) parseChunk() *ast.Chunk {
	start := p.val.Pos
	var stmts []ast.Stmt
	for p.tok != token.EOF {
		s := p.parseStmt()
		if len(stmts) == 0 && isUseStrict(s) {
			p.strict = true
		}
		stmts = append(stmts, s)
		if p.mode&StopOnFirstError != 0 && len(p.errors) > 0 {
			break
		}
	}
	return &ast.Chunk{
		Block: &ast.Block{Start: start, End: p.val.Pos, Stmts: stmts},
		EOF:   p.val.Pos,
	}
}

// isUseStrict reports whether s is the `"use strict"` directive pragma: an
// expression statement whose expression is exactly that string literal.
func isUseStrict(s ast.Stmt) bool {
	es, ok := s.(*ast.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := es.Expr.(*ast.Literal)
	if !ok || lit.Kind != token.STRING {
		return false
	}
	v, _ := lit.Value.(string)
	return v == "use strict"
}

// parseBlock parses a `{ ... }` brace-delimited statement list.
func (p *parser) parseBlock() *ast.Block {
	start := p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for !p.at(token.RBRACE, token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	end := p.expect(token.RBRACE)
	return &ast.Block{Start: start, End: end, Stmts: stmts}
}
