package parser

import (
	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/token"
)

// parseStmt dispatches on the current token to the matching statement
// parser. A syntax error anywhere below panics with errPanicMode; it is
// recovered here, producing a *ast.BadStmt and resynchronizing at the next
// ';', '}' or EOF so that a single mistake doesn't abort the whole parse.
func (p *parser) parseStmt() (s ast.Stmt) {
	start := p.val.Pos
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			s = p.syncAfterError(start)
		}
	}()

	switch p.tok {
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR:
		return p.parseVarDeclStmt()
	case token.SEMI:
		pos := p.expect(token.SEMI)
		return &ast.EmptyStmt{Semi: pos}
	case token.IF:
		return p.parseIfStmt()
	case token.DO:
		return p.parseDoWhileStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.CONTINUE:
		return p.parseContinueStmt()
	case token.BREAK:
		return p.parseBreakStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.WITH:
		return p.parseWithStmt()
	case token.SWITCH:
		return p.parseSwitchStmt()
	case token.THROW:
		return p.parseThrowStmt()
	case token.TRY:
		return p.parseTryStmt()
	case token.DEBUGGER:
		start := p.expect(token.DEBUGGER)
		end := start + token.Pos(len(token.DEBUGGER.String()))
		p.consumeSemi()
		return &ast.DebuggerStmt{Start: start, End: end}
	case token.FUNCTION:
		return p.parseFuncDecl()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseVarDeclStmt() *ast.VarDeclStmt {
	start := p.expect(token.VAR)
	var decls []*ast.Declarator
	for {
		name := p.parseIdent()
		if p.strict && (name.Name == "eval" || name.Name == "arguments") {
			p.error(name.NamePos, "cannot declare a variable named "+name.Name+" in strict mode")
		}
		d := &ast.Declarator{Name: name}
		if p.tok == token.EQ {
			d.Eq = p.expect(token.EQ)
			d.Init = p.parseAssignExpr()
		}
		decls = append(decls, d)
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	end := p.val.Pos
	p.consumeSemi()
	return &ast.VarDeclStmt{Var: start, Decls: decls, End: end}
}

// parseExprStmt parses an ExpressionStatement. An identifier expression
// immediately followed by ':' is instead a LabeledStmt: parsing it as an
// ordinary expression stops right after the identifier (':' continues
// nothing in the expression grammar), so the check below is sufficient
// without any extra lookahead.
func (p *parser) parseExprStmt() ast.Stmt {
	e := p.parseExpression()
	if id, ok := e.(*ast.Ident); ok && p.tok == token.COLON {
		colon := p.expect(token.COLON)
		p.labels = append(p.labels, id.Name)
		body := p.parseStmt()
		p.labels = p.labels[:len(p.labels)-1]
		return &ast.LabeledStmt{Label: id, Colon: colon, Body: body}
	}
	end := p.val.Pos
	p.consumeSemi()
	return &ast.ExprStmt{Expr: e, End: end}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	start := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseStmt()

	var elsePos token.Pos
	var alt ast.Stmt
	if p.tok == token.ELSE {
		elsePos = p.expect(token.ELSE)
		alt = p.parseStmt()
	}
	return &ast.IfStmt{If: start, Cond: cond, Then: then, Else: elsePos, Alt: alt}
}

func (p *parser) parseDoWhileStmt() *ast.DoWhileStmt {
	start := p.expect(token.DO)
	p.loopDepth++
	body := p.parseStmt()
	p.loopDepth--
	whilePos := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	end := p.val.Pos
	p.consumeSemi()
	return &ast.DoWhileStmt{Do: start, Body: body, While: whilePos, Cond: cond, End: end}
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	start := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	p.loopDepth++
	body := p.parseStmt()
	p.loopDepth--
	return &ast.WhileStmt{While: start, Cond: cond, Body: body}
}

// parseForStmt parses both the classic 3-clause for(;;) and the for-in
// loop, disambiguating after parsing the init clause.
func (p *parser) parseForStmt() ast.Stmt {
	start := p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.tok == token.VAR {
		varPos := p.expect(token.VAR)
		name := p.parseIdent()
		d := &ast.Declarator{Name: name}
		if p.tok == token.EQ {
			d.Eq = p.expect(token.EQ)
			p.noIn = true
			d.Init = p.parseAssignExpr()
			p.noIn = false
		}
		if p.tok == token.IN {
			return p.finishForIn(start, &ast.VarDeclStmt{Var: varPos, Decls: []*ast.Declarator{d}})
		}
		decls := []*ast.Declarator{d}
		for p.tok == token.COMMA {
			p.advance()
			name := p.parseIdent()
			d := &ast.Declarator{Name: name}
			if p.tok == token.EQ {
				d.Eq = p.expect(token.EQ)
				d.Init = p.parseAssignExpr()
			}
			decls = append(decls, d)
		}
		init = &ast.VarDeclStmt{Var: varPos, Decls: decls, End: p.val.Pos}
	} else if p.tok != token.SEMI {
		p.noIn = true
		e := p.parseExpression()
		p.noIn = false
		if p.tok == token.IN {
			if !ast.IsAssignable(e) {
				p.error(p.val.Pos, "invalid for-in binding target")
			}
			return p.finishForIn(start, e)
		}
		init = &ast.ExprStmt{Expr: e, End: p.val.Pos}
	}

	p.expect(token.SEMI)
	var cond ast.Expr
	if p.tok != token.SEMI {
		cond = p.parseExpression()
	}
	p.expect(token.SEMI)
	var post ast.Expr
	if p.tok != token.RPAREN {
		post = p.parseExpression()
	}
	p.expect(token.RPAREN)

	p.loopDepth++
	body := p.parseStmt()
	p.loopDepth--
	return &ast.ForStmt{For: start, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *parser) finishForIn(start token.Pos, left ast.Node) *ast.ForInStmt {
	inPos := p.expect(token.IN)
	right := p.parseExpression()
	p.expect(token.RPAREN)
	p.loopDepth++
	body := p.parseStmt()
	p.loopDepth--
	return &ast.ForInStmt{For: start, Left: left, In: inPos, Right: right, Body: body}
}

func (p *parser) parseContinueStmt() *ast.ContinueStmt {
	start := p.expect(token.CONTINUE)
	var label *ast.Ident
	if p.tok == token.IDENT && !p.val.LineBreakBefore {
		label = p.parseIdent()
	}
	if label == nil && p.loopDepth == 0 {
		p.error(start, "continue outside of a loop")
	}
	end := p.val.Pos
	p.consumeSemi()
	return &ast.ContinueStmt{Start: start, Label: label, End: end}
}

func (p *parser) parseBreakStmt() *ast.BreakStmt {
	start := p.expect(token.BREAK)
	var label *ast.Ident
	if p.tok == token.IDENT && !p.val.LineBreakBefore {
		label = p.parseIdent()
	}
	if label == nil && p.loopDepth == 0 && p.switchDepth == 0 {
		p.error(start, "break outside of a loop or switch")
	}
	end := p.val.Pos
	p.consumeSemi()
	return &ast.BreakStmt{Start: start, Label: label, End: end}
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.expect(token.RETURN)
	var val ast.Expr
	if !p.at(token.SEMI, token.RBRACE, token.EOF) && !p.val.LineBreakBefore {
		val = p.parseExpression()
	}
	end := p.val.Pos
	p.consumeSemi()
	return &ast.ReturnStmt{Start: start, Value: val, End: end}
}

func (p *parser) parseWithStmt() *ast.WithStmt {
	start := p.expect(token.WITH)
	if p.strict {
		p.error(start, "strict mode code may not include a with statement")
	}
	p.expect(token.LPAREN)
	obj := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WithStmt{With: start, Object: obj, Body: body}
}

func (p *parser) parseSwitchStmt() *ast.SwitchStmt {
	start := p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	disc := p.parseExpression()
	p.expect(token.RPAREN)
	lbrace := p.expect(token.LBRACE)

	p.switchDepth++
	var cases []*ast.CaseClause
	sawDefault := false
	for p.tok != token.RBRACE {
		c := &ast.CaseClause{Start: p.val.Pos}
		if p.tok == token.CASE {
			p.advance()
			c.Test = p.parseExpression()
		} else {
			p.expect(token.DEFAULT)
			if sawDefault {
				p.error(c.Start, "switch statement may have only one default clause")
			}
			sawDefault = true
		}
		c.Colon = p.expect(token.COLON)
		for !p.at(token.CASE, token.DEFAULT, token.RBRACE) {
			c.Body = append(c.Body, p.parseStmt())
		}
		cases = append(cases, c)
	}
	p.switchDepth--

	rbrace := p.expect(token.RBRACE)
	return &ast.SwitchStmt{Switch: start, Disc: disc, Lbrace: lbrace, Cases: cases, Rbrace: rbrace}
}

func (p *parser) parseThrowStmt() *ast.ThrowStmt {
	start := p.expect(token.THROW)
	if p.val.LineBreakBefore {
		p.error(start, "illegal newline after throw")
	}
	val := p.parseExpression()
	end := p.val.Pos
	p.consumeSemi()
	return &ast.ThrowStmt{Start: start, Value: val, End: end}
}

func (p *parser) parseTryStmt() *ast.TryStmt {
	start := p.expect(token.TRY)
	block := p.parseBlock()

	t := &ast.TryStmt{Try: start, Block: block}
	if p.tok == token.CATCH {
		t.Catch = p.expect(token.CATCH)
		p.expect(token.LPAREN)
		t.Param = p.parseIdent()
		p.expect(token.RPAREN)
		t.CatchBlock = p.parseBlock()
	}
	if p.tok == token.FINALLY {
		t.Finally = p.expect(token.FINALLY)
		t.FinallyBlock = p.parseBlock()
	}
	if t.CatchBlock == nil && t.FinallyBlock == nil {
		p.error(start, "missing catch or finally after try")
	}
	return t
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	start := p.expect(token.FUNCTION)
	name := p.parseIdent()
	fn := p.parseFuncSignatureAndBody(start, name)
	return &ast.FuncDecl{Start: start, Name: name, Params: fn.Params, Body: fn.Body, End: fn.End}
}
