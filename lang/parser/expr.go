package parser

import (
	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/token"
)

// binaryPrec gives the left-associative binding power of every binary
// operator below assignment/conditional; all but CARET-less-exponent forms
// here are left-associative, climbed with prec+1 on the right recursion.
var binaryPrec = map[token.Token]int{
	token.OROR:   1,
	token.ANDAND: 2,
	token.PIPE:   3,
	token.CARET:  4,
	token.AMP:    5,

	token.EQEQ: 6, token.NEQ: 6, token.EQEQEQ: 6, token.NEQEQ: 6,

	token.LT: 7, token.GT: 7, token.LE: 7, token.GE: 7,
	token.INSTANCEOF: 7, token.IN: 7,

	token.LSHIFT: 8, token.RSHIFT: 8, token.URSHIFT: 8,

	token.PLUS: 9, token.MINUS: 9,

	token.STAR: 10, token.SLASH: 10, token.PERCENT: 10,
}

// parseExpression parses the comma operator: AssignmentExpr (',' AssignmentExpr)*.
func (p *parser) parseExpression() ast.Expr {
	first := p.parseAssignExpr()
	if p.tok != token.COMMA {
		return first
	}
	exprs := []ast.Expr{first}
	var commas []token.Pos
	for p.tok == token.COMMA {
		commas = append(commas, p.expect(token.COMMA))
		exprs = append(exprs, p.parseAssignExpr())
	}
	return &ast.SequenceExpr{Exprs: exprs, Commas: commas}
}

func (p *parser) parseAssignExpr() ast.Expr {
	left := p.parseConditionalExpr()
	if !p.tok.IsAssign() {
		return left
	}
	if !ast.IsAssignable(left) {
		p.error(p.val.Pos, "invalid assignment target")
	}
	op := p.tok
	opPos := p.expect(op)
	right := p.parseAssignExpr()
	return &ast.AssignExpr{Left: left, Op: op, OpPos: opPos, Right: right}
}

func (p *parser) parseConditionalExpr() ast.Expr {
	cond := p.parseBinaryExpr(1)
	if p.tok != token.QUESTION {
		return cond
	}
	q := p.expect(token.QUESTION)
	then := p.parseAssignExpr()
	colon := p.expect(token.COLON)
	els := p.parseAssignExpr()
	return &ast.ConditionalExpr{Cond: cond, Question: q, Then: then, Colon: colon, Else: els}
}

// parseBinaryExpr implements precedence climbing over binaryPrec, starting
// at minPrec. noIn (p.noIn) suppresses treating the `in` keyword as an
// operator, for the init clause of a classic for(;;) loop.
func (p *parser) parseBinaryExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		prec, ok := binaryPrec[p.tok]
		if !ok || prec < minPrec || (p.tok == token.IN && p.noIn) {
			return left
		}
		op := p.tok
		opPos := p.expect(op)
		right := p.parseBinaryExpr(prec + 1)
		left = &ast.BinaryExpr{Left: left, Op: op, OpPos: opPos, Right: right}
	}
}

var prefixUnaryOps = map[token.Token]bool{
	token.DELETE: true, token.VOID: true, token.TYPEOF: true,
	token.PLUS: true, token.MINUS: true, token.TILDE: true, token.BANG: true,
}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch {
	case prefixUnaryOps[p.tok]:
		op := p.tok
		opPos := p.expect(op)
		operand := p.parseUnaryExpr()
		return &ast.UnaryExpr{Op: op, OpPos: opPos, Operand: operand}
	case p.tok == token.INC || p.tok == token.DEC:
		op := p.tok
		opPos := p.expect(op)
		operand := p.parseUnaryExpr()
		if !ast.IsAssignable(operand) {
			p.error(opPos, "invalid increment/decrement target")
		}
		return &ast.UpdateExpr{Op: op, OpPos: opPos, Prefix: true, Operand: operand}
	default:
		return p.parsePostfixExpr()
	}
}

func (p *parser) parsePostfixExpr() ast.Expr {
	e := p.parseLeftHandSideExpr()
	if (p.tok == token.INC || p.tok == token.DEC) && !p.val.LineBreakBefore {
		if !ast.IsAssignable(e) {
			p.error(p.val.Pos, "invalid increment/decrement target")
		}
		op := p.tok
		opPos := p.expect(op)
		return &ast.UpdateExpr{Op: op, OpPos: opPos, Prefix: false, Operand: e}
	}
	return e
}

func (p *parser) parseLeftHandSideExpr() ast.Expr {
	var e ast.Expr
	if p.tok == token.NEW {
		e = p.parseNewExpr()
	} else {
		e = p.parsePrimaryExpr()
	}
	return p.parseCallTail(e)
}

func (p *parser) parseNewExpr() ast.Expr {
	newPos := p.expect(token.NEW)
	var callee ast.Expr
	if p.tok == token.NEW {
		callee = p.parseNewExpr()
	} else {
		callee = p.parsePrimaryExpr()
	}
	callee = p.parseMemberTail(callee)

	var lparen, rparen token.Pos
	var args []ast.Expr
	if p.tok == token.LPAREN {
		lparen = p.expect(token.LPAREN)
		if p.tok != token.RPAREN {
			args = p.parseArgList()
		}
		rparen = p.expect(token.RPAREN)
	}
	return &ast.NewExpr{New: newPos, Callee: callee, Lparen: lparen, Args: args, Rparen: rparen}
}

// parseMemberTail consumes '.' and '[...]' accessors but not calls, used
// while looking for the callee a `new` expression's argument list applies to.
func (p *parser) parseMemberTail(e ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.DOT:
			dot := p.expect(token.DOT)
			e = &ast.MemberExpr{Object: e, Dot: dot, Property: p.parsePropertyName()}
		case token.LBRACK:
			lbrack := p.expect(token.LBRACK)
			idx := p.parseExpression()
			rbrack := p.expect(token.RBRACK)
			e = &ast.MemberExpr{Object: e, Computed: true, Lbrack: lbrack, Property: idx, Rbrack: rbrack}
		default:
			return e
		}
	}
}

// parseCallTail is parseMemberTail plus call expressions.
func (p *parser) parseCallTail(e ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.DOT:
			dot := p.expect(token.DOT)
			e = &ast.MemberExpr{Object: e, Dot: dot, Property: p.parsePropertyName()}
		case token.LBRACK:
			lbrack := p.expect(token.LBRACK)
			idx := p.parseExpression()
			rbrack := p.expect(token.RBRACK)
			e = &ast.MemberExpr{Object: e, Computed: true, Lbrack: lbrack, Property: idx, Rbrack: rbrack}
		case token.LPAREN:
			lparen := p.expect(token.LPAREN)
			var args []ast.Expr
			if p.tok != token.RPAREN {
				args = p.parseArgList()
			}
			rparen := p.expect(token.RPAREN)
			e = &ast.CallExpr{Callee: e, Lparen: lparen, Args: args, Rparen: rparen}
		default:
			return e
		}
	}
}

func (p *parser) parsePropertyName() *ast.Ident {
	pos, raw := p.val.Pos, p.val.Raw
	if !token.IsIdentifierName(p.tok) {
		p.errorExpected(pos, "property name")
		panic(errPanicMode)
	}
	p.advance()
	return &ast.Ident{NamePos: pos, Name: raw}
}

func (p *parser) parseArgList() []ast.Expr {
	var args []ast.Expr
	args = append(args, p.parseAssignExpr())
	for p.tok == token.COMMA {
		p.advance()
		args = append(args, p.parseAssignExpr())
	}
	return args
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch p.tok {
	case token.THIS:
		pos := p.expect(token.THIS)
		return &ast.ThisExpr{Start: pos}
	case token.IDENT:
		return p.parseIdent()
	case token.NULL, token.TRUE, token.FALSE:
		return p.parseKeywordLiteral()
	case token.INT:
		lit := &ast.Literal{Kind: token.INT, Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Int}
		p.advance()
		return lit
	case token.FLOAT:
		lit := &ast.Literal{Kind: token.FLOAT, Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Float}
		p.advance()
		return lit
	case token.STRING:
		lit := &ast.Literal{Kind: token.STRING, Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Str}
		p.advance()
		return lit
	case token.REGEXP:
		lit := &ast.RegexpLit{Start: p.val.Pos, Raw: p.val.Raw}
		p.advance()
		return lit
	case token.LPAREN:
		lparen := p.expect(token.LPAREN)
		inner := p.parseExpression()
		rparen := p.expect(token.RPAREN)
		return &ast.ParenExpr{Lparen: lparen, Expr: inner, Rparen: rparen}
	case token.LBRACK:
		return p.parseArrayLit()
	case token.LBRACE:
		return p.parseObjectLit()
	case token.FUNCTION:
		return p.parseFuncExpr()
	default:
		pos := p.val.Pos
		p.errorExpected(pos, "expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseIdent() *ast.Ident {
	pos, name := p.val.Pos, p.val.Raw
	p.expect(token.IDENT)
	return &ast.Ident{NamePos: pos, Name: name}
}

func (p *parser) parseKeywordLiteral() *ast.Literal {
	tok, pos, raw := p.tok, p.val.Pos, p.val.Raw
	var val interface{}
	switch tok {
	case token.TRUE:
		val = true
	case token.FALSE:
		val = false
	}
	p.advance()
	return &ast.Literal{Kind: tok, Start: pos, Raw: raw, Value: val}
}

func (p *parser) parseArrayLit() *ast.ArrayLit {
	lbrack := p.expect(token.LBRACK)
	var elems []ast.Expr
	for p.tok != token.RBRACK {
		if p.tok == token.COMMA {
			elems = append(elems, nil) // elision
			p.advance()
			continue
		}
		elems = append(elems, p.parseAssignExpr())
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	rbrack := p.expect(token.RBRACK)
	return &ast.ArrayLit{Lbrack: lbrack, Elements: elems, Rbrack: rbrack}
}

func (p *parser) parseObjectLit() *ast.ObjectLit {
	lbrace := p.expect(token.LBRACE)
	var props []*ast.Property
	for p.tok != token.RBRACE {
		props = append(props, p.parseProperty())
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.ObjectLit{Lbrace: lbrace, Props: props, Rbrace: rbrace}
}

func (p *parser) parseProperty() *ast.Property {
	// `get name() {...}` / `set name(v) {...}` accessor properties: detected
	// by IDENT "get"/"set" followed by something other than ':' or ','.
	if p.tok == token.IDENT && (p.val.Raw == "get" || p.val.Raw == "set") {
		kind := ast.PropGet
		if p.val.Raw == "set" {
			kind = ast.PropSet
		}
		save := p.val
		p.advance()
		if p.tok != token.COLON && p.tok != token.COMMA && p.tok != token.RBRACE {
			key := p.parsePropertyKey()
			fn := p.parseFuncSignatureAndBody(save.Pos, nil)
			return &ast.Property{Kind: kind, Key: key, Value: fn}
		}
		// false alarm: "get"/"set" was actually the property name itself.
		key := &ast.Ident{NamePos: save.Pos, Name: save.Raw}
		colon := p.expect(token.COLON)
		val := p.parseAssignExpr()
		return &ast.Property{Kind: ast.PropInit, Key: key, Colon: colon, Value: val}
	}

	key := p.parsePropertyKey()
	colon := p.expect(token.COLON)
	val := p.parseAssignExpr()
	return &ast.Property{Kind: ast.PropInit, Key: key, Colon: colon, Value: val}
}

func (p *parser) parsePropertyKey() ast.Expr {
	switch p.tok {
	case token.STRING:
		lit := &ast.Literal{Kind: token.STRING, Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Str}
		p.advance()
		return lit
	case token.INT:
		lit := &ast.Literal{Kind: token.INT, Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Int}
		p.advance()
		return lit
	case token.FLOAT:
		lit := &ast.Literal{Kind: token.FLOAT, Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Float}
		p.advance()
		return lit
	default:
		return p.parsePropertyName()
	}
}

func (p *parser) parseFuncExpr() *ast.FuncExpr {
	start := p.expect(token.FUNCTION)
	var name *ast.Ident
	if p.tok == token.IDENT {
		name = p.parseIdent()
	}
	return p.parseFuncSignatureAndBody(start, name)
}

// parseFuncSignatureAndBody parses `(params) { body }`, used for both
// function expressions/declarations and get/set accessor bodies. start is
// the position the resulting FuncExpr's span begins at (the `function`
// keyword, or the accessor's property-name position for get/set).
func (p *parser) parseFuncSignatureAndBody(start token.Pos, name *ast.Ident) *ast.FuncExpr {
	p.expect(token.LPAREN)
	var params []*ast.Ident
	for p.tok != token.RPAREN {
		params = append(params, p.parseIdent())
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)

	// The body's own "use strict" pragma can only be detected after its first
	// statement parses, so p.strict is flipped mid-block: nested functions
	// after the pragma inherit it, and the parameter list is validated once
	// the body's strictness is settled.
	saved := p.strict
	lbrace := p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for !p.at(token.RBRACE, token.EOF) {
		s := p.parseStmt()
		if len(stmts) == 0 && isUseStrict(s) {
			p.strict = true
		}
		stmts = append(stmts, s)
	}
	end := p.expect(token.RBRACE)
	body := &ast.Block{Start: lbrace, End: end, Stmts: stmts}

	if p.strict {
		p.validateStrictParams(params)
	}
	p.strict = saved
	return &ast.FuncExpr{Start: start, Name: name, Params: params, Body: body, End: body.End}
}

// validateStrictParams enforces ES5-style strict-mode restrictions on a
// parameter list: no parameter may be named eval or arguments, and no two
// parameters may share a name.
func (p *parser) validateStrictParams(params []*ast.Ident) {
	seen := make(map[string]bool, len(params))
	for _, prm := range params {
		if prm.Name == "eval" || prm.Name == "arguments" {
			p.error(prm.NamePos, "parameter name "+prm.Name+" not allowed in strict mode")
		}
		if seen[prm.Name] {
			p.error(prm.NamePos, "duplicate parameter name not allowed in strict mode: "+prm.Name)
		}
		seen[prm.Name] = true
	}
}
