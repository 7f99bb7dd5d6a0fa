package ast

import (
	"fmt"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// Unwrap strips surrounding ParenExpr wrappers.
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

// IsAssignable reports whether e can appear on the left of an assignment or
// as a for-in/for-of binding target: an identifier or a member expression.
func IsAssignable(e Expr) bool {
	switch e := Unwrap(e).(type) {
	case *Ident:
		return true
	case *MemberExpr:
		return true
	default:
		_ = e
		return false
	}
}

type (
	// BadExpr represents an expression that failed to parse.
	BadExpr struct {
		Start, End token.Pos
	}

	// Ident represents an identifier reference.
	Ident struct {
		NamePos token.Pos
		Name    string
	}

	// ThisExpr represents the `this` keyword.
	ThisExpr struct {
		Start token.Pos
	}

	// Literal represents a null, boolean, numeric or string literal.
	Literal struct {
		Kind  token.Token // NULL_KW, TRUE_KW, FALSE_KW, INT, FLOAT, STRING
		Start token.Pos
		Raw   string
		Value interface{} // int64 | float64 | string | nil
	}

	// RegexpLit represents a /pattern/flags literal.
	RegexpLit struct {
		Start token.Pos
		Raw   string
	}

	// ArrayLit represents an array literal; a nil entry in Elements is an
	// elision (e.g. the hole in `[1, , 3]`).
	ArrayLit struct {
		Lbrack   token.Pos
		Elements []Expr
		Rbrack   token.Pos
	}

	// PropertyKind distinguishes object literal property forms.
	PropertyKind int

	// Property is one key/value entry of an ObjectLit.
	Property struct {
		Kind  PropertyKind
		Key   Expr // *Ident or *Literal (string or numeric)
		Colon token.Pos
		Value Expr // *FuncExpr for Get/Set
	}

	// ObjectLit represents an object literal.
	ObjectLit struct {
		Lbrace token.Pos
		Props  []*Property
		Rbrace token.Pos
	}

	// FuncExpr represents a function expression, and also the parsed form
	// of a FuncDecl's signature and body. Name is nil for anonymous function
	// expressions.
	FuncExpr struct {
		Start  token.Pos
		Name   *Ident
		Params []*Ident
		Body   *Block
		End    token.Pos
	}

	// ParenExpr represents a parenthesized expression.
	ParenExpr struct {
		Lparen token.Pos
		Expr   Expr
		Rparen token.Pos
	}

	// MemberExpr represents a.b (Computed == false) or a[b] (Computed ==
	// true) property access.
	MemberExpr struct {
		Object   Expr
		Computed bool
		Dot      token.Pos // valid when !Computed
		Lbrack   token.Pos // valid when Computed
		Property Expr      // *Ident when !Computed
		Rbrack   token.Pos // valid when Computed
	}

	// NewExpr represents `new Callee(Args)`; Lparen is invalid when the
	// call has no argument list (`new Foo`).
	NewExpr struct {
		New    token.Pos
		Callee Expr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// CallExpr represents a function call Callee(Args).
	CallExpr struct {
		Callee Expr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// UnaryExpr represents a prefix unary operator: delete, void, typeof,
	// +, -, ~, !.
	UnaryExpr struct {
		Op      token.Token
		OpPos   token.Pos
		Operand Expr
	}

	// UpdateExpr represents ++/-- in either prefix or postfix position.
	UpdateExpr struct {
		Op      token.Token // INC or DEC
		OpPos   token.Pos
		Prefix  bool
		Operand Expr
	}

	// BinaryExpr represents a binary operator, including && and || (whose
	// short-circuit semantics the compiler handles based on Op).
	BinaryExpr struct {
		Left  Expr
		Op    token.Token
		OpPos token.Pos
		Right Expr
	}

	// ConditionalExpr represents the ternary a ? b : c.
	ConditionalExpr struct {
		Cond     Expr
		Question token.Pos
		Then     Expr
		Colon    token.Pos
		Else     Expr
	}

	// AssignExpr represents a = b or a compound assignment a += b.
	AssignExpr struct {
		Left  Expr
		Op    token.Token // EQ or a *_EQ compound assignment token
		OpPos token.Pos
		Right Expr
	}

	// SequenceExpr represents the comma operator a, b, c.
	SequenceExpr struct {
		Exprs  []Expr
		Commas []token.Pos
	}
)

// Property kinds.
const (
	PropInit PropertyKind = iota
	PropGet
	PropSet
)

func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad expr!", nil) }
func (n *BadExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadExpr) Walk(v Visitor)                {}
func (n *BadExpr) expr()                         {}

func (n *Ident) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *Ident) Span() (start, end token.Pos)  { return n.NamePos, n.NamePos + token.Pos(len(n.Name)) }
func (n *Ident) Walk(v Visitor)                {}
func (n *Ident) expr()                         {}

func (n *ThisExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "this", nil) }
func (n *ThisExpr) Span() (start, end token.Pos)  { return n.Start, n.Start + 4 }
func (n *ThisExpr) Walk(v Visitor)                {}
func (n *ThisExpr) expr()                         {}

func (n *Literal) Format(f fmt.State, verb rune) { format(f, verb, n, n.Kind.String()+" "+n.Raw, nil) }
func (n *Literal) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *Literal) Walk(v Visitor)                {}
func (n *Literal) expr()                         {}

func (n *RegexpLit) Format(f fmt.State, verb rune) { format(f, verb, n, "regexp "+n.Raw, nil) }
func (n *RegexpLit) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *RegexpLit) Walk(v Visitor)                {}
func (n *RegexpLit) expr()                         {}

func (n *ArrayLit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"elements": len(n.Elements)})
}
func (n *ArrayLit) Span() (start, end token.Pos) {
	return n.Lbrack, n.Rbrack + token.Pos(len(token.RBRACK.String()))
}
func (n *ArrayLit) Walk(v Visitor) {
	for _, e := range n.Elements {
		if e != nil {
			Walk(v, e)
		}
	}
}
func (n *ArrayLit) expr() {}

func (n *ObjectLit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "object", map[string]int{"props": len(n.Props)})
}
func (n *ObjectLit) Span() (start, end token.Pos) {
	return n.Lbrace, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *ObjectLit) Walk(v Visitor) {
	for _, p := range n.Props {
		Walk(v, p.Key)
		Walk(v, p.Value)
	}
}
func (n *ObjectLit) expr() {}

func (n *FuncExpr) Format(f fmt.State, verb rune) {
	lbl := "fn"
	if n.Name != nil {
		lbl += " " + n.Name.Name
	}
	format(f, verb, n, lbl, map[string]int{"params": len(n.Params)})
}
func (n *FuncExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *FuncExpr) Walk(v Visitor) {
	if n.Name != nil {
		Walk(v, n.Name)
	}
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *FuncExpr) expr() {}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *ParenExpr) Span() (start, end token.Pos) {
	return n.Lparen, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *ParenExpr) Walk(v Visitor) { Walk(v, n.Expr) }
func (n *ParenExpr) expr()          {}

func (n *MemberExpr) Format(f fmt.State, verb rune) {
	lbl := "expr.ident"
	if n.Computed {
		lbl = "expr[expr]"
	}
	format(f, verb, n, lbl, nil)
}
func (n *MemberExpr) Span() (start, end token.Pos) {
	start, _ = n.Object.Span()
	if n.Computed {
		return start, n.Rbrack + token.Pos(len(token.RBRACK.String()))
	}
	_, end = n.Property.Span()
	return start, end
}
func (n *MemberExpr) Walk(v Visitor) {
	Walk(v, n.Object)
	Walk(v, n.Property)
}
func (n *MemberExpr) expr() {}

func (n *NewExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "new", map[string]int{"args": len(n.Args)})
}
func (n *NewExpr) Span() (start, end token.Pos) {
	if n.Rparen.IsValid() {
		end = n.Rparen + token.Pos(len(token.RPAREN.String()))
	} else {
		_, end = n.Callee.Span()
	}
	return n.New, end
}
func (n *NewExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *NewExpr) expr() {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Callee.Span()
	return start, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) expr() {}

func (n *UnaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Op.GoString(), nil)
}
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.Operand.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Operand) }
func (n *UnaryExpr) expr()          {}

func (n *UpdateExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "update "+n.Op.GoString(), nil)
}
func (n *UpdateExpr) Span() (start, end token.Pos) {
	opStart, opEnd := n.OpPos, n.OpPos+2
	operStart, operEnd := n.Operand.Span()
	if n.Prefix {
		return opStart, operEnd
	}
	return operStart, opEnd
}
func (n *UpdateExpr) Walk(v Visitor) { Walk(v, n.Operand) }
func (n *UpdateExpr) expr()          {}

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.GoString(), nil)
}
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinaryExpr) expr() {}

func (n *ConditionalExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "cond", nil) }
func (n *ConditionalExpr) Span() (start, end token.Pos) {
	start, _ = n.Cond.Span()
	_, end = n.Else.Span()
	return start, end
}
func (n *ConditionalExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}
func (n *ConditionalExpr) expr() {}

func (n *AssignExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "assign "+n.Op.GoString(), nil)
}
func (n *AssignExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *AssignExpr) expr() {}

func (n *SequenceExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "sequence", map[string]int{"exprs": len(n.Exprs)})
}
func (n *SequenceExpr) Span() (start, end token.Pos) {
	start, _ = n.Exprs[0].Span()
	_, end = n.Exprs[len(n.Exprs)-1].Span()
	return start, end
}
func (n *SequenceExpr) Walk(v Visitor) {
	for _, e := range n.Exprs {
		Walk(v, e)
	}
}
func (n *SequenceExpr) expr() {}
