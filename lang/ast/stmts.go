package ast

import (
	"fmt"

	"github.com/lorelei-lang/lorelei/lang/token"
)

type (
	// BadStmt represents a statement that failed to parse.
	BadStmt struct {
		Start, End token.Pos
	}

	// Declarator is one `name` or `name = init` entry of a VarDeclStmt.
	Declarator struct {
		Name *Ident
		Eq   token.Pos // invalid if no initializer
		Init Expr      // nil if no initializer
	}

	// VarDeclStmt represents a `var` declaration statement, possibly
	// declaring several comma-separated bindings.
	VarDeclStmt struct {
		Var   token.Pos
		Decls []*Declarator
		End   token.Pos
	}

	// EmptyStmt represents a bare `;`.
	EmptyStmt struct {
		Semi token.Pos
	}

	// ExprStmt represents an expression used as a statement.
	ExprStmt struct {
		Expr Expr
		End  token.Pos
	}

	// IfStmt represents `if (Cond) Then [else Alt]`.
	IfStmt struct {
		If   token.Pos
		Cond Expr
		Then Stmt
		Else token.Pos // invalid if no else branch
		Alt  Stmt      // nil if no else branch
	}

	// DoWhileStmt represents `do Body while (Cond);`.
	DoWhileStmt struct {
		Do    token.Pos
		Body  Stmt
		While token.Pos
		Cond  Expr
		End   token.Pos
	}

	// WhileStmt represents `while (Cond) Body`.
	WhileStmt struct {
		While token.Pos
		Cond  Expr
		Body  Stmt
	}

	// ForStmt represents the classic 3-clause for loop. Init may be a
	// *VarDeclStmt or an *ExprStmt, or nil; Cond and Post may be nil.
	ForStmt struct {
		For  token.Pos
		Init Stmt
		Cond Expr
		Post Expr
		Body Stmt
	}

	// ForInStmt represents `for (Left in Right) Body`. Left is a
	// *VarDeclStmt with exactly one Declarator (no initializer) when the
	// loop declares its binding, or an assignable *Ident/*MemberExpr
	// otherwise.
	ForInStmt struct {
		For   token.Pos
		Left  Node // *VarDeclStmt or Expr
		In    token.Pos
		Right Expr
		Body  Stmt
	}

	// ContinueStmt represents `continue [Label];`.
	ContinueStmt struct {
		Start token.Pos
		Label *Ident // nil if unlabeled
		End   token.Pos
	}

	// BreakStmt represents `break [Label];`.
	BreakStmt struct {
		Start token.Pos
		Label *Ident // nil if unlabeled
		End   token.Pos
	}

	// ReturnStmt represents `return [Value];`.
	ReturnStmt struct {
		Start token.Pos
		Value Expr // nil if no value
		End   token.Pos
	}

	// WithStmt represents `with (Object) Body`.
	WithStmt struct {
		With   token.Pos
		Object Expr
		Body   Stmt
	}

	// LabeledStmt represents `Label: Body`.
	LabeledStmt struct {
		Label *Ident
		Colon token.Pos
		Body  Stmt
	}

	// CaseClause is one `case Test:` or `default:` arm of a SwitchStmt.
	CaseClause struct {
		Start token.Pos
		Test  Expr // nil for the default clause
		Colon token.Pos
		Body  []Stmt
	}

	// SwitchStmt represents `switch (Disc) { Cases }`.
	SwitchStmt struct {
		Switch token.Pos
		Disc   Expr
		Lbrace token.Pos
		Cases  []*CaseClause
		Rbrace token.Pos
	}

	// ThrowStmt represents `throw Value;`.
	ThrowStmt struct {
		Start token.Pos
		Value Expr
		End   token.Pos
	}

	// TryStmt represents `try Block [catch (Param) CatchBlock] [finally
	// FinallyBlock]`. At least one of CatchBlock/FinallyBlock is non-nil.
	TryStmt struct {
		Try          token.Pos
		Block        *Block
		Catch        token.Pos // invalid if no catch clause
		Param        *Ident    // nil if no catch clause
		CatchBlock   *Block    // nil if no catch clause
		Finally      token.Pos // invalid if no finally clause
		FinallyBlock *Block    // nil if no finally clause
	}

	// DebuggerStmt represents the `debugger;` statement.
	DebuggerStmt struct {
		Start token.Pos
		End   token.Pos
	}

	// FuncDecl represents a function declaration statement.
	FuncDecl struct {
		Start  token.Pos
		Name   *Ident
		Params []*Ident
		Body   *Block
		End    token.Pos
	}
)

func (n *BadStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad stmt!", nil) }
func (n *BadStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadStmt) Walk(v Visitor)                {}
func (n *BadStmt) BlockEnding() bool             { return false }
func (n *BadStmt) IsLoop() bool                  { return false }

func (n *VarDeclStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "var declaration", map[string]int{"decls": len(n.Decls)})
}
func (n *VarDeclStmt) Span() (start, end token.Pos) { return n.Var, n.End }
func (n *VarDeclStmt) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d.Name)
		if d.Init != nil {
			Walk(v, d.Init)
		}
	}
}
func (n *VarDeclStmt) BlockEnding() bool { return false }
func (n *VarDeclStmt) IsLoop() bool      { return false }

func (n *EmptyStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "empty", nil) }
func (n *EmptyStmt) Span() (start, end token.Pos)  { return n.Semi, n.Semi + 1 }
func (n *EmptyStmt) Walk(v Visitor)                {}
func (n *EmptyStmt) BlockEnding() bool             { return false }
func (n *EmptyStmt) IsLoop() bool                  { return false }

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos) {
	start, _ = n.Expr.Span()
	return start, n.End
}
func (n *ExprStmt) Walk(v Visitor)    { Walk(v, n.Expr) }
func (n *ExprStmt) BlockEnding() bool { return false }
func (n *ExprStmt) IsLoop() bool      { return false }

func (n *IfStmt) Format(f fmt.State, verb rune) {
	lbl := "if"
	if n.Else.IsValid() {
		lbl = "if else"
	}
	format(f, verb, n, lbl, nil)
}
func (n *IfStmt) Span() (start, end token.Pos) {
	if n.Alt != nil {
		_, end = n.Alt.Span()
	} else {
		_, end = n.Then.Span()
	}
	return n.If, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Alt != nil {
		Walk(v, n.Alt)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }
func (n *IfStmt) IsLoop() bool      { return false }

func (n *DoWhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "do while", nil) }
func (n *DoWhileStmt) Span() (start, end token.Pos)  { return n.Do, n.End }
func (n *DoWhileStmt) Walk(v Visitor) {
	Walk(v, n.Body)
	Walk(v, n.Cond)
}
func (n *DoWhileStmt) BlockEnding() bool { return false }
func (n *DoWhileStmt) IsLoop() bool      { return true }

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.While, end
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileStmt) BlockEnding() bool { return false }
func (n *WhileStmt) IsLoop() bool      { return true }

func (n *ForStmt) Format(f fmt.State, verb rune) {
	var clauses int
	if n.Init != nil {
		clauses++
	}
	if n.Cond != nil {
		clauses++
	}
	if n.Post != nil {
		clauses++
	}
	format(f, verb, n, "for", map[string]int{"clauses": clauses})
}
func (n *ForStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.For, end
}
func (n *ForStmt) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	if n.Cond != nil {
		Walk(v, n.Cond)
	}
	if n.Post != nil {
		Walk(v, n.Post)
	}
	Walk(v, n.Body)
}
func (n *ForStmt) BlockEnding() bool { return false }
func (n *ForStmt) IsLoop() bool      { return true }

func (n *ForInStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for in", nil) }
func (n *ForInStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.For, end
}
func (n *ForInStmt) Walk(v Visitor) {
	if d, ok := n.Left.(*VarDeclStmt); ok {
		Walk(v, d.Decls[0].Name)
	} else if e, ok := n.Left.(Expr); ok {
		Walk(v, e)
	}
	Walk(v, n.Right)
	Walk(v, n.Body)
}
func (n *ForInStmt) BlockEnding() bool { return false }
func (n *ForInStmt) IsLoop() bool      { return true }

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ContinueStmt) Walk(v Visitor) {
	if n.Label != nil {
		Walk(v, n.Label)
	}
}
func (n *ContinueStmt) BlockEnding() bool { return true }
func (n *ContinueStmt) IsLoop() bool      { return false }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BreakStmt) Walk(v Visitor) {
	if n.Label != nil {
		Walk(v, n.Label)
	}
}
func (n *BreakStmt) BlockEnding() bool { return true }
func (n *BreakStmt) IsLoop() bool      { return false }

func (n *ReturnStmt) Format(f fmt.State, verb rune) {
	var c int
	if n.Value != nil {
		c = 1
	}
	format(f, verb, n, "return", map[string]int{"value": c})
}
func (n *ReturnStmt) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *ReturnStmt) BlockEnding() bool { return true }
func (n *ReturnStmt) IsLoop() bool      { return false }

func (n *WithStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "with", nil) }
func (n *WithStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.With, end
}
func (n *WithStmt) Walk(v Visitor) {
	Walk(v, n.Object)
	Walk(v, n.Body)
}
func (n *WithStmt) BlockEnding() bool { return false }
func (n *WithStmt) IsLoop() bool      { return false }

func (n *LabeledStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "label "+n.Label.Name, nil) }
func (n *LabeledStmt) Span() (start, end token.Pos) {
	start, _ = n.Label.Span()
	_, end = n.Body.Span()
	return start, end
}
func (n *LabeledStmt) Walk(v Visitor) {
	Walk(v, n.Label)
	Walk(v, n.Body)
}
func (n *LabeledStmt) BlockEnding() bool { return false }
func (n *LabeledStmt) IsLoop() bool      { return n.Body.IsLoop() }

func (n *SwitchStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "switch", map[string]int{"cases": len(n.Cases)})
}
func (n *SwitchStmt) Span() (start, end token.Pos) {
	return n.Switch, n.Rbrace + token.Pos(len(token.RBRACE.String()))
}
func (n *SwitchStmt) Walk(v Visitor) {
	Walk(v, n.Disc)
	for _, c := range n.Cases {
		if c.Test != nil {
			Walk(v, c.Test)
		}
		for _, s := range c.Body {
			Walk(v, s)
		}
	}
}
func (n *SwitchStmt) BlockEnding() bool { return false }
func (n *SwitchStmt) IsLoop() bool      { return false }

func (n *ThrowStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "throw", nil) }
func (n *ThrowStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ThrowStmt) Walk(v Visitor)                { Walk(v, n.Value) }
func (n *ThrowStmt) BlockEnding() bool             { return true }
func (n *ThrowStmt) IsLoop() bool                  { return false }

func (n *TryStmt) Format(f fmt.State, verb rune) {
	lbl := "try"
	if n.CatchBlock != nil {
		lbl += " catch"
	}
	if n.FinallyBlock != nil {
		lbl += " finally"
	}
	format(f, verb, n, lbl, nil)
}
func (n *TryStmt) Span() (start, end token.Pos) {
	if n.FinallyBlock != nil {
		_, end = n.FinallyBlock.Span()
	} else if n.CatchBlock != nil {
		_, end = n.CatchBlock.Span()
	} else {
		_, end = n.Block.Span()
	}
	return n.Try, end
}
func (n *TryStmt) Walk(v Visitor) {
	Walk(v, n.Block)
	if n.CatchBlock != nil {
		if n.Param != nil {
			Walk(v, n.Param)
		}
		Walk(v, n.CatchBlock)
	}
	if n.FinallyBlock != nil {
		Walk(v, n.FinallyBlock)
	}
}
func (n *TryStmt) BlockEnding() bool { return false }
func (n *TryStmt) IsLoop() bool      { return false }

func (n *DebuggerStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "debugger", nil) }
func (n *DebuggerStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *DebuggerStmt) Walk(v Visitor)                {}
func (n *DebuggerStmt) BlockEnding() bool             { return false }
func (n *DebuggerStmt) IsLoop() bool                  { return false }

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn decl "+n.Name.Name, map[string]int{"params": len(n.Params)})
}
func (n *FuncDecl) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *FuncDecl) BlockEnding() bool { return false }
func (n *FuncDecl) IsLoop() bool      { return false }
