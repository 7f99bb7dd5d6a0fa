// Package ast defines the types used to represent the abstract syntax tree
// built by the parser (spec component I) from ES3-era source text.
//
// The tree is quasi-lossless: Span reports exact source extents for every
// node, which lets the resolver and compiler (and the tokenize/parse/resolve
// CLI commands) report precise diagnostics, but whitespace and comments are
// not themselves part of the tree.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// Node is implemented by every AST node.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a one-line
	// description of itself. Only the 'v' and 's' verbs are supported; '#'
	// additionally prints child counts.
	fmt.Formatter

	// Span reports the node's start and end position.
	Span() (start, end token.Pos)

	// Walk visits the node's direct children.
	Walk(v Visitor)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node

	// BlockEnding reports whether this statement may only appear as the last
	// statement in a block: return, break, continue and throw.
	BlockEnding() bool

	// IsLoop reports whether this statement introduces a loop that bare
	// (unlabeled) break/continue statements may target.
	IsLoop() bool
}

// Chunk is the root of a single parsed source file.
type Chunk struct {
	Name  string // filename, may be empty
	Block *Block
	EOF   token.Pos
}

func (n *Chunk) Format(f fmt.State, verb rune) {
	lbl := "chunk"
	if n.Name != "" {
		lbl += " " + n.Name
	}
	format(f, verb, n, lbl, nil)
}
func (n *Chunk) Span() (start, end token.Pos) {
	if n.Block != nil {
		return n.Block.Span()
	}
	return n.EOF, n.EOF
}
func (n *Chunk) Walk(v Visitor) {
	if n.Block != nil {
		Walk(v, n.Block)
	}
}

// Comment represents a single line (//) or block (/* */) comment. Comments
// are collected separately from the statement/expression tree and are not
// required for any operation named by the spec; the parser keeps them only
// when explicitly asked to.
type Comment struct {
	Start    token.Pos
	Raw, Val string
}

func (n *Comment) Format(f fmt.State, verb rune) { format(f, verb, n, n.Val, nil) }
func (n *Comment) Span() (start, end token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *Comment) Walk(_ Visitor)                {}

// Block is a brace-delimited sequence of statements. The top-level Chunk
// body is also represented as a Block, whose Start/End fall on the
// surrounding source bounds instead of braces.
type Block struct {
	Start, End token.Pos
	Stmts      []Stmt
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// A bare block is itself a valid ES3 statement.
func (n *Block) BlockEnding() bool { return false }
func (n *Block) IsLoop() bool      { return false }

// format implements the shared fmt.Formatter body used by every node: it
// prints label, optionally truncated/padded to a requested width, and
// appends a {child=count, ...} suffix when the '#' flag and counts are given.
func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		switch {
		case len(runes) >= w:
			runes = runes[:w]
		case minus:
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		case !plus:
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
