package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// Printer controls pretty-printing of the AST, used by the parse and resolve
// CLI commands to dump a tree.
type Printer struct {
	Output io.Writer

	// WithPos includes each node's file:line:col span in the output.
	WithPos bool

	// NodeFmt is the fmt verb used to render each node, e.g. "%v" or "%#v"
	// for the counts-annotated form. Defaults to "%v".
	NodeFmt string
}

// Print walks n and writes one line per node to p.Output.
func (p *Printer) Print(n Node, file *token.File) error {
	pp := &printer{w: p.Output, withPos: p.WithPos, nodeFmt: p.NodeFmt, file: file}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	withPos bool
	nodeFmt string
	file    *token.File
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) posString(pos token.Pos) string {
	if pos.Unknown() {
		return "-"
	}
	return p.file.Position(pos).String()
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}

	format := "%s"
	args := []interface{}{strings.Repeat(". ", indent)}
	if p.withPos && p.file != nil {
		start, end := n.Span()
		format += "[%s:%s] "
		args = append(args, p.posString(start), p.posString(end))
	}
	format += p.nodeFmt + "\n"
	args = append(args, n)

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
