package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/parser"
	"github.com/lorelei-lang/lorelei/lang/scanner"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, 0, c.WithPos, args...)
}

// ParseFiles parses every named file and prints its AST.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, parseMode parser.Mode, withPos bool, files ...string) error {
	printer := ast.Printer{
		Output:  stdio.Stdout,
		WithPos: withPos,
	}
	fs, chunks, err := parser.ParseFiles(ctx, parseMode, files...)
	for _, ch := range chunks {
		start, _ := ch.Span()
		file := fs.File(start)
		if perr := printer.Print(ch, file); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			return perr
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
