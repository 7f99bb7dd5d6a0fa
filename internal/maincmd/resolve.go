package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/machine"
	"github.com/lorelei-lang/lorelei/lang/parser"
	"github.com/lorelei-lang/lorelei/lang/resolver"
	"github.com/lorelei-lang/lorelei/lang/scanner"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var resolveMode resolver.Mode
	resolveMode |= resolver.NameBlocks
	return ResolveFiles(ctx, stdio, 0, resolveMode, c.WithPos, args...)
}

// ResolveFiles parses and resolves every named file, then prints the AST
// annotated with binding information. Predeclared names are left nil
// (the CLI tool has none to offer beyond the language's own universe);
// machine.IsUniverse supplies the builtin-name registry the resolver needs
// to tell a reference to, say, Object apart from an unresolved global.
func ResolveFiles(ctx context.Context, stdio mainer.Stdio, parseMode parser.Mode,
	resolvMode resolver.Mode, withPos bool, files ...string) error {
	printer := ast.Printer{
		Output:  stdio.Stdout,
		WithPos: withPos,
	}
	fs, chunks, perr := parser.ParseFiles(ctx, parseMode, files...)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	_, rerr := resolver.ResolveFiles(ctx, fs, chunks, resolvMode, nil, machine.IsUniverse)
	for _, ch := range chunks {
		start, _ := ch.Span()
		file := fs.File(start)
		if err := printer.Print(ch, file); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if rerr != nil {
		scanner.PrintError(stdio.Stderr, rerr)
	}
	return rerr
}
