package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/lorelei-lang/lorelei/lang/scanner"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, c.WithPos, args...)
}

// TokenizeFiles scans every named file and prints one line per token:
// its position (when withPos is set), its kind and, if non-empty, the
// raw source text that produced it.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, withPos bool, files ...string) error {
	fs, toksByFile, err := scanner.ScanFiles(ctx, files...)
	for _, toks := range toksByFile {
		for _, tok := range toks {
			if withPos && fs != nil {
				pos := fs.Position(tok.Value.Pos)
				fmt.Fprintf(stdio.Stdout, "%s: %s", pos, tok.Token)
			} else {
				fmt.Fprintf(stdio.Stdout, "%s", tok.Token)
			}
			if tok.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %s", tok.Value.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
