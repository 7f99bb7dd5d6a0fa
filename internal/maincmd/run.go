package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/lorelei-lang/lorelei/lang/builtins"
	"github.com/lorelei-lang/lorelei/lang/machine"
)

// Run compiles and executes each named file in turn, on its own fresh
// interpreter thread: scripts given on one command line do not share
// global state, mirroring how a shell runs a list of independent scripts.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := LoadRunConfig()
	if err != nil {
		return printError(stdio, fmt.Errorf("reading configuration: %w", err))
	}

	for _, file := range args {
		select {
		case <-ctx.Done():
			return printError(stdio, ctx.Err())
		default:
		}

		src, err := os.ReadFile(file)
		if err != nil {
			return printError(stdio, err)
		}

		th := machine.NewThread(file)
		cfg.Apply(th)
		builtins.Wire(th)

		if _, err := th.EvalSource(string(src)); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, th.FormatError(err))
			return err
		}
	}
	return nil
}
