package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/lorelei-lang/lorelei/lang/builtins"
	"github.com/lorelei-lang/lorelei/lang/machine"
)

// Repl starts an interactive read-eval-print loop: every non-empty line is
// compiled and run on its own, on one shared Thread, so a var or function
// declared in an earlier line is visible to later ones exactly like a
// top-level var in EvalSource sharing the caller's global object. A
// statement cannot span several lines; a blank line only re-prompts.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := LoadRunConfig()
	if err != nil {
		return printError(stdio, fmt.Errorf("reading configuration: %w", err))
	}

	th := machine.NewThread("<repl>")
	cfg.Apply(th)
	builtins.Wire(th)

	if stdio.Stdin == nil {
		return printError(stdio, fmt.Errorf("repl: no stdin available"))
	}
	scanner := bufio.NewScanner(stdio.Stdin)

	fmt.Fprint(stdio.Stdout, "> ")
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			fmt.Fprint(stdio.Stdout, "> ")
			continue
		}

		v, err := th.EvalSource(line)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", th.FormatError(err))
		} else if v != nil && v != machine.UndefinedValue {
			fmt.Fprintf(stdio.Stdout, "%v\n", v)
		}
		fmt.Fprint(stdio.Stdout, "> ")
	}
	fmt.Fprintln(stdio.Stdout)
	return scanner.Err()
}
