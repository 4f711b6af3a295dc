package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/machine"
	"github.com/mna/mainer"
)

// Repl runs an interactive read-eval-print loop, reading one line of Lox
// source at a time from stdio.Stdin until EOF or ctx is cancelled. Each
// line is compiled and run against a single persistent VM, so top-level
// variable and function declarations stay visible across lines.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, _ []string) error {
	vm := machine.New()
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr

	scan := bufio.NewScanner(stdio.Stdin)
	line := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		if !scan.Scan() {
			return scan.Err()
		}
		line++

		src := scan.Text()
		if src == "" {
			continue
		}

		fn, err := compiler.Compile(vm, fmt.Sprintf("<repl:%d>", line), src)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			continue
		}
		// errors are already reported to Stderr by the VM; the REPL keeps
		// going so a mistake on one line doesn't end the session.
		vm.Run(fn)
	}
}
