package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/machine"
	"github.com/mna/mainer"
)

// Run compiles and executes the single Lox source file named in args[0],
// printing any `print` output to stdio.Stdout and any diagnostics to
// stdio.Stderr.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return runSource(ctx, stdio, path, string(src))
}

func runSource(ctx context.Context, stdio mainer.Stdio, filename, src string) error {
	vm := machine.New()
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr

	fn, err := compiler.Compile(vm, filename, src)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return &compileError{err: err}
	}

	if _, err := vm.Run(fn); err != nil {
		return &runtimeFailure{err: err}
	}
	return nil
}
