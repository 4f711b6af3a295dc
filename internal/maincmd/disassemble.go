package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dolthub/swiss"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/machine"
	"github.com/mna/mainer"
)

// Disassemble compiles the Lox source file named in args[0] and prints its
// bytecode listing to stdio.Stdout instead of running it.
func (c *Cmd) Disassemble(_ context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	vm := machine.New()
	fn, cerr := compiler.Compile(vm, path, string(src))
	if cerr != nil {
		fmt.Fprintln(stdio.Stderr, cerr)
		return &compileError{err: cerr}
	}

	printDisassembly(stdio, fn)
	return nil
}

// printDisassembly renders fn and every function nested in its constant
// pool, memoizing which functions have already been printed in a
// Swiss-table cache keyed by function identity, so a function object is
// listed at most once even if it appears in more than one constant pool.
// The compiler adds each function to exactly one pool.
func printDisassembly(stdio mainer.Stdio, top *machine.ObjFunction) {
	seen := swiss.NewMap[*machine.ObjFunction, bool](8)

	var walk func(fn *machine.ObjFunction)
	walk = func(fn *machine.ObjFunction) {
		if _, ok := seen.Get(fn); ok {
			return
		}
		seen.Put(fn, true)

		name := "<script>"
		if fn.Name != nil {
			name = fn.Name.String()
		}
		fmt.Fprintf(stdio.Stdout, "== %s ==\n", name)

		offset := 0
		for offset < len(fn.Chunk.Code) {
			offset = compiler.DisassembleInstruction(stdio.Stdout, fn, offset)
		}
		fmt.Fprintln(stdio.Stdout)

		for _, k := range fn.Chunk.Constants {
			if nested, ok := k.(*machine.ObjFunction); ok {
				walk(nested)
			}
		}
	}
	walk(top)
}
