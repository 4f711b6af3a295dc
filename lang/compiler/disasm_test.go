package compiler_test

import (
	"bytes"
	"testing"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/machine"
	"github.com/stretchr/testify/require"
)

func TestDisassembleIsDeterministic(t *testing.T) {
	vm := machine.New()
	fn, err := compiler.Compile(vm, "test.lox", `
		fun add(a, b) { return a + b; }
		print add(1, 2);
	`)
	require.NoError(t, err)

	var first, second bytes.Buffer
	compiler.Disassemble(&first, fn)
	compiler.Disassemble(&second, fn)
	require.Equal(t, first.String(), second.String())
	require.Contains(t, first.String(), "== <script> ==")
	require.Contains(t, first.String(), "OP_CLOSURE")
	require.Contains(t, first.String(), "== add ==")
}
