package machine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeConstant appends an OpConstant instruction for value to chunk and
// returns the constant's index.
func writeConstant(t *testing.T, chunk *Chunk, value Value, line int) byte {
	t.Helper()
	idx, err := chunk.AddConstant(value)
	require.NoError(t, err)
	chunk.Write(byte(OpConstant), line)
	chunk.Write(byte(idx), line)
	return byte(idx)
}

func TestVMArithmeticReturnsResult(t *testing.T) {
	vm := New()
	fn := vm.NewFunction()
	writeConstant(t, &fn.Chunk, Number(2), 1)
	writeConstant(t, &fn.Chunk, Number(3), 1)
	fn.Chunk.Write(byte(OpAdd), 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	result, err := vm.Run(fn)
	require.NoError(t, err)
	require.Equal(t, Number(5), result)
}

func TestVMPrintWritesToStdout(t *testing.T) {
	vm := New()
	var out bytes.Buffer
	vm.Stdout = &out

	fn := vm.NewFunction()
	writeConstant(t, &fn.Chunk, Number(42), 1)
	fn.Chunk.Write(byte(OpPrint), 1)
	fn.Chunk.Write(byte(OpNil), 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	_, err := vm.Run(fn)
	require.NoError(t, err)
	require.Equal(t, "42\n", out.String())
}

func TestVMNegateNonNumberIsRuntimeError(t *testing.T) {
	vm := New()
	var errOut bytes.Buffer
	vm.Stderr = &errOut

	fn := vm.NewFunction()
	writeConstant(t, &fn.Chunk, vm.InternString("nope"), 1)
	fn.Chunk.Write(byte(OpNegate), 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	_, err := vm.Run(fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Operand must be a number.")

	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Trace[0], "[line 1] in script")
}

func TestVMGlobalDefineGetSet(t *testing.T) {
	vm := New()
	fn := vm.NewFunction()

	nameIdx, err := fn.Chunk.AddConstant(vm.InternString("x"))
	require.NoError(t, err)

	writeConstant(t, &fn.Chunk, Number(10), 1)
	fn.Chunk.Write(byte(OpDefineGlobal), 1)
	fn.Chunk.Write(byte(nameIdx), 1)

	writeConstant(t, &fn.Chunk, Number(20), 2)
	fn.Chunk.Write(byte(OpSetGlobal), 2)
	fn.Chunk.Write(byte(nameIdx), 2)
	fn.Chunk.Write(byte(OpPop), 2)

	fn.Chunk.Write(byte(OpGetGlobal), 3)
	fn.Chunk.Write(byte(nameIdx), 3)
	fn.Chunk.Write(byte(OpReturn), 3)

	result, err := vm.Run(fn)
	require.NoError(t, err)
	require.Equal(t, Number(20), result)
}

func TestVMSetUndefinedGlobalIsRuntimeError(t *testing.T) {
	vm := New()
	vm.Stderr = &bytes.Buffer{}
	fn := vm.NewFunction()

	nameIdx, err := fn.Chunk.AddConstant(vm.InternString("missing"))
	require.NoError(t, err)

	writeConstant(t, &fn.Chunk, Number(1), 1)
	fn.Chunk.Write(byte(OpSetGlobal), 1)
	fn.Chunk.Write(byte(nameIdx), 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	_, err = vm.Run(fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable 'missing'.")

	// the failed assignment must not have left the global defined
	_, ok := vm.globals.Get(vm.InternString("missing"))
	require.False(t, ok)
}

func TestVMStringConcatInterns(t *testing.T) {
	vm := New()
	fn := vm.NewFunction()
	writeConstant(t, &fn.Chunk, vm.InternString("foo"), 1)
	writeConstant(t, &fn.Chunk, vm.InternString("bar"), 1)
	fn.Chunk.Write(byte(OpAdd), 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	result, err := vm.Run(fn)
	require.NoError(t, err)
	require.Equal(t, "foobar", result.String())
	require.Same(t, vm.InternString("foobar"), result)
}

func TestVMCallNative(t *testing.T) {
	vm := New()
	fn := vm.NewFunction()

	clockIdx, err := fn.Chunk.AddConstant(vm.InternString("clock"))
	require.NoError(t, err)
	fn.Chunk.Write(byte(OpGetGlobal), 1)
	fn.Chunk.Write(byte(clockIdx), 1)
	fn.Chunk.Write(byte(OpCall), 1)
	fn.Chunk.Write(0, 1)
	fn.Chunk.Write(byte(OpReturn), 1)

	result, err := vm.Run(fn)
	require.NoError(t, err)
	_, ok := result.(Number)
	require.True(t, ok, "clock() must return a Number")
}

func TestVMCallArityMismatchIsRuntimeError(t *testing.T) {
	vm := New()
	vm.Stderr = &bytes.Buffer{}

	callee := vm.NewFunction()
	callee.Arity = 1
	callee.Chunk.Write(byte(OpReturn), 1)

	fn := vm.NewFunction()
	calleeIdx, err := fn.Chunk.AddConstant(callee)
	require.NoError(t, err)

	fn.Chunk.Write(byte(OpClosure), 1)
	fn.Chunk.Write(byte(calleeIdx), 1) // no upvalue operand bytes: callee captures nothing
	fn.Chunk.Write(byte(OpCall), 1)
	fn.Chunk.Write(0, 1) // zero args, but callee wants one
	fn.Chunk.Write(byte(OpReturn), 1)

	_, err = vm.Run(fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 1 arguments but got 0.")
}
