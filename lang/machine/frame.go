package machine

// callFrame records one active call: the closure being executed, the
// instruction pointer into its function's chunk, and the base index into
// the VM's value stack at which this call's locals begin (slot 0 always
// holds the callee itself).
type callFrame struct {
	closure *ObjClosure
	ip      int
	slots   int // base index into vm.stack
}
