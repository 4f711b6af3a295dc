package machine

import "time"

// defineNatives installs the VM's built-in native functions. Today that is
// just clock(), matching clox's vm.c initVM — the only native exercised by
// the original source across its snapshots (spec §9).
func (vm *VM) defineNatives() {
	start := time.Now()
	vm.DefineNative("clock", 0, func(args []Value) (Value, error) {
		return Number(time.Since(start).Seconds()), nil
	})
}
