package machine

import "fmt"

// ObjFunction is a compiled function: its arity, how many upvalues it
// captures, its bytecode, and an optional name (nil for the implicit
// top-level script function). A Function is never called directly — the VM
// always wraps it in an ObjClosure first, even when it captures nothing.
type ObjFunction struct {
	header
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString
}

var _ Value = (*ObjFunction)(nil)

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.chars)
}
func (f *ObjFunction) Type() string     { return "function" }
func (f *ObjFunction) objType() objType { return objFunction }

// NativeFn is the signature of a native (Go-implemented) function callable
// from Lox. It receives the arguments passed at the call site and returns
// the result value or an error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a Go function so it can be stored as a global and called
// like any other Lox function. Arity is advisory only: like clox, the VM
// does not enforce it for natives, only for closures.
type ObjNative struct {
	header
	Name  string
	Arity int
	Fn    NativeFn
}

var _ Value = (*ObjNative)(nil)

func (n *ObjNative) String() string     { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *ObjNative) Type() string       { return "native" }
func (n *ObjNative) objType() objType   { return objNative }
