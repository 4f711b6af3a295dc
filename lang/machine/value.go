// Package machine implements the virtual machine that executes the
// bytecode-compiled form of a Lox program. It also owns the runtime
// representation of values, the heap of allocated objects, string
// interning, and the tracing garbage collector that reclaims them.
package machine

import "fmt"

// Value is the interface implemented by every value the machine can push on
// the operand stack, store in a local, or hold in a table. Nil, Bool and
// Number are immediate values; every other Value is a pointer to a heap
// object and also implements object.
type Value interface {
	// String returns the value's print representation.
	String() string
	// Type returns a short string naming the value's runtime type.
	Type() string
}

// NilType is the type of Nil. It is represented as a one-byte numeric type
// rather than an empty struct so that Nil can be a typed constant.
type NilType byte

// Nil is the only value of type NilType.
const Nil = NilType(0)

var _ Value = Nil

func (NilType) String() string { return "nil" }
func (NilType) Type() string   { return "nil" }

// Bool is the type of boolean values.
type Bool bool

const (
	False = Bool(false)
	True  = Bool(true)
)

var _ Value = False

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Number is the type of Lox's single numeric kind, an IEEE-754 double.
type Number float64

var _ Value = Number(0)

func (n Number) String() string { return formatNumber(float64(n)) }
func (Number) Type() string     { return "number" }

func formatNumber(f float64) string {
	// Lox prints integral floats without a trailing ".0" suffix removed —
	// clox uses "%g", which already does the right thing for both integral
	// and fractional values, so we match it here.
	return fmt.Sprintf("%g", f)
}

// Truth reports whether v is truthy. nil and false are the only falsey
// values; everything else, including 0 and the empty string, is truthy.
func Truth(v Value) bool {
	switch v := v.(type) {
	case NilType:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal reports whether two values are equal per Lox's == operator. Values
// of different dynamic types are never equal. Heap objects other than
// strings compare by identity; strings compare by identity too, which is
// equivalent to content equality because of interning.
func Equal(x, y Value) bool {
	switch x := x.(type) {
	case NilType:
		_, ok := y.(NilType)
		return ok
	case Bool:
		yb, ok := y.(Bool)
		return ok && x == yb
	case Number:
		yn, ok := y.(Number)
		return ok && x == yn
	case *ObjString:
		ys, ok := y.(*ObjString)
		return ok && x == ys
	default:
		// identity equality for every other heap object
		return x == y
	}
}
