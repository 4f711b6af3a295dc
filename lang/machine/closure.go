package machine

// ObjClosure pairs a compiled function with the upvalues it captured at the
// point it was created by OP_CLOSURE. Its Upvalues slice always has exactly
// Function.UpvalueCount elements.
type ObjClosure struct {
	header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

var _ Value = (*ObjClosure)(nil)

func (c *ObjClosure) String() string   { return c.Function.String() }
func (c *ObjClosure) Type() string     { return "closure" }
func (c *ObjClosure) objType() objType { return objClosure }

// ObjUpvalue is a captured variable. While Open, it names a specific live
// slot (StackIndex) of the VM's value stack, and the upvalue is linked into
// the VM's openUpvalues list (sorted by decreasing stack index) so that two
// closures capturing the same local share one ObjUpvalue.
//
// Go forbids taking a stable pointer into a slice that might be reallocated
// (and ordering comparisons between pointers at all), so rather than a raw
// interior pointer — clox's `Value* location` — an open upvalue is
// represented as a (stack index) pair into the VM's fixed-size stack array;
// see spec §9's design note on this exact substitution. Closing copies the
// slot's value into Closed and flips Open to false; reads and writes of
// GET_UPVALUE/SET_UPVALUE are redirected there from then on.
type ObjUpvalue struct {
	header
	StackIndex int // valid only while Open
	Closed     Value
	Open       bool
	next       *ObjUpvalue // next entry in the VM's openUpvalues list
}

var _ Value = (*ObjUpvalue)(nil)

func (u *ObjUpvalue) String() string   { return "upvalue" }
func (u *ObjUpvalue) Type() string     { return "upvalue" }
func (u *ObjUpvalue) objType() objType { return objUpvalue }
