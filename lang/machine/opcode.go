package machine

import "fmt"

// OpCode identifies a single VM instruction. Operand sizes and stack effects
// are documented alongside each constant; see spec §4.5 for the full table.
type OpCode uint8

//nolint:revive
const (
	OpConstant OpCode = iota // idx:1  -> push Constants[idx]
	OpNil                    //        -> push Nil
	OpTrue                   //        -> push True
	OpFalse                  //        -> push False
	OpPop                    // pop 1

	OpGetLocal  // slot:1
	OpSetLocal  // slot:1
	OpGetGlobal // idx:1 (name constant)
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue // idx:1
	OpSetUpvalue // idx:1

	OpEqual
	OpGreater
	OpLess

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate

	OpPrint

	OpJump         // offset:2 (u16 BE, forward)
	OpJumpIfFalse  // offset:2
	OpLoop         // offset:2 (u16 BE, backward)

	OpCall // argc:1

	OpClosure      // idx:1 + 2 bytes per upvalue (isLocal, index)
	OpCloseUpvalue

	OpReturn
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", uint8(op))
}
