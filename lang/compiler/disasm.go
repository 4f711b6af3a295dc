package compiler

import (
	"fmt"
	"io"

	"github.com/mna/loxvm/lang/machine"
)

// Disassemble writes a human-readable listing of every instruction in fn's
// chunk to w, recursing into any nested ObjFunction constants, the way
// clox's debug.c dumps a chunk's contents during development.
func Disassemble(w io.Writer, fn *machine.ObjFunction) {
	name := "<script>"
	if fn.Name != nil {
		name = fn.Name.String()
	}
	fmt.Fprintf(w, "== %s ==\n", name)

	offset := 0
	for offset < len(fn.Chunk.Code) {
		offset = DisassembleInstruction(w, fn, offset)
	}

	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*machine.ObjFunction); ok {
			fmt.Fprintln(w)
			Disassemble(w, nested)
		}
	}
}

// DisassembleInstruction writes the single instruction at offset in fn's
// chunk to w and returns the offset of the next instruction.
func DisassembleInstruction(w io.Writer, fn *machine.ObjFunction, offset int) int {
	chunk := &fn.Chunk
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := machine.OpCode(chunk.Code[offset])
	switch op {
	case machine.OpConstant, machine.OpDefineGlobal, machine.OpGetGlobal, machine.OpSetGlobal:
		return constantInstruction(w, op, chunk, offset)
	case machine.OpGetLocal, machine.OpSetLocal, machine.OpGetUpvalue, machine.OpSetUpvalue, machine.OpCall:
		return byteInstruction(w, op, chunk, offset)
	case machine.OpJump, machine.OpJumpIfFalse:
		return jumpInstruction(w, op, chunk, offset, 1)
	case machine.OpLoop:
		return jumpInstruction(w, op, chunk, offset, -1)
	case machine.OpClosure:
		return closureInstruction(w, op, chunk, offset)
	default:
		fmt.Fprintln(w, op.String())
		return offset + 1
	}
}

func constantInstruction(w io.Writer, op machine.OpCode, chunk *machine.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%v'\n", op, idx, chunk.Constants[idx])
	return offset + 2
}

func byteInstruction(w io.Writer, op machine.OpCode, chunk *machine.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op machine.OpCode, chunk *machine.Chunk, offset int, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func closureInstruction(w io.Writer, op machine.OpCode, chunk *machine.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fn := chunk.Constants[idx].(*machine.ObjFunction)
	fmt.Fprintf(w, "%-16s %4d %s\n", op, idx, fn)

	next := offset + 2
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[next]
		index := chunk.Code[next+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", next, kind, index)
		next += 2
	}
	return next
}
