// Package compiler implements the single-pass Pratt-parsing compiler that
// turns Lox source directly into machine.Chunk bytecode, with no
// intermediate AST. It tracks locals, upvalues and scope depth as it goes,
// emitting instructions to the current function's chunk as each construct
// is recognized.
package compiler

import (
	"fmt"
	goscanner "go/scanner"

	"github.com/mna/loxvm/lang/machine"
	lexer "github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
)

// ErrorList is reused from the standard library, the same convention
// lang/scanner uses: a sortable list of position-carrying diagnostics.
type ErrorList = goscanner.ErrorList

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxParams   = 255
	maxArgs     = 255
)

type funcType int

const (
	funcTypeFunction funcType = iota
	funcTypeScript
)

type local struct {
	name       string
	depth      int // -1 means declared but not yet initialized
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// funcCompiler is one entry in the stack of in-flight function compilers;
// enclosing chains to the function currently being compiled around this
// one. The top-level program is compiled as an implicit funcTypeScript
// function.
type funcCompiler struct {
	enclosing *funcCompiler
	fn        *machine.ObjFunction
	fnType    funcType

	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalueRef
	scopeDepth int
}

// Compiler drives a single compilation: it owns the token lookahead (one
// token, as clox does — previous and current only), the stack of nested
// function compilers, and accumulated diagnostics.
type Compiler struct {
	vm   *machine.VM
	scan lexer.Scanner

	previous lexer.Token
	current  lexer.Token

	hadError  bool
	panicMode bool
	errs      ErrorList

	cur *funcCompiler
}

// Compile compiles source (attributed to filename in diagnostics) into a
// top-level ObjFunction, allocating heap objects (interned strings, nested
// function objects) on vm as it goes. On a compile error it returns a
// non-nil error describing every diagnostic collected and no function:
// failed compilations never hand partial bytecode to the VM.
func Compile(vm *machine.VM, filename, source string) (*machine.ObjFunction, error) {
	c := &Compiler{vm: vm}
	c.scan.Init(filename, source, nil)
	c.beginFunction(funcTypeScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	fn, _ := c.endFunction()
	if c.hadError {
		return nil, c.errs.Err()
	}
	return fn, nil
}

func (c *Compiler) beginFunction(fnType funcType, name string) {
	fc := &funcCompiler{enclosing: c.cur, fnType: fnType}
	fc.fn = c.vm.NewFunction()
	c.vm.PushCompilerRoot(fc.fn)
	if name != "" {
		fc.fn.Name = c.vm.InternString(name)
	}
	// Slot 0 is reserved for the called closure itself; it has no name so
	// user code can never resolve it as a local.
	fc.locals[0] = local{depth: 0}
	fc.localCount = 1

	c.cur = fc
}

// endFunction closes out the current function compiler, returning its
// completed ObjFunction and the upvalue descriptors the compiler recorded
// for it (read by the caller to emit the OP_CLOSURE operand bytes into the
// *enclosing* function's chunk).
func (c *Compiler) endFunction() (*machine.ObjFunction, []upvalueRef) {
	c.emitReturn()
	fc := c.cur
	upvalues := fc.upvalues[:fc.fn.UpvalueCount]
	c.vm.PopCompilerRoot()
	c.cur = fc.enclosing
	return fc.fn, upvalues
}

func (c *Compiler) chunk() *machine.Chunk { return &c.cur.fn.Chunk }

func (c *Compiler) line() int {
	if c.previous.Pos.Line > 0 {
		return c.previous.Pos.Line
	}
	return c.current.Pos.Line
}

// advance pulls tokens from the scanner until a non-error one is found,
// reporting each illegal token as a diagnostic at its own position — the
// scanner signals lexical errors by returning an ILLEGAL token whose
// Lexeme is the message, rather than reporting them itself.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scan.Scan()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(kind token.Token) bool { return c.current.Kind == kind }

func (c *Compiler) match(kind token.Token) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Token, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

// errorAt implements the suppressed-cascade model: the first error is
// reported and enters panic mode, and every subsequent one is silently
// dropped until synchronize() resumes parsing at a statement boundary.
func (c *Compiler) errorAt(tok lexer.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	var where string
	switch tok.Kind {
	case token.EOF:
		where = " at end"
	case token.ILLEGAL:
		where = ""
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}

	full := fmt.Sprintf("[line %d] Error%s: %s", tok.Pos.Line, where, msg)
	c.errs.Add(tok.Pos, full)
}

func (c *Compiler) emitByte(b byte) { c.chunk().Write(b, c.line()) }

func (c *Compiler) emitOp(op machine.OpCode) { c.emitByte(byte(op)) }

func (c *Compiler) emitBytes(op machine.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	c.emitOp(machine.OpNil)
	c.emitOp(machine.OpReturn)
}

func (c *Compiler) emitConstant(v machine.Value) {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitBytes(machine.OpConstant, byte(idx))
}

// emitJump writes op followed by a two-byte placeholder operand, returning
// the offset of the placeholder's first byte for a later patchJump call.
func (c *Compiler) emitJump(op machine.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the two-byte placeholder at offset with the forward
// distance from just after it to the current end of the chunk.
func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

// emitLoop emits OP_LOOP with a backward offset from just after its operand
// to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(machine.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

// endScope pops every local declared in the scope just closed, emitting
// OP_CLOSE_UPVALUE for locals a nested closure captured and OP_POP for all
// others.
func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	for c.cur.localCount > 0 && c.cur.locals[c.cur.localCount-1].depth > c.cur.scopeDepth {
		if c.cur.locals[c.cur.localCount-1].isCaptured {
			c.emitOp(machine.OpCloseUpvalue)
		} else {
			c.emitOp(machine.OpPop)
		}
		c.cur.localCount--
	}
}
