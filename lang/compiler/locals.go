package compiler

import (
	"github.com/mna/loxvm/lang/machine"
	"github.com/mna/loxvm/lang/token"
)

// declareVariable registers the identifier just consumed (c.previous) as a
// new local in the current scope. At global scope (depth 0) it is a no-op:
// globals are resolved by name at runtime, not by slot.
func (c *Compiler) declareVariable() {
	if c.cur.scopeDepth == 0 {
		return
	}

	name := c.previous.Lexeme
	for i := c.cur.localCount - 1; i >= 0; i-- {
		l := &c.cur.locals[i]
		if l.depth != -1 && l.depth < c.cur.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if c.cur.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.cur.locals[c.cur.localCount] = local{name: name, depth: -1}
	c.cur.localCount++
}

// markInitialized flips the most recently declared local's depth from -1
// (declared) to the current scope depth (initialized), making it visible
// to resolveLocal. At global scope it is a no-op — defineVariable handles
// globals separately.
func (c *Compiler) markInitialized() {
	if c.cur.scopeDepth == 0 {
		return
	}
	c.cur.locals[c.cur.localCount-1].depth = c.cur.scopeDepth
}

// identifierConstant interns lexeme and adds it to the current
// function's constant pool, returning its index for use as an
// OP_*_GLOBAL operand.
func (c *Compiler) identifierConstant(lexeme string) byte {
	s := c.vm.InternString(lexeme)
	idx, err := c.chunk().AddConstant(s)
	if err != nil {
		c.error(err.Error())
		return 0
	}
	return byte(idx)
}

// parseVariable consumes an identifier token and prepares it for
// definition: at local scope it declares a (not yet initialized) local and
// returns 0 (unused); at global scope it returns the constant-pool index
// of its name.
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	c.declareVariable()
	if c.cur.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

// defineVariable finishes defining the variable named by global (a
// constant-pool index, meaningful only at global scope): at local scope it
// marks the local initialized; at global scope it emits OP_DEFINE_GLOBAL.
func (c *Compiler) defineVariable(global byte) {
	if c.cur.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(machine.OpDefineGlobal, global)
}

// resolveLocal scans fc's locals top-down for a byte-equal name, matching
// the innermost declaration. A local found with depth == -1 is still being
// initialized by its own initializer expression, which is an error to
// reference (`var a = a;`).
func (c *Compiler) resolveLocal(fc *funcCompiler, name string) int {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.name == name {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// addUpvalue records that fc's function captures, at upvalue slot `index`
// (interpreted as a local slot of its immediate enclosing function if
// isLocal, else as an upvalue slot of that enclosing function), returning
// the (deduplicated) index of that capture in fc's own upvalue list.
func (c *Compiler) addUpvalue(fc *funcCompiler, index byte, isLocal bool) int {
	count := fc.fn.UpvalueCount
	for i := 0; i < count; i++ {
		uv := fc.upvalues[i]
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[count] = upvalueRef{index: index, isLocal: isLocal}
	fc.fn.UpvalueCount++
	return count
}

// resolveUpvalue recursively walks the chain of enclosing compilers
// looking for name as a local of some ancestor function, threading an
// upvalue capture through every intervening function so each one's
// OP_CLOSURE knows how to wire it up. Marks the captured local's
// isCaptured flag so endScope knows to close it rather than just pop it.
func (c *Compiler) resolveUpvalue(fc *funcCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}

	if local := c.resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fc, byte(local), true)
	}

	if upvalue := c.resolveUpvalue(fc.enclosing, name); upvalue != -1 {
		return c.addUpvalue(fc, byte(upvalue), false)
	}

	return -1
}
