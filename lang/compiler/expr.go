package compiler

import (
	"strconv"

	"github.com/mna/loxvm/lang/machine"
	"github.com/mna/loxvm/lang/token"
)

// precedence levels, lowest to highest, matching the eleven levels of clox's
// Pratt table.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// getRule looks up the parse rule for kind. Implemented as a switch rather
// than a token-indexed array — spec §9 calls the two equivalent — since
// Go's sparse enum-like constants make an array keyed directly by
// token.Token awkward to size without exporting internals of the token
// package.
func getRule(kind token.Token) parseRule {
	switch kind {
	case token.LPAREN:
		return parseRule{prefix: grouping, infix: call, precedence: precCall}
	case token.MINUS:
		return parseRule{prefix: unary, infix: binary, precedence: precTerm}
	case token.PLUS:
		return parseRule{infix: binary, precedence: precTerm}
	case token.SLASH:
		return parseRule{infix: binary, precedence: precFactor}
	case token.STAR:
		return parseRule{infix: binary, precedence: precFactor}
	case token.BANG:
		return parseRule{prefix: unary}
	case token.BANGEQ:
		return parseRule{infix: binary, precedence: precEquality}
	case token.EQEQ:
		return parseRule{infix: binary, precedence: precEquality}
	case token.GT:
		return parseRule{infix: binary, precedence: precComparison}
	case token.GE:
		return parseRule{infix: binary, precedence: precComparison}
	case token.LT:
		return parseRule{infix: binary, precedence: precComparison}
	case token.LE:
		return parseRule{infix: binary, precedence: precComparison}
	case token.IDENT:
		return parseRule{prefix: variable}
	case token.STRING:
		return parseRule{prefix: str}
	case token.NUMBER:
		return parseRule{prefix: number}
	case token.AND:
		return parseRule{infix: and_, precedence: precAnd}
	case token.OR:
		return parseRule{infix: or_, precedence: precOr}
	case token.FALSE, token.TRUE, token.NIL:
		return parseRule{prefix: literal}
	default:
		return parseRule{}
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.MINUS:
		c.emitOp(machine.OpNegate)
	case token.BANG:
		c.emitOp(machine.OpNot)
	}
}

func binary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BANGEQ:
		c.emitOp(machine.OpEqual)
		c.emitOp(machine.OpNot)
	case token.EQEQ:
		c.emitOp(machine.OpEqual)
	case token.GT:
		c.emitOp(machine.OpGreater)
	case token.GE:
		c.emitOp(machine.OpLess)
		c.emitOp(machine.OpNot)
	case token.LT:
		c.emitOp(machine.OpLess)
	case token.LE:
		c.emitOp(machine.OpGreater)
		c.emitOp(machine.OpNot)
	case token.PLUS:
		c.emitOp(machine.OpAdd)
	case token.MINUS:
		c.emitOp(machine.OpSubtract)
	case token.STAR:
		c.emitOp(machine.OpMultiply)
	case token.SLASH:
		c.emitOp(machine.OpDivide)
	}
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(machine.OpFalse)
	case token.NIL:
		c.emitOp(machine.OpNil)
	case token.TRUE:
		c.emitOp(machine.OpTrue)
	}
}

func number(c *Compiler, _ bool) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(machine.Number(v))
}

func str(c *Compiler, _ bool) {
	c.emitConstant(c.vm.InternString(c.previous.Lexeme))
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp machine.OpCode

	arg := c.resolveLocal(c.cur, name)
	switch {
	case arg != -1:
		getOp, setOp = machine.OpGetLocal, machine.OpSetLocal
	default:
		if up := c.resolveUpvalue(c.cur, name); up != -1 {
			arg = up
			getOp, setOp = machine.OpGetUpvalue, machine.OpSetUpvalue
		} else {
			arg = int(c.identifierConstant(name))
			getOp, setOp = machine.OpGetGlobal, machine.OpSetGlobal
		}
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(machine.OpJumpIfFalse)
	c.emitOp(machine.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(machine.OpJumpIfFalse)
	endJump := c.emitJump(machine.OpJump)

	c.patchJump(elseJump)
	c.emitOp(machine.OpPop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitBytes(machine.OpCall, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if count == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(count)
}
