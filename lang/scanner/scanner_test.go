package scanner_test

import (
	gotoken "go/token"
	"testing"

	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]scanner.Token, []string) {
	t.Helper()

	var errs []string
	var s scanner.Scanner
	s.Init("test.lox", src, func(pos gotoken.Position, msg string) {
		errs = append(errs, msg)
	})

	var toks []scanner.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, errs
}

func kinds(toks []scanner.Token) []token.Token {
	ks := make([]token.Token, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestScanPunctuation(t *testing.T) {
	toks, errs := scanAll(t, "(){};,.+-*/!= == <= >= < >")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMI,
		token.COMMA, token.DOT, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.BANGEQ, token.EQEQ, token.LE, token.GE, token.LT, token.GT, token.EOF,
	}, kinds(toks))
}

func TestScanBangVariants(t *testing.T) {
	toks, errs := scanAll(t, "! !=")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.BANG, token.BANGEQ, token.EOF}, kinds(toks))
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, errs := scanAll(t, "and class else false for fun if nil or print return super this true var while orbit")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FOR, token.FUN,
		token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.WHILE, token.IDENT, token.EOF,
	}, kinds(toks))
	require.Equal(t, "orbit", toks[len(toks)-2].Lexeme)
}

func TestScanNumbers(t *testing.T) {
	toks, errs := scanAll(t, "123 3.14 0.5")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.NUMBER, token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, "3.14", toks[1].Lexeme)
}

func TestScanNumberTrailingDotIsNotConsumed(t *testing.T) {
	// "1." with nothing after the dot: the dot is its own token, not part of
	// the number, matching clox's lookahead rule.
	toks, errs := scanAll(t, "1.")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.NUMBER, token.DOT, token.EOF}, kinds(toks))
}

func TestScanStrings(t *testing.T) {
	toks, errs := scanAll(t, `"hello" "multi
line"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.STRING, token.EOF}, kinds(toks))
	require.Equal(t, "hello", toks[0].Lexeme)
	require.Equal(t, "multi\nline", toks[1].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks, errs := scanAll(t, `"unterminated`)
	require.Len(t, errs, 1)
	require.Equal(t, "unterminated string", errs[0])
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanLineComment(t *testing.T) {
	toks, errs := scanAll(t, "1 // this is a comment\n2")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, 1, toks[0].Pos.Line)
	require.Equal(t, 2, toks[1].Pos.Line)
}

func TestScanIllegalCharacter(t *testing.T) {
	toks, errs := scanAll(t, "@")
	require.Len(t, errs, 1)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanEOFIsSticky(t *testing.T) {
	var s scanner.Scanner
	s.Init("test.lox", "", nil)
	require.Equal(t, token.EOF, s.Scan().Kind)
	require.Equal(t, token.EOF, s.Scan().Kind)
}
