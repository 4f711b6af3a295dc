// Package scanner tokenizes Lox source text for the compiler to consume. It
// is a pure lexer: the compiler drives it one token at a time and never
// rescans, mirroring clox's single-pass design (spec §4.3).
package scanner

import (
	"go/scanner"
	gotoken "go/token"

	"github.com/mna/loxvm/lang/token"
)

// Error and ErrorList are reused from the standard library's go/scanner
// package, the same pattern the teacher's scanner uses for diagnostics: a
// Position plus message, collected into a sortable, deduplicating list.
type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError writes out a list of errors, following the same convention as
// the standard library's go/scanner.PrintError.
var PrintError = scanner.PrintError

// Token pairs a lexical token kind with the exact source text it spans and
// its starting position. For STRING tokens, Lexeme is the decoded contents
// with the surrounding quotes stripped; clox has no escape sequences, so no
// further decoding is needed.
type Token struct {
	Kind   token.Token
	Lexeme string
	Pos    gotoken.Position
}

// Scanner tokenizes a single source buffer. The buffer must outlive every
// Token the Scanner produces, since Lexeme slices reference it directly
// (aside from the quote-stripping done for string literals).
type Scanner struct {
	filename string
	src      string
	err      func(gotoken.Position, string)

	start, current     int
	line, lineStart    int // lineStart is the byte offset of the current line's first byte
	startLine, startCol int
}

// Init prepares s to scan src, read from filename (used only for
// diagnostics), reporting lexical errors to errHandler as they are found.
func (s *Scanner) Init(filename, src string, errHandler func(gotoken.Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler
	s.start = 0
	s.current = 0
	s.line = 1
	s.lineStart = 0
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	b := s.src[s.current]
	s.current++
	return b
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) newline() {
	s.line++
	s.lineStart = s.current
}

func (s *Scanner) pos(off int) gotoken.Position {
	return gotoken.Position{Filename: s.filename, Offset: off, Line: s.startLine, Column: s.startCol}
}

func (s *Scanner) errorAt(off int, msg string) {
	if s.err != nil {
		s.err(s.pos(off), msg)
	}
}

func (s *Scanner) make(kind token.Token) Token {
	return Token{Kind: kind, Lexeme: s.src[s.start:s.current], Pos: s.pos(s.start)}
}

func (s *Scanner) errorTok(msg string) Token {
	return Token{Kind: token.ILLEGAL, Lexeme: msg, Pos: s.pos(s.start)}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.advance()
			s.newline()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

// Scan returns the next token in the source. Once it has returned a token
// of kind token.EOF, every subsequent call keeps returning EOF tokens.
func (s *Scanner) Scan() Token {
	s.skipWhitespace()
	s.start = s.current
	s.startLine = s.line
	s.startCol = s.start - s.lineStart + 1

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ';':
		return s.make(token.SEMI)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		if s.match('=') {
			return s.make(token.BANGEQ)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQEQ)
		}
		return s.make(token.EQ)
	case '<':
		if s.match('=') {
			return s.make(token.LE)
		}
		return s.make(token.LT)
	case '>':
		if s.match('=') {
			return s.make(token.GE)
		}
		return s.make(token.GT)
	case '"':
		return s.string()
	}

	tok := s.errorTok("Unexpected character.")
	s.errorAt(s.start, "unexpected character "+string(c))
	return tok
}

func (s *Scanner) string() Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.advance()
			s.newline()
			continue
		}
		s.advance()
	}
	if s.atEnd() {
		tok := s.errorTok("Unterminated string.")
		s.errorAt(s.start, "unterminated string")
		return tok
	}
	s.advance() // closing quote
	return Token{Kind: token.STRING, Lexeme: s.src[s.start+1 : s.current-1], Pos: s.pos(s.start)}
}

func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lexeme := s.src[s.start:s.current]
	return Token{Kind: token.Lookup(lexeme), Lexeme: lexeme, Pos: s.pos(s.start)}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
