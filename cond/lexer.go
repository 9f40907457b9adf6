package cond

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Literal
	TkInt = iota
	TkReal
	TkStr
	TkId
	TkQualified // <scan>.<attribute>, ie 1.state

	// Comparison
	TkAssign // bare '=', normalized into TkEq by the parser
	TkEq
	TkNe
	TkLt
	TkLe
	TkGt
	TkGe

	// Arithmetic
	TkAdd
	TkSub
	TkMul
	TkDiv

	// Chain
	TkAnd
	TkOr

	TkError
	TkEof
)

func tokenName(tk int) string {
	switch tk {
	case TkInt:
		return "int"
	case TkReal:
		return "real"
	case TkStr:
		return "string"
	case TkId:
		return "identifier"
	case TkQualified:
		return "qualified-attribute"
	case TkAssign:
		return "="
	case TkEq:
		return "=="
	case TkNe:
		return "!="
	case TkLt:
		return "<"
	case TkLe:
		return "<="
	case TkGt:
		return ">"
	case TkGe:
		return ">="
	case TkAdd:
		return "+"
	case TkSub:
		return "-"
	case TkMul:
		return "*"
	case TkDiv:
		return "/"
	case TkAnd:
		return "and"
	case TkOr:
		return "or"
	case TkEof:
		return "<eof>"
	default:
		return "<error>"
	}
}

type Lexeme struct {
	Text string
	Int  int64
	Real float64
}

type Lexer struct {
	Source string
	Cursor int
	Start  int // start offset of the current token
	Token  int
	Lexeme Lexeme
}

func newLexer(source string) *Lexer {
	return &Lexer{
		Source: source,
		Cursor: 0,
		Token:  TkError,
	}
}

func (self *Lexer) nextRune() (rune, int) {
	if self.Cursor >= len(self.Source) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(self.Source[self.Cursor:])
}

func (self *Lexer) peekByte(off int) byte {
	if self.Cursor+off >= len(self.Source) {
		return 0
	}
	return self.Source[self.Cursor+off]
}

func (self *Lexer) yield(tk int, sz int) int {
	self.Token = tk
	self.Cursor += sz
	return tk
}

func (self *Lexer) eof() int {
	self.Token = TkEof
	return TkEof
}

// generate a debug position for diagnostic information output
func (self *Lexer) pos(where int) (int, int) {
	line := 1
	col := 1
	for idx, r := range self.Source {
		if idx >= where {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (self *Lexer) dinfo() string {
	line, col := self.pos(self.Start)
	return fmt.Sprintf("around position(%d: %d)", line, col)
}

func (self *Lexer) err(msg string) int {
	self.Lexeme.Text = fmt.Sprintf("%s: %s", self.dinfo(), msg)
	self.Token = TkError
	return TkError
}

func (self *Lexer) errE(err error) int {
	return self.err(err.Error())
}

func (self *Lexer) isWS(r rune) bool {
	switch r {
	case ' ', '\r', '\t', '\n', '\b', '\v':
		return true
	default:
		return false
	}
}

func (self *Lexer) isIdChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (self *Lexer) isIdLeadingChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (self *Lexer) scanDigits() {
	for isDigit(self.peekByte(0)) {
		self.Cursor++
	}
}

func (self *Lexer) scanIdRest() {
	for {
		r, sz := self.nextRune()
		if sz == 0 || !self.isIdChar(r) {
			return
		}
		self.Cursor += sz
	}
}

// Number lexing, the only twist is the qualified attribute. A run of digits
// followed by '.' and an identifier leading char is the grouping variable
// prefix of a filter term, ie 1.state, instead of a real number.
func (self *Lexer) lexNum() int {
	start := self.Cursor
	self.scanDigits()
	digits := self.Source[start:self.Cursor]
	isReal := false

	if self.peekByte(0) == '.' {
		r, _ := utf8.DecodeRuneInString(self.Source[self.Cursor+1:])
		if self.Cursor+1 < len(self.Source) && self.isIdLeadingChar(r) {
			idx, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				return self.errE(err)
			}
			self.Cursor++ // skip the '.'
			attrStart := self.Cursor
			self.scanIdRest()
			self.Lexeme.Int = idx
			self.Lexeme.Text = self.Source[attrStart:self.Cursor]
			self.Token = TkQualified
			return TkQualified
		}
		isReal = true
		self.Cursor++
		self.scanDigits()
	}

	if c := self.peekByte(0); c == 'e' || c == 'E' {
		n := self.peekByte(1)
		if isDigit(n) || ((n == '+' || n == '-') && isDigit(self.peekByte(2))) {
			isReal = true
			self.Cursor += 2
			self.scanDigits()
		}
	}

	text := self.Source[start:self.Cursor]
	self.Lexeme.Text = text

	if isReal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return self.errE(err)
		}
		self.Lexeme.Real = f
		self.Token = TkReal
		return TkReal
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return self.errE(err)
	}
	self.Lexeme.Int = i
	self.Token = TkInt
	return TkInt
}

func (self *Lexer) lexStr(quote rune) int {
	buf := &bytes.Buffer{}
	self.Cursor++

	for {
		c, sz := self.nextRune()
		if sz == 0 {
			return self.err("string literal is not closed by quote properly")
		}
		if c == utf8.RuneError {
			return self.err("invalid utf8 character")
		}

		if c == quote {
			self.Cursor += sz
			break
		}

		if c == '\\' {
			switch self.peekByte(1) {
			case 't':
				buf.WriteRune('\t')
			case 'n':
				buf.WriteRune('\n')
			case 'r':
				buf.WriteRune('\r')
			case '\'':
				buf.WriteRune('\'')
			case '"':
				buf.WriteRune('"')
			case '\\':
				buf.WriteRune('\\')
			default:
				return self.err("unknown escape sequences inside of string literal")
			}
			self.Cursor += 2
			continue
		}

		buf.WriteRune(c)
		self.Cursor += sz
	}

	self.Lexeme.Text = buf.String()
	self.Token = TkStr
	return TkStr
}

func (self *Lexer) lexId() int {
	start := self.Cursor
	self.scanIdRest()
	text := self.Source[start:self.Cursor]

	switch strings.ToLower(text) {
	case "and":
		self.Token = TkAnd
	case "or":
		self.Token = TkOr
	default:
		self.Token = TkId
	}
	self.Lexeme.Text = text
	return self.Token
}

func (self *Lexer) Next() int {
	if self.Token == TkEof || (self.Token == TkError && self.Cursor > 0) {
		return self.Token
	}
	return self.next()
}

func (self *Lexer) next() int {
	self.Lexeme = Lexeme{}
	for {
		self.Start = self.Cursor
		c, sz := self.nextRune()
		if sz == 0 {
			return self.eof()
		}
		if c == utf8.RuneError {
			return self.err("invalid utf8 character")
		}

		switch c {
		case '+':
			return self.yield(TkAdd, 1)
		case '-':
			return self.yield(TkSub, 1)
		case '*':
			return self.yield(TkMul, 1)
		case '/':
			return self.yield(TkDiv, 1)

		case '&':
			if self.peekByte(1) == '&' {
				return self.yield(TkAnd, 2)
			}
			return self.err("are you missing '&' for and operator?")

		case '|':
			if self.peekByte(1) == '|' {
				return self.yield(TkOr, 2)
			}
			return self.err("are you missing '|' for or operator?")

		case '=':
			if self.peekByte(1) == '=' {
				return self.yield(TkEq, 2)
			}
			return self.yield(TkAssign, 1)

		case '>':
			if self.peekByte(1) == '=' {
				return self.yield(TkGe, 2)
			}
			return self.yield(TkGt, 1)

		case '<':
			switch self.peekByte(1) {
			case '=':
				return self.yield(TkLe, 2)
			case '>':
				return self.yield(TkNe, 2)
			default:
				return self.yield(TkLt, 1)
			}

		case '!':
			if self.peekByte(1) == '=' {
				return self.yield(TkNe, 2)
			}
			return self.err("unexpected '!', negation is not supported")

		case '(', ')':
			return self.err("parentheses are not supported, and/or chains are evaluated left to right")

		case '\'', '"':
			return self.lexStr(c)

		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return self.lexNum()

		default:
			if self.isWS(c) {
				self.Cursor += sz
				break
			}
			if self.isIdLeadingChar(c) {
				return self.lexId()
			}
			return self.err(fmt.Sprintf("unexpected character %q", c))
		}
	}
}
