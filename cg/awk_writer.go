package cg

import (
	"fmt"
	"strings"
)

// A tiny template engine used for *AWK* source code dump. A template is plain
// AWK code with %[name] placeholders, the placeholder is substituted from the
// context. Nothing else is special, so AWK's own printf formats pass through.

type awkWriterCtx map[string]interface{}

type awkWriter struct {
	indent int              // current indent level for formatting
	buf    *strings.Builder // output buffer
}

func newAwkWriter() *awkWriter {
	return &awkWriter{
		buf: &strings.Builder{},
	}
}

func (self *awkWriter) Indent() {
	self.indent++
}

func (self *awkWriter) Dedent() {
	if self.indent == 0 {
		panic("awk writer: unbalanced dedent")
	}
	self.indent--
}

func (self *awkWriter) sub(
	l string,
	ctx awkWriterCtx,
) string {
	if !strings.Contains(l, "%[") {
		return l
	}

	out := &strings.Builder{}
	for {
		start := strings.Index(l, "%[")
		if start < 0 {
			out.WriteString(l)
			break
		}
		end := strings.IndexByte(l[start:], ']')
		if end < 0 {
			panic(fmt.Sprintf("awk writer: unterminated placeholder in %q", l))
		}
		name := strings.TrimSpace(l[start+2 : start+end])
		v, ok := ctx[name]
		if !ok {
			panic(fmt.Sprintf("awk writer: variable(%s) is not found", name))
		}
		out.WriteString(l[:start])
		out.WriteString(fmt.Sprintf("%v", v))
		l = l[start+end+1:]
	}
	return out.String()
}

// Line writes one line at the current indent level
func (self *awkWriter) Line(
	l string,
	ctx awkWriterCtx,
) {
	l = self.sub(l, ctx)
	if l != "" {
		self.buf.WriteString(strings.Repeat("  ", self.indent))
	}
	self.buf.WriteString(l)
	self.buf.WriteString("\n")
}

// Chunk writes a multi line template, leading and trailing blank lines are
// dropped and every line is shifted to the current indent level
func (self *awkWriter) Chunk(
	c string,
	ctx awkWriterCtx,
) {
	c = strings.Trim(c, "\n")
	for _, l := range strings.Split(c, "\n") {
		self.Line(strings.TrimRight(l, " \t"), ctx)
	}
}

func (self *awkWriter) Blank() {
	self.buf.WriteString("\n")
}

func (self *awkWriter) Flush() string {
	return self.buf.String()
}

// awkQuote renders s as an AWK string literal
func awkQuote(s string) string {
	b := &strings.Builder{}
	b.WriteByte('"')
	for _, c := range []byte(s) {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
