// Copyright © 2024 The Shelly authors

package semantic

import (
	"io"
	"strings"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
)

func kindColor(k Kind) string {
	switch k {
	case Variable:
		return ansiYellow
	case Flag:
		return ansiCyan
	case Cmdlet:
		return ansiGreen
	case Field:
		return ansiRed
	case FunctionKeyword, ClassKeyword, ReturnKeyword, InKeyword:
		return ansiBlue
	}
	return ""
}

// Fprint writes source to w with the identifiers of tokens highlighted.
// Inserted statement separators are shown as ';' before the newline they
// replace.  When color is false identifiers are bracketed instead, which is
// useful in tests and when output is not a terminal.
func Fprint(w io.Writer, source string, tokens []Token, color bool) error {
	p := &printer{source: source, color: color}
	p.stream(tokens)
	p.emit(len(source), len(source), "", "")
	_, err := io.WriteString(w, p.buf.String())
	return err
}

type printer struct {
	source string
	color  bool
	done   int
	buf    strings.Builder
}

func (p *printer) stream(tokens []Token) {
	for i := range tokens {
		tok := &tokens[i]
		switch {
		case tok.Kind == String || tok.Kind == Group:
			p.stream(tok.Children)
		case tok.IsSymbol(';') && strings.HasSuffix(tok.Span.Text(p.source), "\n"):
			p.emit(tok.Span.Start.Byte, tok.Span.End.Byte, ";\n", ansiRed)
		case kindColor(tok.Kind) != "":
			sp := tok.Ident
			if sp.Len() == 0 {
				sp = tok.Span
			}
			p.emit(sp.Start.Byte, sp.End.Byte, sp.Text(p.source), kindColor(tok.Kind))
		}
	}
}

func (p *printer) emit(start, end int, text, color string) {
	if start < p.done {
		return
	}
	p.buf.WriteString(p.source[p.done:start])
	switch {
	case text == "":
	case p.color:
		p.buf.WriteString(color + text + ansiReset)
	default:
		p.buf.WriteString("[" + text + "]")
	}
	p.done = end
}
