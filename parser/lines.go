// Copyright © 2024 The Shelly authors

package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	parsec "github.com/prataprc/goparsec"

	"github.com/luthersystems/shelly/parser/token"
)

// Imports and test cases are anchored to the start of a line, so they are
// matched per line with small grammars instead of from the token stream.
//
//	import   := '.' ws+ <importee>? <comment>? EOF
//	importee := /[^#]+/
//	relative := '$PSScriptRoot' /.*/ EOF
//	heresut  := '"'? '$here' ('/' | '\') '$sut' '"'? EOF
//	testcase := 'It' ws+ '"' /[^"]*/ '"'
//
// Keywords and variable names match case-insensitively.
var (
	importLine   = newImportParser()
	relativePath = newRelativeParser()
	hereSut      = newHereSutParser()
	testcaseLine = newTestcaseParser()
)

const (
	termDot      = "DOT"
	termImportee = "IMPORTEE"
	termComment  = "COMMENT"
	termRoot     = "ROOT"
	termRest     = "REST"
	termHereSut  = "HERESUT"
	termIt       = "IT"
	termName     = "NAME"
)

// lineMatch maps terminal names to the text they matched.
type lineMatch map[string]string

func collect(nodes []parsec.ParsecNode) parsec.ParsecNode {
	m := lineMatch{}
	for _, node := range nodes {
		switch n := node.(type) {
		case *parsec.Terminal:
			m[n.Name] = n.Value
		case lineMatch:
			for k, v := range n {
				m[k] = v
			}
		}
	}
	return m
}

func first(nodes []parsec.ParsecNode) parsec.ParsecNode {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func newImportParser() parsec.Parser {
	dot := parsec.Token(`^\s*\.\s+`, termDot)
	importee := parsec.Token(`^[^#\s][^#]*`, termImportee)
	comment := parsec.Token(`^#.*`, termComment)
	return parsec.OrdChoice(first,
		parsec.And(collect, dot, importee, comment, parsec.End()),
		parsec.And(collect, dot, importee, parsec.End()),
		parsec.And(collect, dot, comment, parsec.End()),
		parsec.And(collect, dot, parsec.End()),
	)
}

func newRelativeParser() parsec.Parser {
	root := parsec.Token(`^(?i)\$PSScriptRoot`, termRoot)
	rest := parsec.Token(`^.+`, termRest)
	return parsec.OrdChoice(first,
		parsec.And(collect, root, rest, parsec.End()),
		parsec.And(collect, root, parsec.End()),
	)
}

func newHereSutParser() parsec.Parser {
	return parsec.And(collect, parsec.Token(`^(?i)"?\$here[/\\]\$sut"?`, termHereSut), parsec.End())
}

func newTestcaseParser() parsec.Parser {
	it := parsec.Token(`^\s*(?i)It\s+`, termIt)
	name := parsec.Token(`^"[^"]*"`, termName)
	return parsec.And(collect, it, name)
}

func match(p parsec.Parser, text string) (lineMatch, bool) {
	node, _ := p(parsec.NewScanner([]byte(text)))
	m, ok := node.(lineMatch)
	return m, ok
}

// parseImportee classifies the target of a dot-import.
func parseImportee(text string) Importee {
	if m, ok := match(relativePath, text); ok {
		rel := strings.ReplaceAll(m[termRest], `\`, "/")
		return Importee{Kind: Relative, Path: strings.Trim(rel, "/")}
	}
	if _, ok := match(hereSut, text); ok {
		return Importee{Kind: HereSut}
	}
	return Importee{Kind: Unrecognized, Raw: text}
}

// scanLines collects the imports and test cases of source.
func (f *File) scanLines(source string) {
	offset := 0
	for lineno := 1; offset <= len(source); lineno++ {
		line := source[offset:]
		next := len(source) + 1
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = offset + i + 1
		}
		line = strings.TrimSuffix(line, "\r")

		if m, ok := match(importLine, line); ok {
			f.Imports = append(f.Imports, Import{
				Span:     lineSpan(line, offset, lineno),
				Importee: parseImportee(strings.TrimRightFunc(m[termImportee], unicode.IsSpace)),
			})
		}
		if m, ok := match(testcaseLine, line); ok {
			f.Testcases = append(f.Testcases, Testcase{
				Name: strings.Trim(m[termName], `"`),
				Span: lineSpan(line, offset, lineno),
			})
		}
		offset = next
	}
}

// lineSpan returns the span of line without its surrounding whitespace.
// The line starts at byte offset in the file.
func lineSpan(line string, offset, lineno int) token.Span {
	lead := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
	trail := len(strings.TrimRightFunc(line, unicode.IsSpace))
	if trail < lead {
		trail = lead
	}
	loc := func(i int) token.Location {
		return token.Location{
			Byte: offset + i,
			Line: lineno,
			Col:  1 + utf8.RuneCountInString(line[:i]),
		}
	}
	return token.Span{Start: loc(lead), End: loc(trail)}
}
