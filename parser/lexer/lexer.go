// Copyright © 2024 The Shelly authors

// Package lexer splits source text into token trees.  Comments are dropped,
// strings are kept whole (along with the variables and subexpressions they
// interpolate) and bracketed regions become nested groups.
package lexer

import (
	"unicode"

	"github.com/luthersystems/shelly/parser/token"
)

// Parse returns the token trees of source.  Any syntax error aborts the
// parse; no partial result is returned.
func Parse(source string) ([]Tree, error) {
	lex := &Lexer{cur: token.NewCursor(source)}
	trees, err := lex.parseTrees()
	if err != nil {
		return nil, err
	}
	if c, sp, ok := lex.cur.Next(); ok {
		return nil, token.Errorf(sp.Start, "Unexpected closing `%c`", c)
	}
	return trees, nil
}

// Lexer holds the state of a single Parse.
type Lexer struct {
	cur *token.Cursor
}

// parseTrees parses everything up to the nearest closing delimiter or the
// end of input.
func (lex *Lexer) parseTrees() ([]Tree, error) {
	var trees []Tree
	for {
		t, ok, err := lex.parseTree()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		trees = append(trees, t)
	}
	computeSpacing(trees)
	return trees, nil
}

func (lex *Lexer) parseTree() (Tree, bool, error) {
	for {
		c, ok := lex.cur.Peek()
		if !ok {
			return Tree{}, false, nil
		}
		switch {
		case c == '(' || c == '{' || c == '[':
			t, err := lex.parseGroup()
			return t, err == nil, err
		case c == ')' || c == '}' || c == ']':
			return Tree{}, false, nil
		case c == '\n':
			return lex.parseSymbol(), true, nil
		case c == '#':
			lex.skipToNewline()
		case c == '<' && lex.peekSecondIs('#'):
			if err := lex.skipBlockComment(); err != nil {
				return Tree{}, false, err
			}
		case c == '@':
			t, err := lex.parseAt()
			return t, err == nil, err
		case c == '\'' || c == '"':
			t, err := lex.parseString(nil)
			return t, err == nil, err
		case canStartWord(c):
			return lex.parseWord(), true, nil
		case unicode.IsDigit(c):
			return lex.parseNumber(), true, nil
		case unicode.IsSpace(c):
			lex.cur.Next()
		default:
			return lex.parseSymbol(), true, nil
		}
	}
}

func (lex *Lexer) peekSecondIs(c rune) bool {
	second, ok := lex.cur.PeekSecond()
	return ok && second == c
}

func (lex *Lexer) peekIs(c rune) bool {
	next, ok := lex.cur.Peek()
	return ok && next == c
}

func (lex *Lexer) parseWord() Tree {
	start := lex.cur.Location()
	lex.cur.Next()
	for {
		c, ok := lex.cur.Peek()
		if !ok || !canContinueWord(c) {
			break
		}
		lex.cur.Next()
	}
	return Tree{Kind: Word, Span: token.Span{Start: start, End: lex.cur.Location()}}
}

func (lex *Lexer) parseNumber() Tree {
	start := lex.cur.Location()
	for {
		c, ok := lex.cur.Peek()
		if !ok || !unicode.IsDigit(c) {
			break
		}
		lex.cur.Next()
	}
	return Tree{Kind: Number, Span: token.Span{Start: start, End: lex.cur.Location()}}
}

func (lex *Lexer) parseSymbol() Tree {
	c, sp, _ := lex.cur.Next()
	return Tree{Kind: Symbol, Symbol: c, Span: sp}
}

func (lex *Lexer) parseGroup() (Tree, error) {
	opening, start, _ := lex.cur.Next()
	delim := delimiterFor(opening)

	interior, err := lex.parseTrees()
	if err != nil {
		return Tree{}, err
	}

	want := delim.Closing()
	c, end, ok := lex.cur.Next()
	switch {
	case !ok:
		return Tree{}, token.Errorf(lex.cur.Location(), "Expected `%c`, but found end of file", want)
	case c != want:
		return Tree{}, token.Errorf(end.Start, "Expected `%c`, but found `%c`", want, c)
	}
	return Tree{Kind: Group, Delim: delim, Children: interior, Span: start.To(end)}, nil
}

// skipToNewline drops a line comment, leaving the newline itself in place.
func (lex *Lexer) skipToNewline() {
	for {
		c, ok := lex.cur.Peek()
		if !ok || c == '\n' {
			return
		}
		lex.cur.Next()
	}
}

func (lex *Lexer) skipBlockComment() error {
	start := lex.cur.Location()
	lex.cur.Next()
	lex.cur.Next()
	for {
		c, _, ok := lex.cur.Next()
		if !ok {
			return token.Errorf(start, "Unclosed block comment")
		}
		if c == '#' && lex.peekIs('>') {
			lex.cur.Next()
			return nil
		}
	}
}

func (lex *Lexer) parseAt() (Tree, error) {
	_, sp, _ := lex.cur.Next()
	if lex.peekIs('\'') || lex.peekIs('"') {
		return lex.parseString(&sp)
	}
	return Tree{Kind: Symbol, Symbol: '@', Span: sp}, nil
}

// parseString parses a quoted string.  A non-nil at marks a here-string
// opened by the '@' at that span.
func (lex *Lexer) parseString(at *token.Span) (Tree, error) {
	here := at != nil
	start := lex.cur.Location()
	if here {
		start = at.Start
	}
	quote, _, _ := lex.cur.Next()
	double := quote == '"'

	var subtrees []Tree
	for {
		c, sp, ok := lex.cur.Next()
		if !ok {
			return Tree{}, token.Errorf(start, "Unclosed string")
		}
		switch {
		case c == '`' && double:
			lex.cur.Next()
		case c == quote && !here:
			if !lex.peekIs(quote) {
				return lex.closeString(start, subtrees), nil
			}
			lex.cur.Next()
		case c == quote && here:
			if sp.Start.Col == 1 && lex.peekIs('@') {
				lex.cur.Next()
				return lex.closeString(start, subtrees), nil
			}
		case c == '$' && double:
			next, ok := lex.cur.Peek()
			switch {
			case !ok:
			case next == '(' || next == '{':
				g, err := lex.parseGroup()
				if err != nil {
					return Tree{}, err
				}
				subtrees = append(subtrees, g)
			case canStartWord(next):
				subtrees = append(subtrees, lex.parseWord())
			}
		}
	}
}

func (lex *Lexer) closeString(start token.Location, subtrees []Tree) Tree {
	return Tree{
		Kind:     String,
		Children: subtrees,
		Span:     token.Span{Start: start, End: lex.cur.Location()},
	}
}

func canStartWord(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func canContinueWord(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// computeSpacing marks each word and symbol whose span ends exactly where the
// following tree starts as Joined.
func computeSpacing(trees []Tree) {
	for i := 0; i+1 < len(trees); i++ {
		t := &trees[i]
		if t.Kind != Word && t.Kind != Symbol {
			continue
		}
		if t.Span.End == trees[i+1].Span.Start {
			t.Spacing = Joined
		}
	}
}
