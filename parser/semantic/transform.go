// Copyright © 2024 The Shelly authors

// Package semantic reclassifies lexer token trees into semantic tokens:
// command names, variables, flags, fields and keywords.  It is a small state
// machine rather than a grammar; the mode tells how the next word is read.
package semantic

import (
	"github.com/luthersystems/shelly/parser/lexer"
	"github.com/luthersystems/shelly/parser/token"
)

// Mode determines how a word is classified.
type Mode uint8

const (
	// ModeFunction expects a command or keyword.  Used at the top level, in
	// {} blocks and after ';', '|', '=' and return.
	ModeFunction Mode = iota
	// ModeField expects a member name: after '.', '::' or class, and inside
	// @{} blocks.
	ModeField
	// ModeArgument follows a command name, flag or value.
	ModeArgument
	// ModeAnnotation is used inside [] brackets.
	ModeAnnotation
)

func (m Mode) String() string {
	switch m {
	case ModeFunction:
		return "function"
	case ModeField:
		return "field"
	case ModeArgument:
		return "argument"
	case ModeAnnotation:
		return "annotation"
	default:
		return "invalid"
	}
}

// Transform converts the trees of a whole file.  The source must be the text
// the trees were lexed from.
func Transform(trees []lexer.Tree, source string) ([]Token, error) {
	t := &transformer{source: source}
	return t.stream(trees, ModeFunction, lexer.Brace)
}

type transformer struct {
	source string
}

type input struct {
	trees []lexer.Tree
	pos   int
}

func (in *input) next() (lexer.Tree, bool) {
	if in.pos >= len(in.trees) {
		return lexer.Tree{}, false
	}
	in.pos++
	return in.trees[in.pos-1], true
}

func (in *input) peek() *lexer.Tree {
	if in.pos >= len(in.trees) {
		return nil
	}
	return &in.trees[in.pos]
}

func (in *input) peekSymbol(c rune) bool {
	next := in.peek()
	return next != nil && next.IsSymbol(c)
}

func (in *input) peekWord() bool {
	next := in.peek()
	return next != nil && next.Kind == lexer.Word
}

func (t *transformer) stream(trees []lexer.Tree, start Mode, delim lexer.Delimiter) ([]Token, error) {
	mode := start
	in := &input{trees: trees}
	out := make([]Token, 0, len(trees))
	afterClass := false

	for {
		tt, ok := in.next()
		if !ok {
			return out, nil
		}
		switch tt.Kind {
		case lexer.Word:
			switch mode {
			case ModeField, ModeAnnotation:
				out = append(out, Token{Kind: Field, Span: tt.Span, Ident: tt.Span})
				mode = ModeArgument
			case ModeFunction:
				tok := t.command(tt, in)
				switch tok.Kind {
				case ClassKeyword:
					afterClass = true
					mode = ModeField
				case ReturnKeyword:
					mode = ModeFunction
				case Cmdlet:
					mode = ModeArgument
				}
				out = append(out, tok)
			case ModeArgument:
				if tt.Span.Text(t.source) == "in" {
					out = append(out, Token{Kind: InKeyword, Span: tt.Span})
					mode = ModeFunction
					continue
				}
				out = append(out, Token{Kind: Word, Span: t.argument(tt, in)})
			}

		case lexer.Symbol:
			var err error
			out, mode, err = t.symbol(tt, in, out, mode, start, delim)
			if err != nil {
				return nil, err
			}

		case lexer.Group:
			span := tt.Span
			var prefix rune
			var inner Mode
			last := len(out) - 1
			switch {
			case last >= 0 && out[last].IsSymbol('@') && out[last].Span.End == tt.Span.Start:
				span = out[last].Span.To(tt.Span)
				out = out[:last]
				prefix, inner = '@', ModeFunction
				if tt.Delim == lexer.Brace {
					inner = ModeField
				}
			case afterClass && tt.Delim == lexer.Brace:
				inner = ModeField
			case start == ModeAnnotation, tt.Delim == lexer.Bracket:
				inner = ModeAnnotation
			default:
				inner = ModeFunction
			}
			children, err := t.stream(tt.Children, inner, tt.Delim)
			if err != nil {
				return nil, err
			}
			out = append(out, Token{Kind: Group, Span: span, Delim: tt.Delim, Prefix: prefix, Children: children})
			afterClass = false

		case lexer.String:
			children, err := t.interpolations(tt.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, Token{Kind: String, Span: tt.Span, Children: children})
			mode = ModeArgument

		case lexer.Number:
			out = append(out, Token{Kind: Number, Span: tt.Span})
			mode = ModeArgument
		}
	}
}

// command merges a joined run of words, '-', '+' and '.' into a command
// name.  The keywords function, class and return are recognized here.
func (t *transformer) command(first lexer.Tree, in *input) Token {
	span, spacing := first.Span, first.Spacing
	for spacing == lexer.Joined {
		next := in.peek()
		if next == nil {
			break
		}
		if next.Kind != lexer.Word && !next.IsSymbol('-') && !next.IsSymbol('+') && !next.IsSymbol('.') {
			break
		}
		span, spacing = span.To(next.Span), next.Spacing
		in.next()
	}
	switch span.Text(t.source) {
	case "function":
		return Token{Kind: FunctionKeyword, Span: span}
	case "class":
		return Token{Kind: ClassKeyword, Span: span}
	case "return":
		return Token{Kind: ReturnKeyword, Span: span}
	}
	return Token{Kind: Cmdlet, Span: span, Ident: span}
}

// argument merges a joined run of words and symbols written as a bare
// argument, such as foo-bar in `New-Thing -Name foo-bar`.
func (t *transformer) argument(first lexer.Tree, in *input) token.Span {
	span, spacing := first.Span, first.Spacing
	for spacing == lexer.Joined {
		next := in.peek()
		if next == nil {
			break
		}
		switch {
		case next.Kind == lexer.Word:
		case next.Kind == lexer.Symbol && next.Symbol != '\n' && next.Symbol != '`':
		default:
			return span
		}
		span, spacing = span.To(next.Span), next.Spacing
		in.next()
	}
	return span
}

func (t *transformer) symbol(tt lexer.Tree, in *input, out []Token, mode, start Mode, delim lexer.Delimiter) ([]Token, Mode, error) {
	sym := Token{Kind: Symbol, Symbol: tt.Symbol, Span: tt.Span}
	joined := tt.Spacing == lexer.Joined

	switch c := tt.Symbol; {
	case c == '`' && joined:
		if !in.peekSymbol('\n') {
			return nil, mode, token.Errorf(tt.Span.Start, "Unknown escape")
		}
		in.next()
		return out, mode, nil

	case c == '\n' && delim == lexer.Brace:
		sym.Symbol = ';'
		return append(out, sym), start, nil

	case c == '|' || c == '+':
		if in.peekSymbol('\n') {
			in.next()
		}
		if c == '|' {
			mode = ModeFunction
		}
		return append(out, sym), mode, nil

	case c == '$' && joined && in.peekWord():
		return variableName(&tt.Span, in, out), ModeArgument, nil

	case c == '-' && joined && in.peekWord():
		word, _ := in.next()
		return append(out, Token{Kind: Flag, Span: tt.Span.To(word.Span), Ident: word.Span}), ModeArgument, nil

	case c == '=':
		return append(out, sym), ModeFunction, nil

	case c == '.':
		return append(out, sym), ModeField, nil

	case c == ':' && joined && in.peekSymbol(':'):
		second, _ := in.next()
		return append(out, Token{Kind: Square, Span: tt.Span.To(second.Span)}), ModeField, nil

	case c == ';':
		return append(out, sym), start, nil

	case c == ',' && start == ModeAnnotation:
		return append(out, sym), start, nil
	}
	return append(out, sym), mode, nil
}

// variableName reads a variable name, including scoped names such as
// Using:Var, appending one Variable token per word.
func variableName(dollar *token.Span, in *input, out []Token) []Token {
	for in.peekWord() {
		word, _ := in.next()
		span := word.Span
		if dollar != nil {
			span = dollar.To(word.Span)
			dollar = nil
		}
		out = append(out, Token{Kind: Variable, Span: span, Ident: word.Span})
		if word.Spacing == lexer.Alone {
			break
		}
		next := in.peek()
		if next == nil || !next.IsSymbol(':') || next.Spacing != lexer.Joined {
			break
		}
		colon, _ := in.next()
		out = append(out, Token{Kind: Symbol, Symbol: ':', Span: colon.Span})
	}
	return out
}

// interpolations transforms the variables and subexpressions embedded in a
// double quoted string.
func (t *transformer) interpolations(subtrees []lexer.Tree) ([]Token, error) {
	var out []Token
	for _, st := range subtrees {
		switch {
		case st.Kind == lexer.Group && st.Delim == lexer.Brace:
			in := &input{trees: st.Children}
			interior := variableName(nil, in, nil)
			if next := in.peek(); next != nil {
				return nil, token.Errorf(next.Span.Start, "Variable name expected in {}-block")
			}
			out = append(out, Token{Kind: Group, Span: st.Span, Delim: lexer.Paren, Children: interior})
		case st.Kind == lexer.Group && st.Delim == lexer.Paren:
			interior, err := t.stream(st.Children, ModeFunction, lexer.Paren)
			if err != nil {
				return nil, err
			}
			out = append(out, Token{Kind: Group, Span: st.Span, Delim: st.Delim, Prefix: '$', Children: interior})
		case st.Kind == lexer.Word:
			out = append(out, Token{Kind: Variable, Span: st.Span, Ident: st.Span})
		default:
			return nil, token.Errorf(st.Span.Start, "Unexpected %s in string", st.Kind)
		}
	}
	return out, nil
}
