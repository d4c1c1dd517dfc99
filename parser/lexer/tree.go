// Copyright © 2024 The Shelly authors

package lexer

import (
	"fmt"

	"github.com/luthersystems/shelly/parser/token"
)

// Kind is the type of a token tree.
type Kind uint8

// Token tree kinds produced by Parse.
const (
	Word Kind = iota
	Symbol
	Number
	String
	Group
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Symbol:
		return "symbol"
	case Number:
		return "number"
	case String:
		return "string"
	case Group:
		return "group"
	default:
		return "invalid"
	}
}

// Spacing tells whether a word or symbol touches the tree following it.
type Spacing uint8

const (
	Alone Spacing = iota
	Joined
)

func (s Spacing) String() string {
	if s == Joined {
		return "joined"
	}
	return "alone"
}

// Delimiter is the bracket pair enclosing a group.
type Delimiter uint8

const (
	Paren Delimiter = iota
	Brace
	Bracket
)

func delimiterFor(opening rune) Delimiter {
	switch opening {
	case '(':
		return Paren
	case '{':
		return Brace
	case '[':
		return Bracket
	}
	panic(fmt.Sprintf("not an opening delimiter: %q", opening))
}

// Opening returns the character that opens the group.
func (d Delimiter) Opening() rune {
	switch d {
	case Brace:
		return '{'
	case Bracket:
		return '['
	default:
		return '('
	}
}

// Closing returns the character that closes the group.
func (d Delimiter) Closing() rune {
	switch d {
	case Brace:
		return '}'
	case Bracket:
		return ']'
	default:
		return ')'
	}
}

func (d Delimiter) String() string {
	return string([]rune{d.Opening(), d.Closing()})
}

// Tree is a single lexeme or a delimited group of trees.  Only the fields
// relevant to Kind are set:
//
//	Word, Symbol  Spacing (and Symbol for symbols)
//	String        Children holds interpolated words and groups
//	Group         Delim and Children
type Tree struct {
	Kind     Kind
	Span     token.Span
	Spacing  Spacing
	Symbol   rune
	Delim    Delimiter
	Children []Tree
}

// IsSymbol reports whether t is the symbol c.
func (t *Tree) IsSymbol(c rune) bool {
	return t.Kind == Symbol && t.Symbol == c
}

func (t Tree) String() string {
	switch t.Kind {
	case Symbol:
		return fmt.Sprintf("%s(%q, %s)", t.Kind, t.Symbol, t.Spacing)
	case Word:
		return fmt.Sprintf("%s(%s, %s)", t.Kind, t.Span, t.Spacing)
	case Group:
		return fmt.Sprintf("%s%s%v", t.Kind, t.Delim, t.Children)
	case String:
		return fmt.Sprintf("%s%v", t.Kind, t.Children)
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Span)
	}
}
