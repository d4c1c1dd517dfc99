// Copyright © 2024 The Shelly authors

package semantic

import (
	"fmt"

	"github.com/luthersystems/shelly/parser/lexer"
	"github.com/luthersystems/shelly/parser/token"
)

// Kind classifies a semantic token.
type Kind uint8

const (
	Variable        Kind = iota // $Name
	Flag                        // -Name
	Cmdlet                      // command name such as Write-Host
	Field                       // member, hashtable key or bracketed type name
	FunctionKeyword             // function
	ClassKeyword                // class
	ReturnKeyword               // return
	InKeyword                   // in
	Word                        // bare argument text
	Number
	String
	Group
	Square // ::
	Symbol
	numKinds
)

var kindStrings = [numKinds]string{
	Variable:        "variable",
	Flag:            "flag",
	Cmdlet:          "cmdlet",
	Field:           "field",
	FunctionKeyword: "function",
	ClassKeyword:    "class",
	ReturnKeyword:   "return",
	InKeyword:       "in",
	Word:            "word",
	Number:          "number",
	String:          "string",
	Group:           "group",
	Square:          "::",
	Symbol:          "symbol",
}

func (k Kind) String() string {
	if k >= numKinds {
		return "invalid"
	}
	return kindStrings[k]
}

// Token is a classified token.  Ident is set for variables, flags, cmdlets
// and fields and covers only the name (without a leading '$' or '-').
// Strings and groups carry their transformed contents in Children.
type Token struct {
	Kind     Kind
	Span     token.Span
	Ident    token.Span
	Symbol   rune
	Delim    lexer.Delimiter
	Prefix   rune // '@' for @{...}, '$' for $(...) inside strings
	Children []Token
}

// Name returns the identifier text of t.
func (t *Token) Name(source string) string {
	return t.Ident.Text(source)
}

// IsSymbol reports whether t is the symbol c.
func (t *Token) IsSymbol(c rune) bool {
	return t.Kind == Symbol && t.Symbol == c
}

func (t Token) String() string {
	switch t.Kind {
	case Symbol:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Symbol)
	case Group:
		if t.Prefix != 0 {
			return fmt.Sprintf("%s%c%s%v", t.Kind, t.Prefix, t.Delim, t.Children)
		}
		return fmt.Sprintf("%s%s%v", t.Kind, t.Delim, t.Children)
	case String:
		return fmt.Sprintf("%s%v", t.Kind, t.Children)
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Span)
	}
}

// Walk calls fn for stream and then, depth first, for the contents of every
// string and group within it.
func Walk(stream []Token, fn func([]Token)) {
	fn(stream)
	for i := range stream {
		if len(stream[i].Children) > 0 {
			Walk(stream[i].Children, fn)
		}
	}
}
