// Copyright © 2024 The Shelly authors

// Package parser extracts function and class definitions, usages, imports and
// test cases from PowerShell source.
//
// Parsing is done in three passes.  The lexer turns text into token trees,
// dropping comments.  The semantic pass classifies those trees into command
// names, variables, fields and keywords.  Finally the semantic stream is
// walked to collect definitions and usages, while imports and test cases are
// matched line by line.
//
// The parser is not a full grammar.  Functions nested inside other functions
// are reported as ordinary definitions.
package parser

import (
	"strings"

	"github.com/luthersystems/shelly/parser/lexer"
	"github.com/luthersystems/shelly/parser/semantic"
)

const bom = "\ufeff"

// StripBOM removes a leading byte order mark from source.
func StripBOM(source string) string {
	return strings.TrimPrefix(source, bom)
}

// Tokenize runs the lexer and the semantic pass over source.
func Tokenize(source string) ([]semantic.Token, error) {
	trees, err := lexer.Parse(source)
	if err != nil {
		return nil, err
	}
	return semantic.Transform(trees, source)
}

// Parse extracts the contents of a source file.  The returned error is a
// *token.Error when the source cannot be tokenized.  All spans refer to
// source with any byte order mark removed.
func Parse(source string) (*File, error) {
	source = StripBOM(source)
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	f := &File{}
	semantic.Walk(toks, func(stream []semantic.Token) {
		f.extract(source, stream)
	})
	f.scanLines(source)
	return f, nil
}

func (f *File) extract(source string, stream []semantic.Token) {
	var prev semantic.Kind = semantic.Symbol
	for i := range stream {
		tok := &stream[i]
		switch {
		case tok.Kind == semantic.Cmdlet && prev == semantic.FunctionKeyword:
			f.Definitions = append(f.Definitions, Definition{
				Item: Item{Name: tok.Name(source), Kind: Function},
				Span: tok.Span,
			})
		case tok.Kind == semantic.Cmdlet:
			name := tok.Name(source)
			if IsKeyword(name) || hasExeSuffix(name) {
				break
			}
			f.Usages = append(f.Usages, Usage{
				Item: Item{Name: name, Kind: Function},
				Span: tok.Span,
			})
		case tok.Kind == semantic.Field && prev == semantic.ClassKeyword:
			f.Definitions = append(f.Definitions, Definition{
				Item: Item{Name: tok.Name(source), Kind: Class},
				Span: tok.Span,
			})
		case isTypeReference(tok):
			field := &tok.Children[0]
			f.Usages = append(f.Usages, Usage{
				Item: Item{Name: field.Name(source), Kind: Class},
				Span: field.Span,
			})
		}
		prev = tok.Kind
	}
}

// isTypeReference reports whether tok is a bracketed single name such as
// [Foo].  Not every such group is a type, but the ones that are not never
// resolve to a class definition either.
func isTypeReference(tok *semantic.Token) bool {
	return tok.Kind == semantic.Group &&
		tok.Delim == lexer.Bracket &&
		len(tok.Children) == 1 &&
		tok.Children[0].Kind == semantic.Field
}

func hasExeSuffix(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".exe")
}

var keywords = map[string]bool{
	"begin":        true,
	"break":        true,
	"catch":        true,
	"continue":     true,
	"data":         true,
	"do":           true,
	"dynamicparam": true,
	"else":         true,
	"elseif":       true,
	"end":          true,
	"exit":         true,
	"filter":       true,
	"finally":      true,
	"for":          true,
	"foreach":      true,
	"function":     true,
	"if":           true,
	"in":           true,
	"param":        true,
	"process":      true,
	"return":       true,
	"switch":       true,
	"throw":        true,
	"trap":         true,
	"try":          true,
	"until":        true,
	"while":        true,
}

// IsKeyword reports whether ident is a language keyword, ignoring case.
// Keywords in command position are never reported as usages.
func IsKeyword(ident string) bool {
	return keywords[strings.ToLower(ident)]
}
