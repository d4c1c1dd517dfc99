// Copyright © 2024 The Shelly authors

package parser

import (
	"fmt"
	"strings"

	"github.com/luthersystems/shelly/parser/token"
)

// ItemKind distinguishes the namespaces an item can be defined in.
type ItemKind uint8

const (
	Function ItemKind = iota
	Class
	// Pseudoitem is a marker injected by analysis rather than written in
	// source.  Pseudoitems share the function namespace.
	Pseudoitem
)

func (k ItemKind) String() string {
	switch k {
	case Function:
		return "function"
	case Class:
		return "class"
	case Pseudoitem:
		return "pseudoitem"
	default:
		return "invalid"
	}
}

// Item is a named function, class or pseudoitem.  Items are compared by
// exact name; Key gives the case-insensitive projection used for lookup.
type Item struct {
	Name string
	Kind ItemKind
}

// Key identifies an item case-insensitively within its namespace.
type Key struct {
	Name  string
	Class bool
}

// Key returns the lookup key of it.
func (it Item) Key() Key {
	return Key{Name: strings.ToLower(it.Name), Class: it.Kind == Class}
}

func (it Item) String() string {
	return fmt.Sprintf("%s %s", it.Kind, it.Name)
}

// Definition is an item together with the place it is declared.
type Definition struct {
	Item
	Span token.Span
}

// Usage is an item together with the place it is referenced.
type Usage struct {
	Item
	Span token.Span
}

// ImporteeKind is the form of a dot-import target.
type ImporteeKind uint8

const (
	// Relative is `. $PSScriptRoot\path`.
	Relative ImporteeKind = iota
	// HereSut is `. $here\$sut`, the file a test file tests.
	HereSut
	// Unrecognized is any other target.
	Unrecognized
)

// Importee is the target of a dot-import.
type Importee struct {
	Kind ImporteeKind
	// Path is the '/' separated path relative to the importing file's
	// directory.  Set for Relative.
	Path string
	// Raw is the text of an Unrecognized target.
	Raw string
}

func (imp Importee) String() string {
	switch imp.Kind {
	case Relative:
		return "$PSScriptRoot/" + imp.Path
	case HereSut:
		return "$here/$sut"
	default:
		return imp.Raw
	}
}

// Import is a dot-import line.
type Import struct {
	Span     token.Span
	Importee Importee
}

// Testcase is an `It "name"` block.
type Testcase struct {
	Name string
	Span token.Span
}

// File holds everything extracted from a single source file.
type File struct {
	Imports     []Import
	Definitions []Definition
	Usages      []Usage
	Testcases   []Testcase
}
