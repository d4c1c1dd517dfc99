// Copyright © 2024 The Shelly authors

package analysis

import (
	_ "embed"
	"sort"
	"strings"
)

//go:embed builtins.txt
var builtinsText string

//go:embed extras.txt
var extrasText string

// NameSet is a case-insensitive set of command names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	s.Add(names...)
	return s
}

// ParseNameList returns a set of the whitespace separated names in text.
func ParseNameList(text string) NameSet {
	return NewNameSet(strings.Fields(text)...)
}

// Add inserts names into s.
func (s NameSet) Add(names ...string) {
	for _, name := range names {
		s[strings.ToLower(name)] = struct{}{}
	}
}

// Contains reports whether name is in s, ignoring case.  A nil set contains
// nothing.
func (s NameSet) Contains(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// Names returns the lowercased names in s in sorted order.
func (s NameSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultBuiltins returns the commands available without any import: the
// PowerShell core cmdlets and the Pester test framework commands.
func DefaultBuiltins() NameSet {
	s := ParseNameList(builtinsText)
	s.Add(strings.Fields(extrasText)...)
	return s
}
