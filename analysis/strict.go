// Copyright © 2024 The Shelly authors

package analysis

import (
	"strings"

	"github.com/luthersystems/shelly/parser"
)

// StrictModeItem is defined in every file that calls Set-StrictMode.  It
// travels through imports like any definition, so a file has strict mode
// enabled when the item is in its scope.
var StrictModeItem = parser.Item{Name: "!EnablesStrictMode", Kind: parser.Pseudoitem}

const (
	setStrictMode    = "Set-StrictMode"
	initializeLogger = "Initialize-PesterLogger"
	invalidTestChars = "\"><|:*?\\/"
)

func enableStrictMode(f *Parsed) {
	for _, u := range f.Usages {
		if strings.EqualFold(u.Name, setStrictMode) {
			f.Definitions = append(f.Definitions, parser.Definition{Item: StrictModeItem, Span: u.Span})
			return
		}
	}
}

// InvalidTestcase is a test whose name cannot be used as a file name.
type InvalidTestcase struct {
	parser.Testcase
	// Chars are the offending characters in order of appearance.
	Chars []rune
}

// checkTestcases reports test names containing characters that are invalid
// in file names.  Test names only become file names for files that set up
// the Pester logger.
func checkTestcases(f *Parsed) []InvalidTestcase {
	if !usesCommand(f, initializeLogger) {
		return nil
	}
	var invalid []InvalidTestcase
	for _, tc := range f.Testcases {
		var chars []rune
		for _, c := range tc.Name {
			if strings.ContainsRune(invalidTestChars, c) && !containsRune(chars, c) {
				chars = append(chars, c)
			}
		}
		if len(chars) > 0 {
			invalid = append(invalid, InvalidTestcase{Testcase: tc, Chars: chars})
		}
	}
	return invalid
}

// InvalidTestChars returns the characters test names may not contain.
func InvalidTestChars() []rune {
	return []rune(invalidTestChars)
}

func usesCommand(f *Parsed, name string) bool {
	for _, u := range f.Usages {
		if u.Kind == parser.Function && strings.EqualFold(u.Name, name) {
			return true
		}
	}
	return false
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}
