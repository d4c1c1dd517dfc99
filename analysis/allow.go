// Copyright © 2024 The Shelly authors

package analysis

import (
	"strings"

	"github.com/luthersystems/shelly/parser/token"
)

// Lints reporting usages.  An allow comment may name the lint instead of
// the command.
const (
	LintUnknownFunctions    = "unknown-functions"
	LintIndirectImports     = "indirect-imports"
	LintInvalidLetterCasing = "invalid-letter-casing"
)

// AllowComment reports whether the comment on line allows what, e.g.
//
//	Invoke-Thing # allow Invoke-Thing
func AllowComment(line, what string) bool {
	_, comment, ok := strings.Cut(line, "#")
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(comment), "allow") && strings.Contains(comment, what)
}

// LineAt returns the source line containing loc without its line break.
func LineAt(source string, loc token.Location) string {
	if loc.Byte < 0 || loc.Byte > len(source) {
		return ""
	}
	start := strings.LastIndexByte(source[:loc.Byte], '\n') + 1
	end := len(source)
	if i := strings.IndexByte(source[loc.Byte:], '\n'); i >= 0 {
		end = loc.Byte + i
	}
	return strings.TrimSuffix(source[start:end], "\r")
}
