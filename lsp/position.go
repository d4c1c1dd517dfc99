// Copyright © 2024 The Shelly authors

package lsp

import (
	"net/url"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/shelly/parser/token"
)

// lspPosition converts a location in source to a 0-based LSP position.
// Characters are counted in UTF-16 code units.
func lspPosition(source string, loc token.Location) protocol.Position {
	if loc.Line <= 0 {
		return protocol.Position{}
	}
	b := loc.Byte
	if b > len(source) {
		b = len(source)
	}
	if b < 0 {
		b = 0
	}
	lineStart := strings.LastIndexByte(source[:b], '\n') + 1
	n := 0
	for _, r := range source[lineStart:b] {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return protocol.Position{Line: safeUint(loc.Line - 1), Character: safeUint(n)}
}

// lspRange converts a span in source to an LSP range.
func lspRange(source string, span token.Span) protocol.Range {
	return protocol.Range{
		Start: lspPosition(source, span.Start),
		End:   lspPosition(source, span.End),
	}
}

// contains reports whether pos lies within r.  A position at the end of the
// range counts as inside.
func contains(r protocol.Range, pos protocol.Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	path, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}
	return "file://" + (&url.URL{Path: path}).EscapedPath()
}
