// Copyright © 2024 The Shelly authors

package token

import "unicode/utf8"

// Cursor walks the characters of a source string while tracking their
// locations.  A "\r\n" pair is returned as a single '\n' whose span covers
// both bytes.
type Cursor struct {
	src string
	pos int      // byte offset following the buffered character
	loc Location // location following the buffered character

	buffered bool
	c        rune
	span     Span
}

// NewCursor returns a cursor positioned at the start of src.
func NewCursor(src string) *Cursor {
	return &Cursor{src: src, loc: Start()}
}

// Peek returns the next character without consuming it.  Peek returns false
// at the end of the input.
func (cur *Cursor) Peek() (rune, bool) {
	if cur.buffered {
		return cur.c, true
	}
	c, span, pos, ok := decode(cur.src, cur.pos, cur.loc)
	if !ok {
		cur.pos = pos
		return 0, false
	}
	cur.c, cur.span, cur.pos, cur.loc = c, span, pos, span.End
	cur.buffered = true
	return c, true
}

// PeekSecond returns the character following the one returned by Peek.
func (cur *Cursor) PeekSecond() (rune, bool) {
	if _, ok := cur.Peek(); !ok {
		return 0, false
	}
	c, _, _, ok := decode(cur.src, cur.pos, cur.loc)
	return c, ok
}

// Next consumes the next character and returns it along with its span.
func (cur *Cursor) Next() (rune, Span, bool) {
	if _, ok := cur.Peek(); !ok {
		return 0, Span{}, false
	}
	cur.buffered = false
	return cur.c, cur.span, true
}

// Location returns the location of the next unconsumed character.
func (cur *Cursor) Location() Location {
	if cur.buffered {
		return cur.span.Start
	}
	return cur.loc
}

// decode reads the character at byte offset pos, skipping carriage returns.
// A skipped '\r' is included in the span of the character that follows it.
func decode(src string, pos int, loc Location) (rune, Span, int, bool) {
	start := loc
	for pos < len(src) {
		c, n := utf8.DecodeRuneInString(src[pos:])
		pos += n
		if c == '\r' {
			continue
		}
		end := Location{Byte: pos, Line: loc.Line, Col: loc.Col + 1}
		if c == '\n' {
			end.Line++
			end.Col = 1
		}
		return c, Span{Start: start, End: end}, pos, true
	}
	return 0, Span{}, pos, false
}
