// Copyright © 2024 The Shelly authors

// Package token defines source locations and the character cursor shared by
// the lexing stages.
package token

import "fmt"

// Location is a point in a source file.
type Location struct {
	Byte int // 0-indexed byte offset
	Line int // 1-indexed line
	Col  int // 1-indexed column, counted in characters
}

// Start returns the location of the first character of a file.
func Start() Location {
	return Location{Byte: 0, Line: 1, Col: 1}
}

func (loc Location) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Col)
}

// Span is the half-open range [Start, End) between two locations.
type Span struct {
	Start Location
	End   Location
}

// To returns a span running from the start of sp to the end of right.
func (sp Span) To(right Span) Span {
	return Span{Start: sp.Start, End: right.End}
}

// Len returns the width of sp in bytes.
func (sp Span) Len() int {
	return sp.End.Byte - sp.Start.Byte
}

// Text slices the text covered by sp out of source.
func (sp Span) Text(source string) string {
	if sp.Start.Byte < 0 || sp.End.Byte > len(source) || sp.Start.Byte > sp.End.Byte {
		return ""
	}
	return source[sp.Start.Byte:sp.End.Byte]
}

func (sp Span) String() string {
	return fmt.Sprintf("%s-%s", sp.Start, sp.End)
}

// Error is a syntax error reported at a location.
type Error struct {
	What  string
	Where Location
}

// Errorf returns an *Error at loc.
func Errorf(loc Location, format string, args ...interface{}) error {
	return &Error{What: fmt.Sprintf(format, args...), Where: loc}
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s: %s", err.Where, err.What)
}

// LocationError associates an error with the file it occurred in.
type LocationError struct {
	Err    error
	File   string
	Source Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s:%s: %s", err.File, err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
