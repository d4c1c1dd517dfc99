// Copyright © 2024 The Shelly authors

// Package diagnostic renders findings as annotated source snippets for
// terminal output.  It is independent of the analysis packages so that any
// command can use it.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File    string // display name
	Path    string // path for reading source; File is used when empty
	Line    int    // 1-based line number, 0 for the whole file
	Col     int    // 1-based start column in characters
	EndLine int    // 1-based end line (0 = same as Line)
	EndCol  int    // 1-based end column, exclusive (0 = auto-detect from source)
	Label   string // text shown under the underline
}

func (s Span) readPath() string {
	if s.Path != "" {
		return s.Path
	}
	return s.File
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code names the check that produced the diagnostic, e.g. a lint slug.
	Code    string
	Message string
	Spans   []Span
	Notes   []string
}
