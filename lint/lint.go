// Copyright © 2024 The Shelly authors

// Package lint turns the findings of a project analysis into diagnostics.
//
// Each lint is an independent Analyzer identified by a slug such as
// "unknown-functions".  Analyzers have a default level which can be
// overridden per lint and capped globally.  The framework runs the
// analyzers, applies levels and sorts the result.  Usages allowed by source
// comments never reach the lints; the analysis drops them.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/parser/token"
)

// Level is the severity of a lint.  Levels are ordered Allow < Warn < Deny.
type Level int

const (
	levelUnset Level = iota // unexported zero sentinel for default detection
	// Allow disables a lint.
	Allow
	// Warn reports findings without failing the run.
	Warn
	// Deny reports findings and fails the run.
	Deny
)

func (l Level) String() string {
	switch l {
	case Allow:
		return "allow"
	case Warn:
		return "warning"
	case Deny:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name as written on the command line or in a
// configuration file.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return Allow, nil
	case "warn", "warning":
		return Warn, nil
	case "deny", "error":
		return Deny, nil
	default:
		return levelUnset, fmt.Errorf("unknown lint level: %q", s)
	}
}

// MarshalJSON serializes the level as a JSON string.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON deserializes a level from a JSON string.
func (l *Level) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	lvl, err := ParseLevel(str)
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// Analyzer defines a single lint.
type Analyzer struct {
	// Name is the lint slug (e.g. "unknown-functions").
	Name string

	// Doc is a human-readable description.  The first line is a short
	// summary.
	Doc string

	// Level is the default level of the lint.
	Level Level

	// Run executes the check.  It should call pass.Report() for each
	// finding.
	Run func(pass *Pass) error
}

// Summary returns the first line of the analyzer's documentation.
func (a *Analyzer) Summary() string {
	doc, _, _ := strings.Cut(a.Doc, "\n")
	return doc
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Result holds the analyzed project.
	Result *analysis.Result

	level       Level
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	d.Level = p.level
	if d.Pos.File == "" {
		d.Pos.File = p.Result.Project.DisplayName(d.Path)
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.  A zero line means the
	// problem concerns the whole file.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the slug of the lint that found this problem.
	Analyzer string `json:"analyzer"`

	// Level is the effective level of the lint.
	Level Level `json:"level"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`

	// Path is the absolute path of the file.
	Path string `json:"-"`

	// Span is the reported source range.
	Span token.Span `json:"-"`
}

// WholeFile reports whether d concerns a file rather than a location in it.
func (d Diagnostic) WholeFile() bool {
	return d.Pos.Line == 0
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

func positionAt(loc token.Location) Position {
	return Position{Line: loc.Line, Col: loc.Col}
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic as a single line followed by its notes.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s (%s)", d.Pos, d.Level, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Config adjusts the levels of lints.
type Config struct {
	// Levels overrides the default level of lints by slug.
	Levels map[string]Level

	// Cap is the highest level any lint may have.  Unset means Deny.
	Cap Level
}

// LevelOf returns the effective level of an analyzer.
func (c *Config) LevelOf(a *Analyzer) Level {
	level := a.Level
	if c == nil {
		return level
	}
	if override, ok := c.Levels[a.Name]; ok && override != levelUnset {
		level = override
	}
	if c.Cap != levelUnset && level > c.Cap {
		level = c.Cap
	}
	return level
}

// Linter runs a set of analyzers over an analyzed project.
type Linter struct {
	Analyzers []*Analyzer
	Config    *Config
}

// Run executes every enabled analyzer and returns the sorted diagnostics.
func (l *Linter) Run(res *analysis.Result) ([]Diagnostic, error) {
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		level := l.Config.LevelOf(analyzer)
		if level <= Allow {
			continue
		}
		pass := &Pass{
			Analyzer: analyzer,
			Result:   res,
			level:    level,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("analyzer %s: %w", analyzer.Name, err)
		}
		all = append(all, pass.diagnostics...)
	}

	SortDiagnostics(all)
	return all, nil
}

// SortDiagnostics orders diagnostics by file, then position, then lint.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Col != b.Pos.Col {
			return a.Pos.Col < b.Pos.Col
		}
		return a.Analyzer < b.Analyzer
	})
}

// HasDenied reports whether any diagnostic is at level Deny.
func HasDenied(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == Deny {
			return true
		}
	}
	return false
}

// FormatText writes diagnostics one per line with their notes.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns every lint in a stable order.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerSyntaxErrors,
		AnalyzerNonexistingImports,
		AnalyzerUnrecognizedImports,
		AnalyzerUnknownFunctions,
		AnalyzerIndirectImports,
		AnalyzerInvalidLetterCasing,
		AnalyzerUnusedImports,
		AnalyzerNoStrictMode,
		AnalyzerInvalidTestnameCharacters,
	}
}

// Lookup returns the default analyzer with the given slug.
func Lookup(name string) (*Analyzer, bool) {
	for _, a := range DefaultAnalyzers() {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// AnalyzerNames returns the slugs of the default analyzers.
func AnalyzerNames() []string {
	var names []string
	for _, a := range DefaultAnalyzers() {
		names = append(names, a.Name)
	}
	return names
}

// AnalyzerDoc returns one line per default analyzer with its slug, default
// level and summary, for command help text.
func AnalyzerDoc() string {
	var sb strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&sb, "  %-28s %-8s %s\n", a.Name, a.Level, a.Summary())
	}
	return sb.String()
}
