// Copyright © 2024 The Shelly authors

package cmd

import (
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/diagnostic"
	"github.com/luthersystems/shelly/lint"
)

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString("color"))
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     ld.Analyzer,
		Message:  ld.Message,
		Notes:    ld.Notes,
	}
	if ld.Level == lint.Deny {
		d.Severity = diagnostic.SeverityError
	}
	span := diagnostic.Span{File: ld.Pos.File, Path: ld.Path}
	if !ld.WholeFile() {
		span.Line = ld.Span.Start.Line
		span.Col = ld.Span.Start.Col
		span.EndLine = ld.Span.End.Line
		span.EndCol = ld.Span.End.Col
	}
	d.Spans = append(d.Spans, span)
	return d
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting.
func renderLintDiagnostics(w io.Writer, project *analysis.Project, diags []lint.Diagnostic) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	r := &diagnostic.Renderer{
		Color:        colorMode(),
		SourceReader: projectSource(project),
	}
	return r.RenderAll(w, ds)
}

// projectSource reads the sources the analysis saw, falling back to the
// disk for files that did not make it into the project.
func projectSource(project *analysis.Project) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		if project != nil {
			if f, ok := project.Files[path]; ok {
				return []byte(f.Source), nil
			}
		}
		return os.ReadFile(path) //nolint:gosec // reads analyzed source files for display
	}
}
