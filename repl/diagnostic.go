// Copyright © 2024 The Shelly authors

package repl

import (
	"errors"
	"io"

	"github.com/luthersystems/shelly/diagnostic"
	"github.com/luthersystems/shelly/parser/token"
)

const stdinName = "<stdin>"

// renderError renders a tokenizer error against the line it occurred in.
func renderError(w io.Writer, source string, err error, color bool) error {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Code:     "syntax-errors",
		Message:  "Syntax error",
	}
	var terr *token.Error
	if errors.As(err, &terr) {
		d.Message = "Syntax error: " + terr.What
		d.Spans = append(d.Spans, diagnostic.Span{
			File: stdinName,
			Line: terr.Where.Line,
			Col:  terr.Where.Col,
		})
	} else {
		d.Notes = append(d.Notes, err.Error())
	}
	mode := diagnostic.ColorNever
	if color {
		mode = diagnostic.ColorAlways
	}
	r := &diagnostic.Renderer{
		Color: mode,
		SourceReader: func(string) ([]byte, error) {
			return []byte(source), nil
		},
	}
	return r.Render(w, d)
}
