// Copyright © 2024 The Shelly authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, errors.New("not found: " + name)
			}
			return []byte(s), nil
		},
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"/abs/A.ps1": "Set-StrictMode\nInvoke-Foo -Bar 1\n",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "unknown-functions",
		Message:  "Not in scope: Invoke-Foo",
		Spans: []Span{
			{File: "A.ps1", Path: "/abs/A.ps1", Line: 2, Col: 1, EndCol: 11, Label: "not defined"},
		},
	})
	assert.Equal(t, strings.Join([]string{
		"error[unknown-functions]: Not in scope: Invoke-Foo",
		"  --> A.ps1:2:1",
		"   |",
		" 2 |  Invoke-Foo -Bar 1",
		"   |  ^^^^^^^^^^ not defined",
		"   |",
		"",
	}, "\n"), got)
}

func TestRenderWarningWithNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"A.ps1": "\ufeff. $PSScriptRoot\\B.ps1\n",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "Unused import",
		Spans:    []Span{{File: "A.ps1", Line: 1, Col: 1, EndCol: 22}},
		Notes:    []string{"Nothing defined in B.ps1 is used"},
	})
	assert.Contains(t, got, "warning: Unused import")
	assert.Contains(t, got, " 1 |  . $PSScriptRoot\\B.ps1\n")
	assert.Contains(t, got, "  "+strings.Repeat("^", 21)+"\n")
	assert.Contains(t, got, "= note: Nothing defined in B.ps1 is used")
}

func TestRenderWholeFile(t *testing.T) {
	r := testRenderer(map[string]string{"A.ps1": "x\n"})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "Strict mode not enabled for this file",
		Spans:    []Span{{File: "A.ps1"}},
	})
	assert.Contains(t, got, "--> A.ps1\n")
	assert.NotContains(t, got, "^")
}

func TestRenderNoSource(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "gone.ps1", Line: 5, Col: 3}},
	})
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> gone.ps1:5:3")
	assert.NotContains(t, got, "^")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{"A.ps1": "$x = Get-Thing($y)"})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "Not in scope: Get-Thing",
		Spans:    []Span{{File: "A.ps1", Line: 1, Col: 6}},
	})
	assert.Contains(t, got, "       ^^^^^^^^^\n")
}

func TestRenderMultiLineSpan(t *testing.T) {
	r := testRenderer(map[string]string{"A.ps1": "\tfoo bar\nbaz\n"})
	got := render(t, r, Diagnostic{
		Severity: SeverityNote,
		Message:  "spans lines",
		Spans:    []Span{{File: "A.ps1", Line: 1, Col: 2, EndLine: 2, EndCol: 2}},
	})
	assert.Contains(t, got, "note: spans lines")
	assert.Contains(t, got, "  |      ^^^^^^^\n")
}

func TestRenderUnicodeColumns(t *testing.T) {
	r := testRenderer(map[string]string{"A.ps1": "\"ü\" | Foo"})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "Not in scope: Foo",
		Spans:    []Span{{File: "A.ps1", Line: 1, Col: 7, EndCol: 10}},
	})
	assert.Contains(t, got, " |        ^^^\n")
}

func TestRenderAll(t *testing.T) {
	diags := []Diagnostic{
		{Severity: SeverityWarning, Message: "first"},
		{Severity: SeverityError, Message: "second"},
	}
	var buf bytes.Buffer
	require.NoError(t, testRenderer(nil).RenderAll(&buf, diags))
	assert.Equal(t, "warning: first\n\nerror: second\n", buf.String())
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityError, Message: "boom"})
	assert.Equal(t, "\033[1;31merror\033[0m: \033[1mboom\033[0m\n", got)
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "Always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, strings.ToLower(in), got.String())
		}
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
	assert.False(t, ColorNever.Enabled(nil))
	assert.True(t, ColorAlways.Enabled(nil))
}
