// Copyright © 2024 The Shelly authors

package lsp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/shelly/lint"
	"github.com/luthersystems/shelly/parser/token"
	"github.com/luthersystems/shelly/shellytest"
)

const (
	cleanA = ". $PSScriptRoot\\B.ps1\nSet-StrictMode -Version Latest\nfunction FunA1 {}\nFunA1\nFunB1\n"
	cleanB = "function FunB1 {}\n"
)

type notification struct {
	method string
	params any
}

// capturingContext returns a context that records every notification.
func capturingContext() (*glsp.Context, *[]notification) {
	var captured []notification
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			captured = append(captured, notification{method: method, params: params})
		},
	}
	return ctx, &captured
}

func published(ns []notification) []*protocol.PublishDiagnosticsParams {
	var out []*protocol.PublishDiagnosticsParams
	for _, n := range ns {
		if n.method == protocol.ServerTextDocumentPublishDiagnostics {
			out = append(out, n.params.(*protocol.PublishDiagnosticsParams))
		}
	}
	return out
}

// testWorkspace writes files to a fresh directory and returns a server
// rooted there.
func testWorkspace(t *testing.T, files map[string]string) (*Server, string) {
	t.Helper()
	dir := shellytest.WriteProject(t, files)
	s := New(WithRoot(dir), WithLogger(shellytest.NewLogrus(t)))
	s.exitFn = func(int) {}
	return s, s.rootPath
}

func uriOf(root, name string) string {
	return pathToURI(filepath.Join(root, name))
}

func TestLSPPosition(t *testing.T) {
	src := "héllo\n\U0001F600x"
	pos := lspPosition(src, token.Location{Byte: 3, Line: 1, Col: 3})
	assert.Equal(t, protocol.Position{Line: 0, Character: 2}, pos)

	pos = lspPosition(src, token.Location{Byte: 11, Line: 2, Col: 2})
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, pos, "surrogate pairs count twice")

	assert.Equal(t, protocol.Position{}, lspPosition(src, token.Location{}))
}

func TestContains(t *testing.T) {
	r := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 6},
	}
	assert.True(t, contains(r, protocol.Position{Line: 1, Character: 2}))
	assert.True(t, contains(r, protocol.Position{Line: 1, Character: 6}))
	assert.False(t, contains(r, protocol.Position{Line: 1, Character: 7}))
	assert.False(t, contains(r, protocol.Position{Line: 0, Character: 3}))
}

func TestURIConversion(t *testing.T) {
	uri := pathToURI("/tmp/my dir/A.ps1")
	assert.Equal(t, "file:///tmp/my%20dir/A.ps1", uri)
	assert.Equal(t, "/tmp/my dir/A.ps1", uriToPath(uri))
	assert.Equal(t, "untitled:1", uriToPath("untitled:1"))
}

func TestConvertDiagnostic(t *testing.T) {
	src := "Foo\n"
	d := lint.Diagnostic{
		Message:  "Not in scope: Foo",
		Analyzer: "unknown-functions",
		Level:    lint.Deny,
		Pos:      lint.Position{File: "A.ps1", Line: 1, Col: 1},
		Span: token.Span{
			Start: token.Location{Byte: 0, Line: 1, Col: 1},
			End:   token.Location{Byte: 3, Line: 1, Col: 4},
		},
	}
	got := convertDiagnostic(src, d)
	assert.Equal(t, protocol.DiagnosticSeverityError, *got.Severity)
	assert.Equal(t, "unknown-functions", got.Code.Value)
	assert.Equal(t, "shelly", *got.Source)
	assert.Equal(t, protocol.UInteger(3), got.Range.End.Character)

	whole := lint.Diagnostic{
		Message:  "Strict mode not enabled for this file",
		Analyzer: "no-strict-mode",
		Level:    lint.Warn,
		Notes:    []string{"a note"},
	}
	got = convertDiagnostic(src, whole)
	assert.Equal(t, protocol.Range{}, got.Range)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *got.Severity)
	assert.Equal(t, "Strict mode not enabled for this file\na note", got.Message)
}

func TestDocumentStore(t *testing.T) {
	docs := NewDocumentStore()
	docs.Open("file:///w/A.ps1", 1, "a")
	changed := docs.Change("file:///w/A.ps1", 2, "b")
	assert.Equal(t, int32(2), changed.Version)
	assert.Equal(t, map[string]string{canonicalize("/w/A.ps1"): "b"}, docs.Overlay())

	docs.Change("file:///w/B.ps1", 1, "c")
	require.Len(t, docs.All(), 2)
	docs.Close("file:///w/A.ps1")
	assert.Nil(t, docs.Get("file:///w/A.ps1"))
}

func TestPublishAndClear(t *testing.T) {
	s, root := testWorkspace(t, map[string]string{"A.ps1": cleanA, "B.ps1": cleanB})
	ctx, captured := capturingContext()
	uriA := uriOf(root, "A.ps1")

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uriA, LanguageID: "powershell", Version: 1, Text: cleanA + "Nope\n"},
	})
	require.NoError(t, err)

	pubs := published(*captured)
	require.Len(t, pubs, 1)
	assert.Equal(t, uriA, pubs[0].URI)
	require.Len(t, pubs[0].Diagnostics, 1)
	d := pubs[0].Diagnostics[0]
	assert.Equal(t, "Not in scope: Nope", d.Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 5, Character: 0},
		End:   protocol.Position{Line: 5, Character: 4},
	}, d.Range)

	*captured = nil
	s.docs.Change(uriA, 2, cleanA)
	require.NoError(t, s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uriA},
	}))
	pubs = published(*captured)
	require.Len(t, pubs, 1)
	assert.Equal(t, uriA, pubs[0].URI)
	assert.Empty(t, pubs[0].Diagnostics)
	assert.Empty(t, s.published)
}

func TestPublishSyntaxError(t *testing.T) {
	s, root := testWorkspace(t, map[string]string{"A.ps1": cleanA, "B.ps1": cleanB})
	ctx, captured := capturingContext()
	uriB := uriOf(root, "B.ps1")

	require.NoError(t, s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uriB, Version: 1, Text: "function FunB1 {\n"},
	}))
	var codes []any
	for _, p := range published(*captured) {
		if p.URI != uriB {
			continue
		}
		for _, d := range p.Diagnostics {
			codes = append(codes, d.Code.Value)
		}
	}
	assert.Contains(t, codes, "syntax-errors")
}

func TestCycleShowsMessage(t *testing.T) {
	s, _ := testWorkspace(t, map[string]string{
		"A.ps1": ". $PSScriptRoot\\B.ps1\n",
		"B.ps1": ". $PSScriptRoot\\A.ps1\n",
	})
	ctx, captured := capturingContext()
	s.captureNotify(ctx)
	s.analyzeAndPublish()

	require.Len(t, *captured, 1)
	n := (*captured)[0]
	assert.Equal(t, protocol.ServerWindowShowMessage, n.method)
	msg := n.params.(*protocol.ShowMessageParams)
	assert.Equal(t, protocol.MessageTypeError, msg.Type)
	assert.Contains(t, msg.Message, "recursive import of")
}

func TestDocumentSymbols(t *testing.T) {
	s, root := testWorkspace(t, map[string]string{"A.ps1": cleanA, "B.ps1": cleanB})
	result, err := s.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uriOf(root, "A.ps1")},
	})
	require.NoError(t, err)
	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok, "got %T", result)
	require.Len(t, symbols, 1)
	assert.Equal(t, "FunA1", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindFunction, symbols[0].Kind)
	assert.Equal(t, protocol.UInteger(2), symbols[0].Range.Start.Line)
}

func TestDefinition(t *testing.T) {
	s, root := testWorkspace(t, map[string]string{"A.ps1": cleanA, "B.ps1": cleanB})
	s.analyzeAndPublish()
	require.NotNil(t, s.result)

	result, err := s.textDocumentDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uriOf(root, "A.ps1")},
			Position:     protocol.Position{Line: 4, Character: 2},
		},
	})
	require.NoError(t, err)
	loc, ok := result.(protocol.Location)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, uriOf(root, "B.ps1"), loc.URI)
	assert.Equal(t, protocol.UInteger(0), loc.Range.Start.Line)

	result, err = s.textDocumentDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uriOf(root, "A.ps1")},
			Position:     protocol.Position{Line: 1, Character: 30},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestInitializeUsesRootURI(t *testing.T) {
	dir := t.TempDir()
	s := New()
	ctx, _ := capturingContext()
	rootURI := pathToURI(dir)
	result, err := s.initialize(ctx, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	initResult, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, initResult.ServerInfo.Name)
	assert.Equal(t, canonicalize(dir), s.rootPath)
}
