// Copyright © 2024 The Shelly authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/shelly/parser"
)

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	s.docs.Open(params.TextDocument.URI, int32(params.TextDocument.Version), params.TextDocument.Text)
	s.analyzeAndPublish()
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}
	s.docs.Change(params.TextDocument.URI, int32(params.TextDocument.Version), content)
	s.scheduleAnalysis()
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, _ *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.analyzeAndPublish()
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.captureNotify(ctx)
	s.docs.Close(params.TextDocument.URI)
	s.analyzeAndPublish()
	return nil
}

// textDocumentDocumentSymbol lists the functions and classes defined in a
// document.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	source, ok := s.documentSource(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	f, err := parser.Parse(source)
	if err != nil {
		return []protocol.DocumentSymbol{}, nil
	}
	source = parser.StripBOM(source)
	symbols := make([]protocol.DocumentSymbol, 0, len(f.Definitions))
	for _, d := range f.Definitions {
		kind := protocol.SymbolKindFunction
		if d.Kind == parser.Class {
			kind = protocol.SymbolKindClass
		}
		rng := lspRange(source, d.Span)
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           d.Name,
			Detail:         strPtr(d.Kind.String()),
			Kind:           kind,
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return symbols, nil
}

// textDocumentDefinition jumps from a function or class usage to the
// definition that is in scope for the document.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.result == nil {
		return nil, nil
	}
	path := canonicalize(uriToPath(params.TextDocument.URI))
	file, ok := s.result.Project.Files[path]
	if !ok {
		return nil, nil
	}
	scope, ok := s.result.Scopes[path]
	if !ok {
		return nil, nil
	}
	for _, u := range file.Usages {
		if !contains(lspRange(file.Source, u.Span), params.Position) {
			continue
		}
		origin, ok := scope.Lookup(u.Item)
		if !ok {
			return nil, nil
		}
		target, ok := s.result.Project.Files[origin.File]
		if !ok {
			return nil, nil
		}
		return protocol.Location{
			URI:   pathToURI(origin.File),
			Range: lspRange(target.Source, origin.Definition.Span),
		}, nil
	}
	return nil, nil
}

// documentSource returns the text of an open document or of the file on
// disk.
func (s *Server) documentSource(uri string) (string, bool) {
	if doc := s.docs.Get(uri); doc != nil {
		return doc.Content, true
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	src := s.sourceFor(canonicalize(uriToPath(uri)))
	return src, src != ""
}
