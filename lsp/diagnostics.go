// Copyright © 2024 The Shelly authors

package lsp

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/config"
	"github.com/luthersystems/shelly/lint"
	"github.com/luthersystems/shelly/parser"
)

const diagnosticSource = "shelly"

// scheduleAnalysis runs analysis after the debounce delay.  Each call
// restarts the delay, so a burst of edits triggers a single run.
func (s *Server) scheduleAnalysis() {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.delay, s.analyzeAndPublish)
}

// analyzeAndPublish analyzes the workspace with the open documents overlaid
// and publishes diagnostics for every affected file.
func (s *Server) analyzeAndPublish() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.rootPath == "" {
		return
	}
	diags, res, err := s.analyze()
	if err != nil {
		var cycle *analysis.CycleError
		if errors.As(err, &cycle) {
			s.log.WithError(err).WithField("file", cycle.File).Warn("Import cycle")
		} else {
			s.log.WithError(err).Error("Analysis failed")
		}
		s.showMessage(protocol.MessageTypeError, "shelly: "+err.Error())
		return
	}
	s.result = res
	s.publish(diags)
}

func (s *Server) analyze() ([]lint.Diagnostic, *analysis.Result, error) {
	file, err := config.LoadDir(s.rootPath)
	if err != nil {
		return nil, nil, err
	}
	lintConfig, err := file.LintConfig()
	if err != nil {
		return nil, nil, err
	}
	res, err := analysis.Analyze(context.Background(), s.rootPath, &analysis.Config{
		Extras:  file.ExtraCommands(),
		Exclude: file.Exclude,
		Overlay: s.docs.Overlay(),
		Logger:  s.log,
	})
	if err != nil {
		return nil, nil, err
	}
	linter := &lint.Linter{Analyzers: lint.DefaultAnalyzers(), Config: lintConfig}
	diags, err := linter.Run(res)
	if err != nil {
		return nil, nil, err
	}
	return diags, res, nil
}

// publish sends the diagnostics grouped by file.  Files which had
// diagnostics in the previous run but have none now are cleared.
func (s *Server) publish(diags []lint.Diagnostic) {
	byURI := make(map[string][]protocol.Diagnostic)
	sources := make(map[string]string)
	for _, d := range diags {
		uri := pathToURI(d.Path)
		src, ok := sources[d.Path]
		if !ok {
			src = s.sourceFor(d.Path)
			sources[d.Path] = src
		}
		byURI[uri] = append(byURI[uri], convertDiagnostic(src, d))
	}
	for uri := range s.published {
		if _, ok := byURI[uri]; !ok {
			byURI[uri] = []protocol.Diagnostic{}
		}
	}

	uris := make([]string, 0, len(byURI))
	for uri := range byURI {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	published := make(map[string]bool, len(uris))
	for _, uri := range uris {
		if len(byURI[uri]) > 0 {
			published[uri] = true
		}
		s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: byURI[uri],
		})
	}
	s.published = published
}

// sourceFor returns the text diagnostics positions refer to.  Files that
// did not make it into the project are read from the open documents or
// the disk.
func (s *Server) sourceFor(path string) string {
	if s.result != nil {
		if f, ok := s.result.Project.Files[path]; ok {
			return f.Source
		}
	}
	if doc := s.docs.Get(pathToURI(path)); doc != nil {
		return parser.StripBOM(doc.Content)
	}
	for _, doc := range s.docs.All() {
		if doc.Path == path {
			return parser.StripBOM(doc.Content)
		}
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the analyzed workspace
	if err != nil {
		return ""
	}
	return parser.StripBOM(string(data))
}

// convertDiagnostic converts a lint diagnostic to an LSP diagnostic.
func convertDiagnostic(source string, d lint.Diagnostic) protocol.Diagnostic {
	var rng protocol.Range
	if !d.WholeFile() {
		rng = lspRange(source, d.Span)
	}
	severity := protocol.DiagnosticSeverityWarning
	if d.Level == lint.Deny {
		severity = protocol.DiagnosticSeverityError
	}
	msg := d.Message
	if len(d.Notes) > 0 {
		msg += "\n" + strings.Join(d.Notes, "\n")
	}
	return protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  msg,
	}
}
