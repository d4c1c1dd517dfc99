// Copyright © 2024 The Shelly authors

package analysis

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/luthersystems/shelly/parser"
)

// Origin is the definition satisfying an item visible in a scope.
type Origin struct {
	// File is the canonical path of the defining file.
	File       string
	Definition parser.Definition
}

// Scope is the set of items visible in a file: its own definitions plus
// every definition reachable through its imports.
type Scope struct {
	File  string
	Items map[parser.Key]Origin
	// Direct holds the files imported by File itself.
	Direct map[string]bool
}

// NewScope creates an empty scope for file.
func NewScope(file string) *Scope {
	return &Scope{
		File:   file,
		Items:  make(map[parser.Key]Origin),
		Direct: make(map[string]bool),
	}
}

// Define makes an item visible unless an item with the same key already is.
// Callers define closer items first.
func (s *Scope) Define(key parser.Key, origin Origin) {
	if _, ok := s.Items[key]; !ok {
		s.Items[key] = origin
	}
}

// Lookup resolves an item case-insensitively.
func (s *Scope) Lookup(it parser.Item) (Origin, bool) {
	o, ok := s.Items[it.Key()]
	return o, ok
}

// Has reports whether an item is visible in s.
func (s *Scope) Has(it parser.Item) bool {
	_, ok := s.Lookup(it)
	return ok
}

func (s *Scope) sortedKeys() []parser.Key {
	keys := make([]parser.Key, 0, len(s.Items))
	for k := range s.Items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return !keys[i].Class && keys[j].Class
	})
	return keys
}

// CycleError is returned when files import each other.  No scope can be
// computed for a project containing a cycle.
type CycleError struct {
	// File is the canonical path of the file imported recursively.
	File string
	// Name is its reporting name.
	Name string
}

func (e *CycleError) Error() string {
	return "recursive import of " + e.Name
}

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

type scopeBuilder struct {
	project *Project
	log     logrus.FieldLogger
	state   map[string]visitState
	scopes  map[string]*Scope
}

// ComputeScopes computes the scope of every file in the project.  Each
// scope is computed once however many files import it.  Imports of files
// missing from the project, such as files with syntax errors, are skipped.
func ComputeScopes(ctx context.Context, p *Project, cfg *Config) (map[string]*Scope, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	_, span := tracer().Start(ctx, "analysis.ComputeScopes")
	defer span.End()

	b := &scopeBuilder{
		project: p,
		log:     cfg.logger(),
		state:   make(map[string]visitState, len(p.Files)),
		scopes:  make(map[string]*Scope, len(p.Files)),
	}
	for _, path := range p.Paths() {
		if _, err := b.visit(path); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	span.SetAttributes(attribute.Int("shelly.scopes", len(b.scopes)))
	return b.scopes, nil
}

func (b *scopeBuilder) visit(path string) (*Scope, error) {
	switch b.state[path] {
	case done:
		return b.scopes[path], nil
	case inProgress:
		return nil, &CycleError{File: path, Name: b.project.DisplayName(path)}
	}
	b.state[path] = inProgress

	file := b.project.Files[path]
	scope := NewScope(path)
	for _, def := range file.Definitions {
		scope.Define(def.Key(), Origin{File: path, Definition: def})
	}

	var deps []*Scope
	for _, imp := range file.ImportPaths() {
		if _, ok := b.project.Files[imp]; !ok {
			b.log.WithFields(logrus.Fields{
				"file":   b.project.DisplayName(path),
				"import": b.project.DisplayName(imp),
			}).Warn("Skipping import of file missing from the project")
			continue
		}
		dep, err := b.visit(imp)
		if err != nil {
			return nil, err
		}
		scope.Direct[imp] = true
		deps = append(deps, dep)
	}
	for _, dep := range deps {
		for _, def := range b.project.Files[dep.File].Definitions {
			scope.Define(def.Key(), Origin{File: dep.File, Definition: def})
		}
	}
	for _, dep := range deps {
		for _, key := range dep.sortedKeys() {
			scope.Define(key, dep.Items[key])
		}
	}

	b.state[path] = done
	b.scopes[path] = scope
	return scope, nil
}
