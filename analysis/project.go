// Copyright © 2024 The Shelly authors

package analysis

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/luthersystems/shelly/parser"
	"github.com/luthersystems/shelly/parser/token"
)

// Parsed is a successfully parsed file whose imports all resolved.
type Parsed struct {
	// Path is the canonical absolute path of the file.
	Path string
	// Name is the path used when reporting, relative to the project root
	// when possible.
	Name string
	// Source is the file text with any byte order mark removed.
	Source string

	// Imports maps the canonical path of each imported file to the line
	// importing it.
	Imports     map[string]parser.Import
	Definitions []parser.Definition
	Usages      []parser.Usage
	Testcases   []parser.Testcase
}

// IsImportBag reports whether p defines no functions or classes of its own.
// Such files exist only to re-export the files they import.
func (p *Parsed) IsImportBag() bool {
	for _, d := range p.Definitions {
		if d.Kind == parser.Function || d.Kind == parser.Class {
			return false
		}
	}
	return true
}

// ImportPaths returns the canonical paths imported by p in sorted order.
func (p *Parsed) ImportPaths() []string {
	paths := make([]string, 0, len(p.Imports))
	for path := range p.Imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ProblemKind classifies a problem found while loading a project.
type ProblemKind uint8

const (
	// SyntaxError means the file could not be tokenized.
	SyntaxError ProblemKind = iota
	// UnrecognizedImport is a dot-import in an unsupported form.
	UnrecognizedImport
	// DuplicateImport imports a file already imported by the same file.
	DuplicateImport
	// MissingImport points at a file that does not exist.
	MissingImport
)

func (k ProblemKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnrecognizedImport:
		return "unrecognized import"
	case DuplicateImport:
		return "duplicate import"
	case MissingImport:
		return "missing import"
	default:
		return "invalid"
	}
}

// Problem is an issue that prevents part of a file from being analyzed.
type Problem struct {
	Kind ProblemKind
	// Name is the reporting path of the file containing the problem.
	Name string
	// Path is the absolute path of that file.
	Path string
	Span token.Span
	// Text is the syntax error message or the raw import target.
	Text string
	// Target is the resolved path of a missing or duplicated import.
	Target string
}

// Project is every analyzable file found under a root directory.
type Project struct {
	Root     string
	Files    map[string]*Parsed
	Problems []*Problem
}

// NewProject returns an empty project rooted at root.
func NewProject(root string) *Project {
	return &Project{Root: root, Files: make(map[string]*Parsed)}
}

// Add inserts a parsed file into the project.
func (p *Project) Add(file *Parsed) {
	if file.Name == "" {
		file.Name = p.DisplayName(file.Path)
	}
	p.Files[file.Path] = file
}

// Paths returns the canonical paths of all files in sorted order.
func (p *Project) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for path := range p.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// DisplayName returns path relative to the project root, or path itself when
// it lies outside the root.
func (p *Project) DisplayName(path string) string {
	if p.Root == "" {
		return path
	}
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// Importers returns the set of files imported by at least one other file.
func (p *Project) Importers() map[string]bool {
	imported := make(map[string]bool)
	for _, f := range p.Files {
		for path := range f.Imports {
			imported[path] = true
		}
	}
	return imported
}

// ImportChain returns the shortest chain of imports leading from one file
// to another, including both ends, or nil when there is none.
func (p *Project) ImportChain(from, to string) []string {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			var chain []string
			for n := to; n != ""; n = prev[n] {
				chain = append([]string{n}, chain...)
			}
			return chain
		}
		f, ok := p.Files[cur]
		if !ok {
			continue
		}
		for _, next := range f.ImportPaths() {
			if _, seen := prev[next]; !seen {
				prev[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil
}
