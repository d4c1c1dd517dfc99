// Copyright © 2024 The Shelly authors

package analysis

import (
	"github.com/luthersystems/shelly/parser"
)

// IndirectUse is a usage satisfied by a file the using file does not import
// itself.
type IndirectUse struct {
	Usage  parser.Usage
	Origin Origin
	// Chain is the import path from the using file to the defining file.
	Chain []string
	// Via holds the direct imports through which the definition is
	// visible.
	Via []string
	// Credited holds the direct imports counted as used because of this
	// usage.
	Credited []string
	// Suggest is the file that should be imported directly.  It is empty
	// when the definition arrives through an import bag.
	Suggest string
}

// CasingMismatch is a usage spelled differently from its definition.
type CasingMismatch struct {
	Usage  parser.Usage
	Origin Origin
}

// UnusedImport is a direct import that satisfies none of a file's usages.
type UnusedImport struct {
	// Path is the canonical path of the imported file.
	Path   string
	Import parser.Import
}

// FileResult holds the findings for one file.  Each list keeps only the
// first reported usage of a given name.
type FileResult struct {
	File             *Parsed
	Unknown          []parser.Usage
	Indirect         []IndirectUse
	Casing           []CasingMismatch
	UnusedImports    []UnusedImport
	NoStrictMode     bool
	InvalidTestcases []InvalidTestcase
}

// Empty reports whether r holds no findings.
func (r *FileResult) Empty() bool {
	return len(r.Unknown) == 0 &&
		len(r.Indirect) == 0 &&
		len(r.Casing) == 0 &&
		len(r.UnusedImports) == 0 &&
		!r.NoStrictMode &&
		len(r.InvalidTestcases) == 0
}

// Result is the outcome of analyzing a project.
type Result struct {
	Project *Project
	Scopes  map[string]*Scope
	// Files holds one result per project file, sorted by path.
	Files []*FileResult
}

// File returns the result for the file with the given canonical path.
func (r *Result) File(path string) *FileResult {
	for _, fr := range r.Files {
		if fr.File.Path == path {
			return fr
		}
	}
	return nil
}

// Resolve checks every usage in the project against the scope of its file.
// Builtin and extra commands are never looked up, even when the project
// defines a command of the same name.  A usage whose line carries an allow
// comment naming the command or the lint is not reported, and does not hide
// later usages of the same name.
func Resolve(p *Project, scopes map[string]*Scope, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	res := &Result{Project: p, Scopes: scopes}
	importers := p.Importers()
	for _, path := range p.Paths() {
		r := &resolver{
			project:  p,
			scopes:   scopes,
			cfg:      cfg,
			file:     p.Files[path],
			scope:    scopes[path],
			entry:    !importers[path],
			credited: make(map[string]bool),
		}
		fr := r.resolve()
		fr.NoStrictMode = r.entry && !r.scope.Has(StrictModeItem)
		fr.InvalidTestcases = checkTestcases(r.file)
		res.Files = append(res.Files, fr)
	}
	return res
}

type resolver struct {
	project *Project
	scopes  map[string]*Scope
	cfg     *Config
	file    *Parsed
	scope   *Scope
	// entry is set for files no other file imports.
	entry    bool
	credited map[string]bool
}

func (r *resolver) resolve() *FileResult {
	fr := &FileResult{File: r.file}
	seenUnknown := make(map[parser.Key]bool)
	seenIndirect := make(map[parser.Key]bool)
	seenCasing := make(map[parser.Key]bool)
	for _, u := range r.file.Usages {
		if u.Kind != parser.Class && r.cfg.isKnownCommand(u.Name) {
			continue
		}
		key := u.Key()
		origin, ok := r.scope.Lookup(u.Item)
		if !ok {
			if u.Kind == parser.Class || seenUnknown[key] || r.allowed(u, LintUnknownFunctions) {
				continue
			}
			seenUnknown[key] = true
			fr.Unknown = append(fr.Unknown, u)
			continue
		}
		if origin.Definition.Name != u.Name && !seenCasing[key] && !r.allowed(u, LintInvalidLetterCasing) {
			seenCasing[key] = true
			fr.Casing = append(fr.Casing, CasingMismatch{Usage: u, Origin: origin})
		}
		if origin.File == r.file.Path {
			continue
		}
		if r.scope.Direct[origin.File] {
			r.credited[origin.File] = true
			continue
		}
		ind := r.indirect(u, origin)
		if !seenIndirect[key] && !r.allowed(u, LintIndirectImports) {
			seenIndirect[key] = true
			fr.Indirect = append(fr.Indirect, ind)
		}
	}
	r.creditStrictMode()
	if !r.file.IsImportBag() {
		for _, path := range r.file.ImportPaths() {
			if !r.scope.Direct[path] || r.credited[path] {
				continue
			}
			fr.UnusedImports = append(fr.UnusedImports, UnusedImport{Path: path, Import: r.file.Imports[path]})
		}
	}
	return fr
}

func (r *resolver) allowed(u parser.Usage, lint string) bool {
	line := LineAt(r.file.Source, u.Span.Start)
	return AllowComment(line, u.Name) || AllowComment(line, lint)
}

// creditStrictMode credits the import through which an entry script gets
// strict mode, as a usage credits the import defining it.
func (r *resolver) creditStrictMode() {
	origin, ok := r.scope.Lookup(StrictModeItem)
	if !r.entry || !ok || origin.File == r.file.Path {
		return
	}
	if r.scope.Direct[origin.File] {
		r.credited[origin.File] = true
		return
	}
	via, bags := r.forwarders(StrictModeItem.Key(), origin)
	switch {
	case len(bags) > 0:
		for _, path := range bags {
			r.credited[path] = true
		}
	case len(via) > 0:
		r.credited[r.nearest(via, origin.File)] = true
	}
}

// forwarders returns the direct imports through which origin is visible
// under key, and the subset of them that are import bags.
func (r *resolver) forwarders(key parser.Key, origin Origin) (via, bags []string) {
	for _, path := range r.file.ImportPaths() {
		dep, ok := r.scopes[path]
		if !ok || !r.scope.Direct[path] {
			continue
		}
		if o, ok := dep.Items[key]; ok && o.File == origin.File {
			via = append(via, path)
			if r.project.Files[path].IsImportBag() {
				bags = append(bags, path)
			}
		}
	}
	return via, bags
}

// indirect credits the direct imports that forward an indirectly visible
// definition.  When any of them is an import bag every such bag is credited
// and no direct import is suggested.  Otherwise the import closest to the
// definition is credited and the defining file is suggested.
func (r *resolver) indirect(u parser.Usage, origin Origin) IndirectUse {
	ind := IndirectUse{Usage: u, Origin: origin}
	var bags []string
	ind.Via, bags = r.forwarders(u.Key(), origin)
	switch {
	case len(bags) > 0:
		ind.Credited = bags
	case len(ind.Via) > 0:
		ind.Credited = []string{r.nearest(ind.Via, origin.File)}
		ind.Suggest = origin.File
	default:
		ind.Suggest = origin.File
	}
	for _, path := range ind.Credited {
		r.credited[path] = true
	}
	if len(ind.Credited) > 0 {
		ind.Chain = append([]string{r.file.Path}, r.project.ImportChain(ind.Credited[0], origin.File)...)
	} else {
		ind.Chain = r.project.ImportChain(r.file.Path, origin.File)
	}
	return ind
}

// nearest returns the candidate with the shortest import chain to target.
// Candidates are sorted, so ties go to the first in path order.
func (r *resolver) nearest(candidates []string, target string) string {
	best, bestLen := candidates[0], -1
	for _, c := range candidates {
		n := len(r.project.ImportChain(c, target))
		if n == 0 {
			continue
		}
		if bestLen < 0 || n < bestLen {
			best, bestLen = c, n
		}
	}
	return best
}
