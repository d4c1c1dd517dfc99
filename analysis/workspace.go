// Copyright © 2024 The Shelly authors

package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/luthersystems/shelly/parser"
	"github.com/luthersystems/shelly/parser/token"
)

// SourceExt is the extension of analyzed files.
const SourceExt = ".ps1"

// IsSource reports whether path has the source extension in any letter case.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SourceExt)
}

// oldTestsDir marks directories holding retired tests, which are not
// analyzed.
const oldTestsDir = "_Old_Tests"

// LoadWorkspace walks root, parsing every source file and resolving its
// imports.  Files with syntax errors or imports of missing files are left
// out of the project and recorded in Project.Problems instead.
func LoadWorkspace(ctx context.Context, root string, cfg *Config) (*Project, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	_, span := tracer().Start(ctx, "analysis.LoadWorkspace")
	defer span.End()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s: not a directory", absRoot)
	}
	absRoot = canonicalize(absRoot)
	excludes, err := compileGlobs(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	paths, err := findSources(absRoot, excludes, cfg.logger())
	if err != nil {
		return nil, err
	}

	l := &loader{
		project: NewProject(absRoot),
		overlay: cfg.Overlay,
		log:     cfg.logger(),
	}
	for _, path := range paths {
		l.load(path)
	}
	span.SetAttributes(
		attribute.Int("shelly.files", len(paths)),
		attribute.Int("shelly.problems", len(l.project.Problems)),
	)
	return l.project, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// findSources returns the source files under root in lexical order.
func findSources(root string, excludes []glob.Glob, log logrus.FieldLogger) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("Skipping unreadable path")
			return nil
		}
		if path == root {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		skip := strings.Contains(path, oldTestsDir) || excluded(excludes, filepath.ToSlash(rel))
		if d.IsDir() {
			if skip || shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if skip || !IsSource(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func excluded(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// shouldSkipDir returns true for hidden directories such as .git.
func shouldSkipDir(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

type loader struct {
	project *Project
	overlay map[string]string
	log     logrus.FieldLogger
}

func (l *loader) read(path string) (string, error) {
	if src, ok := l.overlay[path]; ok {
		return src, nil
	}
	b, err := os.ReadFile(path) //nolint:gosec // reads files found under the workspace root
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (l *loader) exists(path string) bool {
	if _, ok := l.overlay[path]; ok {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *loader) load(path string) {
	log := l.log.WithField("file", l.project.DisplayName(path))
	source, err := l.read(path)
	if err != nil {
		log.WithError(err).Warn("Skipping unreadable file")
		return
	}
	canonical := canonicalize(path)

	file, err := parser.Parse(source)
	if err != nil {
		var serr *token.Error
		if !errors.As(err, &serr) {
			log.WithError(err).Warn("Skipping file")
			return
		}
		l.project.Problems = append(l.project.Problems, &Problem{
			Kind: SyntaxError,
			Name: l.project.DisplayName(path),
			Path: path,
			Span: token.Span{Start: serr.Where, End: serr.Where},
			Text: serr.What,
		})
		log.WithField("error", serr.What).Debug("Syntax error")
		return
	}

	parsed := &Parsed{
		Path:        canonical,
		Name:        l.project.DisplayName(path),
		Source:      parser.StripBOM(source),
		Imports:     make(map[string]parser.Import),
		Definitions: file.Definitions,
		Usages:      file.Usages,
		Testcases:   file.Testcases,
	}
	if !l.resolveImports(parsed, path, file.Imports) {
		log.Info("Stopping analysis for this file because of import errors")
		return
	}
	enableStrictMode(parsed)
	l.project.Add(parsed)
	log.WithFields(logrus.Fields{
		"definitions": len(parsed.Definitions),
		"usages":      len(parsed.Usages),
		"imports":     len(parsed.Imports),
	}).Debug("Parsed file")
}

// resolveImports fills parsed.Imports.  It returns false when an import
// points at a file that does not exist.
func (l *loader) resolveImports(parsed *Parsed, path string, imports []parser.Import) bool {
	ok := true
	dir := filepath.Dir(path)
	for _, imp := range imports {
		problem := &Problem{Name: parsed.Name, Path: path, Span: imp.Span, Text: imp.Importee.String()}

		var target string
		switch imp.Importee.Kind {
		case parser.Relative:
			target = filepath.Join(dir, filepath.FromSlash(imp.Importee.Path))
		case parser.HereSut:
			target = filepath.Join(dir, HereSutTarget(filepath.Base(path)))
		default:
			problem.Kind = UnrecognizedImport
			l.project.Problems = append(l.project.Problems, problem)
			continue
		}

		if !l.exists(target) {
			problem.Kind = MissingImport
			problem.Target = target
			l.project.Problems = append(l.project.Problems, problem)
			ok = false
			continue
		}
		canonical := canonicalize(target)
		if _, dup := parsed.Imports[canonical]; dup {
			problem.Kind = DuplicateImport
			problem.Target = target
			l.project.Problems = append(l.project.Problems, problem)
			continue
		}
		parsed.Imports[canonical] = imp
	}
	return ok
}

// HereSutTarget returns the name of the file tested by the test file name.
func HereSutTarget(name string) string {
	return strings.Replace(name, ".Tests.", ".", 1)
}

// canonicalize resolves symlinks so that every file has a single identity.
// Paths that cannot be resolved are returned cleaned but otherwise as is.
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
