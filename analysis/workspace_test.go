// Copyright © 2024 The Shelly authors

package analysis

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/shelly/parser"
)

func fileNames(p *Project) []string {
	var names []string
	for _, f := range p.Files {
		names = append(names, filepath.ToSlash(f.Name))
	}
	sort.Strings(names)
	return names
}

func TestLoadWorkspaceSkips(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"A.ps1":                  "function FunA {}\n",
		"sub/B.ps1":              "function FunB {}\n",
		"sub/notes.txt":          "not a script\n",
		".git/hooks/C.ps1":       "function FunC {}\n",
		"_Old_Tests/D.Tests.ps1": "function FunD {}\n",
		"vendor/E.ps1":           "function FunE {}\n",
		"gen/F.generated.ps1":    "function FunF {}\n",
	})
	p, err := LoadWorkspace(context.Background(), dir, &Config{
		Exclude: []string{"vendor", "**/*.generated.ps1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A.ps1", "sub/B.ps1"}, fileNames(p))
	assert.Empty(t, p.Problems)
}

func TestLoadWorkspaceExtensionCase(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"A.ps1":     "function FunA {}\n",
		"B.PS1":     "function FunB {}\n",
		"notes.txt": "function FunC {}\n",
	})
	p, err := LoadWorkspace(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.ps1", "B.PS1"}, fileNames(p))
	assert.True(t, IsSource("x/Y.Ps1"))
	assert.False(t, IsSource("x/Y.ps1.bak"))
}

func TestLoadWorkspaceNotDir(t *testing.T) {
	dir := writeProject(t, map[string]string{"A.ps1": ""})
	_, err := LoadWorkspace(context.Background(), filepath.Join(dir, "A.ps1"), nil)
	assert.Error(t, err)
	_, err = LoadWorkspace(context.Background(), filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

func TestLoadWorkspaceProblems(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"Syntax.ps1":  "function Foo {\n",
		"Missing.ps1": ". $PSScriptRoot\\Nope.ps1\nfunction FunM {}\n",
		"Weird.ps1":   ". $Somewhere\\Lib.ps1\n. $PSScriptRoot\\Lib.ps1\n. $PSScriptRoot/Lib.ps1\nfunction FunW {}\n",
		"Lib.ps1":     "function FunLib {}\n",
	})
	p, err := LoadWorkspace(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lib.ps1", "Weird.ps1"}, fileNames(p))

	byKind := map[ProblemKind][]*Problem{}
	for _, prob := range p.Problems {
		byKind[prob.Kind] = append(byKind[prob.Kind], prob)
	}
	require.Len(t, byKind[SyntaxError], 1)
	assert.Equal(t, "Syntax.ps1", byKind[SyntaxError][0].Name)

	require.Len(t, byKind[MissingImport], 1)
	missing := byKind[MissingImport][0]
	assert.Equal(t, "Missing.ps1", missing.Name)
	assert.Equal(t, "Nope.ps1", filepath.Base(missing.Target))
	assert.Equal(t, 1, missing.Span.Start.Line)

	require.Len(t, byKind[UnrecognizedImport], 1)
	assert.Equal(t, "$Somewhere\\Lib.ps1", byKind[UnrecognizedImport][0].Text)

	require.Len(t, byKind[DuplicateImport], 1)
	assert.Equal(t, 3, byKind[DuplicateImport][0].Span.Start.Line)

	weird := p.Files[filepath.Join(p.Root, "Weird.ps1")]
	require.NotNil(t, weird)
	assert.Len(t, weird.Imports, 1)
}

func TestLoadWorkspaceOverlay(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"A.ps1": "function FunA {}\n",
	})
	root, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	path := filepath.Join(root, "A.ps1")
	p, err := LoadWorkspace(context.Background(), dir, &Config{
		Overlay: map[string]string{path: "function FunB {}\nFunB\n"},
	})
	require.NoError(t, err)
	f := p.Files[path]
	require.NotNil(t, f)
	require.Len(t, f.Definitions, 1)
	assert.Equal(t, "FunB", f.Definitions[0].Name)
}

func TestLoadWorkspaceBOM(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"A.ps1": "\ufeffSet-StrictMode -Version Latest\n",
	})
	p, err := LoadWorkspace(context.Background(), dir, nil)
	require.NoError(t, err)
	for _, f := range p.Files {
		assert.Equal(t, "Set-StrictMode -Version Latest\n", f.Source)
		require.Len(t, f.Definitions, 1)
		assert.Equal(t, StrictModeItem, f.Definitions[0].Item)
	}
}

func TestHereSutTarget(t *testing.T) {
	assert.Equal(t, "Foo.ps1", HereSutTarget("Foo.Tests.ps1"))
	assert.Equal(t, "Foo.ps1", HereSutTarget("Foo.ps1"))
	assert.Equal(t, "A.B.Tests.ps1", HereSutTarget("A.Tests.B.Tests.ps1"))
}

func TestImportChain(t *testing.T) {
	p := NewProject("/r")
	p.Add(&Parsed{Path: "/r/a", Imports: map[string]parser.Import{"/r/b": {}, "/r/c": {}}})
	p.Add(&Parsed{Path: "/r/b", Imports: map[string]parser.Import{"/r/d": {}}})
	p.Add(&Parsed{Path: "/r/c", Imports: map[string]parser.Import{"/r/d": {}}})
	p.Add(&Parsed{Path: "/r/d"})
	assert.Equal(t, []string{"/r/a", "/r/b", "/r/d"}, p.ImportChain("/r/a", "/r/d"))
	assert.Equal(t, []string{"/r/a"}, p.ImportChain("/r/a", "/r/a"))
	assert.Nil(t, p.ImportChain("/r/d", "/r/a"))
	assert.Equal(t, "b", p.Files["/r/b"].Name)
	assert.Equal(t, map[string]bool{"/r/b": true, "/r/c": true, "/r/d": true}, p.Importers())
}
