// Copyright © 2024 The Shelly authors

package analysis

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/shelly/parser"
)

func def(name string) parser.Definition {
	return parser.Definition{Item: parser.Item{Name: name, Kind: parser.Function}}
}

func imports(paths ...string) map[string]parser.Import {
	m := make(map[string]parser.Import, len(paths))
	for _, p := range paths {
		m[p] = parser.Import{}
	}
	return m
}

func TestScopePrecedence(t *testing.T) {
	p := NewProject("/r")
	// a imports b and c.  b defines Foo itself while c only forwards
	// the Foo of d.
	p.Add(&Parsed{Path: "/r/a", Imports: imports("/r/c", "/r/b"), Definitions: []parser.Definition{def("Own")}})
	p.Add(&Parsed{Path: "/r/b", Definitions: []parser.Definition{def("Foo")}})
	p.Add(&Parsed{Path: "/r/c", Imports: imports("/r/d")})
	p.Add(&Parsed{Path: "/r/d", Imports: imports("/r/e"), Definitions: []parser.Definition{def("FOO"), def("own")}})
	p.Add(&Parsed{Path: "/r/e", Definitions: []parser.Definition{def("Deep")}})

	scopes, err := ComputeScopes(context.Background(), p, nil)
	require.NoError(t, err)
	require.Len(t, scopes, 5)

	a := scopes["/r/a"]
	o, ok := a.Lookup(parser.Item{Name: "foo"})
	require.True(t, ok)
	assert.Equal(t, "/r/b", o.File)
	o, ok = a.Lookup(parser.Item{Name: "OWN"})
	require.True(t, ok)
	assert.Equal(t, "/r/a", o.File)
	o, ok = a.Lookup(parser.Item{Name: "deep"})
	require.True(t, ok)
	assert.Equal(t, "/r/e", o.File)
	assert.False(t, a.Has(parser.Item{Name: "Deep", Kind: parser.Class}))
	assert.Equal(t, map[string]bool{"/r/b": true, "/r/c": true}, a.Direct)

	o, _ = scopes["/r/c"].Lookup(parser.Item{Name: "foo"})
	assert.Equal(t, "/r/d", o.File)
}

func TestScopeSkipsAbsentImports(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewProject("/r")
	p.Add(&Parsed{Path: "/r/a", Imports: imports("/r/gone")})
	scopes, err := ComputeScopes(context.Background(), p, &Config{Logger: logger})
	require.NoError(t, err)
	assert.Empty(t, scopes["/r/a"].Direct)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Skipping import of file missing from the project", entry.Message)
	assert.Equal(t, "gone", entry.Data["import"])
}

func TestScopeCycle(t *testing.T) {
	p := NewProject("/r")
	p.Add(&Parsed{Path: "/r/a", Imports: imports("/r/b")})
	p.Add(&Parsed{Path: "/r/b", Imports: imports("/r/c")})
	p.Add(&Parsed{Path: "/r/c", Imports: imports("/r/a")})
	_, err := ComputeScopes(context.Background(), p, nil)
	require.Error(t, err)
	assert.Equal(t, "recursive import of a", err.Error())
}

func TestNameSet(t *testing.T) {
	s := ParseNameList("Foo-Bar\n  baz\tQUUX ")
	assert.True(t, s.Contains("foo-bar"))
	assert.True(t, s.Contains("Baz"))
	assert.False(t, s.Contains("other"))
	assert.Equal(t, []string{"baz", "foo-bar", "quux"}, s.Names())

	var empty NameSet
	assert.False(t, empty.Contains("x"))

	b := DefaultBuiltins()
	assert.True(t, b.Contains("write-host"))
	assert.True(t, b.Contains("Describe"))
	assert.True(t, b.Contains("Set-StrictMode"))
}
