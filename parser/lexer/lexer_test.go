// Copyright © 2024 The Shelly authors

package lexer

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/shelly/parser/token"
)

func kinds(trees []Tree) []Kind {
	ks := make([]Kind, len(trees))
	for i, t := range trees {
		ks[i] = t.Kind
	}
	return ks
}

func TestParens(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"()()()", true},
		{"()[]{}", true},
		{"([{}])", true},
		{"(()", false},
		{"())", false},
		{"(][)", false},
	}
	for _, test := range tests {
		_, err := Parse(test.input)
		if test.ok {
			assert.NoError(t, err, test.input)
		} else {
			assert.Error(t, err, test.input)
		}
	}
}

func TestDelimiterErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
		loc   token.Location
	}{
		{"())", "Unexpected closing `)`", token.Location{Byte: 2, Line: 1, Col: 3}},
		{"(]", "Expected `)`, but found `]`", token.Location{Byte: 1, Line: 1, Col: 2}},
		{"{\n(", "Expected `)`, but found end of file", token.Location{Byte: 3, Line: 2, Col: 2}},
		{"  \"abc", "Unclosed string", token.Location{Byte: 2, Line: 1, Col: 3}},
		{"a <# never closed", "Unclosed block comment", token.Location{Byte: 2, Line: 1, Col: 3}},
	}
	for _, test := range tests {
		_, err := Parse(test.input)
		var serr *token.Error
		if assert.ErrorAs(t, err, &serr, test.input) {
			assert.Equal(t, test.msg, serr.What, test.input)
			assert.Equal(t, test.loc, serr.Where, test.input)
		}
	}
}

func TestWordsNumsSymbols(t *testing.T) {
	trees, err := Parse("word")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Word}, kinds(trees))

	trees, err = Parse("nan")
	require.NoError(t, err)
	assert.NotEqual(t, []Kind{Number}, kinds(trees))

	trees, err = Parse("42")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Number}, kinds(trees))

	trees, err = Parse("New-Item")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Word, Symbol, Word}, kinds(trees))
	assert.Equal(t, Joined, trees[0].Spacing)
	assert.Equal(t, Joined, trees[1].Spacing)

	trees, err = Parse("$foo-$bar")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Symbol, Word, Symbol, Symbol, Word}, kinds(trees))

	trees, err = Parse("foo `\nbar")
	require.NoError(t, err)
	require.Equal(t, []Kind{Word, Symbol, Symbol, Word}, kinds(trees))
	assert.Equal(t, Alone, trees[0].Spacing)
	assert.True(t, trees[1].IsSymbol('`'))
	assert.Equal(t, Joined, trees[1].Spacing)
	assert.True(t, trees[2].IsSymbol('\n'))
	assert.Equal(t, Joined, trees[2].Spacing)
	assert.Equal(t, Alone, trees[3].Spacing)
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{` "foo" `, true},
		{` 'foo' `, true},
		{` "foo'" `, true},
		{` "hello ""friend """ `, true},
		{" \"`\"\" ", true},
		{" '`' ", true},
		{` " `, false},
		{" @'\nsialala `\"'\"'`$foo\nhere: @'lol'@\n'@ ", true},
		{" @\"\nnot closed \"@\n", false},
		{" @\"\ncloses\n\"@ ", true},
	}
	for _, test := range tests {
		trees, err := Parse(test.input)
		if !test.ok {
			assert.Error(t, err, test.input)
			continue
		}
		if assert.NoError(t, err, test.input) {
			assert.Equal(t, []Kind{String}, kinds(trees), test.input)
		}
	}
}

func TestStringInterpolation(t *testing.T) {
	src := `"a $Name b $(Get-Date) ${env:Path} $ 'x'"`
	trees, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	sub := trees[0].Children
	require.Equal(t, []Kind{Word, Group, Group}, kinds(sub))
	assert.Equal(t, "Name", sub[0].Span.Text(src))
	assert.Equal(t, Paren, sub[1].Delim)
	assert.Equal(t, Brace, sub[2].Delim)

	trees, err = Parse(`'no $Interpolation'`)
	require.NoError(t, err)
	assert.Empty(t, trees[0].Children)
}

func TestHereStringSpan(t *testing.T) {
	src := "@'\nx\n'@"
	trees, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, 0, trees[0].Span.Start.Byte)
	assert.Equal(t, len(src), trees[0].Span.End.Byte)

	trees, err = Parse("@ foo")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Symbol, Word}, kinds(trees))
}

func TestComments(t *testing.T) {
	trees, err := Parse("foo # nieprawda\nbar")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Word, Symbol, Word}, kinds(trees))

	trees, err = Parse("# komentarz\n")
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.True(t, trees[0].IsSymbol('\n'))

	trees, err = Parse("# no trailing newline")
	require.NoError(t, err)
	assert.Empty(t, trees)

	trees, err = Parse("foo <# block\n # still\n comment #> bar")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Word, Word}, kinds(trees))

	trees, err = Parse("$a -lt 5")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Symbol, Word, Symbol, Word, Number}, kinds(trees))

	trees, err = Parse("1 <2")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Number, Symbol, Number}, kinds(trees))
}

func TestCRLF(t *testing.T) {
	trees, err := Parse("foo\r\nbar")
	require.NoError(t, err)
	require.Equal(t, []Kind{Word, Symbol, Word}, kinds(trees))
	assert.Equal(t, 2, trees[1].Span.Len())
	assert.Equal(t, 2, trees[2].Span.Start.Line)
}

func collectSpans(trees []Tree, out *[]token.Span) {
	for _, t := range trees {
		*out = append(*out, t.Span)
	}
}

// Top-level spans never overlap, appear in order and together cover every
// byte that is neither whitespace nor part of a comment.
func TestSpanCoverage(t *testing.T) {
	src := "function Foo-Bar {\n\t$x = \"a $b\" + @(1, 2)\n} # trailing\r\n[Baz]::New() <# c #> | Out-Null\n"
	trees, err := Parse(src)
	require.NoError(t, err)

	var spans []token.Span
	collectSpans(trees, &spans)
	covered := make([]int, len(src))
	prevEnd := 0
	for _, sp := range spans {
		assert.GreaterOrEqual(t, sp.Start.Byte, prevEnd)
		prevEnd = sp.End.Byte
		for i := sp.Start.Byte; i < sp.End.Byte; i++ {
			covered[i]++
		}
	}

	comments := []string{"# trailing", "<# c #>"}
	inComment := make([]bool, len(src))
	for _, c := range comments {
		idx := indexOf(src, c)
		require.GreaterOrEqual(t, idx, 0)
		for i := idx; i < idx+len(c); i++ {
			inComment[i] = true
		}
	}
	for i, b := range []byte(src) {
		if inComment[i] {
			assert.Zero(t, covered[i], "comment byte %d covered", i)
			continue
		}
		if b == '\n' || !unicode.IsSpace(rune(b)) {
			assert.Equal(t, 1, covered[i], "byte %d (%q)", i, b)
		}
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
