// Copyright © 2024 The Shelly authors

package lint

import (
	"strings"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/parser/token"
)

// EachFile calls fn for the result of every analyzed file in path order.
func EachFile(pass *Pass, fn func(fr *analysis.FileResult)) {
	for _, fr := range pass.Result.Files {
		fn(fr)
	}
}

// EachProblem calls fn for every load problem of one of the given kinds.
func EachProblem(pass *Pass, fn func(p *analysis.Problem), kinds ...analysis.ProblemKind) {
	for _, p := range pass.Result.Project.Problems {
		for _, k := range kinds {
			if p.Kind == k {
				fn(p)
				break
			}
		}
	}
}

// at returns a diagnostic located at span in the file at path.
func at(path string, span token.Span) Diagnostic {
	return Diagnostic{Pos: positionAt(span.Start), Path: path, Span: span}
}

// displayPath returns the reporting name of a file in the project.
func displayPath(pass *Pass, path string) string {
	if f, ok := pass.Result.Project.Files[path]; ok {
		return f.Name
	}
	return pass.Result.Project.DisplayName(path)
}

func displayChain(pass *Pass, chain []string) string {
	names := make([]string, len(chain))
	for i, path := range chain {
		names[i] = displayPath(pass, path)
	}
	return strings.Join(names, " -> ")
}

// charList formats runes as a bracketed list of quoted characters.
func charList(chars []rune) string {
	quoted := make([]string, len(chars))
	for i, c := range chars {
		quoted[i] = quoteRune(c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func quoteRune(c rune) string {
	switch c {
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	default:
		return "'" + string(c) + "'"
	}
}
