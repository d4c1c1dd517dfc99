// Copyright © 2024 The Shelly authors

package repl

import (
	"strings"

	"github.com/luthersystems/shelly/analysis"
)

// commandCompleter implements readline.AutoCompleter over the names of
// builtin commands.
type commandCompleter struct {
	names []string
}

func newCommandCompleter(builtins analysis.NameSet) *commandCompleter {
	return &commandCompleter{names: builtins.Names()}
}

func (c *commandCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '{' || ch == '|' || ch == ';' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	var result [][]rune
	for _, name := range c.names {
		if len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			result = append(result, []rune(name[len(prefix):]))
		}
	}
	if len(result) == 0 {
		return nil, 0
	}
	return result, len([]rune(prefix))
}
