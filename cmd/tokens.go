// Copyright © 2024 The Shelly authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/shelly/parser"
	"github.com/luthersystems/shelly/parser/semantic"
	"github.com/luthersystems/shelly/repl"
)

func newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Show how source is tokenized",
		Long: `Print a source file with every variable, flag, command and keyword
marked the way the analyzer sees it.  Statement ends are shown as ';'.

Without a file, start an interactive prompt that tokenizes each line.
Line editing and history are supported; use Ctrl-D to exit.

Example session:
  shelly> Get-Item $path -Force
  [Get-Item] $[path] -[Force]`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := colorMode().Enabled(fileOf(cmd.OutOrStdout()))
			if len(args) == 0 {
				return repl.Run("shelly> ", repl.WithStdout(cmd.OutOrStdout()), repl.WithColor(color))
			}
			data, err := os.ReadFile(args[0]) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				return usageError(err)
			}
			source := parser.StripBOM(string(data))
			toks, err := parser.Tokenize(source)
			if err != nil {
				return usageError(fmt.Errorf("%s: %w", args[0], err))
			}
			return semantic.Fprint(cmd.OutOrStdout(), source, toks, color)
		},
	}
}
