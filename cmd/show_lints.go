// Copyright © 2024 The Shelly authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/shelly/config"
	"github.com/luthersystems/shelly/docs"
	"github.com/luthersystems/shelly/lint"
)

func newShowLintsCommand() *cobra.Command {
	var guide bool
	cmd := &cobra.Command{
		Use:   "show-lints",
		Short: "Show available lints and their levels",
		Long: `Show every lint with the level it has in the analyzed directory.

Levels set in the [levels] table of shelly.toml are marked as overridden.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if guide {
				_, err := fmt.Fprint(cmd.OutOrStdout(), docs.LintGuide)
				return err
			}
			printLints(cmd, viper.GetString("directory"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&guide, "guide", false, "Print the reference of every lint, config file and allow comments")
	return cmd
}

func printLints(cmd *cobra.Command, dir string) {
	w := cmd.OutOrStdout()
	cfg, err := lintConfigFromDir(dir)
	if err != nil {
		fmt.Fprintf(w, "Note: couldn't parse shelly config (%v)\n\n", err)
		cfg = &lint.Config{}
	}

	fmt.Fprintln(w, "Available lints:")
	for _, a := range lint.DefaultAnalyzers() {
		level := cfg.LevelOf(a)
		note := ""
		if level != a.Level {
			note = fmt.Sprintf(" (overridden from default %s)", a.Level)
		}
		fmt.Fprintf(w, "%30s: %s%s\n", a.Name, level, note)
	}
	fmt.Fprint(w, `
Use shelly.toml config or -A/-W/-D flags for the analyze subcommand
to change the default levels.
`)
}

func lintConfigFromDir(dir string) (*lint.Config, error) {
	file, err := config.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return file.LintConfig()
}
