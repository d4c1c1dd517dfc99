// Copyright © 2024 The Shelly authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/shelly/lint"
)

const (
	exitClean    = 0
	exitFindings = 1
	exitUsage    = 2
)

var cfgFile string

// NewRootCommand builds the shelly command tree.  Running it without a
// subcommand analyzes the directory with default options.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "shelly",
		Short: "Static analyzer for dot-sourced PowerShell projects",
		Long: `Shelly checks that every function and class used in a PowerShell
project is defined in the file itself, imported by it, or a builtin.

Files import each other with dot-sourcing:
  . $PSScriptRoot\Lib\Utils.ps1
  . $here\$sut                      (in Pester test files)

Getting started:
  shelly                          Analyze the current directory
  shelly analyze --directory src  Analyze another directory
  shelly show-lints               List lints and their levels
  shelly tokens file.ps1          Show how a file is tokenized
  shelly watch                    Re-analyze on every change
  shelly lsp                      Start the language server

Exit codes:
  0  No deny-level problems found
  1  One or more deny-level problems were reported
  2  Bad invocation, bad shelly.toml, or recursive imports

Lints:
` + lint.AnalyzerDoc(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, &analyzeOptions{})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shelly.yaml)")
	pf.String("directory", ".", "Directory with code to analyze")
	pf.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	pf.String("log-level", "warn", "Log level: debug, info, warn, or error")
	for _, name := range []string{"directory", "color", "log-level"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		newAnalyzeCommand(),
		newShowLintsCommand(),
		newTokensCommand(),
		newWatchCommand(),
		newLSPCommand(),
	)
	return root
}

// Execute runs the root command and exits with its status.  This is called
// by main.main().
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(reportError(root.ErrOrStderr(), err))
	}
}

// exitError carries the process exit status of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// errFindings reports deny-level diagnostics; they have been printed already.
var errFindings = &exitError{code: exitFindings}

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

// reportError prints err unless it only carries an exit status, and returns
// the exit code of the process.
func reportError(w io.Writer, err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(w, "error: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return exitUsage
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".shelly")
	}

	viper.SetEnvPrefix("shelly")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}
