// Copyright © 2024 The Shelly authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/config"
	"github.com/luthersystems/shelly/watch"
)

func newWatchCommand() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "watch [flags]",
		Short: "Re-run analysis whenever a source file or shelly.toml changes",
		Long: `Analyze the directory, then watch it and analyze again after .ps1
files or shelly.toml change.  Bursts of changes are batched into one run.

Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}
	addLintFlags(cmd.Flags(), opts)
	return cmd
}

func runWatch(cmd *cobra.Command, opts *analyzeOptions) error {
	dir := viper.GetString("directory")
	log, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return usageError(err)
	}
	ws, err := loadWorkspace(dir, opts, log)
	if err != nil {
		return usageError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	analyze := func() {
		// shelly.toml may have changed since the last run.
		current, err := loadWorkspace(dir, opts, log)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		err = current.run(ctx, out, opts)
		switch {
		case err == nil, errors.Is(err, errFindings):
		default:
			reportError(cmd.ErrOrStderr(), err)
		}
		fmt.Fprintln(out, "Waiting for changes...")
	}

	w, err := watch.New(watch.Options{
		Root:       dir,
		Exclude:    ws.analysis.Exclude,
		Extensions: []string{analysis.SourceExt},
		Names:      []string{config.FileName},
		Logger:     log,
	}, func(paths []string) {
		log.WithField("changed", paths).Info("Re-analyzing")
		analyze()
	})
	if err != nil {
		return err
	}
	analyze()
	return w.Run(ctx)
}
