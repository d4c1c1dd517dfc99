// Copyright © 2024 The Shelly authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/shelly/lsp"
)

func newLSPCommand() *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the shelly Language Server Protocol server",
		Long: `Start an LSP server for PowerShell projects.

The server analyzes the whole workspace with the unsaved content of open
editors and publishes diagnostics for every file.  It also provides
document symbols and go-to-definition across dot-sourced files.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

The workspace root is taken from the client unless --directory is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return usageError(err)
			}
			opts := []lsp.Option{lsp.WithLogger(log)}
			if cmd.Flags().Changed("directory") {
				opts = append(opts, lsp.WithRoot(viper.GetString("directory")))
			}
			srv := lsp.New(opts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Infof("shelly LSP server listening on %s", addr)
				return srv.RunTCP(addr)
			}
			return srv.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	return cmd
}
