package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/cadence/internal/mcp"
	"github.com/spf13/cobra"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the habit tools over streamable HTTP until interrupted.
Set MCP_AUTH_TOKEN to require a bearer token.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		opts := mcpinternal.ServerOptions{Addr: addr}
		if app.Config != nil {
			if opts.Addr == "" {
				opts.Addr = app.Config.MCP.Addr
			}
			opts.AuthToken = app.Config.MCP.AuthToken
		}

		err = mcpinternal.Serve(cmd.Context(), opts, app, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from MCP_ADDR)")
}
