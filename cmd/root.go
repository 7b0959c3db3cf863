// Package cmd implements the sessionmcp command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessionmcp",
	Short: "Ephemeral session control MCP server",
	Long: `sessionmcp runs a small, loopback-only MCP server that lets an
AI-agent runtime act on its enclosing session: changing the session
title and injecting reminder messages into the live conversation
queue.

Running sessionmcp without a subcommand starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
