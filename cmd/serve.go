package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koopa0/sessionmcp/internal/config"
	"github.com/koopa0/sessionmcp/internal/log"
	"github.com/koopa0/sessionmcp/internal/mcp"
	"github.com/koopa0/sessionmcp/internal/queue"
	"github.com/koopa0/sessionmcp/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session control server",
	Long: `Start the session control MCP server on a loopback address.

The endpoint URL is printed on stdout so the owning harness can read
it; everything else goes to stderr. In standalone mode the server uses
an in-memory reminder queue and logs outbound session events. The
server runs until SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := log.New(log.Config{Level: level, JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Standalone collaborators. An embedding harness would supply its
	// own session client and queue accessor instead.
	buffer := queue.NewBuffer()
	client := session.NewLogClient(logger.With("component", "session"))

	server, err := mcp.NewServer(mcp.Config{
		Name:         "sessionmcp",
		Version:      AppVersion,
		Logger:       logger.With("component", "server"),
		ListenAddr:   cfg.ListenAddr,
		Session:      client,
		MessageQueue: func() queue.Queue { return buffer },
		DefaultMode:  queue.Mode(cfg.DefaultMode),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	handle, err := server.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	defer handle.Stop()

	// The harness reads the endpoint URL from stdout.
	fmt.Fprintln(cmd.OutOrStdout(), handle.URL)

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}
