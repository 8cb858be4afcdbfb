package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	guardmcp "github.com/deixis/idleguard/internal/mcp"
	"github.com/deixis/idleguard/internal/report"
	"github.com/deixis/idleguard/internal/runner"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	var (
		instructions bool
		httpAddr     string
		history      int
		tailLines    int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), guardmcp.Instructions)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return serve(ctx, httpAddr, history, tailLines)
		},
	}
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	cmd.Flags().StringVar(&httpAddr, "http", "", "start HTTP server on address (e.g. :9090)")
	cmd.Flags().IntVar(&history, "history", 5, "number of recent runs kept for idle_output")
	cmd.Flags().IntVar(&tailLines, "tail", guardmcp.DefaultTailLines, "trailing lines of each stream returned by idle_run")
	return cmd
}

func serve(ctx context.Context, httpAddr string, history, tailLines int) error {
	workspace, err := workspaceDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(workspace)
	if err != nil {
		return err
	}

	// Stdout is the stdio transport; passthrough goes to stderr.
	r := &runner.Runner{
		Workspace: workspace,
		MaxOutput: cfg.MaxOutputBytes(),
		WaitDelay: cfg.WaitDelay(),
		Stdout:    os.Stderr,
		Stderr:    os.Stderr,
	}

	server := guardmcp.NewServer(cfg, r, report.NewLRUStore(history), guardmcp.WithTailLines(tailLines))

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
