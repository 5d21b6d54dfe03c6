package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/logging"
	"github.com/Aman-CERP/docsearch/internal/mcp"
	"github.com/Aman-CERP/docsearch/internal/telemetry"
	"github.com/Aman-CERP/docsearch/pkg/docsearch"
)

type serveOptions struct {
	transport string
	noWatch   bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the docs index to AI clients over MCP",
		Long: `Start a Model Context Protocol server over stdio exposing the
search_docs and list_sections tools.

stdout carries the protocol, so logs go to ~/.docsearch/logs/docsearch.log.`,
		Example: `  docsearch serve
  docsearch serve ./site --no-watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runServe(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport: stdio")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not reload when content changes")

	return cmd
}

func runServe(ctx context.Context, dir string, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := loadProject(dir)
	if err != nil {
		return err
	}

	// stdout belongs to the protocol; nothing may be printed there.
	if !debugMode {
		cleanup, err := logging.SetupDefault(logging.ServeConfig(p.cfg.Server.LogLevel))
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		defer cleanup()
		p.loader.Logger = slog.Default()
	}

	metrics := telemetry.NewQueryMetrics()
	s, stats, err := p.open(ctx, nil, docsearch.WithMetrics(metrics))
	if err != nil {
		slog.Error("failed to load content", slog.String("error", err.Error()))
		return err
	}

	server, err := mcp.NewServer(s, p.cfg)
	if err != nil {
		return err
	}
	server.SetLogger(slog.Default())
	server.SetMetrics(metrics)

	slog.Info("serve started",
		slog.String("root", p.root),
		slog.Int("entries", s.Len()),
		slog.Int("files", stats.Files),
		slog.Int("skipped", stats.Skipped))

	if p.cfg.Content.Watch && !opts.noWatch {
		go p.watch(ctx, s)
	}

	err = server.Serve(ctx, opts.transport)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
