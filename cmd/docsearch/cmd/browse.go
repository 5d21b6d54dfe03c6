package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/telemetry"
	"github.com/Aman-CERP/docsearch/internal/ui"
	"github.com/Aman-CERP/docsearch/pkg/docsearch"
)

type browseOptions struct {
	plain   bool
	noColor bool
	noWatch bool
}

func newBrowseCmd() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse [dir]",
		Short: "Open the search palette",
		Long: `Open the interactive search palette over the docs in dir (default:
the project containing the working directory).

Type to search, use the arrow keys to pick a result and enter to open it.
The chosen path is printed when the palette exits. Without a terminal,
or with --plain, queries are read line by line from stdin and ':N'
opens result N.`,
		Example: `  docsearch browse
  docsearch browse ./site --no-watch
  printf 'cou\n:1\n' | docsearch browse --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runBrowse(cmd.Context(), cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Line-based mode instead of the palette")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not reload when content changes")

	return cmd
}

func runBrowse(ctx context.Context, cmd *cobra.Command, dir string, opts browseOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	plain := opts.plain || !ui.IsTTY(out) || ui.DetectCI()

	p, err := loadProject(dir)
	if err != nil {
		return err
	}

	nav := ui.NewNavigator(func(path string) {
		slog.Info("navigate", slog.String("path", path))
		if plain {
			_, _ = fmt.Fprintf(out, "→ %s\n", path)
		}
	})

	metrics := telemetry.NewQueryMetrics()
	s, stats, err := p.open(ctx, nav.Navigate, docsearch.WithMetrics(metrics))
	if err != nil {
		return err
	}
	slog.Info("browse started",
		slog.String("root", p.root),
		slog.Int("entries", s.Len()),
		slog.Int("skipped", stats.Skipped))

	if p.cfg.Content.Watch && !opts.noWatch {
		go p.watch(ctx, s)
	}

	cfg := ui.NewConfig(out,
		ui.WithInput(cmd.InOrStdin()),
		ui.WithForcePlain(plain),
		ui.WithNoColor(opts.noColor),
		ui.WithOpenOnStart(true),
		ui.WithTitle("docsearch · "+p.root),
	)
	if err := ui.Run(ctx, s, nav, cfg); err != nil && ctx.Err() == nil {
		return err
	}

	snap := metrics.Snapshot()
	slog.Info("browse finished",
		slog.Int64("queries", snap.TotalQueries),
		slog.Float64("zero_result_pct", snap.ZeroResultPercentage()),
		slog.Int("opened", nav.Count()))

	if last, ok := nav.Last(); ok && !plain {
		_, _ = fmt.Fprintln(out, last)
	}
	return nil
}
