package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/docsearch/internal/entry"
	"github.com/Aman-CERP/docsearch/internal/output"
	"github.com/Aman-CERP/docsearch/pkg/docsearch"
)

// queryOptions holds CLI flags for query.
type queryOptions struct {
	limit    int
	format   string // "text", "json"
	sections []string
	dir      string
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one search and print the results",
		Long: `Run one search over the project's docs and print the ranked entries.

Words are matched as prefixes against titles and keywords; the results
use the same ranking as the palette.`,
		Example: `  docsearch query cou
  docsearch query "persist mig" --limit 3
  docsearch query signal --section glossary --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringSliceVarP(&opts.sections, "section", "s", nil, "Restrict to sections (repeatable)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Project directory (default: detected from the working directory)")

	return cmd
}

func runQuery(ctx context.Context, cmd *cobra.Command, query string, opts queryOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("invalid format %q (want text or json)", opts.format)
	}
	if opts.limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", opts.limit)
	}
	sections := entry.ParseSections(opts.sections)
	if len(opts.sections) > 0 && len(sections) == 0 {
		return fmt.Errorf("no known section in %v (want tutorial, note, example or glossary)", opts.sections)
	}

	p, err := loadProject(opts.dir)
	if err != nil {
		return err
	}
	s, _, err := p.open(ctx, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	results := s.QueryWith(query, docsearch.QueryOptions{Limit: opts.limit, Sections: sections})
	slog.Info("query completed",
		slog.String("query", query),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	out := output.New(cmd.OutOrStdout())
	if opts.format == "json" {
		return out.JSON(output.ResultsJSON(results))
	}
	out.Results(query, results)
	return nil
}
