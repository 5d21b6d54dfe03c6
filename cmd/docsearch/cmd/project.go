package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Aman-CERP/docsearch/internal/config"
	"github.com/Aman-CERP/docsearch/internal/content"
	"github.com/Aman-CERP/docsearch/internal/watcher"
	"github.com/Aman-CERP/docsearch/pkg/docsearch"
)

// project is a resolved docs project: its root, effective config and the
// loader built from it.
type project struct {
	root   string
	cfg    *config.Config
	loader *content.Loader
}

// loadProject resolves the project for dir. An explicit dir is the root;
// otherwise the root is found by walking up from the working directory.
func loadProject(dir string) (*project, error) {
	var root string
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", dir, err)
		}
		root = abs
	} else {
		found, err := config.FindProjectRoot(".")
		if err != nil {
			return nil, err
		}
		root = found
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return &project{
		root: root,
		cfg:  cfg,
		loader: &content.Loader{
			Dir:        cfg.ContentDir(root),
			Manifest:   cfg.ManifestPath(root),
			Extensions: cfg.Content.Extensions,
			Exclude:    cfg.Content.Exclude,
			Logger:     slog.Default(),
		},
	}, nil
}

// searchOptions maps the config onto facade options.
func (p *project) searchOptions(extra ...docsearch.Option) []docsearch.Option {
	opts := []docsearch.Option{
		docsearch.WithDebounce(p.cfg.Debounce()),
		docsearch.WithLimit(p.cfg.Search.Limit),
		docsearch.WithSectionPriority(p.cfg.Sections()...),
		docsearch.WithCacheSize(p.cfg.Search.CacheSize),
		docsearch.WithLogger(slog.Default()),
	}
	return append(opts, extra...)
}

// open loads the content and builds the search component.
func (p *project) open(ctx context.Context, dispatch docsearch.NavigateFunc, extra ...docsearch.Option) (*docsearch.Search, content.Stats, error) {
	entries, stats, err := p.loader.LoadWithStats(ctx)
	if err != nil {
		return nil, stats, err
	}

	s, err := docsearch.New(entries, dispatch, p.searchOptions(extra...)...)
	if err != nil {
		return nil, stats, err
	}
	for _, w := range s.Warnings() {
		slog.Warn("entry skipped", slog.String("error", w.Error()))
	}
	return s, stats, nil
}

// watchFilter keeps scanned content files and the manifest.
func (p *project) watchFilter(rel string) bool {
	if p.loader.Manifest != "" &&
		filepath.Join(p.loader.Dir, filepath.FromSlash(rel)) == filepath.Clean(p.loader.Manifest) {
		return true
	}
	return p.loader.Matches(rel)
}

// watch reloads s whenever content under the content dir changes, until
// ctx is done. Load failures keep the previous entries.
func (p *project) watch(ctx context.Context, s *docsearch.Search) {
	logger := slog.Default()

	w, err := watcher.New(watcher.Options{
		DebounceWindow: p.cfg.WatchDebounceDuration(),
		Filter:         p.watchFilter,
		SkipDir:        p.loader.Excluded,
		Logger:         logger,
	})
	if err != nil {
		logger.Warn("content watch disabled", slog.String("error", err.Error()))
		return
	}

	go func() {
		if err := w.Start(ctx, p.loader.Dir); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("content watch stopped", slog.String("error", err.Error()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.Events():
			if !ok {
				return
			}
			p.reload(ctx, s, batch)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			logger.Warn("content watch error", slog.String("error", err.Error()))
		}
	}
}

// reload rebuilds the index after a batch of file events.
func (p *project) reload(ctx context.Context, s *docsearch.Search, batch []watcher.FileEvent) {
	logger := slog.Default()
	for _, ev := range batch {
		if ev.Operation == watcher.OpConfigChange {
			logger.Warn("config file changed; restart to apply", slog.String("path", ev.Path))
		}
	}

	entries, err := p.loader.Load(ctx)
	if err != nil {
		logger.Warn("reload failed, keeping previous entries", slog.String("error", err.Error()))
		return
	}
	warnings := s.Reload(entries)
	for _, w := range warnings {
		logger.Warn("entry skipped", slog.String("error", w.Error()))
	}
	logger.Info("content reloaded",
		slog.Int("events", len(batch)),
		slog.Int("entries", s.Len()),
		slog.Int("warnings", len(warnings)))
}
