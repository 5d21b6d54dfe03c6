// Package content turns a documentation tree into search entries.
//
// Sources, in registration order:
//
//  1. an optional YAML manifest listing entries explicitly
//  2. markdown, MDX and HTML files under the content directory, sorted by
//     relative path
//
// A file that fails to parse is logged and skipped; it never aborts the
// load. Failing to read the content directory or the manifest does.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/docsearch/internal/entry"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/gitignore"
)

// IgnoreFileName is read from the content root, one gitignore-style
// pattern per line.
const IgnoreFileName = ".docsearchignore"

// DefaultExtensions are scanned when Loader.Extensions is empty.
var DefaultExtensions = []string{".md", ".mdx", ".html"}

// Loader reads entries from disk.
type Loader struct {
	// Dir is the content root. Empty means no file scan.
	Dir string
	// Manifest is an optional entries file.
	Manifest string
	// Extensions selects scanned files (with leading dot).
	Extensions []string
	// Exclude holds gitignore-style patterns relative to Dir. Patterns
	// from Dir/.docsearchignore follow them, so the file can re-include
	// with "!".
	Exclude []string
	// Workers bounds concurrent parsing. Defaults to GOMAXPROCS.
	Workers int
	// Logger receives skip warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Stats describes one load.
type Stats struct {
	Manifest int
	Files    int
	Skipped  int
	Drafts   int
	Duration time.Duration
}

// Load returns the manifest entries followed by the scanned files.
func (l *Loader) Load(ctx context.Context) ([]entry.Entry, error) {
	entries, _, err := l.LoadWithStats(ctx)
	return entries, err
}

// LoadWithStats is Load with counters for logging and the CLI.
func (l *Loader) LoadWithStats(ctx context.Context) ([]entry.Entry, Stats, error) {
	start := time.Now()
	logger := l.logger()
	var stats Stats

	var entries []entry.Entry
	if l.Manifest != "" {
		manifest, err := LoadManifest(l.Manifest)
		if err != nil {
			return nil, stats, err
		}
		stats.Manifest = len(manifest)
		entries = append(entries, manifest...)
	}

	if l.Dir != "" {
		files, err := l.scan(ctx)
		if err != nil {
			return nil, stats, err
		}
		parsed, err := l.parseAll(ctx, files, &stats)
		if err != nil {
			return nil, stats, err
		}
		entries = append(entries, parsed...)
	}

	stats.Duration = time.Since(start)
	logger.Info("content loaded",
		slog.String("dir", l.Dir),
		slog.Int("manifest_entries", stats.Manifest),
		slog.Int("files", stats.Files),
		slog.Int("skipped", stats.Skipped),
		slog.Int("drafts", stats.Drafts),
		slog.Duration("duration", stats.Duration))

	return entries, stats, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Loader) extensions() []string {
	if len(l.Extensions) == 0 {
		return DefaultExtensions
	}
	exts := make([]string, len(l.Extensions))
	for i, e := range l.Extensions {
		exts[i] = strings.ToLower(e)
	}
	return exts
}

// Matches reports whether rel (relative to Dir, slash-separated) is a file
// the loader would scan. The watcher uses it to ignore unrelated events.
func (l *Loader) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !slices.Contains(l.extensions(), strings.ToLower(filepath.Ext(rel))) {
		return false
	}
	m, err := l.matcher()
	if err != nil {
		return true
	}
	return !m.Match(rel, false)
}

// Excluded reports whether the directory rel (relative to Dir) is covered
// by an exclude pattern. The watcher uses it to skip whole subtrees.
func (l *Loader) Excluded(rel string) bool {
	m, err := l.matcher()
	if err != nil {
		return false
	}
	return m.Match(rel, true)
}

// matcher compiles Exclude followed by the ignore file. A missing ignore
// file is not an error.
func (l *Loader) matcher() (*gitignore.Matcher, error) {
	m := gitignore.New(l.Exclude...)
	err := m.AddFromFile(filepath.Join(l.Dir, IgnoreFileName), "")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return m, nil
}

// scan returns the relative, slash-separated paths of candidate files in
// lexical order.
func (l *Loader) scan(ctx context.Context) ([]string, error) {
	info, err := os.Stat(l.Dir)
	if err != nil {
		return nil, doerrors.IOError(fmt.Sprintf("content directory %s is not readable", l.Dir), err).
			WithDetail("dir", l.Dir).
			WithSuggestion("set content.dir in .docsearch.yaml or pass a directory argument")
	}
	if !info.IsDir() {
		return nil, doerrors.New(doerrors.ErrCodeInvalidInput,
			fmt.Sprintf("content path %s is not a directory", l.Dir), nil).
			WithDetail("dir", l.Dir)
	}

	m, err := l.matcher()
	if err != nil {
		return nil, doerrors.IOError("failed to read "+IgnoreFileName, err)
	}
	exts := l.extensions()
	l.logger().Debug("scanning content", slog.String("dir", l.Dir), slog.Int("exclude_rules", m.Len()))

	var files []string
	err = filepath.WalkDir(l.Dir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == l.Dir {
				return err
			}
			l.logger().Warn("skipping unreadable path", slog.String("path", p), slog.String("error", err.Error()))
			return nil
		}

		rel, err := filepath.Rel(l.Dir, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if m.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !slices.Contains(exts, strings.ToLower(filepath.Ext(rel))) || m.Match(rel, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, doerrors.IOError(fmt.Sprintf("failed to scan %s", l.Dir), err)
	}

	slices.Sort(files)
	return files, nil
}

type parsed struct {
	entry entry.Entry
	ok    bool
	draft bool
}

// parseAll parses files concurrently and returns entries in file order.
func (l *Loader) parseAll(ctx context.Context, files []string, stats *Stats) ([]entry.Entry, error) {
	workers := l.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]parsed, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.parseFile(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]entry.Entry, 0, len(results))
	for _, r := range results {
		switch {
		case r.ok:
			entries = append(entries, r.entry)
		case r.draft:
			stats.Drafts++
		default:
			stats.Skipped++
		}
	}
	stats.Files = len(entries)
	return entries, nil
}

func (l *Loader) parseFile(rel string) parsed {
	data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(rel)))
	if err != nil {
		l.skip(rel, err)
		return parsed{}
	}

	switch strings.ToLower(filepath.Ext(rel)) {
	case ".html", ".htm":
		e, err := parseHTML(rel, data)
		if err != nil {
			l.skip(rel, err)
			return parsed{}
		}
		return parsed{entry: e, ok: true}
	default:
		e, ok, err := parseMarkdown(rel, data)
		if err != nil {
			l.skip(rel, err)
			return parsed{}
		}
		return parsed{entry: e, ok: ok, draft: !ok}
	}
}

func (l *Loader) skip(rel string, cause error) {
	err := doerrors.New(doerrors.ErrCodeContentParse, "skipping unparseable file", cause).
		WithDetail("file", rel)
	l.logger().Warn(err.Message, slog.Any("error", doerrors.LogAttrs(err)))
}
