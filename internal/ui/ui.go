// Package ui is the terminal host for a search session: a bubbletea
// command palette on interactive terminals and a line-oriented mode for
// pipes and CI.
package ui

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/docsearch/internal/session"
)

// Searcher is the session surface the hosts drive. *docsearch.Search
// implements it.
type Searcher interface {
	Open()
	SetQuery(text string) error
	MoveSelection(delta int)
	Confirm() error
	Close()
	Flush() bool
	State() session.State
	OnStateChange(fn func(session.State)) (unsubscribe func())
	Len() int
}

// Config configures the hosts.
type Config struct {
	Output      io.Writer
	Input       io.Reader
	ForcePlain  bool
	NoColor     bool
	OpenOnStart bool
	Title       string
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces line-oriented mode.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithInput sets the input stream. Defaults to stdin.
func WithInput(r io.Reader) ConfigOption {
	return func(c *Config) {
		c.Input = r
	}
}

// WithOpenOnStart opens the palette immediately instead of waiting for
// ctrl+k.
func WithOpenOnStart(open bool) ConfigOption {
	return func(c *Config) {
		c.OpenOnStart = open
	}
}

// WithTitle sets the palette header.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output: output,
		Title:  "docsearch",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Run hosts the session until the user quits or ctx is done. It uses the
// palette on a terminal and plain mode otherwise.
func Run(ctx context.Context, s Searcher, nav *Navigator, cfg Config) error {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return RunPlain(ctx, s, cfg)
	}
	return RunPalette(ctx, s, nav, cfg)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// Navigator is a navigation callback that remembers the last target so
// the palette can show it. Navigate has the navigate.Func signature.
type Navigator struct {
	mu    sync.Mutex
	next  func(path string)
	last  string
	count int
}

// NewNavigator wraps next, which may be nil.
func NewNavigator(next func(path string)) *Navigator {
	return &Navigator{next: next}
}

// Navigate records path and forwards it.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	n.last = path
	n.count++
	n.mu.Unlock()

	if n.next != nil {
		n.next(path)
	}
}

// Last returns the most recent target.
func (n *Navigator) Last() (string, bool) {
	if n == nil {
		return "", false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.count > 0
}

// Count returns how many navigations happened.
func (n *Navigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
