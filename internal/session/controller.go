// Package session owns the interactive search state: whether the search UI
// is open, the current query text, the displayed results and the selection.
//
// Typing is debounced. Each query edit bumps a sequence number; when the
// debounce delay elapses the query is searched and the results are committed
// only if no newer edit happened in the meantime. A slow search for an old
// query therefore never overwrites results for a newer one.
//
// The controller is driven by host input events (Open, SetQuery,
// MoveSelection, Confirm, Close) and by its scheduler. Listeners registered
// with OnStateChange receive a snapshot after every effective transition.
package session

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Aman-CERP/docsearch/internal/entry"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/navigate"
)

// DefaultDebounce is the delay between the last query edit and the search.
const DefaultDebounce = 120 * time.Millisecond

// ErrNotOpen is returned by operations that require an open session.
var ErrNotOpen = doerrors.New(doerrors.ErrCodeSessionClosed, "search session is not open", nil).
	WithSuggestion("call Open before editing the query")

// Searcher runs a query and returns ranked entries.
type Searcher interface {
	Search(query string) []entry.Entry
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(query string) []entry.Entry

// Search calls f.
func (f SearcherFunc) Search(query string) []entry.Entry {
	return f(query)
}

// State is a snapshot of the session. Results is owned by the receiver.
type State struct {
	Open     bool
	Query    string
	Results  []entry.Entry
	Selected int

	// Pending is true while a query edit has not produced committed results
	// yet. It separates "still searching" from "no results".
	Pending bool

	// Version increases with every transition. Listeners may receive
	// snapshots from different goroutines and can use it to drop stale ones.
	Version uint64
}

// SelectedEntry returns the highlighted entry, if any.
func (s State) SelectedEntry() (entry.Entry, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Results) {
		return entry.Entry{}, false
	}
	return s.Results[s.Selected], true
}

// Listener receives state snapshots.
type Listener func(State)

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the debounce delay. Negative values are treated as zero.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d < 0 {
			d = 0
		}
		c.debounce = d
	}
}

// WithScheduler replaces the runtime timer source.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is the search session state machine. It is safe for concurrent
// use; scheduled searches run on the scheduler's goroutine.
type Controller struct {
	searcher   Searcher
	dispatcher *navigate.Dispatcher
	debounce   time.Duration
	scheduler  Scheduler
	logger     *slog.Logger

	mu       sync.Mutex
	open     bool
	query    string
	results  []entry.Entry
	selected int
	pending  bool
	seq      uint64
	version  uint64
	timer    Timer

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// NewController creates a closed session.
func NewController(searcher Searcher, dispatcher *navigate.Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		searcher:   searcher,
		dispatcher: dispatcher,
		debounce:   DefaultDebounce,
		scheduler:  realScheduler{},
		logger:     slog.Default(),
		listeners:  make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Debounce returns the configured debounce delay.
func (c *Controller) Debounce() time.Duration {
	return c.debounce
}

// Open shows the search UI with an empty query. Opening an open session is
// a no-op.
func (c *Controller) Open() {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return
	}
	c.open = true
	c.query = ""
	c.results = []entry.Entry{}
	c.selected = 0
	c.pending = false
	snap := c.commitLocked()
	c.mu.Unlock()

	c.logger.Debug("search session opened")
	c.notify(snap)
}

// SetQuery records a query edit and schedules a search after the debounce
// delay, cancelling any search scheduled by an earlier edit.
func (c *Controller) SetQuery(text string) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNotOpen
	}

	c.query = text
	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = true
	c.timer = c.scheduler.AfterFunc(c.debounce, func() {
		c.run(seq)
	})
	snap := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Flush runs a scheduled search immediately instead of waiting for the
// debounce delay. It reports whether a search was pending.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if !c.open || c.timer == nil {
		c.mu.Unlock()
		return false
	}
	stopped := c.timer.Stop()
	seq := c.seq
	c.mu.Unlock()

	if !stopped {
		// Already fired; that run owns the sequence.
		return false
	}
	c.run(seq)
	return true
}

// run searches the query recorded at seq and commits the results unless a
// newer edit or a close happened in the meantime.
func (c *Controller) run(seq uint64) {
	c.mu.Lock()
	if !c.open || seq != c.seq {
		c.mu.Unlock()
		return
	}
	query := c.query
	c.timer = nil
	c.mu.Unlock()

	start := time.Now()
	results := c.search(query)

	c.mu.Lock()
	if !c.open || seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarded stale search results",
			slog.String("query", query),
			slog.Uint64("seq", seq))
		return
	}
	c.results = results
	c.selected = 0
	c.pending = false
	snap := c.commitLocked()
	c.mu.Unlock()

	c.logger.Debug("search results committed",
		slog.String("query", query),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))
	c.notify(snap)
}

func (c *Controller) search(query string) []entry.Entry {
	if c.searcher == nil {
		return []entry.Entry{}
	}
	results := c.searcher.Search(query)
	if results == nil {
		return []entry.Entry{}
	}
	return slices.Clone(results)
}

// MoveSelection moves the highlight by delta, clamped to the result range.
// It is a no-op when the session is closed or has no results.
func (c *Controller) MoveSelection(delta int) {
	c.mu.Lock()
	if !c.open || len(c.results) == 0 {
		c.mu.Unlock()
		return
	}
	next := min(max(c.selected+delta, 0), len(c.results)-1)
	if next == c.selected {
		c.mu.Unlock()
		return
	}
	c.selected = next
	snap := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Confirm navigates to the selected entry and closes the session.
// With no results it does nothing and returns nil. Without a navigation
// callback it returns navigate.ErrMissingDispatcher and stays open.
func (c *Controller) Confirm() error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNotOpen
	}
	if len(c.results) == 0 {
		c.mu.Unlock()
		return nil
	}
	if !c.dispatcher.Configured() {
		c.mu.Unlock()
		c.logger.Error("confirm without navigation callback")
		return navigate.ErrMissingDispatcher
	}
	chosen := c.results[c.selected]
	c.mu.Unlock()

	// The callback runs unlocked so it may call back into the controller.
	if err := c.dispatcher.Dispatch(chosen); err != nil {
		return err
	}
	c.logger.Info("navigated to entry",
		slog.String("id", chosen.ID),
		slog.String("path", chosen.Path))
	c.Close()
	return nil
}

// Close hides the search UI and resets the session. Any scheduled or
// in-flight search is abandoned. Closing a closed session is a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++
	c.open = false
	c.query = ""
	c.results = nil
	c.selected = 0
	c.pending = false
	snap := c.commitLocked()
	c.mu.Unlock()

	c.logger.Debug("search session closed")
	c.notify(snap)
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// OnStateChange registers l and returns a function that unregisters it.
func (c *Controller) OnStateChange(l Listener) (unsubscribe func()) {
	c.listenerMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

// commitLocked bumps the version and returns the new snapshot.
// c.mu must be held.
func (c *Controller) commitLocked() State {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	return State{
		Open:     c.open,
		Query:    c.query,
		Results:  slices.Clone(c.results),
		Selected: c.selected,
		Pending:  c.pending,
		Version:  c.version,
	}
}

// notify delivers snap to listeners in registration order. No controller
// lock is held, so listeners may call back into the controller.
func (c *Controller) notify(snap State) {
	c.listenerMu.Lock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, c.listeners[id])
	}
	c.listenerMu.Unlock()

	for _, l := range ls {
		s := snap
		s.Results = slices.Clone(snap.Results)
		l(s)
	}
}
