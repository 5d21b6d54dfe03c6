package docsearch

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/docsearch/internal/entry"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/navigate"
	"github.com/Aman-CERP/docsearch/internal/search"
	"github.com/Aman-CERP/docsearch/internal/session"
	"github.com/Aman-CERP/docsearch/internal/store"
	"github.com/Aman-CERP/docsearch/internal/telemetry"
)

// Re-exported types so callers outside this module can name them.
type (
	Entry        = entry.Entry
	Section      = entry.Section
	Result       = search.Result
	QueryOptions = search.Options
	State        = session.State
	Scheduler    = session.Scheduler
	NavigateFunc = navigate.Func

	QueryMetrics    = telemetry.QueryMetrics
	MetricsSnapshot = telemetry.Snapshot
	MetricsConfig   = telemetry.Config
	LatencyBucket   = telemetry.LatencyBucket
	TermCount       = telemetry.TermCount
)

// Sections.
const (
	SectionTutorial = entry.SectionTutorial
	SectionNote     = entry.SectionNote
	SectionExample  = entry.SectionExample
	SectionGlossary = entry.SectionGlossary
)

// Defaults.
const (
	DefaultDebounce  = session.DefaultDebounce
	DefaultLimit     = search.DefaultLimit
	DefaultCacheSize = search.DefaultCacheSize
)

type options struct {
	debounce  time.Duration
	limit     int
	priority  []entry.Section
	cacheSize int
	scheduler session.Scheduler
	metrics   *telemetry.QueryMetrics
	logger    *slog.Logger
}

// Option configures a Search.
type Option func(*options)

// WithDebounce sets the delay between the last query edit and the search.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithLimit sets the maximum number of results shown by the session.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithSectionPriority sets the section order used to break score ties.
func WithSectionPriority(sections ...Section) Option {
	return func(o *options) {
		o.priority = slices.Clone(sections)
	}
}

// WithCacheSize sets the number of cached queries. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithScheduler replaces runtime timers for the debounce.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// NewQueryMetrics returns an empty metrics sink for WithMetrics.
func NewQueryMetrics() *QueryMetrics {
	return telemetry.NewQueryMetrics()
}

// NewQueryMetricsWithConfig is NewQueryMetrics with explicit capacities.
func NewQueryMetricsWithConfig(cfg MetricsConfig) *QueryMetrics {
	return telemetry.NewQueryMetricsWithConfig(cfg)
}

// WithMetrics records every search to m.
func WithMetrics(m *QueryMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func (o *options) validate() error {
	if o.debounce < 0 {
		return doerrors.New(doerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("debounce must not be negative, got %s", o.debounce), nil).
			WithDetail("debounce", o.debounce.String())
	}
	if o.limit < 0 {
		return doerrors.New(doerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("limit must not be negative, got %d", o.limit), nil).
			WithDetail("limit", fmt.Sprint(o.limit))
	}
	if o.cacheSize < 0 {
		return doerrors.New(doerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("cache size must not be negative, got %d", o.cacheSize), nil).
			WithDetail("cache_size", fmt.Sprint(o.cacheSize))
	}
	return nil
}

// corpus is one registry with the index built from it.
type corpus struct {
	registry *entry.Registry
	index    *store.Index
	warnings []error
}

// Search is the assembled search component. It is safe for concurrent use.
type Search struct {
	opts       options
	engine     *search.Engine
	controller *session.Controller
	current    atomic.Pointer[corpus]
}

// New registers entries, builds the index and wires the session.
//
// Duplicate ids do not fail construction: the first entry wins and the
// rest are reported by Warnings. A nil dispatch is accepted; Confirm then
// returns an error matching navigate.ErrMissingDispatcher.
func New(entries []Entry, dispatch NavigateFunc, opts ...Option) (*Search, error) {
	o := options{
		debounce:  DefaultDebounce,
		limit:     DefaultLimit,
		priority:  slices.Clone(entry.DefaultSectionPriority),
		cacheSize: DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	s := &Search{opts: o}
	s.engine = search.NewEngine(
		search.WithSectionPriority(o.priority),
		search.WithCacheSize(o.cacheSize),
		search.WithMetrics(o.metrics),
		search.WithLogger(o.logger),
	)
	s.current.Store(s.build(entries))

	ctrlOpts := []session.Option{
		session.WithDebounce(o.debounce),
		session.WithLogger(o.logger),
	}
	if o.scheduler != nil {
		ctrlOpts = append(ctrlOpts, session.WithScheduler(o.scheduler))
	}
	s.controller = session.NewController(
		session.SearcherFunc(s.sessionSearch),
		navigate.NewDispatcher(dispatch),
		ctrlOpts...,
	)

	return s, nil
}

func (s *Search) build(entries []Entry) *corpus {
	start := time.Now()

	reg := entry.NewRegistry(entry.WithLogger(s.opts.logger))
	warnings := reg.RegisterAll(entries)
	idx := store.BuildFromRegistry(reg)

	s.opts.logger.Info("search index built",
		slog.Int("entries", idx.Len()),
		slog.Int("tokens", idx.TokenCount()),
		slog.Int("warnings", len(warnings)),
		slog.Duration("duration", time.Since(start)))

	return &corpus{registry: reg, index: idx, warnings: warnings}
}

func (s *Search) sessionSearch(query string) []entry.Entry {
	return s.engine.SearchEntries(s.current.Load().index, query, s.opts.limit)
}

// Reload replaces the entries. The new index is built before the swap, so
// concurrent searches see either the old or the new set, never a mix.
// It returns the duplicate-id warnings of the new set.
func (s *Search) Reload(entries []Entry) []error {
	c := s.build(entries)
	s.current.Store(c)
	return slices.Clone(c.warnings)
}

// Warnings returns the duplicate-id warnings from the last build.
func (s *Search) Warnings() []error {
	return slices.Clone(s.current.Load().warnings)
}

// Entries returns the registered entries in registration order.
func (s *Search) Entries() []Entry {
	return s.current.Load().registry.All()
}

// Get returns the entry registered under id.
func (s *Search) Get(id string) (Entry, bool) {
	return s.current.Load().registry.Get(id)
}

// Len returns the number of registered entries.
func (s *Search) Len() int {
	return s.current.Load().index.Len()
}

// Query runs the engine directly with the configured limit.
func (s *Search) Query(q string) []Result {
	return s.engine.Search(s.current.Load().index, q, s.opts.limit)
}

// QueryWith runs the engine directly with explicit options.
// A zero limit uses the configured one.
func (s *Search) QueryWith(q string, opts QueryOptions) []Result {
	if opts.Limit <= 0 {
		opts.Limit = s.opts.limit
	}
	return s.engine.SearchWithOptions(s.current.Load().index, q, opts)
}

// SectionPriority returns the tie-break order in use.
func (s *Search) SectionPriority() []Section {
	return s.engine.SectionPriority()
}

// Metrics returns the metrics sink, or nil when none was configured.
func (s *Search) Metrics() *QueryMetrics {
	return s.opts.metrics
}

// Debounce returns the configured debounce delay.
func (s *Search) Debounce() time.Duration {
	return s.controller.Debounce()
}

// Open shows the search UI with an empty query.
func (s *Search) Open() { s.controller.Open() }

// SetQuery records a query edit; the search runs after the debounce delay.
func (s *Search) SetQuery(text string) error { return s.controller.SetQuery(text) }

// MoveSelection moves the highlight by delta, clamped to the results.
func (s *Search) MoveSelection(delta int) { s.controller.MoveSelection(delta) }

// Confirm navigates to the highlighted entry and closes the session.
func (s *Search) Confirm() error { return s.controller.Confirm() }

// Close hides the search UI and discards the query and results.
func (s *Search) Close() { s.controller.Close() }

// Flush runs a scheduled search now. It reports whether one was pending.
func (s *Search) Flush() bool { return s.controller.Flush() }

// State returns a snapshot of the session.
func (s *Search) State() State { return s.controller.State() }

// OnStateChange registers fn for every session transition.
func (s *Search) OnStateChange(fn func(State)) (unsubscribe func()) {
	return s.controller.OnStateChange(fn)
}
