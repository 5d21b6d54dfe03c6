package search

import (
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/docsearch/internal/entry"
	"github.com/Aman-CERP/docsearch/internal/store"
	"github.com/Aman-CERP/docsearch/internal/telemetry"
)

// DefaultCacheSize is the number of distinct queries whose results are cached.
const DefaultCacheSize = 256

// Engine scores and ranks entries from an index.
// It is safe for concurrent use.
type Engine struct {
	sectionRank map[entry.Section]int
	priority    []entry.Section
	cache       *lru.Cache[string, []Result]
	metrics     *telemetry.QueryMetrics
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSectionPriority sets the section order used to break score ties.
// Sections not listed rank after all listed ones.
func WithSectionPriority(sections []entry.Section) Option {
	return func(e *Engine) {
		if len(sections) > 0 {
			e.priority = slices.Clone(sections)
		}
	}
}

// WithCacheSize sets how many query results are cached. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			e.cache = nil
			return
		}
		e.cache, _ = lru.New[string, []Result](n)
	}
}

// WithMetrics records every search to m.
func WithMetrics(m *telemetry.QueryMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with the default section priority and cache.
func NewEngine(opts ...Option) *Engine {
	cache, _ := lru.New[string, []Result](DefaultCacheSize)
	e := &Engine{
		priority: slices.Clone(entry.DefaultSectionPriority),
		cache:    cache,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.sectionRank = make(map[entry.Section]int, len(e.priority))
	for i, s := range e.priority {
		if _, seen := e.sectionRank[s]; !seen {
			e.sectionRank[s] = i
		}
	}
	return e
}

// SectionPriority returns the configured tie-break order.
func (e *Engine) SectionPriority() []entry.Section {
	return slices.Clone(e.priority)
}

// Search returns at most limit entries from idx ranked against rawQuery.
// A query with no usable tokens returns an empty slice, never every entry.
func (e *Engine) Search(idx *store.Index, rawQuery string, limit int) []Result {
	return e.SearchWithOptions(idx, rawQuery, Options{Limit: limit})
}

// SearchEntries is Search without scores.
func (e *Engine) SearchEntries(idx *store.Index, rawQuery string, limit int) []entry.Entry {
	return Entries(e.Search(idx, rawQuery, limit))
}

// SearchWithOptions is Search with section filtering.
func (e *Engine) SearchWithOptions(idx *store.Index, rawQuery string, opts Options) []Result {
	start := time.Now()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := store.UniqueTokens(rawQuery)
	if idx == nil || len(tokens) == 0 {
		e.record(rawQuery, tokens, 0, start, false)
		return []Result{}
	}

	key := cacheKey(idx.Generation(), limit, opts.Sections, tokens)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.record(rawQuery, tokens, len(cached), start, true)
			return slices.Clone(cached)
		}
	}

	results := e.rank(idx, tokens, opts.Sections)
	if len(results) > limit {
		results = results[:limit:limit]
	}

	if e.cache != nil {
		e.cache.Add(key, slices.Clone(results))
	}
	e.record(rawQuery, tokens, len(results), start, false)

	e.logger.Debug("search",
		slog.String("query", rawQuery),
		slog.Int("tokens", len(tokens)),
		slog.Int("results", len(results)),
		slog.Duration("took", time.Since(start)))

	return results
}

// rank scores every candidate entry and sorts them.
func (e *Engine) rank(idx *store.Index, tokens []string, sections []entry.Section) []Result {
	scores := make(map[string]int)
	matched := make(map[string][]string)

	for _, q := range tokens {
		best := bestContributions(idx, q)
		for id, points := range best {
			scores[id] += points
			matched[id] = append(matched[id], q)
		}
	}

	results := make([]Result, 0, len(scores))
	for id, score := range scores {
		en, ok := idx.Entry(id)
		if !ok {
			continue
		}
		if len(sections) > 0 && !slices.Contains(sections, en.Section) {
			continue
		}
		results = append(results, Result{
			Entry:        en,
			Score:        score,
			MatchedTerms: matched[id],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return e.less(idx, results[i], results[j])
	})
	return results
}

// bestContributions returns, per entry, the highest contribution any indexed
// token starting with q makes.
func bestContributions(idx *store.Index, q string) map[string]int {
	best := make(map[string]int)
	for _, t := range idx.TokensWithPrefix(q) {
		base := PrefixMatchPoints
		if t == q {
			base = ExactMatchPoints
		}
		for _, p := range idx.Postings(t) {
			points := base*p.Weight + min(p.Frequency, MaxFrequencyBonus)
			if points > best[p.EntryID] {
				best[p.EntryID] = points
			}
		}
	}
	return best
}

// less orders by score desc, section priority, title, then build position.
func (e *Engine) less(idx *store.Index, a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if ra, rb := e.sectionPosition(a.Entry.Section), e.sectionPosition(b.Entry.Section); ra != rb {
		return ra < rb
	}
	if a.Entry.Title != b.Entry.Title {
		return a.Entry.Title < b.Entry.Title
	}
	return idx.Position(a.Entry.ID) < idx.Position(b.Entry.ID)
}

// sectionPosition returns the priority position of s; unlisted sections sort last.
func (e *Engine) sectionPosition(s entry.Section) int {
	if r, ok := e.sectionRank[s]; ok {
		return r
	}
	return len(e.priority)
}

func (e *Engine) record(query string, tokens []string, n int, start time.Time, hit bool) {
	if e.metrics == nil {
		return
	}
	e.metrics.Record(telemetry.QueryEvent{
		Query:       query,
		Terms:       tokens,
		ResultCount: n,
		Latency:     time.Since(start),
		CacheHit:    hit,
	})
}

func cacheKey(gen uint64, limit int, sections []entry.Section, tokens []string) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(gen, 10))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(limit))
	sb.WriteByte('|')
	for _, s := range sections {
		sb.WriteString(string(s))
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	sb.WriteString(strings.Join(tokens, " "))
	return sb.String()
}
