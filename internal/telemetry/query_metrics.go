// Package telemetry provides in-memory query metrics for the search engine.
// Nothing is persisted; metrics live as long as the process.
package telemetry

import (
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketUnder1ms  LatencyBucket = "lt1ms"
	BucketUnder5ms  LatencyBucket = "lt5ms"
	BucketUnder16ms LatencyBucket = "lt16ms" // one 60Hz frame
	BucketSlow      LatencyBucket = "slow"
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Millisecond:
		return BucketUnder1ms
	case d < 5*time.Millisecond:
		return BucketUnder5ms
	case d < 16*time.Millisecond:
		return BucketUnder16ms
	default:
		return BucketSlow
	}
}

// QueryEvent represents a single search for telemetry recording.
type QueryEvent struct {
	Query       string
	Terms       []string // normalized tokens
	ResultCount int
	Latency     time.Duration
	CacheHit    bool
}

// IsZeroResult returns true if this query returned no results.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// Config bounds the memory used by QueryMetrics.
type Config struct {
	// TopTermsCapacity is how many distinct terms are tracked (default 100).
	TopTermsCapacity int
	// ZeroResultsCapacity is how many recent zero-result queries are kept (default 50).
	ZeroResultsCapacity int
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		TopTermsCapacity:    100,
		ZeroResultsCapacity: 50,
	}
}

// TermCount is a term and how often it was searched.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the metrics.
type Snapshot struct {
	TotalQueries      int64                   `json:"total_queries"`
	ZeroResultQueries int64                   `json:"zero_result_queries"`
	CacheHits         int64                   `json:"cache_hits"`
	Latencies         map[LatencyBucket]int64 `json:"latencies"`
	TopTerms          []TermCount             `json:"top_terms"`
	RecentZeroResults []string                `json:"recent_zero_results"`
	Uptime            time.Duration           `json:"uptime"`
}

// ZeroResultPercentage returns the share of queries that matched nothing.
func (s Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultQueries) / float64(s.TotalQueries) * 100
}

// QueryMetrics collects query telemetry.
// Thread-safe for concurrent access.
type QueryMetrics struct {
	mu sync.Mutex

	topTerms    *lru.Cache[string, int64]
	zeroResults []string
	zeroCap     int
	latencies   map[LatencyBucket]int64
	total       int64
	zeroCount   int64
	cacheHits   int64
	startTime   time.Time
}

// NewQueryMetrics creates a collector with default configuration.
func NewQueryMetrics() *QueryMetrics {
	return NewQueryMetricsWithConfig(DefaultConfig())
}

// NewQueryMetricsWithConfig creates a collector with custom configuration.
func NewQueryMetricsWithConfig(cfg Config) *QueryMetrics {
	if cfg.TopTermsCapacity <= 0 {
		cfg.TopTermsCapacity = 100
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = 50
	}

	topTerms, _ := lru.New[string, int64](cfg.TopTermsCapacity)

	return &QueryMetrics{
		topTerms:  topTerms,
		zeroCap:   cfg.ZeroResultsCapacity,
		latencies: make(map[LatencyBucket]int64),
		startTime: time.Now(),
	}
}

// Record captures metrics from one search. Safe to call on a nil receiver.
func (m *QueryMetrics) Record(event QueryEvent) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if event.CacheHit {
		m.cacheHits++
	}

	for _, term := range event.Terms {
		count, _ := m.topTerms.Get(term)
		m.topTerms.Add(term, count+1)
	}

	if event.IsZeroResult() {
		m.zeroCount++
		m.zeroResults = append(m.zeroResults, event.Query)
		if len(m.zeroResults) > m.zeroCap {
			m.zeroResults = m.zeroResults[len(m.zeroResults)-m.zeroCap:]
		}
	}

	m.latencies[LatencyToBucket(event.Latency)]++
}

// Snapshot returns a copy of the current metrics. Top terms are ordered by
// count descending, then term ascending.
func (m *QueryMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		TotalQueries:      m.total,
		ZeroResultQueries: m.zeroCount,
		CacheHits:         m.cacheHits,
		Latencies:         make(map[LatencyBucket]int64, len(m.latencies)),
		RecentZeroResults: append([]string(nil), m.zeroResults...),
		Uptime:            time.Since(m.startTime),
	}
	for k, v := range m.latencies {
		snap.Latencies[k] = v
	}

	for _, term := range m.topTerms.Keys() {
		if count, ok := m.topTerms.Peek(term); ok {
			snap.TopTerms = append(snap.TopTerms, TermCount{Term: term, Count: count})
		}
	}
	sort.Slice(snap.TopTerms, func(i, j int) bool {
		if snap.TopTerms[i].Count != snap.TopTerms[j].Count {
			return snap.TopTerms[i].Count > snap.TopTerms[j].Count
		}
		return snap.TopTerms[i].Term < snap.TopTerms[j].Term
	})

	return snap
}
