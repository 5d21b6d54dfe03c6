package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	QueryMetricsURI  = "docsearch://query_metrics"
	EntryURITemplate = "docsearch://entries/{id}"
	entryURIPrefix   = "docsearch://entries/"
	jsonMIMEType     = "application/json"
)

// registerEntryResources exposes every registered entry as a JSON
// resource addressed by id.
func (s *Server) registerEntryResources() {
	s.mcp.AddResourceTemplate(
		&mcp.ResourceTemplate{
			Name:        "entry",
			URITemplate: EntryURITemplate,
			Description: "A documentation entry (id, title, section, path, keywords)",
			MIMEType:    jsonMIMEType,
		},
		s.handleReadEntry,
	)
}

// handleReadEntry resolves docsearch://entries/{id}.
func (s *Server) handleReadEntry(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, ok := strings.CutPrefix(uri, entryURIPrefix)
	if !ok || id == "" {
		return nil, NewResourceNotFoundError(uri)
	}

	e, ok := s.index.Get(id)
	if !ok {
		return nil, NewResourceNotFoundError(uri)
	}

	content, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonMIMEType,
				Text:     string(content),
			},
		},
	}, nil
}

// QueryMetricsOutput is the JSON structure for the query_metrics resource.
type QueryMetricsOutput struct {
	Summary             QueryMetricsSummary `json:"summary"`
	TopTerms            []QueryTermCount    `json:"top_terms"`
	ZeroResultQueries   []string            `json:"zero_result_queries"`
	LatencyDistribution map[string]int64    `json:"latency_distribution"`
}

// QueryMetricsSummary provides overview statistics.
type QueryMetricsSummary struct {
	TotalQueries  int64   `json:"total_queries"`
	CacheHits     int64   `json:"cache_hits"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ZeroResultPct float64 `json:"zero_result_pct"`
}

// QueryTermCount represents a term and its frequency.
type QueryTermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// registerQueryMetricsResource registers the query_metrics resource.
func (s *Server) registerQueryMetricsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "query_metrics",
			URI:         QueryMetricsURI,
			Description: "In-memory query telemetry: volume, zero-result queries, latency, top terms",
			MIMEType:    jsonMIMEType,
		},
		s.handleQueryMetrics,
	)
}

// handleQueryMetrics renders the current telemetry snapshot.
func (s *Server) handleQueryMetrics(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	s.mu.RLock()
	metrics := s.metrics
	s.mu.RUnlock()

	if metrics == nil {
		return nil, NewInvalidParamsError("query metrics not available")
	}

	snapshot := metrics.Snapshot()

	output := QueryMetricsOutput{
		Summary: QueryMetricsSummary{
			TotalQueries:  snapshot.TotalQueries,
			CacheHits:     snapshot.CacheHits,
			UptimeSeconds: snapshot.Uptime.Seconds(),
			ZeroResultPct: snapshot.ZeroResultPercentage(),
		},
		TopTerms:            make([]QueryTermCount, 0, len(snapshot.TopTerms)),
		ZeroResultQueries:   snapshot.RecentZeroResults,
		LatencyDistribution: make(map[string]int64, len(snapshot.Latencies)),
	}
	if output.ZeroResultQueries == nil {
		output.ZeroResultQueries = []string{}
	}

	for _, tc := range snapshot.TopTerms {
		output.TopTerms = append(output.TopTerms, QueryTermCount{
			Term:  tc.Term,
			Count: tc.Count,
		})
	}
	for bucket, count := range snapshot.Latencies {
		output.LatencyDistribution[string(bucket)] = count
	}

	content, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      QueryMetricsURI,
				MIMEType: jsonMIMEType,
				Text:     string(content),
			},
		},
	}, nil
}
