package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/docsearch/internal/config"
	"github.com/Aman-CERP/docsearch/internal/entry"
	"github.com/Aman-CERP/docsearch/internal/search"
	"github.com/Aman-CERP/docsearch/internal/telemetry"
	"github.com/Aman-CERP/docsearch/pkg/version"
)

// Tool result limits.
const (
	MinLimit = 1
	MaxLimit = 50
)

// Index is the read side of the search component the server needs.
// *docsearch.Search implements it.
type Index interface {
	QueryWith(q string, opts search.Options) []search.Result
	Entries() []entry.Entry
	Get(id string) (entry.Entry, bool)
	Len() int
	SectionPriority() []entry.Section
}

// Server is the MCP server for docsearch.
// It lets AI clients query the same index the palette uses.
type Server struct {
	mcp    *mcp.Server
	index  Index
	config *config.Config
	logger *slog.Logger

	// Query telemetry (optional, set via SetMetrics)
	metrics *telemetry.QueryMetrics

	mu sync.RWMutex
}

// SearchDocsInput defines the input schema for the search_docs tool.
type SearchDocsInput struct {
	Query   string `json:"query" jsonschema:"words to look up; the last word may be a prefix"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results, default from config"`
	Section string `json:"section,omitempty" jsonschema:"restrict to one section: tutorial, note, example, glossary"`
}

// SearchDocsOutput defines the output schema for the search_docs tool.
type SearchDocsOutput struct {
	Query   string         `json:"query" jsonschema:"the query as received"`
	Results []ResultOutput `json:"results" jsonschema:"ranked entries, best first"`
}

// ResultOutput is one ranked entry.
type ResultOutput struct {
	ID           string   `json:"id" jsonschema:"entry id"`
	Title        string   `json:"title" jsonschema:"entry title"`
	Section      string   `json:"section" jsonschema:"entry section"`
	Path         string   `json:"path" jsonschema:"navigation target"`
	Keywords     []string `json:"keywords,omitempty" jsonschema:"entry keywords"`
	Score        int      `json:"score" jsonschema:"relevance score, higher is better"`
	MatchedTerms []string `json:"matched_terms,omitempty" jsonschema:"query terms that matched this entry"`
}

// ListSectionsInput defines the (empty) input schema for list_sections.
type ListSectionsInput struct{}

// ListSectionsOutput defines the output schema for list_sections.
type ListSectionsOutput struct {
	Total    int            `json:"total" jsonschema:"number of registered entries"`
	Sections []SectionCount `json:"sections" jsonschema:"sections in ranking priority order"`
}

// SectionCount is the number of entries in one section.
type SectionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Rank  int    `json:"rank" jsonschema:"tie-break rank, 1 is preferred"`
}

// NewServer creates a new MCP server over index.
func NewServer(index Index, cfg *config.Config) (*Server, error) {
	if index == nil {
		return nil, errors.New("search index is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		index:  index,
		config: cfg,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    version.Name,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerEntryResources()

	return s, nil
}

// SetLogger replaces the default logger.
func (s *Server) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

// SetMetrics sets the query metrics collector.
// When set, a query_metrics resource is registered.
func (s *Server) SetMetrics(m *telemetry.QueryMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m

	if m != nil {
		s.registerQueryMetricsResource()
	}
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) log() *slog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_docs",
		Description: "Search documentation entries by title and keywords. Matching is prefix-based, so partial words work. Optionally restrict to one section.",
	}, s.handleSearchDocs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_sections",
		Description: "List documentation sections with entry counts, in the order used to break ranking ties.",
	}, s.handleListSections)

	s.log().Debug("MCP tools registered", slog.Int("count", 2))
}

// handleSearchDocs is the MCP SDK handler for the search_docs tool.
func (s *Server) handleSearchDocs(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocsInput) (
	*mcp.CallToolResult,
	SearchDocsOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()
	logger := s.log()

	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchDocsOutput{}, NewInvalidParamsError("query cannot be empty or whitespace only")
	}
	if err := ctx.Err(); err != nil {
		return nil, SearchDocsOutput{}, MapError(err)
	}
	if s.index.Len() == 0 {
		return nil, SearchDocsOutput{}, MapError(ErrNoEntries)
	}

	opts := search.Options{
		Limit: clampLimit(input.Limit, s.config.Search.Limit, MinLimit, MaxLimit),
	}
	if input.Section != "" {
		section := entry.ParseSection(input.Section)
		if !section.IsKnown() {
			return nil, SearchDocsOutput{}, NewInvalidParamsError(fmt.Sprintf(
				"unknown section %q (valid: %s)", input.Section, joinSections(entry.DefaultSectionPriority)))
		}
		opts.Sections = []entry.Section{section}
	}

	logger.Info("search_docs started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", opts.Limit))

	results := s.index.QueryWith(input.Query, opts)

	logger.Info("search_docs completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", len(results)))

	output := SearchDocsOutput{
		Query:   input.Query,
		Results: make([]ResultOutput, 0, len(results)),
	}
	for _, r := range results {
		output.Results = append(output.Results, ToResultOutput(r))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatResults(input.Query, results)}},
	}, output, nil
}

// handleListSections is the MCP SDK handler for the list_sections tool.
func (s *Server) handleListSections(_ context.Context, _ *mcp.CallToolRequest, _ ListSectionsInput) (
	*mcp.CallToolResult,
	ListSectionsOutput,
	error,
) {
	output := s.sectionCounts()
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSections(output)}},
	}, output, nil
}

// sectionCounts counts entries per section in priority order. Sections
// outside the priority list are folded into "other", which ranks last.
func (s *Server) sectionCounts() ListSectionsOutput {
	priority := s.index.SectionPriority()
	counts := make(map[entry.Section]int, len(priority)+1)
	entries := s.index.Entries()
	for _, e := range entries {
		if !slices.Contains(priority, e.Section) {
			counts[entry.SectionUnknown]++
			continue
		}
		counts[e.Section]++
	}

	out := ListSectionsOutput{
		Total:    len(entries),
		Sections: make([]SectionCount, 0, len(priority)+1),
	}
	for i, sec := range priority {
		out.Sections = append(out.Sections, SectionCount{Name: sec.String(), Count: counts[sec], Rank: i + 1})
	}
	if n := counts[entry.SectionUnknown]; n > 0 {
		out.Sections = append(out.Sections, SectionCount{
			Name:  entry.SectionUnknown.String(),
			Count: n,
			Rank:  len(priority) + 1,
		})
	}
	return out
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	logger := s.log()
	logger.Info("Starting MCP server",
		slog.String("transport", transport),
		slog.Int("entries", s.index.Len()))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// ToResultOutput converts a ranked result to its wire form.
func ToResultOutput(r search.Result) ResultOutput {
	return ResultOutput{
		ID:           r.Entry.ID,
		Title:        r.Entry.Title,
		Section:      r.Entry.Section.String(),
		Path:         r.Entry.Path,
		Keywords:     r.Entry.Keywords,
		Score:        r.Score,
		MatchedTerms: r.MatchedTerms,
	}
}

func joinSections(sections []entry.Section) string {
	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = sec.String()
	}
	return strings.Join(names, ", ")
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	return uuid.NewString()[:8]
}
