package mcp

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/docsearch/internal/search"
)

// FormatResults formats ranked entries as markdown for the text content
// of a search_docs result.
func FormatResults(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No documentation found for \"%s\"", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Documentation Results for \"%s\"\n\n", query)
	fmt.Fprintf(&sb, "Found %d result", len(results))
	if len(results) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range results {
		formatResult(&sb, i+1, r)
	}

	return sb.String()
}

// formatResult formats a single entry.
func formatResult(sb *strings.Builder, num int, r search.Result) {
	fmt.Fprintf(sb, "### %d. %s (score: %d)\n", num, r.Entry.Title, r.Score)
	fmt.Fprintf(sb, "**Section:** %s | **Path:** `%s`\n", r.Entry.Section, r.Entry.Path)
	if reason := matchReason(r); reason != "" {
		fmt.Fprintf(sb, "%s\n", reason)
	}
	sb.WriteString("\n")
}

// matchReason explains which query terms matched.
func matchReason(r search.Result) string {
	if len(r.MatchedTerms) == 0 {
		return ""
	}
	terms := r.MatchedTerms
	if len(terms) > 5 {
		terms = terms[:5]
	}
	return "**Matched:** " + strings.Join(terms, ", ")
}

// FormatSections formats section counts as a markdown table.
func FormatSections(out ListSectionsOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Sections (%d entries)\n\n", out.Total)
	sb.WriteString("| Rank | Section | Entries |\n")
	sb.WriteString("|------|---------|---------|\n")
	for _, sc := range out.Sections {
		fmt.Fprintf(&sb, "| %d | %s | %d |\n", sc.Rank, sc.Name, sc.Count)
	}
	return sb.String()
}

// clampLimit ensures limit is within bounds.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		limit = defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
