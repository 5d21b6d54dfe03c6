// Package output provides consistent CLI output formatting.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Aman-CERP/docsearch/internal/search"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Results prints ranked entries as aligned columns:
// rank, section, title, path, score.
func (w *Writer) Results(query string, results []search.Result) {
	if len(results) == 0 {
		_, _ = fmt.Fprintf(w.out, "no matches for %q\n", query)
		return
	}

	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	for i, r := range results {
		_, _ = fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\t%d\n",
			i+1, r.Entry.Section, r.Entry.Title, r.Entry.Path, r.Score)
	}
	_ = tw.Flush()
}

// ResultJSON is the JSON form of one ranked entry.
type ResultJSON struct {
	Rank         int      `json:"rank"`
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Section      string   `json:"section"`
	Path         string   `json:"path"`
	Score        int      `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// ResultsJSON converts ranked entries for JSON output.
// Returns an empty, non-nil slice for no results.
func ResultsJSON(results []search.Result) []ResultJSON {
	out := make([]ResultJSON, len(results))
	for i, r := range results {
		out[i] = ResultJSON{
			Rank:         i + 1,
			ID:           r.Entry.ID,
			Title:        r.Entry.Title,
			Section:      r.Entry.Section.String(),
			Path:         r.Entry.Path,
			Score:        r.Score,
			MatchedTerms: r.MatchedTerms,
		}
	}
	return out
}

// JSON writes v as indented JSON followed by a newline.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
