package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Aman-CERP/docsearch/internal/session"
)

// RunPlain drives the session from line input. Each line replaces the
// query and prints the ranked results; a line ":N" opens result N of the
// last query. Input ends the session at EOF.
func RunPlain(ctx context.Context, s Searcher, cfg Config) error {
	in := cfg.Input
	if in == nil {
		in = os.Stdin
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	s.Open()
	defer s.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())

		if n, ok := parseOpen(line); ok {
			if err := openResult(s, out, n); err != nil {
				return err
			}
			continue
		}

		if !s.State().Open {
			s.Open()
		}
		if err := s.SetQuery(line); err != nil {
			return err
		}
		s.Flush()
		st, err := waitSettled(ctx, s)
		if err != nil {
			return err
		}
		printResults(out, st)
	}
	return scanner.Err()
}

func parseOpen(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, ":")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return n, true
}

// openResult selects the 1-based result n and confirms it, then reopens
// the session for the next query.
func openResult(s Searcher, out io.Writer, n int) error {
	st := s.State()
	if !st.Open || n < 1 || n > len(st.Results) {
		_, _ = fmt.Fprintf(out, "no result %d\n", n)
		return nil
	}
	s.MoveSelection(n - 1 - st.Selected)
	if err := s.Confirm(); err != nil {
		return err
	}
	s.Open()
	return nil
}

// waitSettled returns the first state without a pending search.
func waitSettled(ctx context.Context, s Searcher) (session.State, error) {
	settled := make(chan session.State, 1)
	unsubscribe := s.OnStateChange(func(st session.State) {
		if !st.Pending {
			select {
			case settled <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	if st := s.State(); !st.Pending {
		return st, nil
	}
	select {
	case st := <-settled:
		return st, nil
	case <-ctx.Done():
		return session.State{}, ctx.Err()
	}
}

func printResults(out io.Writer, st session.State) {
	if strings.TrimSpace(st.Query) == "" {
		return
	}
	if len(st.Results) == 0 {
		_, _ = fmt.Fprintf(out, "no matches for %q\n", st.Query)
		return
	}
	for i, e := range st.Results {
		_, _ = fmt.Fprintf(out, "%d. %s  [%s]  %s\n", i+1, e.Title, SectionLabel(e.Section), e.Path)
	}
}
