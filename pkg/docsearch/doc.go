// Package docsearch provides instant search over a fixed set of
// documentation entries.
//
// A [Search] bundles the pieces a host needs for a search-as-you-type box:
//
//   - an entry registry and a prefix index built eagerly from it
//   - a query engine with deterministic ranking
//   - a debounced session controller holding the open/closed state, the
//     query text, the results and the selection
//   - a navigation callback invoked with the path of a confirmed entry
//
// # Usage
//
//	s, err := docsearch.New(entries, func(path string) {
//	    router.Go(path)
//	})
//	if err != nil {
//	    return err
//	}
//
//	s.OnStateChange(func(st docsearch.State) {
//	    render(st)
//	})
//
//	s.Open()
//	_ = s.SetQuery("cou")     // searched after the debounce delay
//	s.MoveSelection(1)
//	_ = s.Confirm()           // calls the navigation callback, then closes
//
// The host owns the keyboard binding and rendering. Query runs the engine
// directly, bypassing the session, for one-shot lookups.
//
// # Refreshing content
//
// Entries are fixed per index. [Search.Reload] builds a new registry and
// index and swaps them in; an open session uses the new index on its next
// search.
package docsearch
