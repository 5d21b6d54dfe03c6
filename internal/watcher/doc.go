// Package watcher reports changes to a documentation tree so the search
// index can be rebuilt.
//
// A Watcher registers every directory under the content root with
// fsnotify, drops events the caller's filter rejects, and coalesces the
// rest through a Debouncer so an editor save or a git checkout produces a
// single batch.
//
// Usage:
//
//	w, err := watcher.New(watcher.Options{
//	    DebounceWindow: 300 * time.Millisecond,
//	    Filter:         loader.Matches,
//	    SkipDir:        loader.Excluded,
//	})
//	if err != nil {
//	    return err
//	}
//	go func() { _ = w.Start(ctx, dir) }()
//
//	for batch := range w.Events() {
//	    // reload content
//	}
package watcher
