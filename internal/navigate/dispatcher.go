// Package navigate forwards a confirmed entry to the host's router.
package navigate

import (
	"github.com/Aman-CERP/docsearch/internal/entry"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// ErrMissingDispatcher is matched (via errors.Is) when a confirm happens
// without a navigation callback. It indicates a wiring bug in the host.
var ErrMissingDispatcher = doerrors.New(doerrors.ErrCodeMissingDispatcher,
	"no navigation callback configured", nil).
	WithSuggestion("pass a dispatch function when constructing the search")

// Func receives the path of the confirmed entry. It is owned by the host.
type Func func(path string)

// Dispatcher hands confirmed entries to a Func.
type Dispatcher struct {
	fn Func
}

// NewDispatcher wraps fn. A nil fn is accepted; Dispatch reports it.
func NewDispatcher(fn Func) *Dispatcher {
	return &Dispatcher{fn: fn}
}

// Configured reports whether a callback is present.
func (d *Dispatcher) Configured() bool {
	return d != nil && d.fn != nil
}

// Dispatch calls the callback with e.Path, synchronously.
// The path is forwarded as-is.
func (d *Dispatcher) Dispatch(e entry.Entry) error {
	if !d.Configured() {
		return ErrMissingDispatcher
	}
	d.fn(e.Path)
	return nil
}
