package entry

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// ErrDuplicateID is matched (via errors.Is) by the warning Register returns
// when an entry id is already present.
var ErrDuplicateID = doerrors.New(doerrors.ErrCodeDuplicateID, "duplicate entry id", nil)

// Registry holds the ordered, append-only set of entries.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]int
	entries []Entry
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for duplicate-id warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byID:   make(map[string]int),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an entry and returns the stored copy (with ID and Seq set).
//
// A duplicate id is not fatal: the first registration stays authoritative,
// the duplicate is dropped and logged, and a warning-severity error matching
// ErrDuplicateID is returned so callers can count it.
func (r *Registry) Register(e Entry) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e = e.clone()
	e.Seq = len(r.entries)
	if e.ID == "" {
		e.ID = assignID(e)
	}

	if _, exists := r.byID[e.ID]; exists {
		r.logger.Warn("duplicate entry id, keeping first registration",
			slog.String("id", e.ID),
			slog.String("title", e.Title),
			slog.String("path", e.Path))
		return Entry{}, doerrors.New(doerrors.ErrCodeDuplicateID,
			fmt.Sprintf("entry id %q already registered", e.ID), nil).
			WithDetail("id", e.ID)
	}

	r.byID[e.ID] = len(r.entries)
	r.entries = append(r.entries, e)
	return e.clone(), nil
}

// assignID derives a stable id for entries registered without one.
// Path-based ids survive rebuilds; title-based ids include the sequence.
func assignID(e Entry) string {
	name := e.Path
	if name == "" {
		name = e.Title + "#" + strconv.Itoa(e.Seq)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// All returns the entries in registration order.
// The returned slice is a copy; modifying it does not affect the registry.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.clone()
	}
	return out
}

// Get returns the entry with the given id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i].clone(), true
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// RegisterAll registers entries in order and returns the warnings produced
// by duplicates. It never stops early.
func (r *Registry) RegisterAll(entries []Entry) []error {
	var warnings []error
	for _, e := range entries {
		if _, err := r.Register(e); err != nil {
			warnings = append(warnings, err)
		}
	}
	return warnings
}
