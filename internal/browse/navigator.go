package browse

import (
	"sync"

	"github.com/angelmondragon/storefront-catalog/internal/filter"
)

// HistoryNavigator is a server-side stand-in for a browser history stack.
// Filter changes replace the current entry; only explicit navigation pushes.
type HistoryNavigator struct {
	mu      sync.Mutex
	entries []filter.Location
}

// NewHistoryNavigator starts a history whose only entry is initial.
func NewHistoryNavigator(initial filter.Location) *HistoryNavigator {
	return &HistoryNavigator{entries: []filter.Location{initial}}
}

// Replace overwrites the current entry.
func (h *HistoryNavigator) Replace(loc filter.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1] = loc
}

// Push appends a new entry, as following a link would.
func (h *HistoryNavigator) Push(loc filter.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, loc)
}

// Current is the entry the shopper is looking at.
func (h *HistoryNavigator) Current() filter.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// Len is the number of history entries.
func (h *HistoryNavigator) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the history, oldest first.
func (h *HistoryNavigator) Entries() []filter.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]filter.Location, len(h.entries))
	copy(out, h.entries)
	return out
}
