package filter

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
)

// Location is a path plus an encoded query string.
type Location struct {
	Path  string `json:"path"`
	Query string `json:"query"`
}

// String renders the location as a relative URL.
func (l Location) String() string {
	if l.Query == "" {
		return l.Path
	}
	return l.Path + "?" + l.Query
}

// Navigator receives committed locations. Replace overwrites the current
// history entry instead of adding one.
type Navigator interface {
	Replace(loc Location)
}

// Timer is the part of *time.Timer the synchronizer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SyncOptions configures a URLSynchronizer.
type SyncOptions struct {
	Debounce           time.Duration
	BasePath           string
	CategoryPathPrefix string
	AfterFunc          AfterFunc
	Metrics            *metrics.EngineMetrics
	Logger             *logger.Logger
}

// URLSynchronizer writes the filter state back to the location after a quiet
// period. A change inside the window restarts it, so a burst commits once with
// its final state.
type URLSynchronizer struct {
	nav  Navigator
	opts SyncOptions

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	pending *Model
	stopped bool

	commitMu  sync.Mutex
	last      Location
	lastGen   uint64
	committed bool
}

// NewURLSynchronizer builds a synchronizer that commits to nav.
func NewURLSynchronizer(nav Navigator, opts SyncOptions) *URLSynchronizer {
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}
	if opts.CategoryPathPrefix == "" {
		opts.CategoryPathPrefix = "/category"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &URLSynchronizer{nav: nav, opts: opts}
}

// Attach subscribes the synchronizer to store and returns the unsubscribe func.
func (u *URLSynchronizer) Attach(store *Store) func() {
	return store.Subscribe(u.Notify)
}

// LocationFor maps a model onto its canonical location using the configured paths.
func (u *URLSynchronizer) LocationFor(m Model) Location {
	return LocationOf(m, u.opts.BasePath, u.opts.CategoryPathPrefix)
}

// LocationOf is the canonical location of m: the category path when a slug is
// active, basePath otherwise, and only non-default fields in the query.
func LocationOf(m Model, basePath, categoryPrefix string) Location {
	path := basePath
	if slug := m.State.CategorySlug; slug != "" {
		path = CategoryPath(categoryPrefix, slug)
	}
	return Location{Path: path, Query: Encode(m.State, m.Metadata()).Encode()}
}

// CategoryPath joins prefix and the escaped slug.
func CategoryPath(prefix, slug string) string {
	return strings.TrimRight(prefix, "/") + "/" + url.PathEscape(slug)
}

// SlugFromPath is the inverse of CategoryPath. It reports false when path is
// not below prefix.
func SlugFromPath(prefix, path string) (string, bool) {
	base := strings.TrimRight(prefix, "/") + "/"
	if !strings.HasPrefix(path, base) {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, base), "/")
	if rest == "" {
		return "", false
	}
	slug, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return slug, true
}

// Notify schedules a commit of m, replacing any pending one.
func (u *URLSynchronizer) Notify(m Model) {
	u.mu.Lock()
	if u.stopped {
		u.mu.Unlock()
		return
	}
	if u.opts.Debounce <= 0 {
		u.cancelLocked()
		gen := u.gen
		u.mu.Unlock()
		u.commit(m, gen)
		return
	}
	u.cancelLocked()
	u.pending = &m
	gen := u.gen
	u.timer = u.opts.AfterFunc(u.opts.Debounce, func() { u.fire(gen) })
	u.mu.Unlock()
}

// Flush commits the pending state now, if any.
func (u *URLSynchronizer) Flush() {
	u.mu.Lock()
	pending, gen := u.pending, u.gen
	u.cancelLocked()
	u.mu.Unlock()
	if pending != nil {
		u.commit(*pending, gen)
	}
}

// Stop drops any pending commit and ignores later notifications.
func (u *URLSynchronizer) Stop() {
	u.mu.Lock()
	u.stopped = true
	u.cancelLocked()
	u.mu.Unlock()
}

// Pending reports whether a commit is waiting for its window to close.
func (u *URLSynchronizer) Pending() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.pending != nil
}

// Committed returns the last location written to the navigator.
func (u *URLSynchronizer) Committed() (Location, bool) {
	u.commitMu.Lock()
	defer u.commitMu.Unlock()
	return u.last, u.committed
}

// cancelLocked stops the timer and invalidates its callback. Callers hold u.mu.
func (u *URLSynchronizer) cancelLocked() {
	u.gen++
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	u.pending = nil
}

func (u *URLSynchronizer) fire(gen uint64) {
	u.mu.Lock()
	if gen != u.gen || u.pending == nil {
		u.mu.Unlock()
		return
	}
	m := *u.pending
	u.pending = nil
	u.timer = nil
	u.mu.Unlock()
	u.commit(m, gen)
}

// commit writes m unless a newer state was already written. gen orders
// commits that race between the timer and Flush.
func (u *URLSynchronizer) commit(m Model, gen uint64) {
	loc := u.LocationFor(m)

	u.commitMu.Lock()
	defer u.commitMu.Unlock()
	if gen < u.lastGen {
		return
	}
	u.lastGen = gen
	if u.committed && loc == u.last {
		return
	}
	u.last = loc
	u.committed = true
	u.nav.Replace(loc)
	u.opts.Metrics.IncURLCommit()
	u.opts.Logger.Debug(u.opts.Logger.WithField(context.Background(), "location", loc.String()), "filter location committed")
}
