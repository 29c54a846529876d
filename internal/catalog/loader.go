package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
)

// LoaderOptions configures a Loader. Zero durations disable the matching bound.
type LoaderOptions struct {
	// FetchTimeout bounds one cache+store fetch.
	FetchTimeout time.Duration
	// MaxAge is how long an installed snapshot is served before Load fetches again.
	MaxAge  time.Duration
	Metrics *metrics.EngineMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

// Loader owns the current catalog snapshot. It reads through the cache to the
// source, bounds every fetch with a timeout and keeps serving the last good
// snapshot when a fetch fails. The most recently completed fetch wins.
type Loader struct {
	source  Source
	cache   Cache
	opts    LoaderOptions
	group   singleflight.Group
	version atomic.Uint64

	mu          sync.RWMutex
	current     *Snapshot
	installedAt time.Time
}

// NewLoader builds a loader. cache may be nil.
func NewLoader(source Source, cache Cache, opts LoaderOptions) *Loader {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Loader{source: source, cache: cache, opts: opts}
}

// Current returns the installed snapshot, or nil before the first successful load.
func (l *Loader) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Load returns the installed snapshot while it is fresh, otherwise fetches a new
// one. Concurrent callers share a single fetch. The shared fetch outlives any
// one caller's cancellation and is bounded only by FetchTimeout; each caller
// stops waiting when its own ctx ends.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if snap, fresh := l.fresh(); fresh {
		return snap, nil
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan("load", func() (any, error) {
		if snap, fresh := l.fresh(); fresh {
			return snap, nil
		}
		return l.fetch(fetchCtx, true)
	})

	select {
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "catalog load abandoned")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Refresh drops the cached copy and fetches straight from the source.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, error) {
	if l.cache != nil {
		if err := l.cache.Invalidate(ctx); err != nil {
			l.opts.Logger.Warn(l.opts.Logger.WithField(ctx, "error", err.Error()), "catalog cache invalidate failed")
		}
	}
	return l.fetch(ctx, false)
}

func (l *Loader) fresh() (*Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return nil, false
	}
	if l.opts.MaxAge > 0 && l.opts.Now().Sub(l.installedAt) >= l.opts.MaxAge {
		return l.current, false
	}
	return l.current, true
}

func (l *Loader) fetch(ctx context.Context, useCache bool) (*Snapshot, error) {
	if l.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.FetchTimeout)
		defer cancel()
	}

	if useCache && l.cache != nil {
		snap, err := l.cache.Get(ctx)
		switch {
		case err != nil:
			l.opts.Logger.Warn(l.opts.Logger.WithField(ctx, "error", err.Error()), "catalog cache read failed")
		case snap != nil:
			l.opts.Metrics.IncCatalogLoad(metrics.LoadFromCache)
			return l.install(snap), nil
		}
	}

	snap, err := l.fetchSource(ctx)
	if err != nil {
		return l.fallback(ctx, err)
	}

	if l.cache != nil {
		if err := l.cache.Put(ctx, snap); err != nil {
			l.opts.Logger.Warn(l.opts.Logger.WithField(ctx, "error", err.Error()), "catalog cache write failed")
		}
	}
	l.opts.Metrics.IncCatalogLoad(metrics.LoadFromStore)
	return l.install(snap), nil
}

func (l *Loader) fetchSource(ctx context.Context) (*Snapshot, error) {
	var (
		products   []Product
		categories []Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = l.source.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = l.source.ListProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog fetch failed")
	}
	return NewSnapshot(0, products, categories)
}

func (l *Loader) fallback(ctx context.Context, cause error) (*Snapshot, error) {
	ctx = l.opts.Logger.WithField(ctx, "error", cause.Error())
	if prev := l.Current(); prev != nil {
		l.opts.Metrics.IncCatalogLoad(metrics.LoadFallback)
		l.opts.Logger.Warn(l.opts.Logger.WithField(ctx, "catalog_version", prev.Version), "catalog fetch failed, serving last good snapshot")
		return prev, nil
	}
	l.opts.Metrics.IncCatalogLoad(metrics.LoadFailed)
	l.opts.Logger.Error(ctx, "catalog fetch failed", cause)
	if typed := pkgerrors.As(cause); typed != nil {
		return nil, typed
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "catalog unavailable")
}

// install stamps snap with the next version and makes it current.
func (l *Loader) install(snap *Snapshot) *Snapshot {
	snap.Version = l.version.Add(1)
	l.mu.Lock()
	l.current = snap
	l.installedAt = l.opts.Now()
	l.mu.Unlock()
	return snap
}
