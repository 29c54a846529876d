package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
)

type fakeSource struct {
	mu         sync.Mutex
	products   []Product
	categories []Category
	err        error
	block      bool
	gate       chan struct{}
	started    chan struct{}
	calls      atomic.Int32
}

func (f *fakeSource) ListCategories(ctx context.Context) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, f.err
}

func (f *fakeSource) ListProducts(ctx context.Context) ([]Product, error) {
	f.calls.Add(1)
	f.mu.Lock()
	block, products, err, gate, started := f.block, f.products, f.err, f.gate, f.started
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return products, err
}

func (f *fakeSource) set(products []Product, err error, block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products, f.err, f.block = products, err, block
}

func sampleProducts() []Product {
	return []Product{
		{ID: "p1", Name: "Tee", Brand: "Acme", Price: decimal.NewFromInt(20), CategoryID: "c-root", InStock: true},
		{ID: "p2", Name: "Boot", Brand: "Globex", Price: decimal.NewFromInt(80), CategoryID: "c-other"},
	}
}

func TestLoaderFetchesFromSourceAndFillsCache(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{products: sampleProducts(), categories: threeLevelCategories()}
	store := newMemorySnapshotStore()
	loader := NewLoader(source, NewSnapshotCache(store, time.Minute), LoaderOptions{FetchTimeout: time.Second})

	snap, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Len(t, snap.Products, 2)
	assert.Contains(t, store.data, "sf:catalog:snapshot")
	assert.Same(t, snap, loader.Current())

	again, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, snap, again)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestLoaderPrefersCache(t *testing.T) {
	ctx := context.Background()
	store := newMemorySnapshotStore()
	cache := NewSnapshotCache(store, time.Minute)
	cached, err := NewSnapshot(0, sampleProducts()[:1], nil)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, cached))

	reg := prometheus.NewRegistry()
	source := &fakeSource{products: sampleProducts()}
	loader := NewLoader(source, cache, LoaderOptions{Metrics: metrics.NewEngineMetrics(reg)})

	snap, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Products, 1)
	assert.Equal(t, int32(0), source.calls.Load())

	refreshed, err := loader.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed.Products, 2)
	assert.Equal(t, uint64(2), refreshed.Version)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestLoaderTimeoutFallsBackToLastGoodSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{products: sampleProducts(), categories: threeLevelCategories()}
	loader := NewLoader(source, nil, LoaderOptions{
		FetchTimeout: 20 * time.Millisecond,
		MaxAge:       time.Minute,
		Now:          func() time.Time { return now },
	})

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	source.set(nil, nil, true)
	now = now.Add(2 * time.Minute)

	stale, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)
}

func TestLoaderWithoutSnapshotReportsDependencyError(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	loader := NewLoader(source, nil, LoaderOptions{})

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "unexpected error %v", err)
	assert.Nil(t, loader.Current())
}

func TestLoaderSurfacesCategoryCycles(t *testing.T) {
	source := &fakeSource{
		products: sampleProducts(),
		categories: []Category{
			{ID: "a", Slug: "a", ParentID: strPtr("b")},
			{ID: "b", Slug: "b", ParentID: strPtr("a")},
		},
	}
	loader := NewLoader(source, nil, LoaderOptions{FetchTimeout: time.Second})

	done := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCatalogIntegrity), "unexpected error %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("loading a cyclic category tree must fail fast")
	}
}

func TestLoaderLastCompletedLoadWins(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{products: sampleProducts()}
	loader := NewLoader(source, nil, LoaderOptions{})

	first, err := loader.Refresh(ctx)
	require.NoError(t, err)

	source.set(sampleProducts()[:1], nil, false)
	second, err := loader.Refresh(ctx)
	require.NoError(t, err)

	assert.Greater(t, second.Version, first.Version)
	assert.Same(t, second, loader.Current())
	assert.Len(t, loader.Current().Products, 1)
}

func TestLoaderSharedFetchSurvivesLeaderCancellation(t *testing.T) {
	source := &fakeSource{
		products:   sampleProducts(),
		categories: threeLevelCategories(),
		gate:       make(chan struct{}),
		started:    make(chan struct{}),
	}
	loader := NewLoader(source, nil, LoaderOptions{FetchTimeout: 5 * time.Second})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(leaderCtx)
		leaderErr <- err
	}()
	<-source.started

	type outcome struct {
		snap *Snapshot
		err  error
	}
	waiter := make(chan outcome, 1)
	go func() {
		snap, err := loader.Load(context.Background())
		waiter <- outcome{snap: snap, err: err}
	}()

	cancelLeader()
	select {
	case err := <-leaderErr:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller must stop waiting")
	}

	close(source.gate)
	select {
	case got := <-waiter:
		require.NoError(t, got.err)
		assert.Len(t, got.snap.Products, 2)
		assert.Same(t, got.snap, loader.Current())
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never received the shared snapshot")
	}
	assert.Equal(t, int32(1), source.calls.Load())
}
