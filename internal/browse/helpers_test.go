package browse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
)

type stubLoader struct {
	mu        sync.Mutex
	snap      *catalog.Snapshot
	refreshed *catalog.Snapshot
	err       error
	refreshes int
}

func (s *stubLoader) Load(context.Context) (*catalog.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func (s *stubLoader) Refresh(context.Context) (*catalog.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	if s.err != nil {
		return nil, s.err
	}
	s.snap = s.refreshed
	return s.refreshed, nil
}

func strPtr(v string) *string { return &v }

func testCategories() []catalog.Category {
	return []catalog.Category{
		{ID: "c-root", Name: "Clothing", Slug: "clothing"},
		{ID: "c-child", Name: "Tops", Slug: "tops", ParentID: strPtr("c-root")},
		{ID: "c-grand", Name: "T-Shirts", Slug: "t-shirts", ParentID: strPtr("c-child")},
		{ID: "c-shoes", Name: "Shoes", Slug: "shoes"},
	}
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p-1", Name: "Linen Tee", Brand: "Acme", Price: decimal.RequireFromString("25"), CategoryID: "c-grand", InStock: true, Tags: []string{"new-arrival"}},
		{ID: "p-2", Name: "Canvas Sneaker", Brand: "Globex", Price: decimal.RequireFromString("80"), CategoryID: "c-shoes", InStock: false, Tags: []string{"best-seller"}},
		{ID: "p-3", Name: "Oxford Shirt", Brand: "Acme", Price: decimal.RequireFromString("45"), CategoryID: "c-child", InStock: true, Tags: []string{"best-seller", "new-arrival"}},
		{ID: "p-4", Name: "Wool Coat", Brand: "Initech", Price: decimal.RequireFromString("210.50"), CategoryID: "c-root", InStock: true},
	}
}

func testSnapshot(t *testing.T, version uint64, products []catalog.Product) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.NewSnapshot(version, products, testCategories())
	require.NoError(t, err)
	return snap
}

type fixture struct {
	svc    *Service
	loader *stubLoader
	reg    *prometheus.Registry
	now    *time.Time
}

func newFixture(t *testing.T, mutate func(*ServiceParams)) fixture {
	t.Helper()
	loader := &stubLoader{
		snap:      testSnapshot(t, 1, testProducts()),
		refreshed: testSnapshot(t, 2, testProducts()[:2]),
	}
	reg := prometheus.NewRegistry()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	params := ServiceParams{
		Loader:  loader,
		Metrics: metrics.NewEngineMetrics(reg),
		Now:     func() time.Time { return now },
	}
	if mutate != nil {
		mutate(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return fixture{svc: svc, loader: loader, reg: reg, now: &now}
}

func (f fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	t.Fatalf("gauge %s not found", name)
	return 0
}

func productIDs(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
