package filter

import (
	"sync"
	"time"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
)

// Projector memoizes the last projection. The cached result is reused while the
// catalog snapshot is the same instance and the state is value-equal.
type Projector struct {
	source  string
	metrics *metrics.EngineMetrics

	mu     sync.Mutex
	valid  bool
	snap   *catalog.Snapshot
	state  State
	result []catalog.Product
}

// NewProjector builds a projector; source labels its metrics.
func NewProjector(source string, m *metrics.EngineMetrics) *Projector {
	return &Projector{source: source, metrics: m}
}

// Project returns the filtered, ordered products for m. The returned slice is
// shared with later calls and must not be modified.
func (p *Projector) Project(m Model) []catalog.Product {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.valid && p.snap == m.Catalog && p.state.Equal(m.State) {
		p.metrics.IncProjectionCache(true)
		return p.result
	}
	p.metrics.IncProjectionCache(false)

	var products []catalog.Product
	if m.Catalog != nil {
		products = m.Catalog.Products
	}
	start := time.Now()
	result := Project(products, m.State)
	p.metrics.ObserveProjection(p.source, time.Since(start), len(result))

	p.valid = true
	p.snap = m.Catalog
	p.state = m.State.Clone()
	p.result = result
	return result
}

// Invalidate forces the next Project call to recompute.
func (p *Projector) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.result = nil
	p.mu.Unlock()
}
