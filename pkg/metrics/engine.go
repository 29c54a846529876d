package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Projection sources.
	SourceBrowse  = "browse"
	SourceSession = "session"

	// Projection cache results.
	CacheHit  = "hit"
	CacheMiss = "miss"

	// Catalog load outcomes.
	LoadFromCache = "cache"
	LoadFromStore = "store"
	LoadFallback  = "fallback"
	LoadFailed    = "failed"
)

// EngineMetrics records how the browse engine projects, loads and syncs catalog views.
type EngineMetrics struct {
	projectionDuration *prometheus.HistogramVec
	projectionResults  *prometheus.HistogramVec
	projectionCache    *prometheus.CounterVec
	catalogLoads       *prometheus.CounterVec
	urlCommits         prometheus.Counter
	activeSessions     prometheus.Gauge
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	projectionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_projection_duration_seconds",
		Help:    "Time spent filtering and sorting the catalog.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}, []string{"source"})
	projectionResults := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_projection_results",
		Help:    "Number of products returned by a projection.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"source"})
	projectionCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_projection_cache_total",
		Help: "Memoized projection lookups by result.",
	}, []string{"result"})
	catalogLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Catalog snapshot loads by outcome.",
	}, []string{"outcome"})
	urlCommits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_url_commits_total",
		Help: "Debounced filter state commits to the browse location.",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "browse_sessions_active",
		Help: "Browse sessions currently held in memory.",
	})
	reg.MustRegister(projectionDuration, projectionResults, projectionCache, catalogLoads, urlCommits, activeSessions)
	return &EngineMetrics{
		projectionDuration: projectionDuration,
		projectionResults:  projectionResults,
		projectionCache:    projectionCache,
		catalogLoads:       catalogLoads,
		urlCommits:         urlCommits,
		activeSessions:     activeSessions,
	}
}

// ObserveProjection records the duration and result size of one projection.
func (m *EngineMetrics) ObserveProjection(source string, duration time.Duration, results int) {
	if m == nil || m.projectionDuration == nil {
		return
	}
	label := normalizeLabel(source)
	m.projectionDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.projectionResults.WithLabelValues(label).Observe(float64(results))
}

// IncProjectionCache counts a memoized projection hit or miss.
func (m *EngineMetrics) IncProjectionCache(hit bool) {
	if m == nil || m.projectionCache == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.projectionCache.WithLabelValues(result).Inc()
}

// IncCatalogLoad counts a catalog load by outcome.
func (m *EngineMetrics) IncCatalogLoad(outcome string) {
	if m == nil || m.catalogLoads == nil {
		return
	}
	m.catalogLoads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncURLCommit counts one debounced location write.
func (m *EngineMetrics) IncURLCommit() {
	if m == nil || m.urlCommits == nil {
		return
	}
	m.urlCommits.Inc()
}

// SetActiveSessions publishes the current session count.
func (m *EngineMetrics) SetActiveSessions(n int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
