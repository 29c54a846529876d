package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-catalog/api/controllers"
	"github.com/angelmondragon/storefront-catalog/api/middleware"
	"github.com/angelmondragon/storefront-catalog/pkg/config"
	"github.com/angelmondragon/storefront-catalog/pkg/db"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/redis"
)

// BrowseService is everything the HTTP surface needs from the browse layer.
type BrowseService interface {
	controllers.CatalogBrowser
	controllers.SessionService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	browseService BrowseService,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// a nil *redis.Client must not reach the middleware as a non-nil interface
	var (
		redisPinger controllers.Pinger
		limiter     redis.RateLimiter
		idemStore   redis.IdempotencyStore
	)
	if redisClient != nil {
		redisPinger = redisClient
		limiter = redisClient
		idemStore = redisClient
	}

	browsePolicy := middleware.NewRateLimitPolicy(
		"browse",
		cfg.BrowseRateLimit.Window,
		cfg.BrowseRateLimit.IPLimit,
	)
	rateLimit := middleware.RateLimit(browsePolicy, limiter, logg)
	idempotency := middleware.Idempotency(idemStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(rateLimit)
		r.Get("/products", controllers.BrowseProducts(browseService, logg))
		r.Get("/categories/{slug}/products", controllers.BrowseCategory(browseService, logg))
		r.Get("/facets", controllers.CatalogFacets(browseService, logg))
	})

	r.Route("/api/v1/browse", func(r chi.Router) {
		r.Use(rateLimit)
		r.With(idempotency).Post("/sessions", controllers.CreateBrowseSession(browseService, logg))
		r.Get("/sessions/{sessionId}", controllers.GetBrowseSession(browseService, logg))
		r.With(idempotency).Post("/sessions/{sessionId}/actions", controllers.DispatchBrowseAction(browseService, logg))
		r.Delete("/sessions/{sessionId}", controllers.CloseBrowseSession(browseService, logg))
	})

	return r
}
