package browse

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/internal/filter"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
	"github.com/angelmondragon/storefront-catalog/pkg/pagination"
)

const (
	defaultBasePath       = "/products"
	defaultCategoryPrefix = "/category"
	defaultIdleTTL        = 30 * time.Minute
	defaultSweepInterval  = time.Minute
)

// CatalogLoader supplies catalog snapshots.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// ServiceParams configure the browse service.
type ServiceParams struct {
	Loader             CatalogLoader
	Logger             *logger.Logger
	Metrics            *metrics.EngineMetrics
	BasePath           string
	CategoryPathPrefix string
	URLDebounce        time.Duration
	IdleTTL            time.Duration
	SweepInterval      time.Duration
	// MaxSessions caps concurrently open sessions; zero means unlimited.
	MaxSessions int
	// AfterFunc overrides the debounce timer, mainly for tests.
	AfterFunc filter.AfterFunc
	Now       func() time.Time
}

// Service answers catalog browse requests and hosts per-shopper sessions.
type Service struct {
	loader  CatalogLoader
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
	params  ServiceParams

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService builds a browse service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Loader == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.BasePath == "" {
		params.BasePath = defaultBasePath
	}
	if params.CategoryPathPrefix == "" {
		params.CategoryPathPrefix = defaultCategoryPrefix
	}
	if params.IdleTTL <= 0 {
		params.IdleTTL = defaultIdleTTL
	}
	if params.SweepInterval <= 0 {
		params.SweepInterval = defaultSweepInterval
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{
		loader:   params.Loader,
		logg:     params.Logger,
		metrics:  params.Metrics,
		params:   params,
		sessions: map[string]*session{},
	}, nil
}

// BrowseInput is one stateless listing request.
type BrowseInput struct {
	RawQuery string
	// CategorySlug comes from the category route and overrides the query.
	CategorySlug string
	Page         pagination.Params
}

// BrowseResult is a projected page plus the state that produced it.
type BrowseResult struct {
	CatalogVersion uint64            `json:"catalog_version"`
	Items          []catalog.Product `json:"items"`
	Pagination     pagination.Meta   `json:"pagination"`
	State          filter.State      `json:"state"`
	Location       filter.Location   `json:"location"`
	Metadata       catalog.Metadata  `json:"metadata"`
}

// Browse builds a fresh filter state from the query, projects the catalog and
// returns the requested page.
func (s *Service) Browse(ctx context.Context, input BrowseInput) (*BrowseResult, error) {
	query, err := url.ParseQuery(input.RawQuery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query string")
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	if input.CategorySlug != "" {
		if _, ok := snap.Tree.BySlug(input.CategorySlug); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found").
				WithDetails(map[string]any{"slug": input.CategorySlug})
		}
		query.Set(filter.ParamCategorySlug, input.CategorySlug)
	}

	m, err := modelFromQuery(snap, query)
	if err != nil {
		return nil, err
	}

	// Each request projects on its own; mixed queries would only thrash a shared memo.
	start := time.Now()
	projected := filter.Project(m.Catalog.Products, m.State)
	s.metrics.ObserveProjection(metrics.SourceBrowse, time.Since(start), len(projected))

	items, meta := pagination.Window(projected, input.Page)
	return &BrowseResult{
		CatalogVersion: snap.Version,
		Items:          items,
		Pagination:     meta,
		State:          m.State,
		Location:       filter.LocationOf(m, s.params.BasePath, s.params.CategoryPathPrefix),
		Metadata:       m.Metadata(),
	}, nil
}

func modelFromQuery(snap *catalog.Snapshot, query url.Values) (filter.Model, error) {
	m, err := filter.Reduce(filter.NewModel(), filter.LoadSnapshot{Snapshot: snap})
	if err != nil {
		return m, err
	}
	return filter.Reduce(m, filter.InitFromURL{Query: query})
}

// AvailabilityCounts splits the catalog by stock status.
type AvailabilityCounts struct {
	InStock    int `json:"in_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// TagCount is how many products carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Facets is the metadata a storefront needs to render its filter controls.
type Facets struct {
	CatalogVersion uint64             `json:"catalog_version"`
	Brands         []string           `json:"brands"`
	PriceRange     filter.PriceRange  `json:"price_range"`
	Availability   AvailabilityCounts `json:"availability"`
	Tags           []TagCount         `json:"tags"`
	Categories     []catalog.Node     `json:"categories"`
	SortKeys       []enums.SortKey    `json:"sort_keys"`
}

// Facets summarizes the current catalog.
func (s *Service) Facets(ctx context.Context) (*Facets, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return buildFacets(snap), nil
}

func buildFacets(snap *catalog.Snapshot) *Facets {
	f := &Facets{
		CatalogVersion: snap.Version,
		Brands:         append([]string{}, snap.Metadata.Brands...),
		PriceRange:     filter.PriceRange{Min: snap.Metadata.MinPrice, Max: snap.Metadata.MaxPrice},
		Tags:           []TagCount{},
		Categories:     snap.Tree.Nested(),
		SortKeys:       enums.SortKeys(),
	}

	// tags keep first-seen order
	tagIndex := map[string]int{}
	for _, p := range snap.Products {
		if p.InStock {
			f.Availability.InStock++
		} else {
			f.Availability.OutOfStock++
		}
		for _, tag := range p.Tags {
			i, ok := tagIndex[tag]
			if !ok {
				i = len(f.Tags)
				tagIndex[tag] = i
				f.Tags = append(f.Tags, TagCount{Tag: tag})
			}
			f.Tags[i].Count++
		}
	}
	return f
}
