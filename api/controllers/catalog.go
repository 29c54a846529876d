package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-catalog/api/responses"
	"github.com/angelmondragon/storefront-catalog/api/validators"
	"github.com/angelmondragon/storefront-catalog/internal/browse"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
)

const maxSlugLength = 128

// CatalogBrowser answers stateless catalog reads.
type CatalogBrowser interface {
	Browse(ctx context.Context, input browse.BrowseInput) (*browse.BrowseResult, error)
	Facets(ctx context.Context) (*browse.Facets, error)
}

// BrowseProducts lists the catalog filtered and sorted by the query string.
func BrowseProducts(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browseWith(w, r, svc, logg, "")
	}
}

// BrowseCategory lists one category subtree. Unknown slugs are 404.
func BrowseCategory(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := validators.SanitizeString(chi.URLParam(r, "slug"), maxSlugLength)
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category slug required"))
			return
		}
		browseWith(w, r, svc, logg, slug)
	}
}

func browseWith(w http.ResponseWriter, r *http.Request, svc CatalogBrowser, logg *logger.Logger, slug string) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "browse service unavailable"))
		return
	}

	page, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	result, err := svc.Browse(r.Context(), browse.BrowseInput{
		RawQuery:     validators.FilterQuery(r),
		CategorySlug: slug,
		Page:         page,
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}

// CatalogFacets returns brands, price bounds, tag and stock counts, and the category tree.
func CatalogFacets(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "browse service unavailable"))
			return
		}
		facets, err := svc.Facets(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, facets)
	}
}
