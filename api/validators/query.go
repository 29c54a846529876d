package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/pagination"
)

// ParseQueryInt reads an integer query parameter, returning defaultVal when it
// is absent and a VALIDATION error when it is malformed or outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePagination reads page and limit, bounded by the pagination package.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, pagination.ParamPage, 1, 1, pagination.MaxPage)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := ParseQueryInt(r, pagination.ParamLimit, pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}

// FilterQuery is the raw query without paging keys, so paging never leaks into
// a filter location.
func FilterQuery(r *http.Request) string {
	q := r.URL.Query()
	if !q.Has(pagination.ParamPage) && !q.Has(pagination.ParamLimit) {
		return r.URL.RawQuery
	}
	q.Del(pagination.ParamPage)
	q.Del(pagination.ParamLimit)
	return q.Encode()
}
