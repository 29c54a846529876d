package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
)

// Query-string keys.
const (
	ParamSearch       = "search"
	ParamCategorySlug = "categorySlug"
	ParamTags         = "tags"
	ParamBrands       = "brands"
	ParamAvailability = "availability"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
	ParamMinRating    = "minRating"
	ParamSortBy       = "sortBy"
	ParamViewMode     = "viewMode"
)

const listSeparator = ","

// Encode writes only the fields that differ from their defaults. Set-valued
// fields are comma-joined, so values containing a comma do not round-trip.
// Empty list entries are dropped, as Decode would drop them anyway.
func Encode(s State, meta catalog.Metadata) url.Values {
	defaults := DefaultState(meta)
	q := url.Values{}

	if s.SearchQuery != defaults.SearchQuery {
		q.Set(ParamSearch, s.SearchQuery)
	}
	if s.CategorySlug != defaults.CategorySlug {
		q.Set(ParamCategorySlug, s.CategorySlug)
	}
	if v := joinList(s.ActiveTags); v != "" {
		q.Set(ParamTags, v)
	}
	if v := joinList(s.SelectedBrands); v != "" {
		q.Set(ParamBrands, v)
	}
	if v := joinList(s.Availability); v != "" {
		q.Set(ParamAvailability, v)
	}
	if s.PriceRange.Min != defaults.PriceRange.Min {
		q.Set(ParamMinPrice, strconv.FormatInt(s.PriceRange.Min, 10))
	}
	if s.PriceRange.Max != defaults.PriceRange.Max {
		q.Set(ParamMaxPrice, strconv.FormatInt(s.PriceRange.Max, 10))
	}
	if s.MinRating != defaults.MinRating {
		q.Set(ParamMinRating, strconv.Itoa(s.MinRating))
	}
	if s.SortBy != defaults.SortBy {
		q.Set(ParamSortBy, s.SortBy.String())
	}
	if s.ViewMode != defaults.ViewMode {
		q.Set(ParamViewMode, s.ViewMode.String())
	}
	return q
}

// Decode overlays the recognized parameters in q onto current. Absent keys and
// values that fail to parse leave the field as it was. ActiveCategoryIDs is not
// touched; the reducer derives it from the slug.
func Decode(q url.Values, current State, meta catalog.Metadata) State {
	next := current.Clone()

	if v, ok := first(q, ParamSearch); ok {
		next.SearchQuery = v
	}
	if v, ok := first(q, ParamCategorySlug); ok {
		next.CategorySlug = v
	}
	if v, ok := first(q, ParamTags); ok {
		next.ActiveTags = splitList(v)
	}
	if v, ok := first(q, ParamBrands); ok {
		next.SelectedBrands = splitList(v)
	}
	if v, ok := first(q, ParamAvailability); ok {
		next.Availability = splitList(v)
	}

	minRaw, hasMin := first(q, ParamMinPrice)
	maxRaw, hasMax := first(q, ParamMaxPrice)
	minVal, minOK := parseLeadingInt(minRaw)
	maxVal, maxOK := parseLeadingInt(maxRaw)
	minOK = hasMin && minOK
	maxOK = hasMax && maxOK
	if minOK || maxOK {
		next.PriceRange = PriceRange{Min: meta.MinPrice, Max: meta.MaxPrice}
		if minOK {
			next.PriceRange.Min = minVal
		}
		if maxOK {
			next.PriceRange.Max = maxVal
		}
	}

	if v, ok := first(q, ParamMinRating); ok {
		if n, parsed := parseLeadingInt(v); parsed {
			next.MinRating = int(n)
		}
	}
	if v, ok := first(q, ParamSortBy); ok {
		next.SortBy = enums.SortKey(v)
	}
	if v, ok := first(q, ParamViewMode); ok {
		if mode, err := enums.ParseViewMode(v); err == nil {
			next.ViewMode = mode
		}
	}
	return next
}

func first(q url.Values, key string) (string, bool) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func joinList(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, listSeparator)
}

func splitList(raw string) []string {
	out := []string{}
	for _, token := range strings.Split(raw, listSeparator) {
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// parseLeadingInt reads an optionally signed run of decimal digits after any
// leading whitespace and ignores whatever follows, so "12abc" is 12 and "4.5"
// is 4. Input without leading digits, or out of int64 range, does not parse.
func parseLeadingInt(raw string) (int64, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
