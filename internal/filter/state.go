package filter

import (
	"slices"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
)

// FieldKey names a user-settable Filter State field.
type FieldKey string

const (
	FieldSearchQuery    FieldKey = "searchQuery"
	FieldPriceRange     FieldKey = "priceRange"
	FieldCategorySlug   FieldKey = "currentCategorySlug"
	FieldActiveTags     FieldKey = "activeTags"
	FieldSelectedBrands FieldKey = "selectedBrands"
	FieldAvailability   FieldKey = "availability"
	FieldMinRating      FieldKey = "minRating"
	FieldSortBy         FieldKey = "sortBy"
	FieldViewMode       FieldKey = "viewMode"
)

var fieldKeys = []FieldKey{
	FieldSearchQuery,
	FieldPriceRange,
	FieldCategorySlug,
	FieldActiveTags,
	FieldSelectedBrands,
	FieldAvailability,
	FieldMinRating,
	FieldSortBy,
	FieldViewMode,
}

// Fields lists every settable field.
func Fields() []FieldKey {
	return slices.Clone(fieldKeys)
}

// ParseFieldKey converts raw input into a FieldKey.
func ParseFieldKey(value string) (FieldKey, bool) {
	for _, key := range fieldKeys {
		if string(key) == value {
			return key, true
		}
	}
	return "", false
}

// PriceRange is an inclusive price window in whole currency units.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// State is the set of filter, sort and view selections. It is a value: the
// reducer always builds a new State and never edits slices in place.
type State struct {
	SearchQuery string     `json:"search_query"`
	PriceRange  PriceRange `json:"price_range"`
	// ActiveCategoryIDs is derived from CategorySlug and the category tree.
	ActiveCategoryIDs []string       `json:"active_category_ids"`
	CategorySlug      string         `json:"category_slug"`
	ActiveTags        []string       `json:"active_tags"`
	SelectedBrands    []string       `json:"selected_brands"`
	Availability      []string       `json:"availability"`
	MinRating         int            `json:"min_rating"`
	SortBy            enums.SortKey  `json:"sort_by"`
	ViewMode          enums.ViewMode `json:"view_mode"`
}

// DefaultState returns the defaults; the price range spans the catalog bounds.
func DefaultState(meta catalog.Metadata) State {
	return State{
		PriceRange:        PriceRange{Min: meta.MinPrice, Max: meta.MaxPrice},
		ActiveCategoryIDs: []string{},
		ActiveTags:        []string{},
		SelectedBrands:    []string{},
		Availability:      []string{},
		SortBy:            enums.SortKeyFeatured,
		ViewMode:          enums.ViewModeGrid,
	}
}

// Equal compares two states field by field.
func (s State) Equal(other State) bool {
	return s.SearchQuery == other.SearchQuery &&
		s.PriceRange == other.PriceRange &&
		slices.Equal(s.ActiveCategoryIDs, other.ActiveCategoryIDs) &&
		s.CategorySlug == other.CategorySlug &&
		slices.Equal(s.ActiveTags, other.ActiveTags) &&
		slices.Equal(s.SelectedBrands, other.SelectedBrands) &&
		slices.Equal(s.Availability, other.Availability) &&
		s.MinRating == other.MinRating &&
		s.SortBy == other.SortBy &&
		s.ViewMode == other.ViewMode
}

// Clone deep-copies the slice fields.
func (s State) Clone() State {
	out := s
	out.ActiveCategoryIDs = cloneStrings(s.ActiveCategoryIDs)
	out.ActiveTags = cloneStrings(s.ActiveTags)
	out.SelectedBrands = cloneStrings(s.SelectedBrands)
	out.Availability = cloneStrings(s.Availability)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

// Model is everything the reducer owns: the catalog store and the filter state.
type Model struct {
	Catalog *catalog.Snapshot
	State   State
}

// NewModel starts with an empty catalog and default filters.
func NewModel() Model {
	snap := catalog.EmptySnapshot()
	return Model{Catalog: snap, State: DefaultState(snap.Metadata)}
}

// Metadata is the derived catalog metadata, defaults included.
func (m Model) Metadata() catalog.Metadata {
	if m.Catalog == nil {
		return catalog.DefaultMetadata()
	}
	return m.Catalog.Metadata
}

// Defaults is the default state for the model's current catalog.
func (m Model) Defaults() State {
	return DefaultState(m.Metadata())
}
