package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()
	assert.Equal(t, PriceRange{Min: 0, Max: 1000}, m.State.PriceRange)
	assert.Equal(t, enums.SortKeyFeatured, m.State.SortBy)
	assert.Equal(t, enums.ViewModeGrid, m.State.ViewMode)
	assert.Empty(t, m.Catalog.Products)
	assert.Empty(t, m.State.ActiveCategoryIDs)
}

func TestSetAllDataDerivesMetadataAndResetsPriceRange(t *testing.T) {
	products := []catalog.Product{
		product("1", "Tee", "Acme", "12.40", "c-root"),
		product("2", "Boot", "Globex", "99.10", "c-shoes"),
		product("3", "Cap", "Acme", "7", "c-root"),
	}
	m := dispatchAll(t, NewModel(),
		UpdateField{Key: FieldPriceRange, Value: PriceRange{Min: 50, Max: 60}},
		SetAllData{Products: products, Categories: treeCategories(), Version: 1},
	)

	assert.Equal(t, []string{"Acme", "Globex"}, m.Metadata().Brands)
	assert.Equal(t, PriceRange{Min: 7, Max: 100}, m.State.PriceRange)
	assert.Len(t, m.Catalog.Products, 3)
	assert.Equal(t, 4, m.Catalog.Tree.Len())
}

func TestSetAllDataIsIdempotent(t *testing.T) {
	action := SetAllData{
		Products:   []catalog.Product{product("1", "Tee", "Acme", "10", "c-root")},
		Categories: treeCategories(),
		Version:    7,
	}
	start := dispatchAll(t, NewModel(), UpdateField{Key: FieldCategorySlug, Value: "tops"})

	once := dispatchAll(t, start, action)
	twice := dispatchAll(t, once, action)

	assert.Equal(t, once.State, twice.State)
	assert.Equal(t, once.Catalog, twice.Catalog)
	assert.Equal(t, []string{"c-child", "c-grand"}, twice.State.ActiveCategoryIDs)
}

func TestSetAllDataEmptyCatalogKeepsPriorBounds(t *testing.T) {
	m := loadedModel(t, []catalog.Product{product("1", "Tee", "Acme", "25", "c")}, nil)
	require.Equal(t, PriceRange{Min: 25, Max: 25}, m.State.PriceRange)

	m = dispatchAll(t, m, SetAllData{Version: 2})
	assert.Equal(t, PriceRange{Min: 25, Max: 25}, m.State.PriceRange)
	assert.Empty(t, m.Catalog.Products)
	assert.Empty(t, Project(m.Catalog.Products, m.State))

	fresh := dispatchAll(t, NewModel(), SetAllData{})
	assert.Equal(t, PriceRange{Min: 0, Max: 1000}, fresh.State.PriceRange)
}

func TestSetAllDataRejectsCyclicCategories(t *testing.T) {
	before := loadedModel(t, []catalog.Product{product("1", "Tee", "Acme", "10", "c-root")}, treeCategories())

	after, err := Reduce(before, SetAllData{Categories: []catalog.Category{
		{ID: "a", Slug: "a", ParentID: strPtr("b")},
		{ID: "b", Slug: "b", ParentID: strPtr("a")},
	}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCatalogIntegrity))
	assert.Same(t, before.Catalog, after.Catalog)
}

func TestUpdateFieldReplacesExactlyOneField(t *testing.T) {
	base := loadedModel(t, []catalog.Product{product("1", "Tee", "Acme", "10", "c-root")}, treeCategories())

	tests := []struct {
		name  string
		key   FieldKey
		value any
		check func(t *testing.T, s State)
	}{
		{"search", FieldSearchQuery, "shirt", func(t *testing.T, s State) { assert.Equal(t, "shirt", s.SearchQuery) }},
		{"price", FieldPriceRange, PriceRange{Min: 500, Max: 5}, func(t *testing.T, s State) { assert.Equal(t, PriceRange{Min: 500, Max: 5}, s.PriceRange) }},
		{"tags", FieldActiveTags, []string{"discount"}, func(t *testing.T, s State) { assert.Equal(t, []string{"discount"}, s.ActiveTags) }},
		{"brands", FieldSelectedBrands, []string{"acme"}, func(t *testing.T, s State) { assert.Equal(t, []string{"acme"}, s.SelectedBrands) }},
		{"availability", FieldAvailability, []string{"in-stock"}, func(t *testing.T, s State) { assert.Equal(t, []string{"in-stock"}, s.Availability) }},
		{"rating", FieldMinRating, 3, func(t *testing.T, s State) { assert.Equal(t, 3, s.MinRating) }},
		{"sort", FieldSortBy, enums.SortKeyRating, func(t *testing.T, s State) { assert.Equal(t, enums.SortKeyRating, s.SortBy) }},
		{"sort as string", FieldSortBy, "mystery", func(t *testing.T, s State) { assert.Equal(t, enums.SortKey("mystery"), s.SortBy) }},
		{"view", FieldViewMode, enums.ViewModeList, func(t *testing.T, s State) { assert.Equal(t, enums.ViewModeList, s.ViewMode) }},
		{"slug", FieldCategorySlug, "clothing", func(t *testing.T, s State) {
			assert.Equal(t, "clothing", s.CategorySlug)
			assert.Equal(t, []string{"c-root", "c-child", "c-grand"}, s.ActiveCategoryIDs)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(base, UpdateField{Key: tt.key, Value: tt.value})
			require.NoError(t, err)
			tt.check(t, next.State)

			reset, err := Reduce(next, ResetField{Key: tt.key})
			require.NoError(t, err)
			assert.True(t, reset.State.Equal(base.State), "resetting %s should restore the defaults", tt.key)
		})
	}
}

func TestUpdateFieldRejectsWrongTypesAndUnknownKeys(t *testing.T) {
	base := NewModel()

	next, err := Reduce(base, UpdateField{Key: FieldMinRating, Value: "4"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.True(t, next.State.Equal(base.State))

	_, err = Reduce(base, UpdateField{Key: "colour", Value: "red"})
	require.Error(t, err)

	_, err = Reduce(base, ResetField{Key: "colour"})
	require.Error(t, err)
}

func TestUpdateFieldDoesNotAliasCallerSlices(t *testing.T) {
	tags := []string{"discount"}
	m := dispatchAll(t, NewModel(), UpdateField{Key: FieldActiveTags, Value: tags})
	tags[0] = "mutated"
	assert.Equal(t, []string{"discount"}, m.State.ActiveTags)
}

func TestClearFiltersKeepsCatalog(t *testing.T) {
	products := []catalog.Product{
		product("1", "Tee", "Acme", "10", "c-root"),
		product("2", "Boot", "Globex", "80", "c-shoes"),
	}
	m := loadedModel(t, products, treeCategories())
	m = dispatchAll(t, m,
		UpdateField{Key: FieldSearchQuery, Value: "tee"},
		UpdateField{Key: FieldCategorySlug, Value: "clothing"},
		UpdateField{Key: FieldActiveTags, Value: []string{"x"}},
		UpdateField{Key: FieldSelectedBrands, Value: []string{"Acme"}},
		UpdateField{Key: FieldAvailability, Value: []string{"in-stock"}},
		UpdateField{Key: FieldPriceRange, Value: PriceRange{Min: 11, Max: 12}},
		UpdateField{Key: FieldMinRating, Value: 2},
		UpdateField{Key: FieldSortBy, Value: enums.SortKeyAlphabetical},
		UpdateField{Key: FieldViewMode, Value: enums.ViewModeList},
	)
	catalogBefore := m.Catalog

	cleared := dispatchAll(t, m, ClearFilters{})
	assert.True(t, cleared.State.Equal(DefaultState(m.Metadata())))
	assert.Equal(t, PriceRange{Min: 10, Max: 80}, cleared.State.PriceRange)
	assert.Same(t, catalogBefore, cleared.Catalog)
	assert.Equal(t, products, cleared.Catalog.Products)
	assert.Len(t, cleared.Catalog.Categories, 4)
}

func TestInitFromURLIsSparseOverlay(t *testing.T) {
	m := loadedModel(t, []catalog.Product{
		product("1", "Tee", "Acme", "10", "c-root"),
		product("2", "Boot", "Globex", "300", "c-shoes"),
	}, treeCategories())
	m = dispatchAll(t, m,
		UpdateField{Key: FieldSearchQuery, Value: "keep me"},
		UpdateField{Key: FieldViewMode, Value: enums.ViewModeList},
	)

	q := url.Values{}
	q.Set("categorySlug", "tops")
	q.Set("tags", "new-arrival,,best-seller,")
	q.Set("minPrice", "20")
	q.Set("viewMode", "tiles")
	q.Set("unknown", "ignored")

	next := dispatchAll(t, m, InitFromURL{Query: q})
	assert.Equal(t, "keep me", next.State.SearchQuery)
	assert.Equal(t, enums.ViewModeList, next.State.ViewMode, "invalid view mode must be ignored")
	assert.Equal(t, "tops", next.State.CategorySlug)
	assert.Equal(t, []string{"c-child", "c-grand"}, next.State.ActiveCategoryIDs)
	assert.Equal(t, []string{"new-arrival", "best-seller"}, next.State.ActiveTags)
	assert.Equal(t, PriceRange{Min: 20, Max: 300}, next.State.PriceRange)
	assert.Equal(t, enums.SortKeyFeatured, next.State.SortBy)
}

func TestInitFromURLUnknownSlugClearsScope(t *testing.T) {
	m := loadedModel(t, nil, treeCategories())
	next := dispatchAll(t, m, InitFromURL{Query: url.Values{"categorySlug": {"nope"}}})
	assert.Equal(t, "nope", next.State.CategorySlug)
	assert.Empty(t, next.State.ActiveCategoryIDs)
}

func TestReduceRejectsNilSnapshot(t *testing.T) {
	_, err := Reduce(NewModel(), LoadSnapshot{})
	require.Error(t, err)
}

func TestLoadSnapshotSharesInstance(t *testing.T) {
	snap, err := catalog.NewSnapshot(3, []catalog.Product{product("1", "Tee", "Acme", "10", "c-root")}, treeCategories())
	require.NoError(t, err)

	m := dispatchAll(t, NewModel(), LoadSnapshot{Snapshot: snap})
	assert.Same(t, snap, m.Catalog)
	assert.Equal(t, PriceRange{Min: 10, Max: 10}, m.State.PriceRange)
}
