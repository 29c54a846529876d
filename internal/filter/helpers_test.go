package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
)

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func product(id, name, brand, price, categoryID string, tags ...string) catalog.Product {
	return catalog.Product{
		ID:         id,
		Name:       name,
		Brand:      brand,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		InStock:    true,
		Tags:       tags,
	}
}

func names(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func treeCategories() []catalog.Category {
	return []catalog.Category{
		{ID: "c-root", Name: "Clothing", Slug: "clothing"},
		{ID: "c-child", Name: "Tops", Slug: "tops", ParentID: strPtr("c-root")},
		{ID: "c-grand", Name: "T-Shirts", Slug: "t-shirts", ParentID: strPtr("c-child")},
		{ID: "c-shoes", Name: "Shoes", Slug: "shoes"},
	}
}

func loadedModel(t *testing.T, products []catalog.Product, categories []catalog.Category) Model {
	t.Helper()
	m, err := Reduce(NewModel(), SetAllData{Products: products, Categories: categories, Version: 1})
	require.NoError(t, err)
	return m
}

func dispatchAll(t *testing.T, m Model, actions ...Action) Model {
	t.Helper()
	for _, a := range actions {
		var err error
		m, err = Reduce(m, a)
		require.NoError(t, err, "action %s", a.Name())
	}
	return m
}
