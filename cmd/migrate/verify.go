package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

// catalogReport summarizes the stored catalog after a migration.
type catalogReport struct {
	categories int
	products   int
	roots      int
	orphans    []string
}

func (r catalogReport) fields() map[string]any {
	return map[string]any{
		"categories":      r.categories,
		"products":        r.products,
		"root_categories": r.roots,
		"orphan_products": len(r.orphans),
	}
}

// verifyCatalog loads the stored catalog the way the API does, so a cyclic or
// duplicated category tree fails here with CATALOG_INTEGRITY. Products that
// point at a missing category are reported as orphans and also fail.
func verifyCatalog(ctx context.Context, source catalog.Source) (catalogReport, error) {
	categories, err := source.ListCategories(ctx)
	if err != nil {
		return catalogReport{}, fmt.Errorf("list categories: %w", err)
	}
	products, err := source.ListProducts(ctx)
	if err != nil {
		return catalogReport{}, fmt.Errorf("list products: %w", err)
	}

	snap, err := catalog.NewSnapshot(0, products, categories)
	if err != nil {
		return catalogReport{}, err
	}

	report := catalogReport{categories: snap.Tree.Len(), products: len(snap.Products)}
	for _, c := range snap.Categories {
		if c.ParentID == nil {
			report.roots++
		}
	}
	for _, p := range snap.Products {
		if p.CategoryID == "" {
			continue
		}
		if _, ok := snap.Tree.ByID(p.CategoryID); !ok {
			report.orphans = append(report.orphans, p.ID)
		}
	}
	if len(report.orphans) > 0 {
		return report, pkgerrors.New(pkgerrors.CodeCatalogIntegrity, "products reference missing categories").
			WithDetails(map[string]any{"product_ids": report.orphans})
	}
	return report, nil
}
