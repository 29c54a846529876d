package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
)

// Project filters products by s and orders the survivors. The input slice is
// never modified and the result is always a fresh slice. Category scope comes
// from s.ActiveCategoryIDs, which the reducer derives from the category tree.
func Project(products []catalog.Product, s State) []catalog.Product {
	p := newPredicate(s)
	out := make([]catalog.Product, 0, len(products))
	for _, product := range products {
		if p.match(product) {
			out = append(out, product)
		}
	}
	sortProducts(out, s.SortBy)
	return out
}

type predicate struct {
	query       string
	categories  map[string]struct{}
	tags        map[string]struct{}
	brands      map[string]struct{}
	inStockOnly bool
	outOnly     bool
	priceRange  PriceRange
	minRating   float64
}

func newPredicate(s State) predicate {
	p := predicate{
		query:      strings.ToLower(s.SearchQuery),
		categories: toSet(s.ActiveCategoryIDs, false),
		tags:       toSet(s.ActiveTags, false),
		brands:     toSet(s.SelectedBrands, true),
		priceRange: s.PriceRange,
		minRating:  float64(s.MinRating),
	}
	var wantIn, wantOut bool
	for _, flag := range s.Availability {
		switch enums.Availability(flag) {
		case enums.AvailabilityInStock:
			wantIn = true
		case enums.AvailabilityOutOfStock:
			wantOut = true
		}
	}
	p.inStockOnly = wantIn && !wantOut
	p.outOnly = wantOut && !wantIn
	return p
}

// match applies the steps in order: search, category, tags, availability,
// brand, price, rating.
func (p predicate) match(product catalog.Product) bool {
	if p.query != "" &&
		!strings.Contains(strings.ToLower(product.Name), p.query) &&
		!strings.Contains(strings.ToLower(product.Description), p.query) &&
		!strings.Contains(strings.ToLower(product.Brand), p.query) {
		return false
	}
	if len(p.categories) > 0 {
		if _, ok := p.categories[product.CategoryID]; !ok {
			return false
		}
	}
	if len(p.tags) > 0 && !anyTag(product.Tags, p.tags) {
		return false
	}
	if p.inStockOnly && !product.InStock {
		return false
	}
	if p.outOnly && product.InStock {
		return false
	}
	if len(p.brands) > 0 {
		if _, ok := p.brands[strings.ToLower(product.Brand)]; !ok {
			return false
		}
	}
	if !catalog.InPriceRange(product.Price, p.priceRange.Min, p.priceRange.Max) {
		return false
	}
	if p.minRating > 0 && product.RatingOrZero() < p.minRating {
		return false
	}
	return true
}

func anyTag(tags []string, wanted map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := wanted[tag]; ok {
			return true
		}
	}
	return false
}

func toSet(values []string, fold bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if fold {
			v = strings.ToLower(v)
		}
		set[v] = struct{}{}
	}
	return set
}

// sortProducts orders in place with a stable sort. Featured and unknown keys
// keep the input order.
func sortProducts(products []catalog.Product, key enums.SortKey) {
	var less func(a, b catalog.Product) bool

	switch key {
	case enums.SortKeyPriceLowHigh:
		less = func(a, b catalog.Product) bool { return a.Price.LessThan(b.Price) }
	case enums.SortKeyPriceHighLow:
		less = func(a, b catalog.Product) bool { return a.Price.GreaterThan(b.Price) }
	case enums.SortKeyRating:
		less = func(a, b catalog.Product) bool { return a.RatingOrZero() > b.RatingOrZero() }
	case enums.SortKeyAlphabetical:
		names := newNameOrder()
		less = func(a, b catalog.Product) bool { return names.less(a.Name, b.Name) }
	case enums.SortKeyNewest:
		// new arrivals first, then by name within each group
		names := newNameOrder()
		less = func(a, b catalog.Product) bool {
			an, bn := a.IsNewArrival(), b.IsNewArrival()
			if an != bn {
				return an
			}
			return names.less(a.Name, b.Name)
		}
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}

// nameOrder compares display names the way a shopper expects to read them.
// A collator is not safe for concurrent use, so each sort builds its own.
type nameOrder struct {
	collator *collate.Collator
}

func newNameOrder() nameOrder {
	return nameOrder{collator: collate.New(language.English)}
}

func (n nameOrder) less(a, b string) bool {
	return n.collator.CompareString(a, b) < 0
}
