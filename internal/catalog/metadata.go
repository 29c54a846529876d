package catalog

import "github.com/shopspring/decimal"

const (
	DefaultMinPrice int64 = 0
	DefaultMaxPrice int64 = 1000
)

// Metadata is derived from the product list and drives filter defaults.
type Metadata struct {
	Brands   []string `json:"brands"`
	MinPrice int64    `json:"min_price"`
	MaxPrice int64    `json:"max_price"`
}

// DefaultMetadata is used before any catalog has been loaded.
func DefaultMetadata() Metadata {
	return Metadata{Brands: []string{}, MinPrice: DefaultMinPrice, MaxPrice: DefaultMaxPrice}
}

// ComputeMetadata collects distinct brands in first-seen order and the overall
// price bounds in whole currency units (floor of the lowest, ceiling of the
// highest). An empty product list keeps the fallback bounds.
func ComputeMetadata(products []Product, fallback Metadata) Metadata {
	meta := Metadata{Brands: []string{}, MinPrice: fallback.MinPrice, MaxPrice: fallback.MaxPrice}
	if len(products) == 0 {
		return meta
	}

	seen := make(map[string]struct{}, len(products))
	low, high := products[0].Price, products[0].Price
	for _, p := range products {
		if _, ok := seen[p.Brand]; !ok && p.Brand != "" {
			seen[p.Brand] = struct{}{}
			meta.Brands = append(meta.Brands, p.Brand)
		}
		if p.Price.LessThan(low) {
			low = p.Price
		}
		if p.Price.GreaterThan(high) {
			high = p.Price
		}
	}
	meta.MinPrice = low.Floor().IntPart()
	meta.MaxPrice = high.Ceil().IntPart()
	return meta
}

// InPriceRange reports whether price lies in [min, max], both inclusive.
func InPriceRange(price decimal.Decimal, min, max int64) bool {
	return !price.LessThan(decimal.NewFromInt(min)) && !price.GreaterThan(decimal.NewFromInt(max))
}
