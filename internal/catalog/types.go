package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-catalog/pkg/enums"
)

// Product is a read-only catalog listing as the browse engine sees it.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	CompareAtPrice  *decimal.Decimal `json:"compare_at_price,omitempty"`
	DiscountPercent *int             `json:"discount_percent,omitempty"`
	CategoryID      string           `json:"category_id"`
	Brand           string           `json:"brand"`
	Rating          *float64         `json:"rating,omitempty"`
	ReviewCount     int              `json:"review_count"`
	InStock         bool             `json:"in_stock"`
	Tags            []string         `json:"tags"`
	Colors          []string         `json:"colors,omitempty"`
	ImageURL        string           `json:"image_url,omitempty"`
}

// RatingOrZero treats an absent rating as zero.
func (p Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// HasTag reports whether the product carries tag exactly.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsNewArrival reports whether the product is tagged as a new arrival.
func (p Product) IsNewArrival() bool {
	return p.HasTag(enums.ProductTagNewArrival)
}

// Category is a node of the category tree. A nil ParentID marks a root.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id,omitempty"`
}
