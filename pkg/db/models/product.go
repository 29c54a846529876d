package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-catalog/pkg/types"
)

// Product is a sellable catalog listing.
type Product struct {
	ID              string           `gorm:"column:id;type:text;primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Description     string           `gorm:"column:description;not null;default:''"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CompareAtPrice  *decimal.Decimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	DiscountPercent *int             `gorm:"column:discount_percent"`
	CategoryID      string           `gorm:"column:category_id;type:text;not null"`
	Brand           string           `gorm:"column:brand;not null"`
	Rating          *float64         `gorm:"column:rating"`
	ReviewCount     int              `gorm:"column:review_count;not null;default:0"`
	InStock         bool             `gorm:"column:in_stock;not null"`
	Tags            types.StringList `gorm:"column:tags;type:text;not null;default:'[]'"`
	Colors          types.StringList `gorm:"column:colors;type:text;not null;default:'[]'"`
	ImageURL        string           `gorm:"column:image_url;not null;default:''"`
	Position        int              `gorm:"column:position;not null;default:0"`
	IsActive        bool             `gorm:"column:is_active;not null"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
