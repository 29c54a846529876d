package catalog

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-catalog/pkg/db/models"
)

// Source is the system of record the loader reads the catalog from.
type Source interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

// Repository reads and writes catalog rows through GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListCategories returns active categories in merchandising order.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryFromModel(row))
	}
	return out, nil
}

// ListProducts returns active products in merchandising order, which is the
// order the "featured" sort preserves.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, productFromModel(row))
	}
	return out, nil
}

// UpsertCategories inserts or refreshes category rows keyed by id.
func (r *Repository) UpsertCategories(ctx context.Context, rows []models.Category) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "parent_id", "position", "is_active", "updated_at"}),
	}).Create(&rows).Error
}

// UpsertProducts inserts or refreshes product rows keyed by id.
func (r *Repository) UpsertProducts(ctx context.Context, rows []models.Product) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "price", "compare_at_price", "discount_percent", "category_id", "brand",
			"rating", "review_count", "in_stock", "tags", "colors", "image_url", "position", "is_active", "updated_at",
		}),
	}).Create(&rows).Error
}

func categoryFromModel(row models.Category) Category {
	return Category{
		ID:       row.ID,
		Name:     row.Name,
		Slug:     row.Slug,
		ParentID: row.ParentID,
	}
}

func productFromModel(row models.Product) Product {
	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Product{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		Price:           row.Price,
		CompareAtPrice:  row.CompareAtPrice,
		DiscountPercent: row.DiscountPercent,
		CategoryID:      row.CategoryID,
		Brand:           row.Brand,
		Rating:          row.Rating,
		ReviewCount:     row.ReviewCount,
		InStock:         row.InStock,
		Tags:            tags,
		Colors:          []string(row.Colors),
		ImageURL:        row.ImageURL,
	}
}
