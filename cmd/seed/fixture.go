package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/db/models"
	"github.com/angelmondragon/storefront-catalog/pkg/types"
)

var validate = validator.New()

type fixture struct {
	Categories []categoryFixture `json:"categories" validate:"dive"`
	Products   []productFixture  `json:"products" validate:"dive"`
}

type categoryFixture struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	Slug   string `json:"slug"`
	Parent string `json:"parent"`
}

type productFixture struct {
	ID              string           `json:"id"`
	Name            string           `json:"name" validate:"required"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	CompareAtPrice  *decimal.Decimal `json:"compare_at_price"`
	DiscountPercent *int             `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	Category        string           `json:"category" validate:"required"`
	Brand           string           `json:"brand" validate:"required"`
	Rating          *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount     int              `json:"review_count" validate:"gte=0"`
	InStock         bool             `json:"in_stock"`
	Tags            []string         `json:"tags" validate:"dive,required"`
	Colors          []string         `json:"colors"`
	ImageURL        string           `json:"image_url"`
}

type seedRows struct {
	categories []models.Category
	products   []models.Product
}

func decodeFixture(r io.Reader) (*fixture, error) {
	var f fixture
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("validating fixture: %w", err)
	}
	return &f, nil
}

// buildRows resolves slugs and parent references, assigns missing ids and
// checks the result forms a valid category tree before anything is written.
// Categories and products may reference a category by id or by slug.
func buildRows(f *fixture) (*seedRows, error) {
	rows := &seedRows{}
	ref := map[string]string{}

	for i, c := range f.Categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			id = uuid.NewString()
		}
		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			slug = catalog.Slugify(c.Name)
		}
		rows.categories = append(rows.categories, models.Category{
			ID:       id,
			Name:     c.Name,
			Slug:     slug,
			Position: i,
			IsActive: true,
		})
		ref[id] = id
		ref[slug] = id
	}

	var errs error
	for i, c := range f.Categories {
		parent := strings.TrimSpace(c.Parent)
		if parent == "" {
			continue
		}
		id, ok := ref[parent]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("category %q: unknown parent %q", c.Name, parent))
			continue
		}
		rows.categories[i].ParentID = &id
	}

	for i, p := range f.Products {
		categoryID, ok := ref[strings.TrimSpace(p.Category)]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category))
			continue
		}
		if p.Price.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("product %q: negative price", p.Name))
			continue
		}
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = uuid.NewString()
		}
		rows.products = append(rows.products, models.Product{
			ID:              id,
			Name:            p.Name,
			Description:     p.Description,
			Price:           p.Price,
			CompareAtPrice:  p.CompareAtPrice,
			DiscountPercent: p.DiscountPercent,
			CategoryID:      categoryID,
			Brand:           p.Brand,
			Rating:          p.Rating,
			ReviewCount:     p.ReviewCount,
			InStock:         p.InStock,
			Tags:            types.StringList(p.Tags),
			Colors:          types.StringList(p.Colors),
			ImageURL:        p.ImageURL,
			Position:        i,
			IsActive:        true,
		})
	}
	if errs != nil {
		return nil, errs
	}

	categories := make([]catalog.Category, 0, len(rows.categories))
	for _, c := range rows.categories {
		categories = append(categories, catalog.Category{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID})
	}
	if _, err := catalog.NewTree(categories); err != nil {
		return nil, err
	}
	return rows, nil
}
