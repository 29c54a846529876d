package filter

import (
	"fmt"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

// Reduce applies action to m and returns the next model. On error the input
// model is returned untouched.
func Reduce(m Model, action Action) (Model, error) {
	if m.Catalog == nil {
		m.Catalog = catalog.EmptySnapshot()
	}

	switch a := action.(type) {
	case SetAllData:
		snap, err := catalog.NewSnapshot(a.Version, a.Products, a.Categories)
		if err != nil {
			return m, err
		}
		return installCatalog(m, snap)
	case LoadSnapshot:
		if a.Snapshot == nil {
			return m, pkgerrors.New(pkgerrors.CodeValidation, "snapshot is required")
		}
		return installCatalog(m, a.Snapshot)
	case UpdateField:
		return updateField(m, a.Key, a.Value)
	case ClearFilters:
		next := m
		next.State = m.Defaults()
		return next, nil
	case ResetField:
		return resetField(m, a.Key)
	case InitFromURL:
		next := m
		next.State = Decode(a.Query, m.State, m.Metadata())
		return withCategoryIDs(next)
	default:
		return m, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported action %T", action))
	}
}

// installCatalog swaps the catalog, resets the price range to the new bounds
// and re-derives the category scope. An empty product list keeps the previous
// bounds.
func installCatalog(m Model, snap *catalog.Snapshot) (Model, error) {
	if len(snap.Products) == 0 {
		meta := catalog.ComputeMetadata(nil, m.Metadata())
		if meta.MinPrice != snap.Metadata.MinPrice || meta.MaxPrice != snap.Metadata.MaxPrice {
			shallow := *snap
			shallow.Metadata = meta
			snap = &shallow
		}
	}

	next := m
	next.Catalog = snap
	next.State = m.State.Clone()
	next.State.PriceRange = PriceRange{Min: snap.Metadata.MinPrice, Max: snap.Metadata.MaxPrice}
	return withCategoryIDs(next)
}

func withCategoryIDs(m Model) (Model, error) {
	ids, err := categoryIDs(m.Catalog.Tree, m.State.CategorySlug)
	if err != nil {
		return m, err
	}
	m.State.ActiveCategoryIDs = ids
	return m, nil
}

// categoryIDs resolves slug to the inclusive set of descendant ids. An empty
// or unknown slug yields no scope.
func categoryIDs(tree *catalog.Tree, slug string) ([]string, error) {
	if slug == "" {
		return []string{}, nil
	}
	ids, ok, err := tree.DescendantsBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return ids, nil
}

func updateField(m Model, key FieldKey, value any) (Model, error) {
	next := m
	next.State = m.State.Clone()
	s := &next.State

	switch key {
	case FieldSearchQuery:
		v, ok := value.(string)
		if !ok {
			return m, fieldTypeError(key, "string", value)
		}
		s.SearchQuery = v
	case FieldPriceRange:
		v, ok := value.(PriceRange)
		if !ok {
			return m, fieldTypeError(key, "PriceRange", value)
		}
		s.PriceRange = v
	case FieldCategorySlug:
		v, ok := value.(string)
		if !ok {
			return m, fieldTypeError(key, "string", value)
		}
		s.CategorySlug = v
		return withCategoryIDs(next)
	case FieldActiveTags, FieldSelectedBrands, FieldAvailability:
		v, ok := value.([]string)
		if !ok {
			return m, fieldTypeError(key, "[]string", value)
		}
		v = cloneStrings(v)
		switch key {
		case FieldActiveTags:
			s.ActiveTags = v
		case FieldSelectedBrands:
			s.SelectedBrands = v
		default:
			s.Availability = v
		}
	case FieldMinRating:
		v, ok := value.(int)
		if !ok {
			return m, fieldTypeError(key, "int", value)
		}
		s.MinRating = v
	case FieldSortBy:
		switch v := value.(type) {
		case enums.SortKey:
			s.SortBy = v
		case string:
			s.SortBy = enums.SortKey(v)
		default:
			return m, fieldTypeError(key, "SortKey", value)
		}
	case FieldViewMode:
		switch v := value.(type) {
		case enums.ViewMode:
			s.ViewMode = v
		case string:
			s.ViewMode = enums.ViewMode(v)
		default:
			return m, fieldTypeError(key, "ViewMode", value)
		}
	default:
		return m, unknownFieldError(key)
	}
	return next, nil
}

func resetField(m Model, key FieldKey) (Model, error) {
	defaults := m.Defaults()
	next := m
	next.State = m.State.Clone()
	s := &next.State

	switch key {
	case FieldSearchQuery:
		s.SearchQuery = defaults.SearchQuery
	case FieldPriceRange:
		s.PriceRange = defaults.PriceRange
	case FieldCategorySlug:
		s.CategorySlug = defaults.CategorySlug
		s.ActiveCategoryIDs = defaults.ActiveCategoryIDs
	case FieldActiveTags:
		s.ActiveTags = defaults.ActiveTags
	case FieldSelectedBrands:
		s.SelectedBrands = defaults.SelectedBrands
	case FieldAvailability:
		s.Availability = defaults.Availability
	case FieldMinRating:
		s.MinRating = defaults.MinRating
	case FieldSortBy:
		s.SortBy = defaults.SortBy
	case FieldViewMode:
		s.ViewMode = defaults.ViewMode
	default:
		return m, unknownFieldError(key)
	}
	return next, nil
}

func fieldTypeError(key FieldKey, want string, got any) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("field %s expects %s", key, want)).
		WithDetails(map[string]any{"field": string(key), "expected": want, "got": fmt.Sprintf("%T", got)})
}

func unknownFieldError(key FieldKey) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown field %q", key)).
		WithDetails(map[string]any{"field": string(key)})
}
