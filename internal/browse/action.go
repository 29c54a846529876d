package browse

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront-catalog/internal/filter"
	"github.com/angelmondragon/storefront-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

// Action request types.
const (
	ActionUpdateField   = "update_field"
	ActionResetField    = "reset_field"
	ActionClearFilters  = "clear_filters"
	ActionInitFromURL   = "init_from_url"
	ActionReloadCatalog = "reload_catalog"
)

const maxRating = 5

var validate = validator.New()

// ActionRequest is the wire form of one filter action.
type ActionRequest struct {
	Type  string          `json:"type" validate:"required,oneof=update_field reset_field clear_filters init_from_url reload_catalog"`
	Field string          `json:"field,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	// Path and Query describe a navigation for init_from_url.
	Path  string `json:"path,omitempty"`
	Query string `json:"query,omitempty"`
}

type priceRangeValue struct {
	Min *int64 `json:"min" validate:"required"`
	Max *int64 `json:"max" validate:"required"`
}

type ratingValue struct {
	Value int `validate:"gte=0,lte=5"`
}

type listValue struct {
	Values []string `validate:"dive,required"`
}

// fieldAction turns an update_field or reset_field request into a filter action.
func fieldAction(req ActionRequest) (filter.Action, error) {
	key, ok := filter.ParseFieldKey(strings.TrimSpace(req.Field))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown filter field").
			WithDetails(map[string]any{"field": req.Field})
	}
	if req.Type == ActionResetField {
		return filter.ResetField{Key: key}, nil
	}
	if len(req.Value) == 0 {
		return nil, fieldError(key, "value is required")
	}
	value, err := decodeFieldValue(key, req.Value)
	if err != nil {
		return nil, err
	}
	return filter.UpdateField{Key: key, Value: value}, nil
}

func decodeFieldValue(key filter.FieldKey, raw json.RawMessage) (any, error) {
	switch key {
	case filter.FieldSearchQuery, filter.FieldCategorySlug:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fieldError(key, "must be a string")
		}
		return v, nil
	case filter.FieldPriceRange:
		var v priceRangeValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fieldError(key, "must be an object with integer min and max")
		}
		if err := validate.Struct(v); err != nil {
			return nil, fieldError(key, "min and max are required")
		}
		if *v.Max < *v.Min {
			return nil, fieldError(key, "max must not be below min")
		}
		return filter.PriceRange{Min: *v.Min, Max: *v.Max}, nil
	case filter.FieldActiveTags, filter.FieldSelectedBrands, filter.FieldAvailability:
		var v listValue
		if err := json.Unmarshal(raw, &v.Values); err != nil {
			return nil, fieldError(key, "must be an array of strings")
		}
		if v.Values == nil {
			v.Values = []string{}
		}
		if err := validate.Struct(v); err != nil {
			return nil, fieldError(key, "entries must not be empty")
		}
		if key == filter.FieldAvailability {
			for _, flag := range v.Values {
				if !enums.Availability(flag).IsValid() {
					return nil, fieldError(key, fmt.Sprintf("unknown availability %q", flag))
				}
			}
		}
		return v.Values, nil
	case filter.FieldMinRating:
		var v ratingValue
		if err := json.Unmarshal(raw, &v.Value); err != nil {
			return nil, fieldError(key, "must be an integer")
		}
		if err := validate.Struct(v); err != nil {
			return nil, fieldError(key, fmt.Sprintf("must be between 0 and %d", maxRating))
		}
		return v.Value, nil
	case filter.FieldSortBy:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fieldError(key, "must be a string")
		}
		sortKey, err := enums.ParseSortKey(v)
		if err != nil {
			return nil, fieldError(key, err.Error())
		}
		return sortKey, nil
	case filter.FieldViewMode:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fieldError(key, "must be a string")
		}
		mode, err := enums.ParseViewMode(v)
		if err != nil {
			return nil, fieldError(key, err.Error())
		}
		return mode, nil
	}
	return nil, fieldError(key, "is not supported")
}

// navigation resolves an init_from_url request into the query to overlay and
// the location to push. An empty path stays on currentPath.
func navigation(req ActionRequest, currentPath, categoryPrefix string) (url.Values, filter.Location, error) {
	query, err := url.ParseQuery(strings.TrimPrefix(req.Query, "?"))
	if err != nil {
		return nil, filter.Location{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query string")
	}
	path := req.Path
	if path == "" {
		path = currentPath
	}
	if slug, ok := filter.SlugFromPath(categoryPrefix, path); ok {
		query.Set(filter.ParamCategorySlug, slug)
	}
	return query, filter.Location{Path: path, Query: query.Encode()}, nil
}

func fieldError(key filter.FieldKey, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid filter value").
		WithDetails(map[string]string{string(key): msg})
}

func validateRequest(req ActionRequest) error {
	if err := validate.Struct(req); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action").
			WithDetails(map[string]string{"type": "must be one of update_field, reset_field, clear_filters, init_from_url, reload_catalog"})
	}
	return nil
}
