package filter

import (
	"net/url"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
)

// Action is a discrete change applied by Reduce.
type Action interface {
	// Name identifies the action in logs.
	Name() string
	isAction()
}

// SetAllData replaces the catalog with raw products and categories.
type SetAllData struct {
	Products   []catalog.Product
	Categories []catalog.Category
	Version    uint64
}

// LoadSnapshot replaces the catalog with an already built, shared snapshot.
type LoadSnapshot struct {
	Snapshot *catalog.Snapshot
}

// UpdateField replaces one field. Value must have the field's Go type:
// string, PriceRange, []string, int, enums.SortKey or enums.ViewMode.
type UpdateField struct {
	Key   FieldKey
	Value any
}

// ClearFilters resets every field while keeping the catalog.
type ClearFilters struct{}

// ResetField resets one field to its default.
type ResetField struct {
	Key FieldKey
}

// InitFromURL overlays recognized query parameters onto the current state.
type InitFromURL struct {
	Query url.Values
}

func (SetAllData) Name() string   { return "set_all_data" }
func (LoadSnapshot) Name() string { return "load_snapshot" }
func (UpdateField) Name() string  { return "update_field" }
func (ClearFilters) Name() string { return "clear_filters" }
func (ResetField) Name() string   { return "reset_field" }
func (InitFromURL) Name() string  { return "init_from_url" }

func (SetAllData) isAction()   {}
func (LoadSnapshot) isAction() {}
func (UpdateField) isAction()  {}
func (ClearFilters) isAction() {}
func (ResetField) isAction()   {}
func (InitFromURL) isAction()  {}
