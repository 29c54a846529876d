package enums

import "fmt"

// ViewMode is the listing layout chosen by the shopper.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

var validViewModes = []ViewMode{
	ViewModeGrid,
	ViewModeList,
}

// String implements fmt.Stringer.
func (v ViewMode) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ViewMode.
func (v ViewMode) IsValid() bool {
	for _, candidate := range validViewModes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseViewMode converts raw input into a ViewMode. Matching is exact.
func ParseViewMode(value string) (ViewMode, error) {
	for _, candidate := range validViewModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid view mode %q", value)
}
