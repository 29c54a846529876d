package enums

import "fmt"

// SortKey selects how a projected product list is ordered.
type SortKey string

const (
	SortKeyFeatured     SortKey = "featured"
	SortKeyPriceLowHigh SortKey = "price-low-high"
	SortKeyPriceHighLow SortKey = "price-high-low"
	SortKeyNewest       SortKey = "newest"
	SortKeyRating       SortKey = "rating"
	SortKeyAlphabetical SortKey = "alphabetical"
)

var validSortKeys = []SortKey{
	SortKeyFeatured,
	SortKeyPriceLowHigh,
	SortKeyPriceHighLow,
	SortKeyNewest,
	SortKeyRating,
	SortKeyAlphabetical,
}

// String implements fmt.Stringer.
func (k SortKey) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SortKey.
func (k SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSortKey converts raw input into a SortKey.
func ParseSortKey(value string) (SortKey, error) {
	for _, candidate := range validSortKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}

// SortKeys returns every supported key in display order.
func SortKeys() []SortKey {
	out := make([]SortKey, len(validSortKeys))
	copy(out, validSortKeys)
	return out
}
