package enums

import "fmt"

// Availability is a stock filter flag.
type Availability string

const (
	AvailabilityInStock    Availability = "in-stock"
	AvailabilityOutOfStock Availability = "out-of-stock"
)

var validAvailability = []Availability{
	AvailabilityInStock,
	AvailabilityOutOfStock,
}

// String implements fmt.Stringer.
func (a Availability) String() string {
	return string(a)
}

// IsValid reports whether the value is a known Availability.
func (a Availability) IsValid() bool {
	for _, candidate := range validAvailability {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAvailability converts raw input into an Availability.
func ParseAvailability(value string) (Availability, error) {
	for _, candidate := range validAvailability {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability %q", value)
}
