package enums

// Well-known product tags. Tags are free-form; these are the ones the storefront
// gives meaning to.
const (
	ProductTagNewArrival = "new-arrival"
	ProductTagBestSeller = "best-seller"
	ProductTagDiscount   = "discount"
)
