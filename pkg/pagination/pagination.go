package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 24
	// MaxLimit caps how many products any page can request.
	MaxLimit = 100
	// MaxPage bounds page numbers accepted from clients.
	MaxPage = 100000

	// Query-string keys carrying the page inputs.
	ParamPage  = "page"
	ParamLimit = "limit"
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the page that was returned.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps page numbers to 1-based values.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Normalize returns params with defaults and caps applied.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// Bounds returns the half-open [start, end) window of a list of length total.
// Pages past the end yield an empty window at total.
func Bounds(total int, params Params) (int, int) {
	p := params.Normalize()
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// Window slices items to the requested page and reports the page metadata.
// The returned slice is a copy; items is left untouched.
func Window[T any](items []T, params Params) ([]T, Meta) {
	p := params.Normalize()
	total := len(items)
	start, end := Bounds(total, p)

	page := make([]T, end-start)
	copy(page, items[start:end])

	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return page, Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    end < total,
		HasPrev:    p.Page > 1,
	}
}
