package pagination

const (
	// DefaultPage is the first page; the storefront API counts pages from 1.
	DefaultPage = 1
	// DefaultLimit is the page size when a screen does not ask for one.
	DefaultLimit = 10
	// MaxLimit caps how many products a single page may request.
	MaxLimit = 100
	// MaxPage bounds the page number a screen may request.
	MaxPage = 10000
)

// Params holds page-based pagination inputs.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies the defaults and caps the limit.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
