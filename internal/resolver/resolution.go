package resolver

import "github.com/signumhq/signum/internal/content"

// Resolution is the sealed result of resolving one URL path. Exactly one of
// the two variants is produced; exhaustive switches over the concrete types
// keep impossible states unrepresentable.
type Resolution interface {
	isResolution()
}

// Page is a successful resolution: the node, its content file, and for
// collections the executed query results.
type Page struct {
	Title        string
	File         *content.File
	LayoutID     string
	ItemLayoutID string
	Route        string
	Items        []*content.File
	Pagination   *Pagination
}

func (*Page) isResolution() {}

// IsCollection reports whether the resolution carries collection items.
func (p *Page) IsCollection() bool {
	return p.Items != nil
}

// NotFound is a failed resolution with a human-readable reason. It renders
// as a visible but non-fatal error page.
type NotFound struct {
	Message string
}

func (*NotFound) isResolution() {}

// Pagination describes one slice of a paginated collection. Page 1 lives at
// the canonical URL; page N > 1 appends a /page/N segment.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	HasPrevPage bool
	HasNextPage bool
	PrevPageURL string
	NextPageURL string
}
