package resolver

import (
	"fmt"

	"github.com/signumhq/signum/internal/content"
)

// CanonicalURL returns the root-relative canonical URL for a route. Feeds and
// sitemaps always link here, never to a /page/N variant.
func CanonicalURL(route string) string {
	if route == "" {
		return "/"
	}
	return "/" + route
}

// PageURL returns the root-relative URL for one page of a paginated
// collection. Page 1 is the canonical URL itself.
func PageURL(route string, pageNumber int) string {
	if pageNumber <= 1 {
		return CanonicalURL(route)
	}
	if route == "" {
		return fmt.Sprintf("/page/%d", pageNumber)
	}
	return fmt.Sprintf("/%s/page/%d", route, pageNumber)
}

// TotalPages computes the page count for a collection. An empty collection
// still has one (empty) page so its canonical URL stays renderable.
func TotalPages(totalItems, itemsPerPage int) int {
	if itemsPerPage <= 0 {
		return 1
	}
	pages := (totalItems + itemsPerPage - 1) / itemsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// paginate clamps pageNumber into the valid range, slices the sorted items,
// and fills in the navigation metadata.
func paginate(items []*content.File, itemsPerPage, pageNumber int, route string) ([]*content.File, *Pagination) {
	total := len(items)
	totalPages := TotalPages(total, itemsPerPage)

	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > totalPages {
		pageNumber = totalPages
	}

	start := (pageNumber - 1) * itemsPerPage
	end := start + itemsPerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pagination := &Pagination{
		CurrentPage: pageNumber,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasPrevPage: pageNumber > 1,
		HasNextPage: pageNumber < totalPages,
	}
	if pagination.HasPrevPage {
		pagination.PrevPageURL = PageURL(route, pageNumber-1)
	}
	if pagination.HasNextPage {
		pagination.NextPageURL = PageURL(route, pageNumber+1)
	}
	return items[start:end], pagination
}
