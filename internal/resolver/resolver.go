package resolver

import (
	"fmt"
	"strings"

	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/structure"
)

// Resolve finds the structure node matching the URL segments, loads its
// content file, and for collection pages executes the declarative query over
// the node's direct children. pageNumber applies only to paginated
// collections; any other page receives it silently as 1.
func Resolve(nodes []*structure.Node, files map[string]*content.File, segments []string, pageNumber int) Resolution {
	path := structure.PathForSegments(segments)

	node := structure.FindByPath(nodes, path)
	if node == nil {
		return &NotFound{Message: fmt.Sprintf("no structure entry for %q", displayRoute(segments))}
	}

	file := files[node.Path]
	if file == nil {
		// The manifest references a file the store never delivered; this is
		// a storage inconsistency, not a bad URL, so say so.
		return &NotFound{Message: fmt.Sprintf("structure entry %q has no content file", node.Path)}
	}

	page := &Page{
		Title:        file.Frontmatter.Title,
		File:         file,
		LayoutID:     node.LayoutID,
		ItemLayoutID: node.ItemLayoutID,
		Route:        structure.RoutePath(node.Path),
	}

	cfg := file.Frontmatter.Collection
	if node.Kind != structure.KindCollection || cfg == nil {
		return page
	}

	items := collectChildFiles(node, files)
	sortFiles(items, cfg.SortBy, cfg.SortOrder)

	if cfg.ItemsPerPage > 0 {
		page.Items, page.Pagination = paginate(items, cfg.ItemsPerPage, pageNumber, page.Route)
	} else {
		page.Items = items
	}
	return page
}

// ResolveRoute is a convenience wrapper over Resolve for slash-separated
// route strings.
func ResolveRoute(nodes []*structure.Node, files map[string]*content.File, route string, pageNumber int) Resolution {
	route = strings.Trim(strings.TrimSpace(route), "/")
	if route == "" {
		return Resolve(nodes, files, nil, pageNumber)
	}
	return Resolve(nodes, files, strings.Split(route, "/"), pageNumber)
}

// QueryCollection returns the sorted items of the collection at route,
// ignoring pagination. Unknown routes, non-collection nodes, and collections
// without a query block all return nil.
func QueryCollection(nodes []*structure.Node, files map[string]*content.File, route string) []*content.File {
	route = strings.Trim(strings.TrimSpace(route), "/")
	var segments []string
	if route != "" {
		segments = strings.Split(route, "/")
	}

	node := structure.FindByPath(nodes, structure.PathForSegments(segments))
	if node == nil || node.Kind != structure.KindCollection {
		return nil
	}
	file := files[node.Path]
	if file == nil || file.Frontmatter.Collection == nil {
		return nil
	}

	cfg := file.Frontmatter.Collection
	items := collectChildFiles(node, files)
	sortFiles(items, cfg.SortBy, cfg.SortOrder)
	return items
}

// collectChildFiles gathers the content files of the node's direct children.
// Grandchildren are intentionally excluded; collections group one level only.
func collectChildFiles(node *structure.Node, files map[string]*content.File) []*content.File {
	out := make([]*content.File, 0, len(node.Children))
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if file := files[child.Path]; file != nil {
			out = append(out, file)
		}
	}
	return out
}

func displayRoute(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}
