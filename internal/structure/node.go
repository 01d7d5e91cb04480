package structure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	// ErrNodeExists indicates an insert would duplicate an existing path.
	ErrNodeExists = errors.New("structure: node already exists")
	// ErrNodeNotFound indicates the requested path has no node.
	ErrNodeNotFound = errors.New("structure: node not found")
	// ErrInvalidNode indicates a node violates the tree invariants.
	ErrInvalidNode = errors.New("structure: invalid node")
)

// NodeKind distinguishes plain pages from collection listings.
type NodeKind string

const (
	// KindPage renders a single content file.
	KindPage NodeKind = "page"
	// KindCollection renders a sorted, optionally paginated listing of its
	// direct children.
	KindCollection NodeKind = "collection"
)

// Valid reports whether the kind is one of the known variants.
func (k NodeKind) Valid() bool {
	return k == KindPage || k == KindCollection
}

// Node is one entry in the site tree. Path doubles as the canonical storage
// key for the node's backing content file and must be unique across the tree.
type Node struct {
	Kind         NodeKind `json:"kind"`
	Title        string   `json:"title"`
	Path         string   `json:"path"`
	Slug         string   `json:"slug"`
	LayoutID     string   `json:"layoutId"`
	ItemLayoutID string   `json:"itemLayoutId,omitempty"`
	Children     []*Node  `json:"children,omitempty"`
}

const (
	contentPrefix = "content/"
	contentSuffix = ".md"
	indexPath     = contentPrefix + "index" + contentSuffix
)

// IndexPath is the canonical storage path of the site's root page.
func IndexPath() string {
	return indexPath
}

// RoutePath strips the content/ prefix and .md suffix from a storage path,
// yielding the node's routable URL segment. The index page maps to the empty
// route.
func RoutePath(path string) string {
	route := strings.TrimPrefix(strings.TrimSpace(path), contentPrefix)
	route = strings.TrimSuffix(route, contentSuffix)
	if route == "index" {
		return ""
	}
	return route
}

// PathForSegments builds a canonical storage path from URL segments. Empty
// segments map to the index page.
func PathForSegments(segments []string) string {
	cleaned := make([]string, 0, len(segments))
	for _, segment := range segments {
		if trimmed := strings.TrimSpace(strings.Trim(segment, "/")); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return indexPath
	}
	return contentPrefix + strings.Join(cleaned, "/") + contentSuffix
}

// SlugFromPath derives the URL-friendly identifier for a storage path using
// the shared slug normalisation rules.
func SlugFromPath(path string) (string, error) {
	route := RoutePath(path)
	if route == "" {
		return "index", nil
	}
	segments := strings.Split(route, "/")
	last := segments[len(segments)-1]
	normalized, err := slug.Normalize(last)
	if err != nil {
		return "", fmt.Errorf("structure: slug for %q: %w", path, err)
	}
	return normalized, nil
}

// validate checks the node's own fields without descending into children.
func (n *Node) validate() error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidNode, n.Kind)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: node %q missing title", ErrInvalidNode, n.Path)
	}
	if !strings.HasPrefix(n.Path, contentPrefix) || !strings.HasSuffix(n.Path, contentSuffix) {
		return fmt.Errorf("%w: path %q must match content/**.md", ErrInvalidNode, n.Path)
	}
	if strings.TrimSpace(n.LayoutID) == "" {
		return fmt.Errorf("%w: node %q missing layout", ErrInvalidNode, n.Path)
	}
	if n.ItemLayoutID != "" && n.Kind != KindCollection {
		return fmt.Errorf("%w: node %q declares item layout but is not a collection", ErrInvalidNode, n.Path)
	}
	return nil
}

// clone returns a deep copy of the node and its subtree.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	copied := *n
	if len(n.Children) > 0 {
		copied.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			copied.Children = append(copied.Children, child.clone())
		}
	}
	return &copied
}
