package structure

import (
	"fmt"
	"strings"
)

// Walk visits every node in the tree depth-first, parents before children.
// Returning false from fn stops the traversal.
func Walk(nodes []*Node, fn func(node *Node) bool) {
	walk(nodes, fn)
}

func walk(nodes []*Node, fn func(node *Node) bool) bool {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if !fn(node) {
			return false
		}
		if !walk(node.Children, fn) {
			return false
		}
	}
	return true
}

// FindByPath returns the node whose storage path matches exactly, or nil.
func FindByPath(nodes []*Node, path string) *Node {
	var found *Node
	Walk(nodes, func(node *Node) bool {
		if node.Path == path {
			found = node
			return false
		}
		return true
	})
	return found
}

// Clone deep-copies the tree. Exports operate on a clone so structure edits
// between runs never mutate an in-flight snapshot.
func Clone(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.clone())
	}
	return out
}

// Validate checks every node's fields and the tree-wide path uniqueness
// invariant. Slugs are checked against their paths so structure edits cannot
// desynchronise a node from its backing content file.
func Validate(nodes []*Node) error {
	seen := map[string]struct{}{}
	var firstErr error
	Walk(nodes, func(node *Node) bool {
		if err := node.validate(); err != nil {
			firstErr = err
			return false
		}
		if _, dup := seen[node.Path]; dup {
			firstErr = fmt.Errorf("%w: duplicate path %q", ErrInvalidNode, node.Path)
			return false
		}
		seen[node.Path] = struct{}{}
		expected, err := SlugFromPath(node.Path)
		if err != nil {
			firstErr = err
			return false
		}
		if node.Slug != expected {
			firstErr = fmt.Errorf("%w: node %q slug %q does not match path (want %q)", ErrInvalidNode, node.Path, node.Slug, expected)
			return false
		}
		return true
	})
	return firstErr
}

// Insert adds a node under the parent identified by parentPath. An empty
// parentPath appends at the root level. The node's slug is normalised from
// its path before insertion.
func Insert(nodes []*Node, parentPath string, node *Node) ([]*Node, error) {
	if node == nil {
		return nodes, fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	if FindByPath(nodes, node.Path) != nil {
		return nodes, fmt.Errorf("%w: %s", ErrNodeExists, node.Path)
	}
	slugged, err := SlugFromPath(node.Path)
	if err != nil {
		return nodes, err
	}
	node.Slug = slugged
	if err := node.validate(); err != nil {
		return nodes, err
	}

	if strings.TrimSpace(parentPath) == "" {
		return append(nodes, node), nil
	}
	parent := FindByPath(nodes, parentPath)
	if parent == nil {
		return nodes, fmt.Errorf("%w: parent %s", ErrNodeNotFound, parentPath)
	}
	parent.Children = append(parent.Children, node)
	return nodes, nil
}

// Remove deletes the node at path (and its subtree) from the tree.
func Remove(nodes []*Node, path string) ([]*Node, error) {
	out, removed := removeFrom(nodes, path)
	if !removed {
		return nodes, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return out, nil
}

func removeFrom(nodes []*Node, path string) ([]*Node, bool) {
	for i, node := range nodes {
		if node.Path == path {
			return append(nodes[:i:i], nodes[i+1:]...), true
		}
		if children, ok := removeFrom(node.Children, path); ok {
			node.Children = children
			return nodes, true
		}
	}
	return nodes, false
}

// Move detaches the node at path and reattaches it under newParentPath
// (root level when empty). The node keeps its path and slug; callers that
// relocate content files must issue a Remove/Insert pair with the new path.
func Move(nodes []*Node, path, newParentPath string) ([]*Node, error) {
	node := FindByPath(nodes, path)
	if node == nil {
		return nodes, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	dest := strings.TrimSpace(newParentPath)
	if dest != "" {
		if dest == path || FindByPath(node.Children, dest) != nil {
			return nodes, fmt.Errorf("%w: cannot move %s into its own subtree", ErrInvalidNode, path)
		}
		if FindByPath(nodes, dest) == nil {
			return nodes, fmt.Errorf("%w: parent %s", ErrNodeNotFound, dest)
		}
	}
	out, _ := removeFrom(nodes, path)
	if dest == "" {
		return append(out, node), nil
	}
	parent := FindByPath(out, dest)
	parent.Children = append(parent.Children, node)
	return out, nil
}

// Reorder moves the child at index from to index to within the parent
// identified by parentPath (root level when empty).
func Reorder(nodes []*Node, parentPath string, from, to int) ([]*Node, error) {
	siblings := nodes
	var parent *Node
	if strings.TrimSpace(parentPath) != "" {
		parent = FindByPath(nodes, parentPath)
		if parent == nil {
			return nodes, fmt.Errorf("%w: parent %s", ErrNodeNotFound, parentPath)
		}
		siblings = parent.Children
	}
	if from < 0 || from >= len(siblings) || to < 0 || to >= len(siblings) {
		return nodes, fmt.Errorf("%w: reorder indexes out of range", ErrInvalidNode)
	}
	if from == to {
		return nodes, nil
	}
	moved := siblings[from]
	rest := append(siblings[:from:from], siblings[from+1:]...)
	reordered := make([]*Node, 0, len(siblings))
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)
	if parent != nil {
		parent.Children = reordered
		return nodes, nil
	}
	return reordered, nil
}
