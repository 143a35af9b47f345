// internal/rules/path.go
package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rulesmith/rulesmith/internal/types"
)

/*
 * Positional path addressing.
 *
 * A path is an ordered sequence of child indices interpreted root-to-leaf;
 * the empty path addresses the root. Paths are positional coordinates, not
 * stable identities: any mutation that inserts or removes a sibling shifts
 * the paths of all later siblings and their subtrees. This is a deliberate
 * trade-off (simplicity over stable node IDs) carried over from the visual
 * builder the kernel serves. A caller holding a stale path after an edit may
 * address the wrong node; the storage collaborator enforces single-writer
 * access per rule for exactly this reason.
 *
 * Ordering is lexicographic over the coordinate sequence. Batch operations
 * process paths in descending order so earlier deletions never invalidate
 * later coordinates within the same batch.
 */

// Path addresses a node within an expression tree.
// The empty path denotes the root.
type Path []int

// ParsePath parses a dotted path string ("1.0.2"). The empty string denotes
// the root. Returns ErrInvalidPath for non-numeric or negative coordinates.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, types.ErrInvalidPath
		}
		p = append(p, n)
	}
	return p, nil
}

// String renders the dotted form; the root renders as the empty string.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// Child returns a new path addressing the i-th child of p.
func (p Path) Child(i int) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, i)
}

// Parent returns the path of the node's parent.
// Fails with ErrInvalidPath for the root, which has no parent.
func (p Path) Parent() (Path, error) {
	if len(p) == 0 {
		return nil, types.ErrInvalidPath
	}
	return p[:len(p)-1].Clone(), nil
}

// ChildIndex returns the last coordinate: the node's index among its
// siblings. Fails with ErrInvalidPath for the root.
func (p Path) ChildIndex() (int, error) {
	if len(p) == 0 {
		return 0, types.ErrInvalidPath
	}
	return p[len(p)-1], nil
}

// Equal reports coordinate-wise equality.
func (p Path) Equal(q Path) bool {
	return Compare(p, q) == 0
}

// IsAncestorOf reports whether p is a strict prefix of q.
// A path is not its own ancestor.
func (p Path) IsAncestorOf(q Path) bool {
	if len(p) >= len(q) {
		return false
	}
	for i, n := range p {
		if q[i] != n {
			return false
		}
	}
	return true
}

// Compare orders paths lexicographically over their coordinate sequences.
// A prefix sorts before any of its extensions.
func Compare(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// SortDescending orders paths from deepest-last to shallowest-first
// lexicographically, the processing order for batch deletions.
func SortDescending(paths []Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		return Compare(paths[i], paths[j]) > 0
	})
}

// Resolve walks the tree from root following the path's coordinates.
// Fails with ErrNodeNotFound when a coordinate is out of range or the walk
// descends into a condition leaf.
func Resolve(root *types.Node, p Path) (*types.Node, error) {
	node := root
	if node == nil {
		return nil, types.ErrNodeNotFound
	}
	for _, i := range p {
		if !node.IsGroup() || i < 0 || i >= len(node.Children) {
			return nil, types.ErrNodeNotFound
		}
		node = node.Children[i]
	}
	return node, nil
}
