// internal/rules/mutate.go
package rules

import (
	"github.com/rulesmith/rulesmith/internal/types"
)

/*
 * Tree mutation.
 *
 * Point edits over a rule's expression tree, keyed by positional path. All
 * operations take the rule by exclusive mutable access and either mutate in
 * place or fail with a sentinel error from internal/types, leaving the tree
 * untouched on failure.
 *
 * Operations:
 *   - InsertChild: splice a new node into a group's children
 *   - ReplaceNode: swap a node in place, position preserved
 *   - DeleteNode: remove a node (never the root)
 *   - MoveNode: relocate a subtree, composed delete-then-insert
 *   - SetConnective: flip a group between AND and OR
 *   - DeleteNodes: batch delete in descending path order
 *
 * A successful mutation invalidates any previously computed validation
 * result; callers re-validate explicitly. The mutator never auto-validates,
 * keeping the two concerns decoupled.
 */

// InsertChild inserts node as the index-th child of the group at parentPath.
// Insertion at the current child count appends; any larger index fails with
// ErrIndexOutOfRange (no clamping).
func InsertChild(rule *types.Rule, parentPath Path, index int, node *types.Node) error {
	parent, err := Resolve(rule.Root, parentPath)
	if err != nil {
		return err
	}
	if !parent.IsGroup() {
		return types.ErrNotAGroup
	}
	if index < 0 || index > len(parent.Children) {
		return types.ErrIndexOutOfRange
	}

	children := make([]*types.Node, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:index]...)
	children = append(children, node)
	children = append(children, parent.Children[index:]...)
	parent.Children = children
	return nil
}

// ReplaceNode replaces the node at path in place, preserving its position
// among siblings. Replacing the root (empty path) replaces the whole tree.
func ReplaceNode(rule *types.Rule, path Path, node *types.Node) error {
	if len(path) == 0 {
		if rule.Root == nil {
			return types.ErrNodeNotFound
		}
		rule.Root = node
		return nil
	}

	parentPath, _ := path.Parent()
	index, _ := path.ChildIndex()

	parent, err := Resolve(rule.Root, parentPath)
	if err != nil {
		return err
	}
	if !parent.IsGroup() || index >= len(parent.Children) {
		return types.ErrNodeNotFound
	}
	parent.Children[index] = node
	return nil
}

// DeleteNode removes the node at path from its parent's children.
// Deleting the root fails with ErrCannotDeleteRoot: a tree always has a
// root, and an empty rule is represented as a childless root group.
func DeleteNode(rule *types.Rule, path Path) error {
	if len(path) == 0 {
		return types.ErrCannotDeleteRoot
	}

	parentPath, _ := path.Parent()
	index, _ := path.ChildIndex()

	parent, err := Resolve(rule.Root, parentPath)
	if err != nil {
		return err
	}
	if !parent.IsGroup() || index >= len(parent.Children) {
		return types.ErrNodeNotFound
	}
	parent.Children = append(parent.Children[:index], parent.Children[index+1:]...)
	return nil
}

// MoveNode relocates the subtree at fromPath to become the toIndex-th child
// of the group at toParentPath. Fails with ErrCycleRejected when the
// destination is the source itself or any of its descendants. Composed as
// delete-then-insert; the destination path is recomputed between the two
// steps because the delete shifts later siblings of the source down by one.
func MoveNode(rule *types.Rule, fromPath, toParentPath Path, toIndex int) error {
	if fromPath.Equal(toParentPath) || fromPath.IsAncestorOf(toParentPath) {
		return types.ErrCycleRejected
	}

	node, err := Resolve(rule.Root, fromPath)
	if err != nil {
		return err
	}
	dest, err := Resolve(rule.Root, toParentPath)
	if err != nil {
		return err
	}
	if !dest.IsGroup() {
		return types.ErrNotAGroup
	}

	// Pre-check the destination index against the post-delete child count so
	// a bad index leaves the tree untouched.
	sourceParentPath, _ := fromPath.Parent()
	sourceParent, err := Resolve(rule.Root, sourceParentPath)
	if err != nil {
		return err
	}
	destCount := len(dest.Children)
	if dest == sourceParent {
		destCount--
	}
	if toIndex < 0 || toIndex > destCount {
		return types.ErrIndexOutOfRange
	}

	if err := DeleteNode(rule, fromPath); err != nil {
		return err
	}
	return InsertChild(rule, recomputeAfterDelete(toParentPath, fromPath), toIndex, node)
}

// recomputeAfterDelete adjusts path p for the removal of the node at
// deleted: when p passes through a later sibling of the deleted node, that
// coordinate shifts down by one. All other paths are unchanged.
func recomputeAfterDelete(p, deleted Path) Path {
	k := len(deleted) - 1
	if len(p) <= k {
		return p
	}
	for i := 0; i < k; i++ {
		if p[i] != deleted[i] {
			return p
		}
	}
	if p[k] > deleted[k] {
		adjusted := p.Clone()
		adjusted[k]--
		return adjusted
	}
	return p
}

// SetConnective updates the logical connective of the group at path,
// preserving its children and their order.
func SetConnective(rule *types.Rule, path Path, connective types.Connective) error {
	node, err := Resolve(rule.Root, path)
	if err != nil {
		return err
	}
	if !node.IsGroup() {
		return types.ErrNotAGroup
	}
	node.Connective = connective
	return nil
}

// DeleteNodes removes every addressed node in one batch. Paths are processed
// in descending lexicographic order so earlier deletions never invalidate
// later coordinates. All paths are resolved up front; any bad path fails the
// whole batch before the first deletion.
func DeleteNodes(rule *types.Rule, paths []Path) error {
	for _, p := range paths {
		if len(p) == 0 {
			return types.ErrCannotDeleteRoot
		}
		if _, err := Resolve(rule.Root, p); err != nil {
			return err
		}
	}

	ordered := make([]Path, 0, len(paths))
	for _, p := range paths {
		dup := false
		for _, q := range ordered {
			if p.Equal(q) {
				dup = true
				break
			}
		}
		if !dup {
			ordered = append(ordered, p)
		}
	}
	SortDescending(ordered)

	for _, p := range ordered {
		if err := DeleteNode(rule, p); err != nil {
			return err
		}
	}
	return nil
}
