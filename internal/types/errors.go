package types

import "errors"

// Sentinel errors for Rulesmith tree operations.
//
// These form the structural contract taxonomy: they indicate a caller bug
// (typically a stale path after a prior mutation) rather than bad user input.
// Rule content problems are reported as validation issues, never as errors.
var (
	// ErrNodeNotFound indicates a path does not resolve to a node.
	ErrNodeNotFound = errors.New("node not found at path")

	// ErrNotAGroup indicates a child operation targeted a condition leaf.
	ErrNotAGroup = errors.New("node is not a group")

	// ErrIndexOutOfRange indicates an insertion index beyond the child count.
	ErrIndexOutOfRange = errors.New("child index out of range")

	// ErrCannotDeleteRoot indicates an attempt to delete the root node.
	// A tree always has a root; an empty rule is a root group with no children.
	ErrCannotDeleteRoot = errors.New("cannot delete root node")

	// ErrCycleRejected indicates a move that would place a subtree inside itself.
	ErrCycleRejected = errors.New("move would create cycle")

	// ErrInvalidPath indicates a malformed path or a parent/index query on the
	// empty (root) path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrRuleNotFound indicates a rule id does not exist in the store.
	ErrRuleNotFound = errors.New("rule not found")
)
