// internal/types/node.go
package types

import (
	"encoding/json"
	"fmt"
)

/*
 * Expression tree domain types.
 *
 * Provides Node (the Condition/Group tagged union) and Rule used by
 * internal/rules for mutation and validation. These types are wire-format
 * agnostic except for one guarantee: the JSON form round-trips, producing a
 * node-for-node identical tree (same variant, same field/operator/operand,
 * same child order).
 *
 * Key types:
 *   - Node: Tagged union, condition leaf or group interior node
 *   - Rule: Named rule owning its entire expression subtree
 *
 * Ownership: A group holds its children exclusively; every node is reachable
 * from exactly one parent. The structure is a tree by construction, so cycle
 * checks are only needed when relocating an existing subtree (the mutator's
 * move operation).
 */

// NodeKind discriminates the two expression node variants.
type NodeKind string

const (
	NodeCondition NodeKind = "condition"
	NodeGroup     NodeKind = "group"
)

// Node is one unit of a rule expression tree: a condition leaf comparing a
// catalog field against an operand, or a group joining ordered children with
// a logical connective. Only the fields of the active variant are meaningful.
type Node struct {
	ID   NodeID
	Kind NodeKind

	// Condition variant.
	Field    FieldID
	Operator OperatorID
	Operand  string

	// Group variant. Child order is significant (display order) and must be
	// preserved across edits; AND/OR are commutative for evaluation only.
	Connective Connective
	Children   []*Node
}

// NewCondition creates a condition leaf with a fresh node ID.
func NewCondition(field FieldID, operator OperatorID, operand string) *Node {
	return &Node{
		ID:       NewNodeID(),
		Kind:     NodeCondition,
		Field:    field,
		Operator: operator,
		Operand:  operand,
	}
}

// NewGroup creates a group node with a fresh node ID and the given children.
// A group with zero children is structurally valid (the canonical empty rule).
func NewGroup(connective Connective, children ...*Node) *Node {
	return &Node{
		ID:         NewNodeID(),
		Kind:       NodeGroup,
		Connective: connective,
		Children:   children,
	}
}

// IsGroup reports whether the node is a group interior node.
func (n *Node) IsGroup() bool {
	return n.Kind == NodeGroup
}

// Clone returns a deep copy of the subtree rooted at n.
// Node IDs are preserved; the copy shares no memory with the original.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Equal reports structural equality of two subtrees: same variant, same
// field/operator/operand or connective, same child order. Node IDs are
// compared too since they are part of the round-trip contract.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.ID != other.ID || n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case NodeCondition:
		return n.Field == other.Field &&
			n.Operator == other.Operator &&
			n.Operand == other.Operand
	case NodeGroup:
		if n.Connective != other.Connective || len(n.Children) != len(other.Children) {
			return false
		}
		for i := range n.Children {
			if !n.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// conditionJSON and groupJSON are the variant wire forms. The "type" key
// discriminates; children is always present for groups (possibly empty).
type conditionJSON struct {
	Type     NodeKind   `json:"type"`
	ID       NodeID     `json:"id"`
	Field    FieldID    `json:"field"`
	Operator OperatorID `json:"operator"`
	Operand  string     `json:"operand"`
}

type groupJSON struct {
	Type       NodeKind   `json:"type"`
	ID         NodeID     `json:"id"`
	Connective Connective `json:"connective"`
	Children   []*Node    `json:"children"`
}

// MarshalJSON emits the variant-specific wire form.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case NodeCondition:
		return json.Marshal(conditionJSON{
			Type:     NodeCondition,
			ID:       n.ID,
			Field:    n.Field,
			Operator: n.Operator,
			Operand:  n.Operand,
		})
	case NodeGroup:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		return json.Marshal(groupJSON{
			Type:       NodeGroup,
			ID:         n.ID,
			Connective: n.Connective,
			Children:   children,
		})
	default:
		return nil, fmt.Errorf("cannot marshal node of unknown kind %q", n.Kind)
	}
}

// UnmarshalJSON dispatches on the "type" discriminator.
// Nodes without an id (hand-written rule files) get a fresh one.
func (n *Node) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type NodeKind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case NodeCondition:
		var c conditionJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*n = Node{
			ID:       c.ID,
			Kind:     NodeCondition,
			Field:    c.Field,
			Operator: c.Operator,
			Operand:  c.Operand,
		}
	case NodeGroup:
		var g groupJSON
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		children := g.Children
		if children == nil {
			children = []*Node{}
		}
		*n = Node{
			ID:         g.ID,
			Kind:       NodeGroup,
			Connective: g.Connective,
			Children:   children,
		}
	default:
		return fmt.Errorf("unknown node type %q", probe.Type)
	}

	if n.ID == "" {
		n.ID = NewNodeID()
	}
	return nil
}

// Rule is a named fraud rule. It exclusively owns its expression subtree;
// no node is shared between rules or referenced twice within the same tree.
type Rule struct {
	ID          RuleID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Root        *Node  `json:"root"`
}

// NewRule creates a rule with an empty AND group as its root.
func NewRule(name, description string) *Rule {
	return &Rule{
		ID:          NewRuleID(),
		Name:        name,
		Description: description,
		Action:      DefaultAction,
		Root:        NewGroup(ConnectiveAnd),
	}
}

// Clone returns a deep copy of the rule and its entire tree.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	c := *r
	c.Root = r.Root.Clone()
	return &c
}
