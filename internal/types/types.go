// Package types provides domain models shared across Rulesmith components.
//
// Zero-dependency design: types.go, errors.go and node.go use only
// encoding/json so embedding applications can consume the expression tree
// without pulling in the rest of the stack. ID utilities in ids.go import
// uuid but are isolated for selective inclusion.
package types

// RuleID represents a UUIDv7 rule identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type RuleID string

// NodeID represents a UUIDv7 expression node identifier.
// Nodes are addressed by positional paths; the ID is a permanent secondary
// identity stamped at creation and preserved across moves.
type NodeID string

// FieldID identifies a catalog field ("transaction_amount", "user_country").
type FieldID string

// OperatorID identifies a catalog operator ("equals", "greater_than", "in").
type OperatorID string

// Connective is the logical operator joining a group's children.
type Connective string

const (
	ConnectiveAnd Connective = "AND"
	ConnectiveOr  Connective = "OR"
)

// DefaultAction is the action assigned to newly created rules.
const DefaultAction = "flag_for_review"

// Resource limits enforced by the rule kernel to keep trees bounded.
const (
	// MaxInOperatorValues limits IN operator list size to prevent quadratic
	// comparison cost in the downstream evaluation engine.
	// 64 values supports typical enum-style checks.
	MaxInOperatorValues = 64
)
