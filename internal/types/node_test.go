package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleTree() *Node {
	return NewGroup(ConnectiveAnd,
		NewCondition("transaction_amount", "greater_than", "10000"),
		NewGroup(ConnectiveOr,
			NewCondition("user_country", "in", "US,CA"),
			NewCondition("ip_address", "equals", "10.0.0.1"),
		),
		NewCondition("device_fingerprint", "contains", "emulator"),
	)
}

// Serializing a tree and deserializing it reproduces a node-for-node
// identical tree: same variant, same field/operator/operand, same child order.
func TestNodeJSON_RoundTrip(t *testing.T) {
	trees := map[string]*Node{
		"nested tree":    sampleTree(),
		"empty group":    NewGroup(ConnectiveAnd),
		"lone condition": NewCondition("user_age", "less_than", "18"),
		"single child":   NewGroup(ConnectiveOr, NewCondition("account_age", "equals", "0")),
		"deeply nested":  NewGroup(ConnectiveAnd, NewGroup(ConnectiveOr, NewGroup(ConnectiveAnd, NewGroup(ConnectiveOr)))),
	}

	for name, tree := range trees {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(tree)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var back Node
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			if !tree.Equal(&back) {
				t.Errorf("round trip not identical:\n  in:  %s\n  out: %+v", data, back)
			}
		})
	}
}

func TestNodeJSON_WireShape(t *testing.T) {
	cond := NewCondition("transaction_amount", "greater_than", "10000")
	data, err := json.Marshal(cond)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m["type"] != "condition" {
		t.Errorf("type = %v, want condition", m["type"])
	}
	if m["field"] != "transaction_amount" || m["operator"] != "greater_than" || m["operand"] != "10000" {
		t.Errorf("unexpected condition payload: %v", m)
	}
	if _, hasChildren := m["children"]; hasChildren {
		t.Error("condition must not carry children")
	}

	group := NewGroup(ConnectiveAnd)
	data, err = json.Marshal(group)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"children":[]`) {
		t.Errorf("empty group must serialize children as []: %s", data)
	}
}

func TestNodeJSON_UnknownType(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"type":"negation","children":[]}`), &n)
	if err == nil {
		t.Fatal("expected error for unknown node type")
	}
}

func TestNodeJSON_MissingIDGenerated(t *testing.T) {
	var n Node
	data := `{"type":"condition","field":"user_age","operator":"equals","operand":"21"}`
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n.ID == "" {
		t.Error("expected generated node id for id-less wire form")
	}
}

func TestNodeClone_Independent(t *testing.T) {
	original := sampleTree()
	clone := original.Clone()

	if !original.Equal(clone) {
		t.Fatal("clone not structurally identical")
	}

	clone.Children[0].Operand = "99999"
	clone.Children = clone.Children[:1]

	if original.Children[0].Operand != "10000" {
		t.Error("mutating clone leaked into original condition")
	}
	if len(original.Children) != 3 {
		t.Errorf("mutating clone changed original child count: %d", len(original.Children))
	}
}

func TestNewRule_Defaults(t *testing.T) {
	rule := NewRule("High value transactions", "Flags large transfers")

	if rule.ID == "" {
		t.Error("expected generated rule id")
	}
	if rule.Action != DefaultAction {
		t.Errorf("Action = %q, want %q", rule.Action, DefaultAction)
	}
	if rule.Root == nil || !rule.Root.IsGroup() {
		t.Fatal("new rule must have a group root")
	}
	if len(rule.Root.Children) != 0 {
		t.Error("new rule root must start empty")
	}
	if rule.Root.Connective != ConnectiveAnd {
		t.Errorf("Connective = %q, want AND", rule.Root.Connective)
	}
}
