// internal/rules/mutate_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rulesmith/rulesmith/internal/types"
)

// collectPaths walks the tree pre-order and records every node's path by id.
func collectPaths(root *types.Node) map[types.NodeID]Path {
	out := make(map[types.NodeID]Path)
	var walk func(n *types.Node, p Path)
	walk = func(n *types.Node, p Path) {
		out[n.ID] = p
		for i, c := range n.Children {
			walk(c, p.Child(i))
		}
	}
	walk(root, Path{})
	return out
}

func TestInsertChild(t *testing.T) {
	t.Run("append at child count", func(t *testing.T) {
		rule := testTree()
		node := types.NewCondition("account_age", OpEquals, "0")

		if err := InsertChild(rule, Path{}, 2, node); err != nil {
			t.Fatalf("InsertChild() error = %v", err)
		}
		if len(rule.Root.Children) != 3 || rule.Root.Children[2].ID != node.ID {
			t.Errorf("expected node appended as third child")
		}
	})

	t.Run("insert in middle preserves order", func(t *testing.T) {
		rule := testTree()
		first := rule.Root.Children[0].ID
		second := rule.Root.Children[1].ID
		node := types.NewCondition("account_age", OpEquals, "0")

		if err := InsertChild(rule, Path{}, 1, node); err != nil {
			t.Fatalf("InsertChild() error = %v", err)
		}
		got := []types.NodeID{rule.Root.Children[0].ID, rule.Root.Children[1].ID, rule.Root.Children[2].ID}
		want := []types.NodeID{first, node.ID, second}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("child order[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			parent  Path
			index   int
			wantErr error
		}{
			{"unresolvable parent", Path{5}, 0, types.ErrNodeNotFound},
			{"condition parent", Path{0}, 0, types.ErrNotAGroup},
			{"index beyond count", Path{}, 3, types.ErrIndexOutOfRange},
			{"negative index", Path{}, -1, types.ErrIndexOutOfRange},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rule := testTree()
				err := InsertChild(rule, tt.parent, tt.index, types.NewGroup(types.ConnectiveAnd))
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("InsertChild() error = %v, want %v", err, tt.wantErr)
				}
				if len(rule.Root.Children) != 2 {
					t.Error("failed insert must leave tree untouched")
				}
			})
		}
	})
}

// After insertChild(p, i, n), each pre-existing node under a later sibling of
// the insertion point shifts by exactly one at that coordinate; every other
// path is unchanged.
func TestInsertChild_ShiftInvariant(t *testing.T) {
	rule := testTree()
	before := collectPaths(rule.Root)

	inserted := types.NewCondition("account_age", OpEquals, "0")
	insertAt := Path{}
	index := 1
	if err := InsertChild(rule, insertAt, index, inserted); err != nil {
		t.Fatalf("InsertChild() error = %v", err)
	}

	after := collectPaths(rule.Root)
	for id, old := range before {
		now, ok := after[id]
		if !ok {
			t.Fatalf("node %s lost by insert", id)
		}
		want := old
		if len(old) > len(insertAt) && insertAt.IsAncestorOf(old) && old[len(insertAt)] >= index {
			want = old.Clone()
			want[len(insertAt)]++
		}
		if !now.Equal(want) {
			t.Errorf("node %s path = %v, want %v (was %v)", id, now, want, old)
		}
	}
	if !after[inserted.ID].Equal(Path{1}) {
		t.Errorf("inserted node path = %v, want [1]", after[inserted.ID])
	}
}

func TestReplaceNode(t *testing.T) {
	t.Run("replace leaf in place", func(t *testing.T) {
		rule := testTree()
		sibling := rule.Root.Children[1].ID
		node := types.NewCondition("ip_address", OpEquals, "10.0.0.1")

		if err := ReplaceNode(rule, Path{0}, node); err != nil {
			t.Fatalf("ReplaceNode() error = %v", err)
		}
		if rule.Root.Children[0].ID != node.ID {
			t.Error("node not replaced")
		}
		if rule.Root.Children[1].ID != sibling {
			t.Error("replacement disturbed sibling position")
		}
	})

	t.Run("replace root swaps whole tree", func(t *testing.T) {
		rule := testTree()
		node := types.NewGroup(types.ConnectiveOr)

		if err := ReplaceNode(rule, Path{}, node); err != nil {
			t.Fatalf("ReplaceNode() error = %v", err)
		}
		if rule.Root.ID != node.ID {
			t.Error("root not replaced")
		}
	})

	t.Run("unresolvable path", func(t *testing.T) {
		rule := testTree()
		err := ReplaceNode(rule, Path{1, 9}, types.NewGroup(types.ConnectiveAnd))
		if !errors.Is(err, types.ErrNodeNotFound) {
			t.Errorf("ReplaceNode() error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestDeleteNode(t *testing.T) {
	t.Run("delete shifts later siblings", func(t *testing.T) {
		rule := testTree()
		group := rule.Root.Children[1].ID

		if err := DeleteNode(rule, Path{0}); err != nil {
			t.Fatalf("DeleteNode() error = %v", err)
		}
		if len(rule.Root.Children) != 1 || rule.Root.Children[0].ID != group {
			t.Error("later sibling did not shift into deleted slot")
		}
	})

	t.Run("delete subtree removes descendants", func(t *testing.T) {
		rule := testTree()
		if err := DeleteNode(rule, Path{1}); err != nil {
			t.Fatalf("DeleteNode() error = %v", err)
		}
		if len(rule.Root.Children) != 1 {
			t.Errorf("child count = %d, want 1", len(rule.Root.Children))
		}
	})

	t.Run("root always rejected", func(t *testing.T) {
		rule := testTree()
		if err := DeleteNode(rule, Path{}); !errors.Is(err, types.ErrCannotDeleteRoot) {
			t.Errorf("DeleteNode(root) error = %v, want ErrCannotDeleteRoot", err)
		}

		empty := types.NewRule("empty", "")
		if err := DeleteNode(empty, Path{}); !errors.Is(err, types.ErrCannotDeleteRoot) {
			t.Errorf("DeleteNode(root) on empty rule error = %v, want ErrCannotDeleteRoot", err)
		}
	})

	t.Run("unresolvable path", func(t *testing.T) {
		rule := testTree()
		if err := DeleteNode(rule, Path{7}); !errors.Is(err, types.ErrNodeNotFound) {
			t.Errorf("DeleteNode() error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestMoveNode(t *testing.T) {
	t.Run("cycle rejected into itself and descendants", func(t *testing.T) {
		rule := testTree()
		for _, dest := range []Path{{1}, {1, 0}} {
			if err := MoveNode(rule, Path{1}, dest, 0); !errors.Is(err, types.ErrCycleRejected) {
				t.Errorf("MoveNode(1 -> %v) error = %v, want ErrCycleRejected", dest, err)
			}
		}
	})

	t.Run("move into later sibling recomputes destination", func(t *testing.T) {
		// Root children: condition, group. Moving the condition into the
		// group shifts the group from index 1 to 0 mid-operation.
		rule := testTree()
		moved := rule.Root.Children[0].ID
		group := rule.Root.Children[1]

		if err := MoveNode(rule, Path{0}, Path{1}, 0); err != nil {
			t.Fatalf("MoveNode() error = %v", err)
		}
		if len(rule.Root.Children) != 1 || rule.Root.Children[0].ID != group.ID {
			t.Fatal("group did not shift to index 0")
		}
		if len(group.Children) != 3 || group.Children[0].ID != moved {
			t.Errorf("moved node not first child of destination group")
		}
	})

	t.Run("move within same parent", func(t *testing.T) {
		rule := testTree()
		first := rule.Root.Children[0].ID
		second := rule.Root.Children[1].ID

		if err := MoveNode(rule, Path{0}, Path{}, 1); err != nil {
			t.Fatalf("MoveNode() error = %v", err)
		}
		if rule.Root.Children[0].ID != second || rule.Root.Children[1].ID != first {
			t.Error("reorder within parent failed")
		}
	})

	t.Run("move up to root group", func(t *testing.T) {
		rule := testTree()
		leaf := rule.Root.Children[1].Children[0].ID

		if err := MoveNode(rule, Path{1, 0}, Path{}, 0); err != nil {
			t.Fatalf("MoveNode() error = %v", err)
		}
		if rule.Root.Children[0].ID != leaf {
			t.Error("leaf not hoisted to front of root")
		}
		if len(rule.Root.Children[2].Children) != 1 {
			t.Errorf("source group child count = %d, want 1", len(rule.Root.Children[2].Children))
		}
	})

	t.Run("bad destination index leaves tree untouched", func(t *testing.T) {
		rule := testTree()
		err := MoveNode(rule, Path{0}, Path{1}, 5)
		if !errors.Is(err, types.ErrIndexOutOfRange) {
			t.Fatalf("MoveNode() error = %v, want ErrIndexOutOfRange", err)
		}
		if len(rule.Root.Children) != 2 {
			t.Error("failed move mutated the tree")
		}
	})

	t.Run("condition destination rejected", func(t *testing.T) {
		rule := testTree()
		if err := MoveNode(rule, Path{1}, Path{0}, 0); !errors.Is(err, types.ErrNotAGroup) {
			t.Errorf("MoveNode() error = %v, want ErrNotAGroup", err)
		}
	})
}

func TestSetConnective(t *testing.T) {
	rule := testTree()
	group := rule.Root.Children[1]
	childOrder := []types.NodeID{group.Children[0].ID, group.Children[1].ID}

	if err := SetConnective(rule, Path{1}, types.ConnectiveAnd); err != nil {
		t.Fatalf("SetConnective() error = %v", err)
	}
	if group.Connective != types.ConnectiveAnd {
		t.Errorf("Connective = %s, want AND", group.Connective)
	}
	for i, id := range childOrder {
		if group.Children[i].ID != id {
			t.Error("SetConnective disturbed child order")
		}
	}

	if err := SetConnective(rule, Path{0}, types.ConnectiveOr); !errors.Is(err, types.ErrNotAGroup) {
		t.Errorf("SetConnective() on condition error = %v, want ErrNotAGroup", err)
	}
}

func TestDeleteNodes(t *testing.T) {
	buildWide := func() *types.Rule {
		rule := types.NewRule("wide", "")
		rule.Root = types.NewGroup(types.ConnectiveAnd,
			types.NewCondition("user_age", OpEquals, "1"),
			types.NewCondition("user_age", OpEquals, "2"),
			types.NewCondition("user_age", OpEquals, "3"),
			types.NewCondition("user_age", OpEquals, "4"),
		)
		return rule
	}

	t.Run("sibling batch deletes exactly the addressed nodes", func(t *testing.T) {
		rule := buildWide()
		second := rule.Root.Children[1].ID
		fourth := rule.Root.Children[3].ID

		if err := DeleteNodes(rule, []Path{{0}, {2}}); err != nil {
			t.Fatalf("DeleteNodes() error = %v", err)
		}
		if len(rule.Root.Children) != 2 {
			t.Fatalf("child count = %d, want 2", len(rule.Root.Children))
		}
		if rule.Root.Children[0].ID != second || rule.Root.Children[1].ID != fourth {
			t.Error("wrong nodes survived the batch")
		}
	})

	t.Run("duplicate paths collapse", func(t *testing.T) {
		rule := buildWide()
		if err := DeleteNodes(rule, []Path{{1}, {1}}); err != nil {
			t.Fatalf("DeleteNodes() error = %v", err)
		}
		if len(rule.Root.Children) != 3 {
			t.Errorf("child count = %d, want 3", len(rule.Root.Children))
		}
	})

	t.Run("ancestor and descendant in one batch", func(t *testing.T) {
		rule := testTree()
		if err := DeleteNodes(rule, []Path{{1}, {1, 0}}); err != nil {
			t.Fatalf("DeleteNodes() error = %v", err)
		}
		if len(rule.Root.Children) != 1 {
			t.Errorf("child count = %d, want 1", len(rule.Root.Children))
		}
	})

	t.Run("bad path fails whole batch before mutating", func(t *testing.T) {
		rule := buildWide()
		if err := DeleteNodes(rule, []Path{{0}, {9}}); !errors.Is(err, types.ErrNodeNotFound) {
			t.Fatalf("DeleteNodes() error = %v, want ErrNodeNotFound", err)
		}
		if len(rule.Root.Children) != 4 {
			t.Error("failed batch mutated the tree")
		}
	})

	t.Run("root in batch rejected", func(t *testing.T) {
		rule := buildWide()
		if err := DeleteNodes(rule, []Path{{0}, {}}); !errors.Is(err, types.ErrCannotDeleteRoot) {
			t.Fatalf("DeleteNodes() error = %v, want ErrCannotDeleteRoot", err)
		}
		if len(rule.Root.Children) != 4 {
			t.Error("failed batch mutated the tree")
		}
	})
}

// Property-based test: the shift invariant holds for arbitrary wide trees
// and insertion points.
func TestInsertChild_PropertyShiftInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("later siblings shift by exactly one", prop.ForAll(
		func(rootWidth, groupWidth, insertIdx int) bool {
			inner := make([]*types.Node, groupWidth)
			for i := range inner {
				inner[i] = types.NewCondition("user_age", OpEquals, "1")
			}
			outer := make([]*types.Node, 0, rootWidth+1)
			for i := 0; i < rootWidth; i++ {
				outer = append(outer, types.NewCondition("account_age", OpEquals, "2"))
			}
			outer = append(outer, types.NewGroup(types.ConnectiveOr, inner...))

			rule := types.NewRule("prop", "")
			rule.Root = types.NewGroup(types.ConnectiveAnd, outer...)
			if insertIdx > len(outer) {
				insertIdx = len(outer)
			}

			before := collectPaths(rule.Root)
			inserted := types.NewCondition("transaction_amount", OpGreaterThan, "1")
			if err := InsertChild(rule, Path{}, insertIdx, inserted); err != nil {
				return false
			}
			after := collectPaths(rule.Root)

			for id, old := range before {
				want := old
				if len(old) > 0 && old[0] >= insertIdx {
					want = old.Clone()
					want[0]++
				}
				if !after[id].Equal(want) {
					return false
				}
			}
			return after[inserted.ID].Equal(Path{insertIdx})
		},
		gen.IntRange(0, 6),
		gen.IntRange(0, 4),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
