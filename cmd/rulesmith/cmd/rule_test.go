package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rulesmith/rulesmith/internal/core/db"
	"github.com/rulesmith/rulesmith/internal/core/store"
	"github.com/rulesmith/rulesmith/internal/rules"
	"github.com/rulesmith/rulesmith/internal/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	database, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.MigrateUp(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		t.Fatalf("failed to load queries: %v", err)
	}
	return store.New(queries)
}

func TestParseRuleIDArg(t *testing.T) {
	id := types.NewRuleID()
	parsed, err := parseRuleIDArg(string(id))
	if err != nil {
		t.Fatalf("parseRuleIDArg(%s) error = %v", id, err)
	}
	if parsed != id {
		t.Errorf("parseRuleIDArg() = %s, want %s", parsed, id)
	}

	if _, err := parseRuleIDArg("not-a-uuid"); err == nil {
		t.Error("expected error for malformed rule id")
	}
}

func TestFormatRuleLine(t *testing.T) {
	rule := types.NewRule("High value transactions", "")
	line := formatRuleLine(rule)

	if !strings.Contains(line, string(rule.ID)) {
		t.Errorf("line missing rule id: %s", line)
	}
	if !strings.Contains(line, "High value transactions") {
		t.Errorf("line missing rule name: %s", line)
	}
	// The creation date is recovered from the UUIDv7 id.
	today := time.Now().UTC().Format("2006-01-02")
	if !strings.Contains(line, today) {
		t.Errorf("line missing creation date %s: %s", today, line)
	}

	bad := &types.Rule{ID: "not-a-uuid", Name: "Legacy", Root: types.NewGroup(types.ConnectiveAnd)}
	if line := formatRuleLine(bad); strings.Contains(line, today) {
		t.Errorf("non-UUID id must not render a creation date: %s", line)
	}
}

func TestCountNodes(t *testing.T) {
	tree := types.NewGroup(types.ConnectiveAnd,
		types.NewCondition("transaction_amount", rules.OpGreaterThan, "10000"),
		types.NewGroup(types.ConnectiveOr,
			types.NewCondition("user_country", rules.OpIn, "BR,JP"),
			types.NewCondition("ip_address", rules.OpEquals, "10.1.2.3"),
		),
	)

	if got := countNodes(tree); got != 5 {
		t.Errorf("countNodes() = %d, want 5", got)
	}
	if got := countNodes(nil); got != 0 {
		t.Errorf("countNodes(nil) = %d, want 0", got)
	}
}

func TestListRules(t *testing.T) {
	s := newTestStore(t)
	first := types.NewRule("High value transactions", "")
	second := types.NewRule("Velocity", "Too many transactions")
	for _, r := range []*types.Rule{first, second} {
		if err := s.Save(r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := listRules(&buf, s); err != nil {
		t.Fatalf("listRules() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "High value transactions") || !strings.Contains(out, "Velocity") {
		t.Errorf("listing missing a rule:\n%s", out)
	}
	if lines := strings.Count(strings.TrimRight(out, "\n"), "\n") + 1; lines != 2 {
		t.Errorf("listing has %d lines, want 2:\n%s", lines, out)
	}
}

func TestShowRule(t *testing.T) {
	s := newTestStore(t)
	rule := types.NewRule("High value transactions", "Flags large transfers")
	rule.Root = types.NewGroup(types.ConnectiveAnd,
		types.NewCondition("transaction_amount", rules.OpGreaterThan, "10000"),
	)
	if err := s.Save(rule); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var buf bytes.Buffer
	if err := showRule(&buf, s, rule.ID); err != nil {
		t.Fatalf("showRule() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"High value transactions",
		"Flags large transfers",
		"action:",
		string(rule.ID),
		`"type": "group"`,
		`"operand": "10000"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowRule_Missing(t *testing.T) {
	s := newTestStore(t)
	var buf bytes.Buffer
	if err := showRule(&buf, s, types.NewRuleID()); !errors.Is(err, types.ErrRuleNotFound) {
		t.Errorf("showRule() error = %v, want ErrRuleNotFound", err)
	}
}
