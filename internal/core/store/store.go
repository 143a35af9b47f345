// Package store persists rule records and serializes write access per rule.
//
// The expression kernel's positional paths are only safe under a
// single-writer-at-a-time discipline: two concurrent mutations against stale
// paths on the same tree can silently target the wrong node. That discipline
// belongs to this collaborator, not the kernel, so Update runs the caller's
// edit under an exclusive per-rule lock against a freshly loaded tree.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rulesmith/rulesmith/internal/core/db"
	"github.com/rulesmith/rulesmith/internal/types"
)

// Store provides rule record CRUD over named queries.
type Store struct {
	queries   *db.Queries
	ruleLocks map[types.RuleID]*sync.Mutex
	lockMu    sync.Mutex
}

// New creates a store instance over loaded queries.
func New(queries *db.Queries) *Store {
	return &Store{
		queries:   queries,
		ruleLocks: make(map[types.RuleID]*sync.Mutex),
	}
}

// ruleLock returns the mutex for a rule id, creating it if needed.
// The map grows by one entry per distinct rule edited in this process,
// an acceptable footprint for an interactive builder.
func (s *Store) ruleLock(id types.RuleID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if _, ok := s.ruleLocks[id]; !ok {
		s.ruleLocks[id] = &sync.Mutex{}
	}
	return s.ruleLocks[id]
}

// ruleRow is the database shape of a rule record.
type ruleRow struct {
	RuleID      string `db:"rule_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Action      string `db:"action"`
	Expression  string `db:"expression"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r ruleRow) toRule() (*types.Rule, error) {
	var root types.Node
	if err := json.Unmarshal([]byte(r.Expression), &root); err != nil {
		return nil, fmt.Errorf("malformed expression for rule %s: %w", r.RuleID, err)
	}
	return &types.Rule{
		ID:          types.RuleID(r.RuleID),
		Name:        r.Name,
		Description: r.Description,
		Action:      r.Action,
		Root:        &root,
	}, nil
}

// Save inserts the rule, or updates it when the id already exists.
func (s *Store) Save(rule *types.Rule) error {
	lock := s.ruleLock(rule.ID)
	lock.Lock()
	defer lock.Unlock()
	return s.save(rule)
}

func (s *Store) save(rule *types.Rule) error {
	expression, err := json.Marshal(rule.Root)
	if err != nil {
		return fmt.Errorf("failed to serialize expression: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := s.queries.Exec("update-rule",
		rule.Name, rule.Description, rule.Action, string(expression), now, string(rule.ID))
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = s.queries.Exec("insert-rule",
		string(rule.ID), rule.Name, rule.Description, rule.Action, string(expression), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

// Get loads a rule and deserializes its expression tree.
func (s *Store) Get(id types.RuleID) (*types.Rule, error) {
	var row ruleRow
	err := s.queries.Get("get-rule", &row, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule: %w", err)
	}
	return row.toRule()
}

// List returns all rules, newest first. Rules with malformed expressions are
// skipped rather than failing the listing.
func (s *Store) List() ([]*types.Rule, error) {
	var rows []ruleRow
	if err := s.queries.Select("list-rules", &rows); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	rules := make([]*types.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toRule()
		if err != nil {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Delete removes a rule record. Deleting an absent id reports ErrRuleNotFound.
func (s *Store) Delete(id types.RuleID) error {
	lock := s.ruleLock(id)
	lock.Lock()
	defer lock.Unlock()

	res, err := s.queries.Exec("delete-rule", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrRuleNotFound
	}
	return nil
}

// Update loads the rule, applies edit under the rule's exclusive lock, and
// persists the result. The edit receives a freshly loaded tree, so any paths
// it uses are computed against current shape, never a stale copy.
func (s *Store) Update(id types.RuleID, edit func(*types.Rule) error) error {
	lock := s.ruleLock(id)
	lock.Lock()
	defer lock.Unlock()

	rule, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := edit(rule); err != nil {
		return err
	}
	return s.save(rule)
}
