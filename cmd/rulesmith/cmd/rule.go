package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rulesmith/rulesmith/internal/core/config"
	"github.com/rulesmith/rulesmith/internal/core/db"
	"github.com/rulesmith/rulesmith/internal/core/store"
	"github.com/rulesmith/rulesmith/internal/types"
	"github.com/spf13/cobra"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Inspect and manage stored rules",
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rules, newest first",
	RunE:  runRuleList,
}

var ruleShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one rule and its expression tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleShow,
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleDelete,
}

func init() {
	rootCmd.AddCommand(ruleCmd)
	ruleCmd.AddCommand(ruleListCmd, ruleShowCmd, ruleDeleteCmd)
}

// openStore builds a store over the configured database.
// The returned func closes the underlying connection.
func openStore() (*store.Store, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}

	database, err := db.Open(dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return store.New(queries), func() { database.Close() }, nil
}

// parseRuleIDArg validates a rule id argument before it reaches the store,
// so a typo reports as a bad argument rather than a missing rule.
func parseRuleIDArg(arg string) (types.RuleID, error) {
	id, err := types.ParseRuleID(arg)
	if err != nil {
		return "", fmt.Errorf("invalid rule id %q: %w", arg, err)
	}
	return id, nil
}

func runRuleList(cmd *cobra.Command, args []string) error {
	s, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()
	return listRules(os.Stdout, s)
}

func listRules(w io.Writer, s *store.Store) error {
	all, err := s.List()
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}
	for _, r := range all {
		fmt.Fprintln(w, formatRuleLine(r))
	}
	return nil
}

// formatRuleLine renders one listing line: id, creation time recovered from
// the UUIDv7 id, node count, name.
func formatRuleLine(r *types.Rule) string {
	created := "-"
	if t := types.RuleIDTime(r.ID); !t.IsZero() {
		created = t.UTC().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s  %-16s  %3d node(s)  %s", r.ID, created, countNodes(r.Root), r.Name)
}

func countNodes(n *types.Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += countNodes(child)
	}
	return count
}

func runRuleShow(cmd *cobra.Command, args []string) error {
	id, err := parseRuleIDArg(args[0])
	if err != nil {
		return err
	}
	s, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()
	return showRule(os.Stdout, s, id)
}

func showRule(w io.Writer, s *store.Store, id types.RuleID) error {
	rule, err := s.Get(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, rule.Name)
	fmt.Fprintf(w, "  id:          %s\n", rule.ID)
	if rule.Description != "" {
		fmt.Fprintf(w, "  description: %s\n", rule.Description)
	}
	fmt.Fprintf(w, "  action:      %s\n", rule.Action)

	tree, err := json.MarshalIndent(rule.Root, "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize expression: %w", err)
	}
	fmt.Fprintf(w, "  %s\n", tree)
	return nil
}

func runRuleDelete(cmd *cobra.Command, args []string) error {
	id, err := parseRuleIDArg(args[0])
	if err != nil {
		return err
	}
	s, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := s.Delete(id); err != nil {
		return err
	}
	log.Printf("Deleted rule %s", id)
	return nil
}
