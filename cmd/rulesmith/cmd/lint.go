package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rulesmith/rulesmith/internal/core/config"
	"github.com/rulesmith/rulesmith/internal/rules"
	"github.com/rulesmith/rulesmith/internal/types"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Validate rule files against the catalog",
	Long:  `Lint deserializes rule JSON files, validates each expression tree against the configured field/operator catalog, and prints every issue found. Exits non-zero when any error-severity issue is present.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var rule types.Rule
		if err := json.Unmarshal(data, &rule); err != nil {
			fmt.Printf("%s: malformed rule file: %v\n", path, err)
			failed++
			continue
		}

		issues := rules.Validate(&rule, catalog, policy)
		for _, issue := range issues {
			fmt.Println(formatIssue(path, issue))
		}
		if rules.HasErrors(issues) {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}

// formatIssue renders one issue line: file, node path, severity, kind, args.
// Rule-level issues render without a path segment.
func formatIssue(file string, issue rules.Issue) string {
	loc := file
	if issue.Path != nil {
		p := issue.Path.String()
		if p == "" {
			p = "(root)"
		}
		loc = fmt.Sprintf("%s: node %s", file, p)
	}
	line := fmt.Sprintf("%s: %s: %s", loc, issue.Severity, issue.Kind)
	if len(issue.Args) > 0 {
		line += " (" + strings.Join(issue.Args, ", ") + ")"
	}
	return line
}
