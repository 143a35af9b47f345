package cmd

import (
	"fmt"
	"strings"

	"github.com/rulesmith/rulesmith/internal/core/config"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the field/operator catalog",
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	for _, f := range catalog.Fields() {
		fmt.Printf("%s (%s, %s)\n", f.Name, f.ID, f.Type)
		if len(f.Domain) > 0 {
			fmt.Printf("  domain: %s\n", strings.Join(f.Domain, ", "))
		}
		var ops []string
		for _, o := range catalog.OperatorsFor(f.ID) {
			ops = append(ops, string(o.ID))
		}
		fmt.Printf("  operators: %s\n", strings.Join(ops, ", "))
	}
	return nil
}
