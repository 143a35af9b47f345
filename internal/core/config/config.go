// Package config provides configuration management for Rulesmith services.
package config

import (
	"fmt"

	"github.com/rulesmith/rulesmith/internal/rules"
)

// Config holds process-wide settings for the rule builder service.
// The catalog and severity policy are loaded once at startup and never
// mutated afterwards.
type Config struct {
	DatabaseURL            string
	CatalogPath            string
	EmptyGroupSeverity     string
	RedundantGroupSeverity string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		DatabaseURL:            "sqlite://rulesmith.db",
		CatalogPath:            "",
		EmptyGroupSeverity:     string(rules.SeverityWarning),
		RedundantGroupSeverity: string(rules.SeverityWarning),
	}
}

// Policy converts the configured severity strings to a validation policy.
func (c *Config) Policy() (rules.Policy, error) {
	empty, err := rules.ParseSeverity(c.EmptyGroupSeverity)
	if err != nil {
		return rules.Policy{}, fmt.Errorf("empty_group_severity: %w", err)
	}
	redundant, err := rules.ParseSeverity(c.RedundantGroupSeverity)
	if err != nil {
		return rules.Policy{}, fmt.Errorf("redundant_group_severity: %w", err)
	}
	return rules.Policy{EmptyGroup: empty, RedundantGroup: redundant}, nil
}
