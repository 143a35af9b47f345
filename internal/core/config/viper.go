package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching Default()
	v.SetDefault("database_url", "sqlite://rulesmith.db")
	v.SetDefault("catalog_path", "")
	v.SetDefault("validation.empty_group_severity", "warning")
	v.SetDefault("validation.redundant_group_severity", "warning")

	// Bind environment variables with RULESMITH_ prefix
	v.SetEnvPrefix("RULESMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:            v.GetString("database_url"),
		CatalogPath:            v.GetString("catalog_path"),
		EmptyGroupSeverity:     v.GetString("validation.empty_group_severity"),
		RedundantGroupSeverity: v.GetString("validation.redundant_group_severity"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks that configured values parse before the process
// commits to them.
func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if _, err := cfg.Policy(); err != nil {
		return err
	}
	return nil
}
