package config

import (
	"fmt"

	"github.com/rulesmith/rulesmith/internal/rules"
	"github.com/rulesmith/rulesmith/internal/types"
	"github.com/spf13/viper"
)

// fieldDef and operatorDef are the file forms of catalog definitions.
// Decoded via viper/mapstructure from the catalog YAML file.
type fieldDef struct {
	ID     string   `mapstructure:"id"`
	Name   string   `mapstructure:"name"`
	Type   string   `mapstructure:"type"`
	Domain []string `mapstructure:"domain"`
}

type operatorDef struct {
	ID          string   `mapstructure:"id"`
	Name        string   `mapstructure:"name"`
	Types       []string `mapstructure:"types"`
	MultiValued bool     `mapstructure:"multi_valued"`
}

// LoadCatalog builds the field/operator catalog from a definitions file.
// An empty path yields the built-in fraud catalog. A file may override
// fields, operators, or both; an omitted section keeps the built-in set.
// Loaded once at process start; the catalog is read-only afterwards.
func LoadCatalog(path string) (*rules.Catalog, error) {
	if path == "" {
		return rules.Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	fields := rules.DefaultFields()
	if v.IsSet("fields") {
		var defs []fieldDef
		if err := v.UnmarshalKey("fields", &defs); err != nil {
			return nil, fmt.Errorf("failed to parse fields: %w", err)
		}
		fields = make([]rules.Field, 0, len(defs))
		for _, d := range defs {
			fields = append(fields, rules.Field{
				ID:     types.FieldID(d.ID),
				Name:   d.Name,
				Type:   rules.FieldType(d.Type),
				Domain: d.Domain,
			})
		}
	}

	operators := rules.DefaultOperators()
	if v.IsSet("operators") {
		var defs []operatorDef
		if err := v.UnmarshalKey("operators", &defs); err != nil {
			return nil, fmt.Errorf("failed to parse operators: %w", err)
		}
		operators = make([]rules.Operator, 0, len(defs))
		for _, d := range defs {
			ts := make([]rules.FieldType, 0, len(d.Types))
			for _, t := range d.Types {
				ts = append(ts, rules.FieldType(t))
			}
			operators = append(operators, rules.Operator{
				ID:          types.OperatorID(d.ID),
				Name:        d.Name,
				Types:       ts,
				MultiValued: d.MultiValued,
			})
		}
	}

	cat, err := rules.NewCatalog(fields, operators)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return cat, nil
}
