// Package converter converts ledger transactions to Beancount entries.
package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// NameMapping maps a SafeFlow account or category name to a Beancount account.
type NameMapping struct {
	Name      string `yaml:"name"`
	Beancount string `yaml:"beancount"`
}

// Defaults are the Beancount accounts used for uncategorised transactions.
type Defaults struct {
	Income  string `yaml:"income"`
	Expense string `yaml:"expense"`
}

// MappingConfig represents the complete account mapping configuration.
//
// Example:
//
//	accounts:
//	  - name: Everyday
//	    beancount: Assets:Bank:CBA:Everyday
//	categories:
//	  - name: Groceries
//	    beancount: Expenses:Food:Groceries
//	defaults:
//	  expense: Expenses:Uncategorized
type MappingConfig struct {
	Accounts   []NameMapping `yaml:"accounts"`
	Categories []NameMapping `yaml:"categories"`
	Defaults   Defaults      `yaml:"defaults"`
}

// Mapper maps SafeFlow names to Beancount account names.
type Mapper struct {
	accounts   map[string]string
	categories map[string]string
	defaults   Defaults
}

// NewMapper creates a new Mapper from a YAML configuration file.
// A missing file yields a mapper with no explicit mappings.
func NewMapper(configPath string) (*Mapper, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return NewMapperFromConfig(MappingConfig{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return NewMapperFromConfig(config), nil
}

// NewMapperFromConfig builds a Mapper from an in-memory configuration.
func NewMapperFromConfig(config MappingConfig) *Mapper {
	m := &Mapper{
		accounts:   make(map[string]string, len(config.Accounts)),
		categories: make(map[string]string, len(config.Categories)),
		defaults:   config.Defaults,
	}
	for _, mapping := range config.Accounts {
		m.accounts[mapping.Name] = mapping.Beancount
	}
	for _, mapping := range config.Categories {
		m.categories[mapping.Name] = mapping.Beancount
	}

	if m.defaults.Income == "" {
		m.defaults.Income = "Income:Uncategorized"
	}
	if m.defaults.Expense == "" {
		m.defaults.Expense = "Expenses:Uncategorized"
	}
	return m
}

// AccountFor returns the mapped Beancount account for a ledger account name,
// or fallback when there is none.
func (m *Mapper) AccountFor(name, fallback string) string {
	if account := m.accounts[name]; account != "" {
		return account
	}
	return fallback
}

// CategoryFor returns the mapped Beancount account for a category name,
// or fallback when there is none.
func (m *Mapper) CategoryFor(name, fallback string) string {
	if account := m.categories[name]; account != "" {
		return account
	}
	return fallback
}

// DefaultIncome returns the account for uncategorised income.
func (m *Mapper) DefaultIncome() string { return m.defaults.Income }

// DefaultExpense returns the account for uncategorised expenses.
func (m *Mapper) DefaultExpense() string { return m.defaults.Expense }
