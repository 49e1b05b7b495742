// Package categorize suggests categories for imported transactions.
package categorize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// Rule assigns a category to transactions whose description contains one of
// the keywords.
type Rule struct {
	CategoryID string   `yaml:"category_id"`
	Keywords   []string `yaml:"keywords"`
	// Type limits the rule to one transaction type. Empty matches any.
	Type models.TransactionType `yaml:"type"`
}

// RulesConfig is the YAML rules file.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// Rules categorises by keyword. The first matching rule wins.
type Rules struct {
	rules []Rule
}

var _ ledger.Categorizer = (*Rules)(nil)

// LoadRules reads a rules file. A missing file yields an empty rule set.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRules(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules parses YAML rules.
func ParseRules(data []byte) (*Rules, error) {
	var config RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, r := range config.Rules {
		if r.CategoryID == "" {
			return nil, fmt.Errorf("rule %d: category_id is required", i)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: at least one keyword is required", i)
		}
		if r.Type != "" && !r.Type.Valid() {
			return nil, fmt.Errorf("rule %d: unknown type %q", i, r.Type)
		}
	}
	return NewRules(config.Rules), nil
}

// NewRules builds a rule set. Keywords are matched case-insensitively.
func NewRules(rules []Rule) *Rules {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		normalized[i] = r
		normalized[i].Keywords = make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = ledger.NormalizeDescription(kw); kw != "" {
				normalized[i].Keywords = append(normalized[i].Keywords, kw)
			}
		}
	}
	return &Rules{rules: normalized}
}

// IsAvailable reports whether any rules are loaded.
func (r *Rules) IsAvailable() bool {
	return len(r.rules) > 0
}

// Match returns the category of the first matching rule.
func (r *Rules) Match(t models.Transaction) (string, bool) {
	desc := ledger.NormalizeDescription(t.Description)
	for _, rule := range r.rules {
		if rule.Type != "" && rule.Type != t.Type {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.CategoryID, true
			}
		}
	}
	return "", false
}

// Categorize returns a suggestion for every row a rule matches.
func (r *Rules) Categorize(ctx context.Context, rows []models.Transaction) (map[string]models.Categorization, error) {
	out := make(map[string]models.Categorization)
	for _, t := range rows {
		if id, ok := r.Match(t); ok {
			out[t.ID] = models.Categorization{CategoryID: id, Confidence: 1}
		}
	}
	return out, nil
}
