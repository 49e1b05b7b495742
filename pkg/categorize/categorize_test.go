package categorize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

const rulesYAML = `
rules:
  - category_id: food
    keywords: ["Coffee", "woolworths"]
    type: expense
  - category_id: salary
    keywords: ["payroll"]
    type: income
  - category_id: misc
    keywords: ["shop"]
`

func TestRulesMatch(t *testing.T) {
	rules, err := ParseRules([]byte(rulesYAML))
	require.NoError(t, err)
	require.True(t, rules.IsAvailable())

	tests := []struct {
		name     string
		tx       models.Transaction
		expected string
	}{
		{"keyword case insensitive", models.Transaction{Type: models.TransactionExpense, Description: "COFFEE  CLUB"}, "food"},
		{"first match wins", models.Transaction{Type: models.TransactionExpense, Description: "coffee shop"}, "food"},
		{"type filter", models.Transaction{Type: models.TransactionIncome, Description: "coffee refund"}, ""},
		{"untyped rule", models.Transaction{Type: models.TransactionIncome, Description: "Shop refund"}, "misc"},
		{"income rule", models.Transaction{Type: models.TransactionIncome, Description: "ACME PAYROLL"}, "salary"},
		{"no match", models.Transaction{Type: models.TransactionExpense, Description: "rent"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := rules.Match(tt.tx)
			if got != tt.expected {
				t.Errorf("Match(%q) = %q, expected %q", tt.tx.Description, got, tt.expected)
			}
		})
	}
}

func TestParseRulesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing category", "rules:\n  - keywords: [a]\n"},
		{"missing keywords", "rules:\n  - category_id: a\n"},
		{"bad type", "rules:\n  - category_id: a\n    keywords: [a]\n    type: refund\n"},
		{"bad yaml", "rules: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()

	rules, err := LoadRules(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, rules.IsAvailable())

	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML), 0o644))
	rules, err = LoadRules(path)
	require.NoError(t, err)

	got, err := rules.Categorize(context.Background(), []models.Transaction{
		{ID: "1", Type: models.TransactionExpense, Description: "Woolworths Metro"},
		{ID: "2", Type: models.TransactionExpense, Description: "Rent"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]models.Categorization{"1": {CategoryID: "food", Confidence: 1}}, got)
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", `[{"id":"1","category_id":"c"}]`},
		{"fenced", "```json\n[{\"id\":\"1\",\"category_id\":\"c\"}]\n```"},
		{"chatty", "Here you go:\n[{\"id\":\"1\",\"category_id\":\"c\"}]\nThanks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanModelJSON(tt.raw)
			if got != `[{"id":"1","category_id":"c"}]` {
				t.Errorf("cleanModelJSON() = %q", got)
			}
		})
	}
}

func TestParseSuggestionsFiltersUnknown(t *testing.T) {
	rows := []models.Transaction{{ID: "t1"}, {ID: "t2"}}
	cats := []models.Category{{ID: "food"}}
	raw := `[{"id":"t1","category_id":"food"},{"id":"t2","category_id":"made-up"},{"id":"t9","category_id":"food"}]`

	got, err := parseSuggestions(raw, rows, cats)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.Categorization{"t1": {CategoryID: "food"}}, got)

	_, err = parseSuggestions("not json", rows, cats)
	assert.Error(t, err)
}

func TestBuildPromptListsCategoriesAndRows(t *testing.T) {
	prompt, err := buildPrompt(
		[]models.Category{{ID: "food", Name: "Food", Type: models.TransactionExpense}},
		[]models.Transaction{{ID: "t1", Type: models.TransactionExpense, Amount: 450, Description: "Coffee"}},
	)
	require.NoError(t, err)
	for _, want := range []string{`"id":"food"`, `"name":"Food"`, `"id":"t1"`, `"amount":450`, "STRICT JSON"} {
		assert.True(t, strings.Contains(prompt, want), "prompt is missing %s", want)
	}
}

func TestGeminiWithoutKeyIsUnavailable(t *testing.T) {
	g, err := NewGemini(context.Background(), "", "", nil)
	require.NoError(t, err)
	assert.False(t, g.IsAvailable())
	_, err = g.Categorize(context.Background(), []models.Transaction{{ID: "t1"}})
	assert.Error(t, err)
}

type fixedCategorizer struct {
	available bool
	result    map[string]models.Categorization
	err       error
	seen      *[]string
}

func (f fixedCategorizer) IsAvailable() bool { return f.available }

func (f fixedCategorizer) Categorize(ctx context.Context, rows []models.Transaction) (map[string]models.Categorization, error) {
	if f.seen != nil {
		for _, r := range rows {
			*f.seen = append(*f.seen, r.ID)
		}
	}
	return f.result, f.err
}

func TestChain(t *testing.T) {
	rows := []models.Transaction{{ID: "t1"}, {ID: "t2"}}

	t.Run("later members see leftovers", func(t *testing.T) {
		var seen []string
		c := NewChain(nil,
			fixedCategorizer{available: true, result: map[string]models.Categorization{"t1": {CategoryID: "a"}}},
			fixedCategorizer{available: false, err: errors.New("never called")},
			fixedCategorizer{available: true, result: map[string]models.Categorization{"t2": {CategoryID: "b"}}, seen: &seen},
		)
		require.True(t, c.IsAvailable())
		got, err := c.Categorize(context.Background(), rows)
		require.NoError(t, err)
		assert.Equal(t, []string{"t2"}, seen)
		assert.Len(t, got, 2)
	})

	t.Run("partial failure keeps suggestions", func(t *testing.T) {
		c := NewChain(nil,
			fixedCategorizer{available: true, err: errors.New("quota")},
			fixedCategorizer{available: true, result: map[string]models.Categorization{"t1": {CategoryID: "a"}}},
		)
		got, err := c.Categorize(context.Background(), rows)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("all failing", func(t *testing.T) {
		quota := errors.New("quota")
		c := NewChain(nil, fixedCategorizer{available: true, err: quota})
		_, err := c.Categorize(context.Background(), rows)
		assert.ErrorIs(t, err, quota)
	})

	t.Run("nothing available", func(t *testing.T) {
		assert.False(t, NewChain(nil, fixedCategorizer{}).IsAvailable())
	})
}
