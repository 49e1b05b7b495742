package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// CategoryLister returns the categories a model may choose from.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Gemini asks a Gemini model to categorise transactions.
type Gemini struct {
	client     *genai.Client
	model      string
	categories CategoryLister
}

var _ ledger.Categorizer = (*Gemini)(nil)

// NewGemini creates a Gemini categoriser. Without an API key the categoriser
// is created but reports itself unavailable.
func NewGemini(ctx context.Context, apiKey, model string, categories CategoryLister) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	g := &Gemini{model: model, categories: categories}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// IsAvailable reports whether an API key was configured.
func (g *Gemini) IsAvailable() bool {
	return g.client != nil
}

// Categorize sends the rows and the category list to the model in one request.
func (g *Gemini) Categorize(ctx context.Context, rows []models.Transaction) (map[string]models.Categorization, error) {
	if g.client == nil {
		return nil, errors.New("gemini categorizer is not configured")
	}
	cats, err := g.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(cats) == 0 || len(rows) == 0 {
		return map[string]models.Categorization{}, nil
	}

	prompt, err := buildPrompt(cats, rows)
	if err != nil {
		return nil, err
	}
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, errors.New("empty response from model")
	}
	return parseSuggestions(raw, rows, cats)
}

type promptRow struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type promptCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func buildPrompt(cats []models.Category, rows []models.Transaction) (string, error) {
	pc := make([]promptCategory, len(cats))
	for i, c := range cats {
		pc[i] = promptCategory{ID: c.ID, Name: c.Name, Type: string(c.Type)}
	}
	pr := make([]promptRow, len(rows))
	for i, t := range rows {
		pr[i] = promptRow{ID: t.ID, Type: string(t.Type), Amount: t.Amount, Description: t.Description, Date: t.Date.Format("2006-01-02")}
	}
	catJSON, err := json.Marshal(pc)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}
	rowJSON, err := json.Marshal(pr)
	if err != nil {
		return "", fmt.Errorf("failed to encode transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("You categorise household bank transactions.\n\n")
	b.WriteString("Categories (JSON):\n")
	b.Write(catJSON)
	b.WriteString("\n\nTransactions (JSON, amounts in cents):\n")
	b.Write(rowJSON)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Pick the single best category for each transaction, preferring categories of the same type.\n")
	b.WriteString("- Leave a transaction out if no category fits.\n")
	b.WriteString("- Output STRICT JSON only: an array of objects with \"id\" and \"category_id\".\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	return b.String(), nil
}

type suggestion struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
}

// parseSuggestions keeps suggestions for known rows and categories.
func parseSuggestions(raw string, rows []models.Transaction, cats []models.Category) (map[string]models.Categorization, error) {
	var parsed []suggestion
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	knownRows := make(map[string]bool, len(rows))
	for _, t := range rows {
		knownRows[t.ID] = true
	}
	knownCats := make(map[string]bool, len(cats))
	for _, c := range cats {
		knownCats[c.ID] = true
	}

	out := make(map[string]models.Categorization, len(parsed))
	for _, s := range parsed {
		if knownRows[s.ID] && knownCats[s.CategoryID] {
			out[s.ID] = models.Categorization{CategoryID: s.CategoryID}
		}
	}
	return out, nil
}

// cleanModelJSON strips code fences and any text around the JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}
