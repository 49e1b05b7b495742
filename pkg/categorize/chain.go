package categorize

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// Chain asks each categoriser in turn about the rows the earlier ones left
// uncategorised.
type Chain struct {
	members []ledger.Categorizer
	logger  *slog.Logger
}

var _ ledger.Categorizer = (*Chain)(nil)

// NewChain builds a chain. A nil logger uses slog.Default().
func NewChain(logger *slog.Logger, members ...ledger.Categorizer) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{members: members, logger: logger}
}

// IsAvailable reports whether any member is available.
func (c *Chain) IsAvailable() bool {
	for _, m := range c.members {
		if m.IsAvailable() {
			return true
		}
	}
	return false
}

// Categorize merges the members' suggestions. A failing member is skipped
// as long as another one produced suggestions.
func (c *Chain) Categorize(ctx context.Context, rows []models.Transaction) (map[string]models.Categorization, error) {
	out := make(map[string]models.Categorization)
	remaining := rows
	var errs []error

	for _, m := range c.members {
		if len(remaining) == 0 {
			break
		}
		if !m.IsAvailable() {
			continue
		}

		got, err := m.Categorize(ctx, remaining)
		if err != nil {
			c.logger.Warn("Categorizer failed", "rows", len(remaining), "error", err)
			errs = append(errs, err)
			continue
		}
		for id, cat := range got {
			out[id] = cat
		}

		next := remaining[:0:0]
		for _, t := range remaining {
			if _, ok := out[t.ID]; !ok {
				next = append(next, t)
			}
		}
		remaining = next
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
