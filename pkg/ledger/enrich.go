package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// NoticeLevel is the severity of a Notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message about background work.
type Notice struct {
	Level     NoticeLevel
	Operation string
	Message   string
	Err       error
}

func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s: %s: %v", n.Operation, n.Message, n.Err)
	}
	return fmt.Sprintf("%s: %s", n.Operation, n.Message)
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

func (s *Service) notify(n Notice) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

// enrich categorises freshly imported rows in the background.
func (s *Service) enrich(rows []models.Transaction) {
	if s.categorizer == nil || !s.categorizer.IsAvailable() {
		return
	}

	pending := make([]models.Transaction, 0, len(rows))
	for _, t := range rows {
		if t.CategoryID == nil {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.categorize(s.baseCtx, pending)
	}()
}

func (s *Service) categorize(ctx context.Context, rows []models.Transaction) {
	suggestions, err := s.categorizer.Categorize(ctx, rows)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn("Failed to categorize imported transactions", "count", len(rows), "error", err)
		s.notify(Notice{Level: NoticeWarning, Operation: "categorize", Message: "imported transactions were left uncategorized", Err: err})
		return
	}

	applied, err := s.applyCategories(ctx, suggestions)
	if err != nil {
		s.logger.Error("Failed to save categories", "count", len(suggestions), "error", err)
		s.notify(Notice{Level: NoticeError, Operation: "categorize", Message: "categories could not be saved", Err: err})
		return
	}

	s.logger.Debug("Categorized imported transactions", "suggested", len(suggestions), "applied", applied)
	s.notify(Notice{Level: NoticeInfo, Operation: "categorize", Message: fmt.Sprintf("categorized %d of %d transactions", applied, len(rows))})
}

// applyCategories writes suggested categories back. Rows that were deleted or
// categorised in the meantime are left alone, as are unknown categories.
func (s *Service) applyCategories(ctx context.Context, suggestions map[string]models.Categorization) (int, error) {
	if len(suggestions) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(suggestions))
	for id := range suggestions {
		ids = append(ids, id)
	}

	var applied int
	tables := []store.Table{store.TableTransactions, store.TableCategories}
	err := s.store.RunAtomic(ctx, tables, func(tx store.Tx) error {
		rows, err := tx.GetTransactions(ctx, ids)
		if err != nil {
			return err
		}
		v := newValidator(tx)
		now := s.timestamp()
		for _, t := range rows {
			if t.CategoryID != nil {
				continue
			}
			sug := suggestions[t.ID]
			if sug.CategoryID == "" {
				continue
			}
			if err := v.category(ctx, sug.CategoryID); err != nil {
				if errors.Is(err, ErrValidation) {
					continue
				}
				return err
			}
			categoryID := sug.CategoryID
			t.CategoryID = &categoryID
			t.UpdatedAt = now
			if err := tx.UpdateTransaction(ctx, t); err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, storageError("apply categories", err)
	}
	return applied, nil
}
