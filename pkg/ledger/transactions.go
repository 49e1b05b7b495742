package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// cashTables is the scope of every cash transaction mutation.
var cashTables = []store.Table{store.TableTransactions, store.TableAccounts}

// NewTransaction is the input to CreateTransaction and a row of BulkImport.
type NewTransaction struct {
	AccountID           string
	Type                models.TransactionType
	Amount              int64
	Description         string
	Date                time.Time
	CategoryID          *string
	TransferToAccountID *string
	IsReconciled        bool
}

// TransactionPatch changes selected fields of a transaction. Nil fields are
// left as they are. An empty CategoryID or TransferToAccountID clears it.
// Changing Type away from transfer clears the destination unless one is given.
type TransactionPatch struct {
	AccountID           *string
	Type                *models.TransactionType
	Amount              *int64
	Description         *string
	Date                *time.Time
	CategoryID          *string
	TransferToAccountID *string
	IsReconciled        *bool
}

// Apply returns t with the patch merged in.
func (p TransactionPatch) Apply(t models.Transaction) models.Transaction {
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.Type != nil {
		t.Type = *p.Type
		if t.Type != models.TransactionTransfer && p.TransferToAccountID == nil {
			t.TransferToAccountID = nil
		}
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.CategoryID != nil {
		t.CategoryID = optional(*p.CategoryID)
	}
	if p.TransferToAccountID != nil {
		t.TransferToAccountID = optional(*p.TransferToAccountID)
	}
	if p.IsReconciled != nil {
		t.IsReconciled = *p.IsReconciled
	}
	return t
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) buildTransaction(in NewTransaction) models.Transaction {
	now := s.timestamp()
	return models.Transaction{
		ID:                  s.newID(),
		AccountID:           in.AccountID,
		Type:                in.Type,
		Amount:              in.Amount,
		Description:         strings.TrimSpace(in.Description),
		Date:                in.Date.UTC(),
		CategoryID:          emptyToNil(in.CategoryID),
		TransferToAccountID: emptyToNil(in.TransferToAccountID),
		IsReconciled:        in.IsReconciled,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// validator checks transactions against committed records, remembering the
// references it has already resolved.
type validator struct {
	r          store.Reader
	accounts   map[string]bool
	categories map[string]bool
}

func newValidator(r store.Reader) *validator {
	return &validator{r: r, accounts: make(map[string]bool), categories: make(map[string]bool)}
}

func (v *validator) check(ctx context.Context, t models.Transaction) error {
	if !t.Type.Valid() {
		return invalid("type", "unknown transaction type %q", t.Type)
	}
	if t.Amount <= 0 {
		return invalid("amount", "must be positive, got %d", t.Amount)
	}
	if t.Date.IsZero() {
		return invalid("date", "is required")
	}
	if t.AccountID == "" {
		return invalid("account_id", "is required")
	}

	switch t.Type {
	case models.TransactionTransfer:
		if t.TransferToAccountID == nil {
			return invalid("transfer_to_account_id", "is required for transfers")
		}
		if *t.TransferToAccountID == t.AccountID {
			return invalid("transfer_to_account_id", "cannot transfer to the same account")
		}
	default:
		if t.TransferToAccountID != nil {
			return invalid("transfer_to_account_id", "only allowed for transfers")
		}
	}

	if err := v.account(ctx, "account_id", t.AccountID); err != nil {
		return err
	}
	if t.TransferToAccountID != nil {
		if err := v.account(ctx, "transfer_to_account_id", *t.TransferToAccountID); err != nil {
			return err
		}
	}
	if t.CategoryID != nil {
		if err := v.category(ctx, *t.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) account(ctx context.Context, field, id string) error {
	if v.accounts[id] {
		return nil
	}
	_, err := v.r.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return invalid(field, "account %s does not exist", id)
	}
	if err != nil {
		return err
	}
	v.accounts[id] = true
	return nil
}

func (v *validator) category(ctx context.Context, id string) error {
	if v.categories[id] {
		return nil
	}
	_, err := v.r.GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("category_id", "category %s does not exist", id)
	}
	if err != nil {
		return err
	}
	v.categories[id] = true
	return nil
}

// CreateTransaction validates and records a transaction and applies its
// balance effect in the same unit of work.
func (s *Service) CreateTransaction(ctx context.Context, in NewTransaction) (*models.Transaction, error) {
	t := s.buildTransaction(in)
	if err := newValidator(s.store).check(ctx, t); err != nil {
		return nil, err
	}

	err := s.store.RunAtomic(ctx, cashTables, func(tx store.Tx) error {
		if err := tx.InsertTransactions(ctx, t); err != nil {
			return err
		}
		return applyDeltas(ctx, tx, Delta(t, Forward), t.CreatedAt)
	})
	if err != nil {
		return nil, storageError("create transaction", err)
	}

	s.logger.Debug("Created transaction", "id", t.ID, "type", t.Type, "amount", t.Amount, "account_id", t.AccountID)
	return &t, nil
}

// UpdateTransaction merges patch into the transaction and moves the balance
// effect from the old state to the new one. It fails with ErrNotFound when id
// is unknown.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (*models.Transaction, error) {
	pre, err := s.store.GetTransaction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("ledger: update transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, storageError("update transaction", err)
	}

	merged := patch.Apply(*pre)
	if err := newValidator(s.store).check(ctx, merged); err != nil {
		return nil, err
	}

	err = s.store.RunAtomic(ctx, cashTables, func(tx store.Tx) error {
		// Reverse from the pre-image as it is inside this unit.
		cur, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		merged = patch.Apply(*cur)
		merged.UpdatedAt = s.timestamp()

		change := models.Change{Old: cur.Movement(), New: merged.Movement()}
		deltas := make(Deltas)
		deltas.Add(change.Effects()...)

		if err := tx.UpdateTransaction(ctx, merged); err != nil {
			return err
		}
		return applyDeltas(ctx, tx, deltas, merged.UpdatedAt)
	})
	if err != nil {
		return nil, storageError("update transaction", err)
	}

	s.logger.Debug("Updated transaction", "id", id, "type", merged.Type, "amount", merged.Amount)
	return &merged, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// Deleting an unknown id is a no-op.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	err := s.store.RunAtomic(ctx, cashTables, func(tx store.Tx) error {
		t, err := tx.GetTransaction(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.DeleteTransactions(ctx, id); err != nil {
			return err
		}
		return applyDeltas(ctx, tx, Delta(*t, Reverse), s.timestamp())
	})
	if err != nil {
		return storageError("delete transaction", err)
	}

	s.logger.Debug("Deleted transaction", "id", id)
	return nil
}

// DeleteTransactions removes several transactions in one unit of work. The
// reversal is summed per account first and each account is written once.
// Unknown ids are ignored. It returns the number of rows removed.
func (s *Service) DeleteTransactions(ctx context.Context, ids []string) (int, error) {
	ids = unique(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int
	err := s.store.RunAtomic(ctx, cashTables, func(tx store.Tx) error {
		targets, err := tx.GetTransactions(ctx, ids)
		if err != nil {
			return err
		}
		deleted = len(targets)
		return removeTransactions(ctx, tx, targets, s.timestamp())
	})
	if err != nil {
		return 0, storageError("delete transactions", err)
	}

	s.logger.Debug("Deleted transactions", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// removeTransactions deletes rows and applies their aggregated reversal.
func removeTransactions(ctx context.Context, tx store.Tx, targets []models.Transaction, now time.Time) error {
	if len(targets) == 0 {
		return nil
	}
	deltas := make(Deltas)
	rowIDs := make([]string, len(targets))
	for i, t := range targets {
		deltas.Merge(Delta(t, Reverse))
		rowIDs[i] = t.ID
	}
	if err := tx.DeleteTransactions(ctx, rowIDs...); err != nil {
		return err
	}
	return applyDeltas(ctx, tx, deltas, now)
}

// GetTransaction returns a transaction or ErrNotFound.
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns the transactions attributed to an account, newest first.
func (s *Service) ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return s.store.ListTransactionsByAccount(ctx, accountID)
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
