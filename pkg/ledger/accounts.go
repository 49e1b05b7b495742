package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// NewAccount is the input to CreateAccount.
type NewAccount struct {
	Name     string
	Type     models.AccountType
	Currency string
}

// CreateAccount creates an active account with a zero balance.
func (s *Service) CreateAccount(ctx context.Context, in NewAccount) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if !in.Type.Valid() {
		return nil, invalid("type", "unknown account type %q", in.Type)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, invalid("currency", "must be a 3-letter ISO code, got %q", in.Currency)
	}

	now := s.timestamp()
	acct := models.Account{
		ID:        s.newID(),
		Name:      name,
		Type:      in.Type,
		Currency:  currency,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.RunAtomic(ctx, []store.Table{store.TableAccounts}, func(tx store.Tx) error {
		return tx.InsertAccount(ctx, acct)
	})
	if err != nil {
		return nil, storageError("create account", err)
	}

	s.logger.Debug("Created account", "id", acct.ID, "name", acct.Name, "currency", acct.Currency)
	return &acct, nil
}

// SetAccountActive activates or deactivates an account. The balance is untouched.
func (s *Service) SetAccountActive(ctx context.Context, id string, active bool) error {
	err := s.store.RunAtomic(ctx, []store.Table{store.TableAccounts}, func(tx store.Tx) error {
		acct, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		acct.IsActive = active
		acct.UpdatedAt = s.timestamp()
		return tx.UpdateAccount(ctx, *acct)
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("ledger: set account %s active: %w", id, ErrNotFound)
	}
	if err != nil {
		return storageError("set account active", err)
	}
	return nil
}

// GetAccount returns an account or ErrNotFound.
func (s *Service) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// ListAccounts returns all accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// CreateCategory creates a category.
func (s *Service) CreateCategory(ctx context.Context, name string, typ models.TransactionType) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if !typ.Valid() {
		return nil, invalid("type", "unknown category type %q", typ)
	}

	c := models.Category{
		ID:        s.newID(),
		Name:      name,
		Type:      typ,
		CreatedAt: s.timestamp(),
	}
	err := s.store.RunAtomic(ctx, []store.Table{store.TableCategories}, func(tx store.Tx) error {
		return tx.InsertCategory(ctx, c)
	})
	if err != nil {
		return nil, storageError("create category", err)
	}
	return &c, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}
