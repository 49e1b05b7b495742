package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

const accountColumns = `id, name, type, currency, balance, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var typ, createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.Name, &typ, &a.Currency, &a.Balance, &a.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Type = models.AccountType(typ)

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func getAccount(ctx context.Context, q querier, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	a, err := scanAccount(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func listAccounts(ctx context.Context, q querier) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY name, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func insertAccount(ctx context.Context, q querier, a models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		a.ID,
		a.Name,
		string(a.Type),
		a.Currency,
		a.Balance,
		a.IsActive,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func updateAccount(ctx context.Context, q querier, a models.Account) error {
	query := `
		UPDATE accounts
		SET name = ?, type = ?, currency = ?, balance = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		a.Name,
		string(a.Type),
		a.Currency,
		a.Balance,
		a.IsActive,
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return expectOne(result, "account")
}

const categoryColumns = `id, name, type, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var typ, createdAt string
	if err := row.Scan(&c.ID, &c.Name, &typ, &createdAt); err != nil {
		return nil, err
	}
	c.Type = models.TransactionType(typ)

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func getCategory(ctx context.Context, q querier, id string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

	c, err := scanCategory(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func listCategories(ctx context.Context, q querier) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func insertCategory(ctx context.Context, q querier, c models.Category) error {
	query := `INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, query, c.ID, c.Name, string(c.Type), formatTime(c.CreatedAt)); err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// expectOne returns store.ErrNotFound when an update matched no row.
func expectOne(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}
