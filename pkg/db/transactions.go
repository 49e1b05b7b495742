package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

const transactionColumns = `id, account_id, type, amount, description, date, category_id,
	transfer_to_account_id, import_batch_id, is_reconciled, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	var typ, date, createdAt, updatedAt string
	var categoryID, transferTo, batchID sql.NullString

	if err := row.Scan(
		&t.ID,
		&t.AccountID,
		&typ,
		&t.Amount,
		&t.Description,
		&date,
		&categoryID,
		&transferTo,
		&batchID,
		&t.IsReconciled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	t.Type = models.TransactionType(typ)
	t.CategoryID = stringPtr(categoryID)
	t.TransferToAccountID = stringPtr(transferTo)
	t.ImportBatchID = stringPtr(batchID)

	var err error
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func getTransaction(ctx context.Context, q querier, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	t, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func getTransactions(ctx context.Context, q querier, ids []string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, chunk := range chunks(ids) {
		in, args := placeholders(chunk)
		query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id IN (` + in + `) ORDER BY date, id`

		txs, err := queryTransactions(ctx, q, query, args...)
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	return out, nil
}

func listTransactionsBySource(ctx context.Context, q querier, accountIDs []string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, chunk := range chunks(accountIDs) {
		in, args := placeholders(chunk)
		query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id IN (` + in + `) ORDER BY date, id`

		txs, err := queryTransactions(ctx, q, query, args...)
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	return out, nil
}

func listTransactionsByAccount(ctx context.Context, q querier, accountID string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_id = ? OR transfer_to_account_id = ?
		ORDER BY date DESC, id
	`
	return queryTransactions(ctx, q, query, accountID, accountID)
}

func listTransactionsByBatch(ctx context.Context, q querier, batchID string) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE import_batch_id = ? ORDER BY date, id`
	return queryTransactions(ctx, q, query, batchID)
}

func listTransactions(ctx context.Context, q querier) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, id`
	return queryTransactions(ctx, q, query)
}

func insertTransactions(ctx context.Context, q querier, txs ...models.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, t := range txs {
		_, err := q.ExecContext(ctx, query,
			t.ID,
			t.AccountID,
			string(t.Type),
			t.Amount,
			t.Description,
			formatTime(t.Date),
			nullString(t.CategoryID),
			nullString(t.TransferToAccountID),
			nullString(t.ImportBatchID),
			t.IsReconciled,
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

func updateTransaction(ctx context.Context, q querier, t models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = ?, type = ?, amount = ?, description = ?, date = ?, category_id = ?,
			transfer_to_account_id = ?, import_batch_id = ?, is_reconciled = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		t.AccountID,
		string(t.Type),
		t.Amount,
		t.Description,
		formatTime(t.Date),
		nullString(t.CategoryID),
		nullString(t.TransferToAccountID),
		nullString(t.ImportBatchID),
		t.IsReconciled,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOne(result, "transaction")
}

func deleteTransactions(ctx context.Context, q querier, ids ...string) error {
	for _, chunk := range chunks(ids) {
		in, args := placeholders(chunk)
		if _, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id IN (`+in+`)`, args...); err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}
	}
	return nil
}

const batchColumns = `id, source, transaction_count, status, created_at`

func scanBatch(row interface{ Scan(...any) error }) (*models.ImportBatch, error) {
	var b models.ImportBatch
	var status, createdAt string
	if err := row.Scan(&b.ID, &b.Source, &b.TransactionCount, &status, &createdAt); err != nil {
		return nil, err
	}
	b.Status = models.ImportStatus(status)

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func getImportBatch(ctx context.Context, q querier, id string) (*models.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches WHERE id = ?`

	b, err := scanBatch(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import batch: %w", err)
	}
	return b, nil
}

func listImportBatches(ctx context.Context, q querier) ([]models.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches ORDER BY created_at DESC, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	var batches []models.ImportBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

func insertImportBatch(ctx context.Context, q querier, b models.ImportBatch) error {
	query := `INSERT INTO import_batches (` + batchColumns + `) VALUES (?, ?, ?, ?, ?)`

	_, err := q.ExecContext(ctx, query, b.ID, b.Source, b.TransactionCount, string(b.Status), formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert import batch: %w", err)
	}
	return nil
}

func updateImportBatch(ctx context.Context, q querier, b models.ImportBatch) error {
	query := `UPDATE import_batches SET source = ?, transaction_count = ?, status = ? WHERE id = ?`

	result, err := q.ExecContext(ctx, query, b.Source, b.TransactionCount, string(b.Status), b.ID)
	if err != nil {
		return fmt.Errorf("failed to update import batch: %w", err)
	}
	return expectOne(result, "import batch")
}
