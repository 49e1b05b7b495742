package db

import (
	"database/sql"
	"fmt"
	"time"
)

// ExportRecord represents an export history record.
type ExportRecord struct {
	ID            int64
	TransactionID string
	IssueDate     string // YYYY-MM-DD
	Amount        int64
	BeancountFile string
	ExportedAt    time.Time
}

// ExportHistory manages Beancount export history.
type ExportHistory struct {
	conn *Connection
}

// NewExportHistory creates a new ExportHistory instance.
func NewExportHistory(conn *Connection) *ExportHistory {
	return &ExportHistory{conn: conn}
}

// RecordExport records an exported transaction.
// If the transaction was exported before, the record is updated.
func (h *ExportHistory) RecordExport(record ExportRecord) error {
	query := `
		INSERT INTO export_history (transaction_id, issue_date, amount, beancount_file)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			issue_date = excluded.issue_date,
			amount = excluded.amount,
			beancount_file = excluded.beancount_file,
			exported_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query,
		record.TransactionID,
		record.IssueDate,
		record.Amount,
		record.BeancountFile,
	)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}

	return nil
}

// IsExported checks if a transaction has been exported.
func (h *ExportHistory) IsExported(transactionID string) (bool, error) {
	var count int
	err := h.conn.QueryRow(`SELECT COUNT(*) FROM export_history WHERE transaction_id = ?`, transactionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if exported: %w", err)
	}

	return count > 0, nil
}

// GetExportedIDs retrieves all exported transaction IDs.
// This is useful for bulk filtering.
func (h *ExportHistory) GetExportedIDs() (map[string]bool, error) {
	rows, err := h.conn.Query(`SELECT transaction_id FROM export_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to get exported IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction ID: %w", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// DeleteExportRecord deletes an export record.
// Use case: force re-export of a transaction.
func (h *ExportHistory) DeleteExportRecord(transactionID string) (bool, error) {
	result, err := h.conn.Exec(`DELETE FROM export_history WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete export record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Stats represents ledger and export statistics.
type Stats struct {
	TotalAccounts     int
	TotalTransactions int
	TotalHoldings     int
	TotalExported     int
	LastExport        sql.NullString
}

// GetStats retrieves ledger and export statistics.
func (h *ExportHistory) GetStats() (*Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		dest  *int
		what  string
	}{
		{`SELECT COUNT(*) FROM accounts`, &stats.TotalAccounts, "account"},
		{`SELECT COUNT(*) FROM transactions`, &stats.TotalTransactions, "transaction"},
		{`SELECT COUNT(*) FROM holdings`, &stats.TotalHoldings, "holding"},
		{`SELECT COUNT(*) FROM export_history`, &stats.TotalExported, "export"},
	}
	for _, c := range counts {
		if err := h.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get %s count: %w", c.what, err)
		}
	}

	err := h.conn.QueryRow(`SELECT MAX(exported_at) FROM export_history`).Scan(&stats.LastExport)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last export time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *ExportHistory) GetMetadata(key string) (string, error) {
	var value string
	err := h.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *ExportHistory) SetMetadata(key, value string) error {
	query := `
		INSERT INTO metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := h.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
