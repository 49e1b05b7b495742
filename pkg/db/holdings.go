package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

const holdingColumns = `id, account_id, symbol, type, units, cost_basis, current_price,
	price_updated_at, created_at, updated_at`

func scanHolding(row interface{ Scan(...any) error }) (*models.Holding, error) {
	var h models.Holding
	var typ, units, createdAt, updatedAt string
	var price sql.NullInt64
	var priceUpdatedAt sql.NullString

	if err := row.Scan(
		&h.ID,
		&h.AccountID,
		&h.Symbol,
		&typ,
		&units,
		&h.CostBasis,
		&price,
		&priceUpdatedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	h.Type = models.HoldingType(typ)
	h.CurrentPrice = int64Ptr(price)

	var err error
	if h.Units, err = decimal.NewFromString(units); err != nil {
		return nil, fmt.Errorf("invalid units %q: %w", units, err)
	}
	if h.PriceUpdatedAt, err = timePtr(priceUpdatedAt); err != nil {
		return nil, err
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func getHolding(ctx context.Context, q querier, id string) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE id = ?`

	h, err := scanHolding(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

func listHoldings(ctx context.Context, q querier) ([]models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings ORDER BY account_id, symbol, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

func insertHolding(ctx context.Context, q querier, h models.Holding) error {
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		h.ID,
		h.AccountID,
		h.Symbol,
		string(h.Type),
		h.Units.String(),
		h.CostBasis,
		nullInt64(h.CurrentPrice),
		nullTime(h.PriceUpdatedAt),
		formatTime(h.CreatedAt),
		formatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

func updateHolding(ctx context.Context, q querier, h models.Holding) error {
	query := `
		UPDATE holdings
		SET symbol = ?, type = ?, units = ?, cost_basis = ?, current_price = ?,
			price_updated_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		h.Symbol,
		string(h.Type),
		h.Units.String(),
		h.CostBasis,
		nullInt64(h.CurrentPrice),
		nullTime(h.PriceUpdatedAt),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return expectOne(result, "holding")
}

const investmentColumns = `id, holding_id, seq, type, units, price_per_unit, fees, total_amount,
	cost_basis_reduction, franking_percentage, franking_credit_amount, grossed_up_amount,
	date, notes, created_at`

func scanInvestment(row interface{ Scan(...any) error }) (*models.InvestmentTransaction, error) {
	var t models.InvestmentTransaction
	var typ, units, date, createdAt string
	var frankingPct sql.NullString
	var franking, grossedUp sql.NullInt64

	if err := row.Scan(
		&t.ID,
		&t.HoldingID,
		&t.Seq,
		&typ,
		&units,
		&t.PricePerUnit,
		&t.Fees,
		&t.TotalAmount,
		&t.CostBasisReduction,
		&frankingPct,
		&franking,
		&grossedUp,
		&date,
		&t.Notes,
		&createdAt,
	); err != nil {
		return nil, err
	}

	t.Type = models.InvestmentType(typ)
	t.FrankingCreditAmount = int64Ptr(franking)
	t.GrossedUpAmount = int64Ptr(grossedUp)

	var err error
	if t.Units, err = decimal.NewFromString(units); err != nil {
		return nil, fmt.Errorf("invalid units %q: %w", units, err)
	}
	if t.FrankingPercentage, err = decimalPtr(frankingPct); err != nil {
		return nil, err
	}
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func getInvestmentTransaction(ctx context.Context, q querier, id string) (*models.InvestmentTransaction, error) {
	query := `SELECT ` + investmentColumns + ` FROM investment_transactions WHERE id = ?`

	t, err := scanInvestment(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment transaction: %w", err)
	}
	return t, nil
}

func listInvestmentTransactions(ctx context.Context, q querier, holdingID string) ([]models.InvestmentTransaction, error) {
	query := `SELECT ` + investmentColumns + ` FROM investment_transactions WHERE holding_id = ? ORDER BY seq`

	rows, err := q.QueryContext(ctx, query, holdingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.InvestmentTransaction
	for rows.Next() {
		t, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func nextInvestmentSeq(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM investment_transactions`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to get next sequence: %w", err)
	}
	return seq, nil
}

func insertInvestmentTransaction(ctx context.Context, q querier, t models.InvestmentTransaction) error {
	query := `
		INSERT INTO investment_transactions (` + investmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		t.ID,
		t.HoldingID,
		t.Seq,
		string(t.Type),
		t.Units.String(),
		t.PricePerUnit,
		t.Fees,
		t.TotalAmount,
		t.CostBasisReduction,
		nullDecimal(t.FrankingPercentage),
		nullInt64(t.FrankingCreditAmount),
		nullInt64(t.GrossedUpAmount),
		formatTime(t.Date),
		t.Notes,
		formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment transaction: %w", err)
	}
	return nil
}

func updateInvestmentTransaction(ctx context.Context, q querier, t models.InvestmentTransaction) error {
	query := `
		UPDATE investment_transactions
		SET type = ?, units = ?, price_per_unit = ?, fees = ?, total_amount = ?,
			cost_basis_reduction = ?, franking_percentage = ?, franking_credit_amount = ?,
			grossed_up_amount = ?, date = ?, notes = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		string(t.Type),
		t.Units.String(),
		t.PricePerUnit,
		t.Fees,
		t.TotalAmount,
		t.CostBasisReduction,
		nullDecimal(t.FrankingPercentage),
		nullInt64(t.FrankingCreditAmount),
		nullInt64(t.GrossedUpAmount),
		formatTime(t.Date),
		t.Notes,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment transaction: %w", err)
	}
	return expectOne(result, "investment transaction")
}

func deleteInvestmentTransaction(ctx context.Context, q querier, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM investment_transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete investment transaction: %w", err)
	}
	return nil
}
