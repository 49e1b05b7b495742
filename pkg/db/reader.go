package db

import (
	"context"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// Reads outside a unit of work see committed data only.

func (c *Connection) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return getAccount(ctx, c.db, id)
}

func (c *Connection) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return listAccounts(ctx, c.db)
}

func (c *Connection) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return getCategory(ctx, c.db, id)
}

func (c *Connection) ListCategories(ctx context.Context) ([]models.Category, error) {
	return listCategories(ctx, c.db)
}

func (c *Connection) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return getTransaction(ctx, c.db, id)
}

func (c *Connection) GetTransactions(ctx context.Context, ids []string) ([]models.Transaction, error) {
	return getTransactions(ctx, c.db, ids)
}

func (c *Connection) ListTransactionsBySource(ctx context.Context, accountIDs []string) ([]models.Transaction, error) {
	return listTransactionsBySource(ctx, c.db, accountIDs)
}

func (c *Connection) ListTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return listTransactionsByAccount(ctx, c.db, accountID)
}

func (c *Connection) ListTransactionsByBatch(ctx context.Context, batchID string) ([]models.Transaction, error) {
	return listTransactionsByBatch(ctx, c.db, batchID)
}

func (c *Connection) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return listTransactions(ctx, c.db)
}

func (c *Connection) GetImportBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	return getImportBatch(ctx, c.db, id)
}

func (c *Connection) ListImportBatches(ctx context.Context) ([]models.ImportBatch, error) {
	return listImportBatches(ctx, c.db)
}

func (c *Connection) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	return getHolding(ctx, c.db, id)
}

func (c *Connection) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	return listHoldings(ctx, c.db)
}

func (c *Connection) GetInvestmentTransaction(ctx context.Context, id string) (*models.InvestmentTransaction, error) {
	return getInvestmentTransaction(ctx, c.db, id)
}

func (c *Connection) ListInvestmentTransactions(ctx context.Context, holdingID string) ([]models.InvestmentTransaction, error) {
	return listInvestmentTransactions(ctx, c.db, holdingID)
}
