// Package store defines the storage contract the ledger depends on.
//
// A Store serves committed reads and runs atomic units of work. Everything a
// unit writes either commits together or not at all.
package store

import (
	"context"
	"errors"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrTableNotInScope is returned when a unit of work touches a table it
	// did not declare.
	ErrTableNotInScope = errors.New("table not in unit of work scope")
)

// Table names a record table.
type Table string

// Tables.
const (
	TableAccounts               Table = "accounts"
	TableCategories             Table = "categories"
	TableTransactions           Table = "transactions"
	TableImportBatches          Table = "import_batches"
	TableHoldings               Table = "holdings"
	TableInvestmentTransactions Table = "investment_transactions"
)

// Reader provides record lookups.
type Reader interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	// GetTransaction returns ErrNotFound when id is unknown.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// GetTransactions returns the transactions that exist among ids.
	GetTransactions(ctx context.Context, ids []string) ([]models.Transaction, error)
	// ListTransactionsBySource returns transactions whose source account is one of accountIDs.
	ListTransactionsBySource(ctx context.Context, accountIDs []string) ([]models.Transaction, error)
	// ListTransactionsByAccount returns transactions attributed to accountID on either side.
	ListTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error)
	ListTransactionsByBatch(ctx context.Context, batchID string) ([]models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	GetImportBatch(ctx context.Context, id string) (*models.ImportBatch, error)
	ListImportBatches(ctx context.Context) ([]models.ImportBatch, error)

	GetHolding(ctx context.Context, id string) (*models.Holding, error)
	ListHoldings(ctx context.Context) ([]models.Holding, error)

	GetInvestmentTransaction(ctx context.Context, id string) (*models.InvestmentTransaction, error)
	// ListInvestmentTransactions returns a holding's transactions in application order.
	ListInvestmentTransactions(ctx context.Context, holdingID string) ([]models.InvestmentTransaction, error)
}

// Writer mutates records. It is only available inside a unit of work.
type Writer interface {
	InsertAccount(ctx context.Context, a models.Account) error
	UpdateAccount(ctx context.Context, a models.Account) error
	InsertCategory(ctx context.Context, c models.Category) error

	InsertTransactions(ctx context.Context, txs ...models.Transaction) error
	UpdateTransaction(ctx context.Context, t models.Transaction) error
	DeleteTransactions(ctx context.Context, ids ...string) error

	InsertImportBatch(ctx context.Context, b models.ImportBatch) error
	UpdateImportBatch(ctx context.Context, b models.ImportBatch) error

	InsertHolding(ctx context.Context, h models.Holding) error
	UpdateHolding(ctx context.Context, h models.Holding) error

	// NextInvestmentSeq returns the next application sequence number.
	NextInvestmentSeq(ctx context.Context) (int64, error)
	InsertInvestmentTransaction(ctx context.Context, t models.InvestmentTransaction) error
	UpdateInvestmentTransaction(ctx context.Context, t models.InvestmentTransaction) error
	DeleteInvestmentTransaction(ctx context.Context, id string) error
}

// Tx is a unit of work: reads see the unit's own writes.
type Tx interface {
	Reader
	Writer
}

// Store is the storage collaborator.
type Store interface {
	Reader
	// RunAtomic runs fn in a unit of work spanning tables. If fn returns an
	// error or panics, every write made through the Tx is rolled back.
	RunAtomic(ctx context.Context, tables []Table, fn func(tx Tx) error) error
}
