package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// Tx is a unit of work over a declared set of tables.
// Touching any other table fails with store.ErrTableNotInScope.
type Tx struct {
	tx     *sql.Tx
	tables map[store.Table]bool
}

var _ store.Tx = (*Tx)(nil)

func newTx(tx *sql.Tx, tables []store.Table) *Tx {
	scope := make(map[store.Table]bool, len(tables))
	for _, t := range tables {
		scope[t] = true
	}
	return &Tx{tx: tx, tables: scope}
}

func (t *Tx) use(table store.Table) error {
	if !t.tables[table] {
		return fmt.Errorf("%w: %s", store.ErrTableNotInScope, table)
	}
	return nil
}

func (t *Tx) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	if err := t.use(store.TableAccounts); err != nil {
		return nil, err
	}
	return getAccount(ctx, t.tx, id)
}

func (t *Tx) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if err := t.use(store.TableAccounts); err != nil {
		return nil, err
	}
	return listAccounts(ctx, t.tx)
}

func (t *Tx) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	if err := t.use(store.TableCategories); err != nil {
		return nil, err
	}
	return getCategory(ctx, t.tx, id)
}

func (t *Tx) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := t.use(store.TableCategories); err != nil {
		return nil, err
	}
	return listCategories(ctx, t.tx)
}

func (t *Tx) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if err := t.use(store.TableTransactions); err != nil {
		return nil, err
	}
	return getTransaction(ctx, t.tx, id)
}

func (t *Tx) GetTransactions(ctx context.Context, ids []string) ([]models.Transaction, error) {
	if err := t.use(store.TableTransactions); err != nil {
		return nil, err
	}
	return getTransactions(ctx, t.tx, ids)
}

func (t *Tx) ListTransactionsBySource(ctx context.Context, accountIDs []string) ([]models.Transaction, error) {
	if err := t.use(store.TableTransactions); err != nil {
		return nil, err
	}
	return listTransactionsBySource(ctx, t.tx, accountIDs)
}

func (t *Tx) ListTransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	if err := t.use(store.TableTransactions); err != nil {
		return nil, err
	}
	return listTransactionsByAccount(ctx, t.tx, accountID)
}

func (t *Tx) ListTransactionsByBatch(ctx context.Context, batchID string) ([]models.Transaction, error) {
	if err := t.use(store.TableTransactions); err != nil {
		return nil, err
	}
	return listTransactionsByBatch(ctx, t.tx, batchID)
}

func (t *Tx) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	if err := t.use(store.TableTransactions); err != nil {
		return nil, err
	}
	return listTransactions(ctx, t.tx)
}

func (t *Tx) GetImportBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	if err := t.use(store.TableImportBatches); err != nil {
		return nil, err
	}
	return getImportBatch(ctx, t.tx, id)
}

func (t *Tx) ListImportBatches(ctx context.Context) ([]models.ImportBatch, error) {
	if err := t.use(store.TableImportBatches); err != nil {
		return nil, err
	}
	return listImportBatches(ctx, t.tx)
}

func (t *Tx) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	if err := t.use(store.TableHoldings); err != nil {
		return nil, err
	}
	return getHolding(ctx, t.tx, id)
}

func (t *Tx) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	if err := t.use(store.TableHoldings); err != nil {
		return nil, err
	}
	return listHoldings(ctx, t.tx)
}

func (t *Tx) GetInvestmentTransaction(ctx context.Context, id string) (*models.InvestmentTransaction, error) {
	if err := t.use(store.TableInvestmentTransactions); err != nil {
		return nil, err
	}
	return getInvestmentTransaction(ctx, t.tx, id)
}

func (t *Tx) ListInvestmentTransactions(ctx context.Context, holdingID string) ([]models.InvestmentTransaction, error) {
	if err := t.use(store.TableInvestmentTransactions); err != nil {
		return nil, err
	}
	return listInvestmentTransactions(ctx, t.tx, holdingID)
}

func (t *Tx) InsertAccount(ctx context.Context, a models.Account) error {
	if err := t.use(store.TableAccounts); err != nil {
		return err
	}
	return insertAccount(ctx, t.tx, a)
}

func (t *Tx) UpdateAccount(ctx context.Context, a models.Account) error {
	if err := t.use(store.TableAccounts); err != nil {
		return err
	}
	return updateAccount(ctx, t.tx, a)
}

func (t *Tx) InsertCategory(ctx context.Context, c models.Category) error {
	if err := t.use(store.TableCategories); err != nil {
		return err
	}
	return insertCategory(ctx, t.tx, c)
}

func (t *Tx) InsertTransactions(ctx context.Context, txs ...models.Transaction) error {
	if err := t.use(store.TableTransactions); err != nil {
		return err
	}
	return insertTransactions(ctx, t.tx, txs...)
}

func (t *Tx) UpdateTransaction(ctx context.Context, tr models.Transaction) error {
	if err := t.use(store.TableTransactions); err != nil {
		return err
	}
	return updateTransaction(ctx, t.tx, tr)
}

func (t *Tx) DeleteTransactions(ctx context.Context, ids ...string) error {
	if err := t.use(store.TableTransactions); err != nil {
		return err
	}
	return deleteTransactions(ctx, t.tx, ids...)
}

func (t *Tx) InsertImportBatch(ctx context.Context, b models.ImportBatch) error {
	if err := t.use(store.TableImportBatches); err != nil {
		return err
	}
	return insertImportBatch(ctx, t.tx, b)
}

func (t *Tx) UpdateImportBatch(ctx context.Context, b models.ImportBatch) error {
	if err := t.use(store.TableImportBatches); err != nil {
		return err
	}
	return updateImportBatch(ctx, t.tx, b)
}

func (t *Tx) InsertHolding(ctx context.Context, h models.Holding) error {
	if err := t.use(store.TableHoldings); err != nil {
		return err
	}
	return insertHolding(ctx, t.tx, h)
}

func (t *Tx) UpdateHolding(ctx context.Context, h models.Holding) error {
	if err := t.use(store.TableHoldings); err != nil {
		return err
	}
	return updateHolding(ctx, t.tx, h)
}

func (t *Tx) NextInvestmentSeq(ctx context.Context) (int64, error) {
	if err := t.use(store.TableInvestmentTransactions); err != nil {
		return 0, err
	}
	return nextInvestmentSeq(ctx, t.tx)
}

func (t *Tx) InsertInvestmentTransaction(ctx context.Context, it models.InvestmentTransaction) error {
	if err := t.use(store.TableInvestmentTransactions); err != nil {
		return err
	}
	return insertInvestmentTransaction(ctx, t.tx, it)
}

func (t *Tx) UpdateInvestmentTransaction(ctx context.Context, it models.InvestmentTransaction) error {
	if err := t.use(store.TableInvestmentTransactions); err != nil {
		return err
	}
	return updateInvestmentTransaction(ctx, t.tx, it)
}

func (t *Tx) DeleteInvestmentTransaction(ctx context.Context, id string) error {
	if err := t.use(store.TableInvestmentTransactions); err != nil {
		return err
	}
	return deleteInvestmentTransaction(ctx, t.tx, id)
}
