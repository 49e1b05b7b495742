package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

func coffee(accountID string) NewTransaction {
	return NewTransaction{
		AccountID:   accountID,
		Type:        models.TransactionExpense,
		Amount:      500,
		Description: "Coffee Shop",
		Date:        time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestBulkImportSkipsExistingDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")

	existing := coffee(a.ID)
	existing.Description = "  coffee   shop "
	_, err := s.CreateTransaction(ctx, existing)
	require.NoError(t, err)

	res, err := s.BulkImport(ctx, ImportRequest{Source: "january.csv", Rows: []NewTransaction{coffee(a.ID), coffee(a.ID)}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Imported)
	require.NotEmpty(t, res.BatchID)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, res.BatchID, *res.Transactions[0].ImportBatchID)

	txs, err := s.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Equal(t, int64(-1_000), balance(t, s, a.ID))

	batches, err := s.ListImportBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, models.ImportCompleted, batches[0].Status)
	assert.Equal(t, 1, batches[0].TransactionCount)
}

func TestBulkImportAllDuplicatesCreatesNoBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")

	_, err := s.CreateTransaction(ctx, coffee(a.ID))
	require.NoError(t, err)

	res, err := s.BulkImport(ctx, ImportRequest{Source: "again.csv", Rows: []NewTransaction{coffee(a.ID)}})
	require.NoError(t, err)
	assert.Empty(t, res.BatchID)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	batches, err := s.ListImportBatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestBulkImportRejectsInvalidRow(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")

	bad := coffee(a.ID)
	bad.Amount = 0
	_, err := s.BulkImport(ctx, ImportRequest{Source: "broken.csv", Rows: []NewTransaction{coffee(a.ID), bad}})
	require.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Row)
	assert.Equal(t, "amount", ve.Field)

	txs, err := s.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestBulkImportTransfersAndUndo(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")
	b := mustAccount(t, s, "Savings")

	manual, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 5_000, Date: day})
	require.NoError(t, err)

	res, err := s.BulkImport(ctx, ImportRequest{Source: "statement.csv", Rows: []NewTransaction{
		{AccountID: a.ID, Type: models.TransactionExpense, Amount: 1_200, Description: "Rent", Date: day},
		{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 800, Description: "To savings", Date: day, TransferToAccountID: &b.ID},
		{AccountID: b.ID, Type: models.TransactionIncome, Amount: 15, Description: "Interest", Date: day},
	}})
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	assert.Equal(t, int64(3_000), balance(t, s, a.ID))
	assert.Equal(t, int64(815), balance(t, s, b.ID))

	removed, err := s.DeleteImportBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, int64(5_000), balance(t, s, a.ID))
	assert.Zero(t, balance(t, s, b.ID))

	_, err = s.GetTransaction(ctx, manual.ID)
	require.NoError(t, err, "rows outside the batch survive")

	batches, err := s.ListImportBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, models.ImportFailed, batches[0].Status)

	removed, err = s.DeleteImportBatch(ctx, "unknown-batch")
	require.NoError(t, err)
	assert.Zero(t, removed)

	drift, err := s.VerifyBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}
