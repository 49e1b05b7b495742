package ledger

import (
	"context"
	"errors"
	"slices"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

var importTables = []store.Table{store.TableTransactions, store.TableAccounts, store.TableImportBatches}

// ImportRequest is a batch of rows from one source, such as a bank statement.
type ImportRequest struct {
	Source string
	Rows   []NewTransaction
}

// ImportResult reports what BulkImport did. BatchID is empty when every row
// was a duplicate.
type ImportResult struct {
	BatchID      string
	Imported     int
	Skipped      int
	Transactions []models.Transaction
}

// BulkImport validates every row, skips rows that duplicate existing
// transactions and records the rest under a new import batch. The whole
// import is rejected if any row is invalid.
func (s *Service) BulkImport(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.Source == "" {
		return nil, invalid("source", "is required")
	}

	rows := make([]models.Transaction, len(req.Rows))
	v := newValidator(s.store)
	for i, in := range req.Rows {
		rows[i] = s.buildTransaction(in)
		if err := v.check(ctx, rows[i]); err != nil {
			return nil, atRow(err, i)
		}
	}

	result := &ImportResult{}
	if len(rows) == 0 {
		return result, nil
	}

	var accepted []models.Transaction
	err := s.store.RunAtomic(ctx, importTables, func(tx store.Tx) error {
		existing, err := tx.ListTransactionsBySource(ctx, sourceAccounts(rows))
		if err != nil {
			return err
		}

		dedup := NewDeduper(existing)
		accepted = accepted[:0]
		for _, t := range rows {
			if !dedup.IsDuplicate(t) {
				accepted = append(accepted, t)
			}
		}
		if len(accepted) == 0 {
			return nil
		}

		batch := models.ImportBatch{
			ID:               s.newID(),
			Source:           req.Source,
			TransactionCount: len(accepted),
			Status:           models.ImportCompleted,
			CreatedAt:        s.timestamp(),
		}
		deltas := make(Deltas)
		for i := range accepted {
			accepted[i].ImportBatchID = &batch.ID
			deltas.Merge(Delta(accepted[i], Forward))
		}

		if err := tx.InsertImportBatch(ctx, batch); err != nil {
			return err
		}
		if err := tx.InsertTransactions(ctx, accepted...); err != nil {
			return err
		}
		if err := applyDeltas(ctx, tx, deltas, batch.CreatedAt); err != nil {
			return err
		}
		result.BatchID = batch.ID
		return nil
	})
	if err != nil {
		return nil, storageError("bulk import", err)
	}

	result.Imported = len(accepted)
	result.Skipped = len(rows) - len(accepted)
	result.Transactions = accepted

	s.logger.Debug("Imported transactions",
		"source", req.Source,
		"batch_id", result.BatchID,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)

	if len(accepted) > 0 {
		s.enrich(accepted)
	}
	return result, nil
}

func sourceAccounts(rows []models.Transaction) []string {
	ids := make([]string, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.AccountID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// DeleteImportBatch removes every transaction of a batch, reverses their
// balance effects and marks the batch failed. An unknown batch is a no-op.
func (s *Service) DeleteImportBatch(ctx context.Context, batchID string) (int, error) {
	var removed int
	err := s.store.RunAtomic(ctx, importTables, func(tx store.Tx) error {
		batch, err := tx.GetImportBatch(ctx, batchID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		rows, err := tx.ListTransactionsByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if err := removeTransactions(ctx, tx, rows, s.timestamp()); err != nil {
			return err
		}
		removed = len(rows)

		batch.Status = models.ImportFailed
		return tx.UpdateImportBatch(ctx, *batch)
	})
	if err != nil {
		return 0, storageError("delete import batch", err)
	}

	s.logger.Debug("Deleted import batch", "batch_id", batchID, "removed", removed)
	return removed, nil
}

// ListImportBatches returns all import batches, newest first.
func (s *Service) ListImportBatches(ctx context.Context) ([]models.ImportBatch, error) {
	return s.store.ListImportBatches(ctx)
}
