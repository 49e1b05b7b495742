// Package export writes ledger transactions to monthly Beancount files,
// skipping transactions that were exported before.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/beancount"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/converter"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/db"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// MetaLastExport is the metadata key holding the time of the last export.
const MetaLastExport = "last_export"

// History records which transactions have been exported.
type History interface {
	GetExportedIDs() (map[string]bool, error)
	RecordExport(record db.ExportRecord) error
	SetMetadata(key, value string) error
}

// Options narrows an export. Zero From or To leaves that side unbounded.
type Options struct {
	From   time.Time
	To     time.Time
	DryRun bool
	Out    io.Writer // receives entries in dry-run mode
}

// Result summarises an export.
type Result struct {
	Exported int
	Skipped  int // already exported
	Failed   int // could not be converted or written
	Files    []string
}

// Exporter exports ledger transactions to Beancount.
type Exporter struct {
	reader  store.Reader
	history History
	repo    beancount.Repository
	mapper  *converter.Mapper
	logger  *slog.Logger
	now     func() time.Time
}

// NewExporter creates a new Exporter.
func NewExporter(reader store.Reader, history History, repo beancount.Repository, mapper *converter.Mapper, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		reader:  reader,
		history: history,
		repo:    repo,
		mapper:  mapper,
		logger:  logger,
		now:     time.Now,
	}
}

// Export converts every transaction in range that has not been exported yet
// and appends it to the file of its month. Each written transaction is
// recorded in the history so re-running never duplicates entries.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	accounts, err := e.reader.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	categories, err := e.reader.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	all, err := e.reader.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	exported, err := e.history.GetExportedIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to get exported IDs: %w", err)
	}

	result := &Result{}
	byMonth := make(map[string][]models.Transaction)
	for _, t := range all {
		if !inRange(t.Date, opts) {
			continue
		}
		if exported[t.ID] {
			result.Skipped++
			continue
		}
		month := t.Date.UTC().Format("2006-01")
		byMonth[month] = append(byMonth[month], t)
	}

	e.logger.Info("Transactions to export",
		"new", countAll(byMonth),
		"skipped", result.Skipped,
		"dry_run", opts.DryRun,
	)
	if len(byMonth) == 0 {
		return result, nil
	}

	cvtr := converter.NewConverter(e.mapper, accounts, categories)
	for _, month := range slices.Sorted(maps.Keys(byMonth)) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.exportMonth(month, byMonth[month], cvtr, opts, result)
	}

	if !opts.DryRun && result.Exported > 0 {
		if err := e.history.SetMetadata(MetaLastExport, e.now().UTC().Format(time.RFC3339)); err != nil {
			e.logger.Warn("Failed to record export time", "error", err)
		}
	}

	e.logger.Info("Export completed",
		"exported", result.Exported,
		"failed", result.Failed,
		"files_written", len(result.Files),
	)
	return result, nil
}

func (e *Exporter) exportMonth(month string, txns []models.Transaction, cvtr *converter.Converter, opts Options, result *Result) {
	entries := make([]string, 0, len(txns))
	written := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		bt, err := cvtr.Convert(t)
		if err != nil {
			e.logger.Error("Failed to convert transaction", "transaction_id", t.ID, "error", err)
			result.Failed++
			continue
		}
		entries = append(entries, cvtr.FormatTransaction(bt))
		written = append(written, t)
	}
	if len(entries) == 0 {
		return
	}

	if opts.DryRun {
		if opts.Out != nil {
			fmt.Fprintf(opts.Out, "[DRY RUN] %s: %d transactions\n", month, len(entries))
			for _, entry := range entries {
				fmt.Fprintln(opts.Out, entry)
			}
		}
		result.Exported += len(entries)
		return
	}

	filePath, err := e.repo.AppendEntries(month, entries...)
	if err != nil {
		e.logger.Error("Failed to write month file", "month", month, "error", err)
		result.Failed += len(entries)
		return
	}

	for _, t := range written {
		if err := e.history.RecordExport(db.ExportRecord{
			TransactionID: t.ID,
			IssueDate:     t.Date.UTC().Format(time.DateOnly),
			Amount:        t.Amount,
			BeancountFile: filePath,
		}); err != nil {
			e.logger.Error("Failed to record export", "transaction_id", t.ID, "error", err)
		}
	}
	result.Exported += len(written)
	result.Files = append(result.Files, filePath)
	e.logger.Info("Updated file", "path", filePath, "transactions", len(written))
}

func inRange(d time.Time, opts Options) bool {
	if !opts.From.IsZero() && d.Before(opts.From) {
		return false
	}
	if !opts.To.IsZero() && d.After(opts.To) {
		return false
	}
	return true
}

func countAll(byMonth map[string][]models.Transaction) int {
	var n int
	for _, txns := range byMonth {
		n += len(txns)
	}
	return n
}
