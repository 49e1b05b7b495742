package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/beancount"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/converter"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/db"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/pathutil"
)

type fixture struct {
	conn     *db.Connection
	svc      *ledger.Service
	history  *db.ExportHistory
	repo     *beancount.FileSystemRepository
	exporter *Exporter
	txns     []*models.Transaction
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn, err := db.Open(filepath.Join(dir, "safeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	svc := ledger.New(conn, ledger.WithLogger(logger))
	t.Cleanup(svc.Close)

	everyday, err := svc.CreateAccount(ctx, ledger.NewAccount{Name: "Everyday", Type: models.AccountTypeBank, Currency: "AUD"})
	require.NoError(t, err)
	savings, err := svc.CreateAccount(ctx, ledger.NewAccount{Name: "Savings", Type: models.AccountTypeBank, Currency: "AUD"})
	require.NoError(t, err)

	f := &fixture{conn: conn, svc: svc, history: db.NewExportHistory(conn)}
	for _, in := range []ledger.NewTransaction{
		{AccountID: everyday.ID, Type: models.TransactionIncome, Amount: 300_000, Description: "Salary", Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{AccountID: everyday.ID, Type: models.TransactionExpense, Amount: 4_550, Description: "Groceries", Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
		{AccountID: everyday.ID, Type: models.TransactionTransfer, Amount: 100_000, Description: "To savings", Date: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), TransferToAccountID: &savings.ID},
	} {
		txn, err := svc.CreateTransaction(ctx, in)
		require.NoError(t, err)
		f.txns = append(f.txns, txn)
	}

	resolver := pathutil.New(pathutil.Config{DataDir: dir})
	f.repo = beancount.NewFileSystemRepository(resolver, "AUD")
	f.exporter = NewExporter(conn, f.history, f.repo, converter.NewMapperFromConfig(converter.MappingConfig{}), logger)
	return f
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	result, err := f.exporter.Export(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Exported)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, result.Files, 2)

	april, err := f.repo.ReadMonthFile("2024-04")
	require.NoError(t, err)
	assert.Contains(t, april, `safeflow-id: "`+f.txns[1].ID+`"`)
	assert.Contains(t, april, `safeflow-id: "`+f.txns[2].ID+`"`)
	assert.Contains(t, april, "Assets:Bank:Savings")
	assert.NotContains(t, april, f.txns[0].ID)

	last, err := f.history.GetMetadata(MetaLastExport)
	require.NoError(t, err)
	assert.NotEmpty(t, last)

	stats, err := f.history.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalExported)
}

func TestExportSkipsExported(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.exporter.Export(ctx, Options{})
	require.NoError(t, err)
	before, err := f.repo.ReadMonthFile("2024-04")
	require.NoError(t, err)

	result, err := f.exporter.Export(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Exported)
	assert.Equal(t, 3, result.Skipped)

	after, err := f.repo.ReadMonthFile("2024-04")
	require.NoError(t, err)
	assert.Equal(t, before, after, "re-running export must not duplicate entries")

	accounts, err := f.svc.ListAccounts(ctx)
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, ledger.NewTransaction{
		AccountID: accounts[0].ID, Type: models.TransactionExpense, Amount: 1_000, Description: "Coffee",
		Date: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	result, err = f.exporter.Export(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 3, result.Skipped)

	after, err = f.repo.ReadMonthFile("2024-04")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(after, "; SafeFlow export for"), "header is written once")
	assert.Contains(t, after, "Coffee")
}

func TestExportDryRun(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	var out bytes.Buffer
	result, err := f.exporter.Export(ctx, Options{DryRun: true, Out: &out})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Exported)
	assert.Empty(t, result.Files)

	assert.Contains(t, out.String(), "[DRY RUN] 2024-03: 1 transactions")
	assert.Contains(t, out.String(), "[DRY RUN] 2024-04: 2 transactions")
	assert.False(t, f.repo.MonthFileExists("2024-03"))

	ids, err := f.history.GetExportedIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExportRange(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"from april", Options{From: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), DryRun: true}, 2},
		{"to march", Options{To: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), DryRun: true}, 1},
		{"single day", Options{From: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), DryRun: true}, 1},
		{"empty range", Options{From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), DryRun: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.exporter.Export(context.Background(), tt.opts)
			require.NoError(t, err)
			if result.Exported != tt.want {
				t.Errorf("Exported = %d, want %d", result.Exported, tt.want)
			}
		})
	}
}
