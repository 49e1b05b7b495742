package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/db"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

var day = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func openStore(t *testing.T) *db.Connection {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "safeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newTestService(t *testing.T, st store.Store, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s := New(st, opts...)
	t.Cleanup(s.Close)
	return s
}

func mustAccount(t *testing.T, s *Service, name string) *models.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), NewAccount{Name: name, Type: models.AccountTypeBank, Currency: "AUD"})
	require.NoError(t, err)
	return a
}

func balance(t *testing.T, s *Service, id string) int64 {
	t.Helper()
	a, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

func ptr[T any](v T) *T { return &v }

func TestCreateTransactionBalances(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")
	b := mustAccount(t, s, "Savings")

	_, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 100_000, Description: "Salary", Date: day})
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionExpense, Amount: 25_050, Description: "Groceries", Date: day})
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 50_000, Date: day, TransferToAccountID: &b.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(24_950), balance(t, s, a.ID))
	assert.Equal(t, int64(50_000), balance(t, s, b.ID))

	txs, err := s.ListTransactions(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "transfers show up on the destination account")
}

func TestCreateTransactionValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")

	tests := []struct {
		name  string
		in    NewTransaction
		field string
	}{
		{"zero amount", NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 0, Date: day}, "amount"},
		{"negative amount", NewTransaction{AccountID: a.ID, Type: models.TransactionExpense, Amount: -5, Date: day}, "amount"},
		{"unknown type", NewTransaction{AccountID: a.ID, Type: "refund", Amount: 5, Date: day}, "type"},
		{"missing date", NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 5}, "date"},
		{"unknown account", NewTransaction{AccountID: "nope", Type: models.TransactionIncome, Amount: 5, Date: day}, "account_id"},
		{"transfer without destination", NewTransaction{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 5, Date: day}, "transfer_to_account_id"},
		{"transfer to itself", NewTransaction{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 5, Date: day, TransferToAccountID: &a.ID}, "transfer_to_account_id"},
		{"transfer to unknown account", NewTransaction{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 5, Date: day, TransferToAccountID: ptr("nope")}, "transfer_to_account_id"},
		{"destination on income", NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 5, Date: day, TransferToAccountID: ptr("nope")}, "transfer_to_account_id"},
		{"unknown category", NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 5, Date: day, CategoryID: ptr("nope")}, "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTransaction(ctx, tt.in)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	assert.Zero(t, balance(t, s, a.ID))
	txs, err := s.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestUpdateTransactionMovesEffect(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")
	b := mustAccount(t, s, "Savings")

	tr, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionExpense, Amount: 1_000, Description: "Coffee", Date: day})
	require.NoError(t, err)
	require.Equal(t, int64(-1_000), balance(t, s, a.ID))

	t.Run("amount", func(t *testing.T) {
		_, err := s.UpdateTransaction(ctx, tr.ID, TransactionPatch{Amount: ptr(int64(1_500))})
		require.NoError(t, err)
		assert.Equal(t, int64(-1_500), balance(t, s, a.ID))
	})

	t.Run("type to transfer", func(t *testing.T) {
		typ := models.TransactionTransfer
		updated, err := s.UpdateTransaction(ctx, tr.ID, TransactionPatch{Type: &typ, TransferToAccountID: &b.ID})
		require.NoError(t, err)
		assert.Equal(t, b.ID, *updated.TransferToAccountID)
		assert.Equal(t, int64(-1_500), balance(t, s, a.ID))
		assert.Equal(t, int64(1_500), balance(t, s, b.ID))
	})

	t.Run("type back to income clears destination", func(t *testing.T) {
		typ := models.TransactionIncome
		updated, err := s.UpdateTransaction(ctx, tr.ID, TransactionPatch{Type: &typ})
		require.NoError(t, err)
		assert.Nil(t, updated.TransferToAccountID)
		assert.Equal(t, int64(1_500), balance(t, s, a.ID))
		assert.Zero(t, balance(t, s, b.ID))
	})

	t.Run("move to other account", func(t *testing.T) {
		_, err := s.UpdateTransaction(ctx, tr.ID, TransactionPatch{AccountID: &b.ID})
		require.NoError(t, err)
		assert.Zero(t, balance(t, s, a.ID))
		assert.Equal(t, int64(1_500), balance(t, s, b.ID))
	})

	t.Run("invalid patch leaves state", func(t *testing.T) {
		_, err := s.UpdateTransaction(ctx, tr.ID, TransactionPatch{Amount: ptr(int64(0))})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, int64(1_500), balance(t, s, b.ID))
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.UpdateTransaction(ctx, "missing", TransactionPatch{Amount: ptr(int64(1))})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteTransactionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")
	b := mustAccount(t, s, "Savings")

	tr, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 7_000, Date: day, TransferToAccountID: &b.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(ctx, tr.ID))
	require.NoError(t, s.DeleteTransaction(ctx, tr.ID))
	require.NoError(t, s.DeleteTransaction(ctx, "never-existed"))

	assert.Zero(t, balance(t, s, a.ID))
	assert.Zero(t, balance(t, s, b.ID))
	_, err = s.GetTransaction(ctx, tr.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransactionsNetsPerAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")
	b := mustAccount(t, s, "Savings")

	var ids []string
	for _, in := range []NewTransaction{
		{AccountID: a.ID, Type: models.TransactionIncome, Amount: 10_000, Date: day},
		{AccountID: a.ID, Type: models.TransactionExpense, Amount: 2_500, Date: day},
		{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 3_000, Date: day, TransferToAccountID: &b.ID},
		{AccountID: b.ID, Type: models.TransactionIncome, Amount: 400, Date: day},
	} {
		tr, err := s.CreateTransaction(ctx, in)
		require.NoError(t, err)
		ids = append(ids, tr.ID)
	}
	require.Equal(t, int64(4_500), balance(t, s, a.ID))
	require.Equal(t, int64(3_400), balance(t, s, b.ID))

	n, err := s.DeleteTransactions(ctx, []string{ids[0], ids[2], ids[2], "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(-2_500), balance(t, s, a.ID))
	assert.Equal(t, int64(400), balance(t, s, b.ID))

	drift, err := s.VerifyBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestRoundTripRestoresBalances(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	a := mustAccount(t, s, "Everyday")
	b := mustAccount(t, s, "Savings")

	seed, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 12_345, Date: day})
	require.NoError(t, err)
	before := []int64{balance(t, s, a.ID), balance(t, s, b.ID)}

	tr, err := s.CreateTransaction(ctx, NewTransaction{AccountID: b.ID, Type: models.TransactionTransfer, Amount: 999, Date: day, TransferToAccountID: &a.ID})
	require.NoError(t, err)
	_, err = s.UpdateTransaction(ctx, tr.ID, TransactionPatch{Amount: ptr(int64(1_999))})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTransaction(ctx, tr.ID))

	assert.Equal(t, before, []int64{balance(t, s, a.ID), balance(t, s, b.ID)})
	_, err = s.GetTransaction(ctx, seed.ID)
	require.NoError(t, err)
}

func TestRandomSequencesKeepBalancesConsistent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, openStore(t))
	accounts := []*models.Account{mustAccount(t, s, "A"), mustAccount(t, s, "B"), mustAccount(t, s, "C")}
	rng := rand.New(rand.NewSource(42))
	types := []models.TransactionType{models.TransactionIncome, models.TransactionExpense, models.TransactionTransfer}

	var live []string
	for i := 0; i < 60; i++ {
		switch op := rng.Intn(4); {
		case op < 2 || len(live) == 0:
			from := accounts[rng.Intn(len(accounts))]
			in := NewTransaction{AccountID: from.ID, Type: types[rng.Intn(len(types))], Amount: int64(rng.Intn(10_000) + 1), Date: day}
			if in.Type == models.TransactionTransfer {
				to := accounts[(rng.Intn(len(accounts)-1)+1+indexOf(accounts, from))%len(accounts)]
				in.TransferToAccountID = &to.ID
			}
			tr, err := s.CreateTransaction(ctx, in)
			require.NoError(t, err)
			live = append(live, tr.ID)
		case op == 2:
			id := live[rng.Intn(len(live))]
			_, err := s.UpdateTransaction(ctx, id, TransactionPatch{Amount: ptr(int64(rng.Intn(10_000) + 1))})
			require.NoError(t, err)
		default:
			k := rng.Intn(len(live))
			require.NoError(t, s.DeleteTransaction(ctx, live[k]))
			live = append(live[:k], live[k+1:]...)
		}
	}

	drift, err := s.VerifyBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)

	var total int64
	for _, a := range accounts {
		total += balance(t, s, a.ID)
	}
	txs, err := s.store.ListTransactions(ctx)
	require.NoError(t, err)
	var net int64
	for _, tr := range txs {
		switch tr.Type {
		case models.TransactionIncome:
			net += tr.Amount
		case models.TransactionExpense:
			net -= tr.Amount
		}
	}
	assert.Equal(t, net, total, "transfers net to zero across accounts")
}

func indexOf(accounts []*models.Account, a *models.Account) int {
	for i, x := range accounts {
		if x.ID == a.ID {
			return i
		}
	}
	return -1
}

// failingStore makes UpdateAccount fail for one account inside every unit.
type failingStore struct {
	store.Store
	accountID string
}

type failingTx struct {
	store.Tx
	accountID string
}

var errInjected = errors.New("injected failure")

func (f failingStore) RunAtomic(ctx context.Context, tables []store.Table, fn func(store.Tx) error) error {
	return f.Store.RunAtomic(ctx, tables, func(tx store.Tx) error {
		return fn(failingTx{Tx: tx, accountID: f.accountID})
	})
}

func (f failingTx) UpdateAccount(ctx context.Context, a models.Account) error {
	if a.ID == f.accountID {
		return errInjected
	}
	return f.Tx.UpdateAccount(ctx, a)
}

func TestFailedUnitRollsBack(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	setup := newTestService(t, conn)
	a := mustAccount(t, setup, "Everyday")
	b := mustAccount(t, setup, "Savings")

	s := newTestService(t, failingStore{Store: conn, accountID: b.ID})

	_, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionTransfer, Amount: 500, Date: day, TransferToAccountID: &b.ID})
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, errInjected)

	assert.Zero(t, balance(t, setup, a.ID), "source debit rolled back with the failed credit")
	assert.Zero(t, balance(t, setup, b.ID))
	txs, err := conn.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = s.BulkImport(ctx, ImportRequest{Source: "statement.csv", Rows: []NewTransaction{
		{AccountID: a.ID, Type: models.TransactionIncome, Amount: 100, Description: "one", Date: day},
		{AccountID: b.ID, Type: models.TransactionIncome, Amount: 200, Description: "two", Date: day},
	}})
	require.ErrorIs(t, err, ErrStorage)

	batches, err := conn.ListImportBatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, batches)
	assert.Zero(t, balance(t, setup, a.ID))
}

func TestVerifyBalancesReportsDrift(t *testing.T) {
	ctx := context.Background()
	conn := openStore(t)
	s := newTestService(t, conn)
	a := mustAccount(t, s, "Everyday")
	_, err := s.CreateTransaction(ctx, NewTransaction{AccountID: a.ID, Type: models.TransactionIncome, Amount: 800, Date: day})
	require.NoError(t, err)

	_, err = conn.Exec(`UPDATE accounts SET balance = 1 WHERE id = ?`, a.ID)
	require.NoError(t, err)

	drift, err := s.VerifyBalances(ctx)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, Discrepancy{AccountID: a.ID, Cached: 1, Computed: 800}, drift[0])
	assert.Equal(t, int64(1), balance(t, s, a.ID), "verification never rewrites balances")
}

func TestDelta(t *testing.T) {
	to := "b"
	tests := []struct {
		name string
		tx   models.Transaction
		dir  Direction
		want Deltas
	}{
		{"income forward", models.Transaction{AccountID: "a", Type: models.TransactionIncome, Amount: 5}, Forward, Deltas{"a": 5}},
		{"expense forward", models.Transaction{AccountID: "a", Type: models.TransactionExpense, Amount: 5}, Forward, Deltas{"a": -5}},
		{"transfer forward", models.Transaction{AccountID: "a", Type: models.TransactionTransfer, Amount: 5, TransferToAccountID: &to}, Forward, Deltas{"a": -5, "b": 5}},
		{"transfer reverse", models.Transaction{AccountID: "a", Type: models.TransactionTransfer, Amount: 5, TransferToAccountID: &to}, Reverse, Deltas{"a": 5, "b": -5}},
		{"expense reverse", models.Transaction{AccountID: "a", Type: models.TransactionExpense, Amount: 5}, Reverse, Deltas{"a": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(tt.tx, tt.dir))

			undone := Delta(tt.tx, tt.dir)
			undone.Merge(Delta(tt.tx, -tt.dir))
			assert.Empty(t, undone.Accounts(), "reversal cancels the forward delta")
		})
	}
}
