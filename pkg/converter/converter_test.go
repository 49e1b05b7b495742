package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/beancount"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

func ptr[T any](v T) *T { return &v }

var (
	everyday  = models.Account{ID: "a1", Name: "Everyday", Type: models.AccountTypeBank, Currency: "AUD"}
	card      = models.Account{ID: "a2", Name: "visa card", Type: models.AccountTypeCredit, Currency: "AUD"}
	groceries = models.Category{ID: "c1", Name: "Groceries", Type: models.TransactionExpense}
	eatingOut = models.Category{ID: "c2", Name: "eating out & takeaway", Type: models.TransactionExpense}
	day       = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
)

func newTestConverter() *Converter {
	mapper := NewMapperFromConfig(MappingConfig{
		Categories: []NameMapping{{Name: "Groceries", Beancount: "Expenses:Food:Groceries"}},
	})
	return NewConverter(mapper, []models.Account{everyday, card}, []models.Category{groceries, eatingOut})
}

func TestConvert(t *testing.T) {
	c := newTestConverter()

	tests := []struct {
		name string
		txn  models.Transaction
		want []beancount.Posting
	}{
		{
			name: "uncategorised income",
			txn:  models.Transaction{ID: "t1", AccountID: "a1", Type: models.TransactionIncome, Amount: 1234, Date: day},
			want: []beancount.Posting{
				{Account: "Assets:Bank:Everyday", Amount: 1234, Currency: "AUD"},
				{Account: "Income:Uncategorized", Amount: -1234, Currency: "AUD"},
			},
		},
		{
			name: "expense with mapped category",
			txn:  models.Transaction{ID: "t2", AccountID: "a1", Type: models.TransactionExpense, Amount: 500, Date: day, CategoryID: ptr("c1")},
			want: []beancount.Posting{
				{Account: "Expenses:Food:Groceries", Amount: 500, Currency: "AUD"},
				{Account: "Assets:Bank:Everyday", Amount: -500, Currency: "AUD"},
			},
		},
		{
			name: "expense with unmapped category",
			txn:  models.Transaction{ID: "t3", AccountID: "a2", Type: models.TransactionExpense, Amount: 800, Date: day, CategoryID: ptr("c2")},
			want: []beancount.Posting{
				{Account: "Expenses:EatingOutTakeaway", Amount: 800, Currency: "AUD"},
				{Account: "Liabilities:CreditCard:VisaCard", Amount: -800, Currency: "AUD"},
			},
		},
		{
			name: "transfer",
			txn:  models.Transaction{ID: "t4", AccountID: "a1", Type: models.TransactionTransfer, Amount: 10000, Date: day, TransferToAccountID: ptr("a2")},
			want: []beancount.Posting{
				{Account: "Liabilities:CreditCard:VisaCard", Amount: 10000, Currency: "AUD"},
				{Account: "Assets:Bank:Everyday", Amount: -10000, Currency: "AUD"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.txn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Postings)
			assert.True(t, got.Balanced())
			assert.Equal(t, "2024-03-15", got.Date)
			assert.Equal(t, tt.txn.ID, got.Metadata[MetaTransactionID])
		})
	}
}

func TestConvertErrors(t *testing.T) {
	c := newTestConverter()

	tests := []struct {
		name string
		txn  models.Transaction
	}{
		{"unknown account", models.Transaction{ID: "t1", AccountID: "nope", Type: models.TransactionIncome, Amount: 1}},
		{"transfer without destination", models.Transaction{ID: "t2", AccountID: "a1", Type: models.TransactionTransfer, Amount: 1}},
		{"transfer to unknown account", models.Transaction{ID: "t3", AccountID: "a1", Type: models.TransactionTransfer, Amount: 1, TransferToAccountID: ptr("nope")}},
		{"unknown type", models.Transaction{ID: "t4", AccountID: "a1", Type: "refund", Amount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Convert(tt.txn); err == nil {
				t.Errorf("Convert() expected error, got nil")
			}
		})
	}
}

func TestFormatTransaction(t *testing.T) {
	c := newTestConverter()
	txn, err := c.Convert(models.Transaction{
		ID:            "t1",
		AccountID:     "a1",
		Type:          models.TransactionExpense,
		Amount:        2550,
		Description:   `Woolworths "Metro"`,
		Date:          day,
		CategoryID:    ptr("c1"),
		ImportBatchID: ptr("b1"),
		IsReconciled:  true,
	})
	require.NoError(t, err)

	got := c.FormatTransaction(txn)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `2024-03-15 * "Woolworths \"Metro\"" ^import-b1`, lines[0])
	assert.Equal(t, `  safeflow-id: "t1"`, lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  Expenses:Food:Groceries "))
	assert.True(t, strings.HasSuffix(lines[2], " 25.50 AUD"))
	assert.True(t, strings.HasSuffix(lines[3], " -25.50 AUD"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor    int64
		currency string
		want     string
	}{
		{123456, "AUD", "1234.56"},
		{-5, "AUD", "-0.05"},
		{0, "USD", "0.00"},
		{1000, "JPY", "1000"},
		{1000, "ZZZ", "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+"/"+tt.want, func(t *testing.T) {
			if got := FormatAmount(tt.minor, tt.currency); got != tt.want {
				t.Errorf("FormatAmount(%d, %q) = %q, want %q", tt.minor, tt.currency, got, tt.want)
			}
		})
	}
}

func TestSanitizeAccountName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Everyday", "Everyday"},
		{"my everyday acct", "MyEverydayAcct"},
		{"Eating-out & takeaway", "EatingOutTakeaway"},
		{"2nd account", "2ndAccount"},
		{"!!!", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sanitizeAccountName(tt.input); got != tt.want {
				t.Errorf("sanitizeAccountName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewMapper(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		m, err := NewMapper(filepath.Join(t.TempDir(), "accounts.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "Income:Uncategorized", m.DefaultIncome())
		assert.Equal(t, "Expenses:Uncategorized", m.DefaultExpense())
		assert.Equal(t, "Assets:Bank:X", m.AccountFor("X", "Assets:Bank:X"))
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "accounts.yaml")
		content := `accounts:
  - name: Everyday
    beancount: Assets:Bank:CBA:Everyday
categories:
  - name: Groceries
    beancount: Expenses:Food:Groceries
defaults:
  expense: Expenses:Misc
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		m, err := NewMapper(path)
		require.NoError(t, err)
		assert.Equal(t, "Assets:Bank:CBA:Everyday", m.AccountFor("Everyday", "fallback"))
		assert.Equal(t, "Expenses:Food:Groceries", m.CategoryFor("Groceries", "fallback"))
		assert.Equal(t, "fallback", m.CategoryFor("Rent", "fallback"))
		assert.Equal(t, "Expenses:Misc", m.DefaultExpense())
		assert.Equal(t, "Income:Uncategorized", m.DefaultIncome())
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "accounts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("accounts: [\n"), 0644))
		_, err := NewMapper(path)
		assert.Error(t, err)
	})
}
