package converter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/beancount"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/shopspring/decimal"
)

// MetaTransactionID is the metadata key carrying the ledger transaction id.
const MetaTransactionID = "safeflow-id"

// Converter converts ledger transactions to Beancount format.
type Converter struct {
	mapper     *Mapper
	accounts   map[string]models.Account
	categories map[string]models.Category
}

// NewConverter creates a new Converter that resolves ids against the given
// accounts and categories.
func NewConverter(mapper *Mapper, accounts []models.Account, categories []models.Category) *Converter {
	c := &Converter{
		mapper:     mapper,
		accounts:   make(map[string]models.Account, len(accounts)),
		categories: make(map[string]models.Category, len(categories)),
	}
	for _, a := range accounts {
		c.accounts[a.ID] = a
	}
	for _, cat := range categories {
		c.categories[cat.ID] = cat
	}
	return c
}

// Convert converts a ledger transaction into a balanced Beancount transaction.
// Amounts stay in minor units of the source account's currency.
func (c *Converter) Convert(t models.Transaction) (beancount.Transaction, error) {
	src, ok := c.accounts[t.AccountID]
	if !ok {
		return beancount.Transaction{}, fmt.Errorf("transaction %s: unknown account %s", t.ID, t.AccountID)
	}
	own := c.accountName(src)

	var postings []beancount.Posting
	switch t.Type {
	case models.TransactionIncome:
		postings = []beancount.Posting{
			{Account: own, Amount: t.Amount, Currency: src.Currency},
			{Account: c.categoryName(t), Amount: -t.Amount, Currency: src.Currency},
		}
	case models.TransactionExpense:
		postings = []beancount.Posting{
			{Account: c.categoryName(t), Amount: t.Amount, Currency: src.Currency},
			{Account: own, Amount: -t.Amount, Currency: src.Currency},
		}
	case models.TransactionTransfer:
		if t.TransferToAccountID == nil {
			return beancount.Transaction{}, fmt.Errorf("transaction %s: transfer without destination", t.ID)
		}
		dst, ok := c.accounts[*t.TransferToAccountID]
		if !ok {
			return beancount.Transaction{}, fmt.Errorf("transaction %s: unknown account %s", t.ID, *t.TransferToAccountID)
		}
		postings = []beancount.Posting{
			{Account: c.accountName(dst), Amount: t.Amount, Currency: src.Currency},
			{Account: own, Amount: -t.Amount, Currency: src.Currency},
		}
	default:
		return beancount.Transaction{}, fmt.Errorf("transaction %s: unknown type %q", t.ID, t.Type)
	}

	flag := "!"
	if t.IsReconciled {
		flag = "*"
	}

	var links []string
	if t.ImportBatchID != nil {
		links = []string{"import-" + *t.ImportBatchID}
	}

	return beancount.Transaction{
		Date:      t.Date.UTC().Format(time.DateOnly),
		Flag:      flag,
		Narration: t.Description,
		Links:     links,
		Metadata:  map[string]string{MetaTransactionID: t.ID},
		Postings:  postings,
	}, nil
}

func (c *Converter) accountName(a models.Account) string {
	var root string
	switch a.Type {
	case models.AccountTypeBank:
		root = "Assets:Bank"
	case models.AccountTypeCash:
		root = "Assets:Cash"
	case models.AccountTypeInvestment:
		root = "Assets:Investments"
	case models.AccountTypeCredit:
		root = "Liabilities:CreditCard"
	case models.AccountTypeLoan:
		root = "Liabilities:Loans"
	default:
		root = "Assets:Other"
	}
	return c.mapper.AccountFor(a.Name, root+":"+sanitizeAccountName(a.Name))
}

func (c *Converter) categoryName(t models.Transaction) string {
	root, fallback := "Expenses", c.mapper.DefaultExpense()
	if t.Type == models.TransactionIncome {
		root, fallback = "Income", c.mapper.DefaultIncome()
	}
	if t.CategoryID == nil {
		return fallback
	}
	cat, ok := c.categories[*t.CategoryID]
	if !ok {
		return fallback
	}
	return c.mapper.CategoryFor(cat.Name, root+":"+sanitizeAccountName(cat.Name))
}

// FormatTransaction formats a Beancount transaction as a string.
func (c *Converter) FormatTransaction(txn beancount.Transaction) string {
	var sb strings.Builder

	// Transaction header
	sb.WriteString(txn.Date)
	flag := txn.Flag
	if flag == "" {
		flag = "*"
	}
	sb.WriteString(" " + flag)
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %s", quote(txn.Payee)))
	}
	sb.WriteString(fmt.Sprintf(" %s", quote(txn.Narration)))
	for _, tag := range txn.Tags {
		sb.WriteString(" #" + tag)
	}
	for _, link := range txn.Links {
		sb.WriteString(" ^" + link)
	}
	sb.WriteString("\n")

	for _, key := range slices.Sorted(maps.Keys(txn.Metadata)) {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", key, quote(txn.Metadata[key])))
	}

	// Postings
	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		// Right-align amount (typical Beancount style)
		sb.WriteString(strings.Repeat(" ", max(1, 60-len(posting.Account))))
		sb.WriteString(FormatAmount(posting.Amount, posting.Currency))
		sb.WriteString(" " + posting.Currency)

		if posting.Comment != "" {
			sb.WriteString(fmt.Sprintf(" ; %s", posting.Comment))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatAmount renders minor units as a decimal number using the currency's
// fraction digits (two when the currency is unknown).
func FormatAmount(minor int64, currency string) string {
	fraction := 2
	if cur := money.GetCurrency(currency); cur != nil {
		fraction = cur.Fraction
	}
	return decimal.New(minor, -int32(fraction)).StringFixed(int32(fraction))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// sanitizeAccountName turns a free-form name into a Beancount account
// component: words are capitalised and joined, other characters dropped.
func sanitizeAccountName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var sb strings.Builder
	for _, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	if sb.Len() == 0 {
		return "Unknown"
	}
	return sb.String()
}
