// Package models defines the records kept by the SafeFlow ledger.
package models

import "time"

// AccountType classifies an account.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCredit, AccountTypeCash,
		AccountTypeInvestment, AccountTypeLoan, AccountTypeOther:
		return true
	}
	return false
}

// Account is a money container owned by the household.
//
// Balance is a cache derived from the transactions attributed to the account.
// It is only ever changed by the ledger through signed deltas.
type Account struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Currency  string      `json:"currency"` // ISO 4217 code
	Balance   int64       `json:"balance"`  // minor currency units
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Category labels transactions. The ledger only checks that it exists.
type Category struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// Quote is a market price for a symbol, in minor currency units.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  int64     `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

// Categorization is a category suggested for a transaction.
type Categorization struct {
	CategoryID string  `json:"category_id"`
	Confidence float64 `json:"confidence,omitempty"`
}
