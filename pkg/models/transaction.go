package models

import "time"

// TransactionType is the kind of a cash transaction.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is a cash movement on an account.
type Transaction struct {
	ID                  string          `json:"id"`
	AccountID           string          `json:"account_id"`
	Type                TransactionType `json:"type"`
	Amount              int64           `json:"amount"` // positive, minor currency units
	Description         string          `json:"description"`
	Date                time.Time       `json:"date"`
	CategoryID          *string         `json:"category_id,omitempty"`
	TransferToAccountID *string         `json:"transfer_to_account_id,omitempty"`
	ImportBatchID       *string         `json:"import_batch_id,omitempty"`
	IsReconciled        bool            `json:"is_reconciled"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Movement returns the balance-affecting view of the transaction.
// It returns nil when the type is unknown.
func (t Transaction) Movement() Movement {
	switch t.Type {
	case TransactionIncome:
		return Income{Account: t.AccountID, Amount: t.Amount}
	case TransactionExpense:
		return Expense{Account: t.AccountID, Amount: t.Amount}
	case TransactionTransfer:
		to := ""
		if t.TransferToAccountID != nil {
			to = *t.TransferToAccountID
		}
		return Transfer{From: t.AccountID, To: to, Amount: t.Amount}
	}
	return nil
}

// Touches reports whether the transaction is attributed to accountID.
func (t Transaction) Touches(accountID string) bool {
	if t.AccountID == accountID {
		return true
	}
	return t.TransferToAccountID != nil && *t.TransferToAccountID == accountID
}

// Effect is a signed change to one account balance.
type Effect struct {
	AccountID string
	Amount    int64
}

// Movement is the closed set of balance effects a transaction can have:
// Income, Expense or Transfer.
type Movement interface {
	// Effects returns the signed balance changes, multiplied by sign
	// (+1 to apply, -1 to reverse).
	Effects(sign int64) []Effect
	isMovement()
}

// Income credits one account.
type Income struct {
	Account string
	Amount  int64
}

// Expense debits one account.
type Expense struct {
	Account string
	Amount  int64
}

// Transfer debits From and credits To by the same amount.
type Transfer struct {
	From   string
	To     string
	Amount int64
}

func (m Income) Effects(sign int64) []Effect {
	return []Effect{{AccountID: m.Account, Amount: sign * m.Amount}}
}

func (m Expense) Effects(sign int64) []Effect {
	return []Effect{{AccountID: m.Account, Amount: -sign * m.Amount}}
}

func (m Transfer) Effects(sign int64) []Effect {
	return []Effect{
		{AccountID: m.From, Amount: -sign * m.Amount},
		{AccountID: m.To, Amount: sign * m.Amount},
	}
}

func (Income) isMovement()   {}
func (Expense) isMovement()  {}
func (Transfer) isMovement() {}

// Change pairs the movement of a transaction before and after an update.
type Change struct {
	Old Movement
	New Movement
}

// Effects returns the reversal of Old followed by the application of New.
func (c Change) Effects() []Effect {
	var out []Effect
	if c.Old != nil {
		out = append(out, c.Old.Effects(-1)...)
	}
	if c.New != nil {
		out = append(out, c.New.Effects(1)...)
	}
	return out
}

// ImportStatus is the lifecycle state of an import batch.
type ImportStatus string

const (
	ImportCompleted ImportStatus = "completed"
	// ImportFailed marks a batch that has been undone.
	ImportFailed ImportStatus = "failed"
)

// ImportBatch groups the transactions created by one bulk import.
type ImportBatch struct {
	ID               string       `json:"id"`
	Source           string       `json:"source"`
	TransactionCount int          `json:"transaction_count"`
	Status           ImportStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}
