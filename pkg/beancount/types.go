// Package beancount provides repository pattern for Beancount file operations.
package beancount

// Transaction represents a Beancount transaction.
type Transaction struct {
	Date      string            // YYYY-MM-DD
	Flag      string            // "*" for cleared, "!" for pending
	Narration string            // Transaction description
	Payee     string            // Payee name (optional)
	Tags      []string          // Tags (e.g., ["import-3f2a"])
	Links     []string          // Links (optional)
	Metadata  map[string]string // Metadata key-value pairs
	Postings  []Posting         // Transaction postings
}

// Posting represents a posting in a Beancount transaction.
type Posting struct {
	Account  string // Account name (e.g., "Assets:Bank:Everyday")
	Amount   int64  // Minor currency units (positive for debit, negative for credit)
	Currency string // Currency code (e.g., "AUD")
	Comment  string // Posting comment (optional)
}

// Balanced reports whether the postings of t sum to zero per currency.
func (t Transaction) Balanced() bool {
	sums := make(map[string]int64)
	for _, p := range t.Postings {
		sums[p.Currency] += p.Amount
	}
	for _, s := range sums {
		if s != 0 {
			return false
		}
	}
	return true
}
