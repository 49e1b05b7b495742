package ledger

import (
	"strings"
	"time"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// DedupKey identifies transactions that are considered the same entry.
type DedupKey struct {
	AccountID   string
	Type        models.TransactionType
	Day         string // YYYY-MM-DD in UTC
	Amount      int64
	Description string
}

// KeyOf returns the dedup key of t.
func KeyOf(t models.Transaction) DedupKey {
	return DedupKey{
		AccountID:   t.AccountID,
		Type:        t.Type,
		Day:         t.Date.UTC().Format(time.DateOnly),
		Amount:      t.Amount,
		Description: NormalizeDescription(t.Description),
	}
}

// NormalizeDescription lowercases s, trims it and collapses runs of
// whitespace to a single space.
func NormalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Deduper skips incoming rows that match existing ones. Matching is by
// count: with n existing rows under a key, the first n incoming rows under
// that key are duplicates and the rest are new.
type Deduper struct {
	existing map[DedupKey]int
	seen     map[DedupKey]int
}

// NewDeduper counts the existing rows per key.
func NewDeduper(existing []models.Transaction) *Deduper {
	d := &Deduper{
		existing: make(map[DedupKey]int, len(existing)),
		seen:     make(map[DedupKey]int),
	}
	for _, t := range existing {
		d.existing[KeyOf(t)]++
	}
	return d
}

// IsDuplicate records t as seen and reports whether it should be skipped.
func (d *Deduper) IsDuplicate(t models.Transaction) bool {
	k := KeyOf(t)
	n := d.seen[k]
	d.seen[k] = n + 1
	return n < d.existing[k]
}
