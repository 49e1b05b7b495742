package ledger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

// Direction selects whether a transaction's effect is applied or reversed.
type Direction int64

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// Deltas maps account IDs to signed balance changes in minor units.
type Deltas map[string]int64

// Delta returns the balance changes of t in the given direction.
// Income credits the account, expense debits it, and a transfer debits the
// source and credits the destination by the same amount.
func Delta(t models.Transaction, dir Direction) Deltas {
	d := make(Deltas)
	if m := t.Movement(); m != nil {
		d.Add(m.Effects(int64(dir))...)
	}
	return d
}

// Add accumulates effects.
func (d Deltas) Add(effects ...models.Effect) {
	for _, e := range effects {
		d[e.AccountID] += e.Amount
	}
}

// Merge accumulates other into d.
func (d Deltas) Merge(other Deltas) {
	for id, v := range other {
		d[id] += v
	}
}

// Accounts returns the accounts with a non-zero delta in sorted order.
func (d Deltas) Accounts() []string {
	ids := make([]string, 0, len(d))
	for id, v := range d {
		if v != 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// applyDeltas re-reads each account inside the unit of work, adds its delta
// and writes it back. A missing account fails the unit.
func applyDeltas(ctx context.Context, tx store.Tx, d Deltas, now time.Time) error {
	for _, id := range d.Accounts() {
		acct, err := tx.GetAccount(ctx, id)
		if err != nil {
			return fmt.Errorf("apply delta to account %s: %w", id, err)
		}
		acct.Balance += d[id]
		acct.UpdatedAt = now
		if err := tx.UpdateAccount(ctx, *acct); err != nil {
			return fmt.Errorf("apply delta to account %s: %w", id, err)
		}
	}
	return nil
}

// Discrepancy reports an account whose cached balance differs from the sum of
// its transactions.
type Discrepancy struct {
	AccountID string
	Cached    int64
	Computed  int64
}

// VerifyBalances recomputes every account balance from its transactions and
// reports the accounts that drifted. It never rewrites balances.
func (s *Service) VerifyBalances(ctx context.Context) ([]Discrepancy, error) {
	var out []Discrepancy
	err := s.store.RunAtomic(ctx, []store.Table{store.TableAccounts, store.TableTransactions}, func(tx store.Tx) error {
		accounts, err := tx.ListAccounts(ctx)
		if err != nil {
			return err
		}
		txs, err := tx.ListTransactions(ctx)
		if err != nil {
			return err
		}

		computed := make(Deltas)
		for _, t := range txs {
			computed.Merge(Delta(t, Forward))
		}
		for _, a := range accounts {
			if a.Balance != computed[a.ID] {
				out = append(out, Discrepancy{AccountID: a.ID, Cached: a.Balance, Computed: computed[a.ID]})
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError("verify balances", err)
	}
	return out, nil
}
