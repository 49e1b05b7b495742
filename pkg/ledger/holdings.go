package ledger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

var holdingTables = []store.Table{store.TableHoldings, store.TableInvestmentTransactions}

var (
	hundred = decimal.NewFromInt(100)

	// Franking credits gross a dividend up at the 30% company tax rate.
	companyTaxRate = decimal.NewFromInt(30)
	afterTaxRate   = decimal.NewFromInt(70)
)

// NewHolding is the input to CreateHolding. Units and CostBasis describe a
// position held before tracking started and may be zero.
type NewHolding struct {
	AccountID string
	Symbol    string
	Type      models.HoldingType
	Units     decimal.Decimal
	CostBasis int64
}

// CreateHolding opens a holding in an existing account.
func (s *Service) CreateHolding(ctx context.Context, in NewHolding) (*models.Holding, error) {
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	switch {
	case symbol == "":
		return nil, invalid("symbol", "is required")
	case !in.Type.Valid():
		return nil, invalid("type", "unknown holding type %q", in.Type)
	case in.Units.IsNegative():
		return nil, invalid("units", "must not be negative")
	case in.CostBasis < 0:
		return nil, invalid("cost_basis", "must not be negative")
	}
	if err := newValidator(s.store).account(ctx, "account_id", in.AccountID); err != nil {
		return nil, err
	}

	now := s.timestamp()
	h := models.Holding{
		ID:        s.newID(),
		AccountID: in.AccountID,
		Symbol:    symbol,
		Type:      in.Type,
		Units:     in.Units,
		CostBasis: in.CostBasis,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.RunAtomic(ctx, []store.Table{store.TableHoldings}, func(tx store.Tx) error {
		return tx.InsertHolding(ctx, h)
	})
	if err != nil {
		return nil, storageError("create holding", err)
	}

	s.logger.Debug("Created holding", "id", h.ID, "symbol", h.Symbol, "units", h.Units.String(), "cost_basis", h.CostBasis)
	return &h, nil
}

// NewInvestmentTransaction is the input to AddInvestmentTransaction.
//
// For buys and sells PricePerUnit is the unit price. With zero Units it is a
// flat amount, which is how dividends and fees are entered.
type NewInvestmentTransaction struct {
	HoldingID    string
	Type         models.InvestmentType
	Units        decimal.Decimal
	PricePerUnit int64
	Fees         int64
	// FrankingPercentage is the franked share of a dividend or distribution, 0 to 100.
	FrankingPercentage *decimal.Decimal
	Date               time.Time
	Notes              string
}

func (in NewInvestmentTransaction) validate() error {
	if !in.Type.Valid() {
		return invalid("type", "unknown investment transaction type %q", in.Type)
	}
	if in.Units.IsNegative() {
		return invalid("units", "must not be negative")
	}
	if in.PricePerUnit < 0 {
		return invalid("price_per_unit", "must not be negative")
	}
	if in.Fees < 0 {
		return invalid("fees", "must not be negative")
	}
	if in.Date.IsZero() {
		return invalid("date", "is required")
	}

	switch in.Type {
	case models.InvestmentBuy, models.InvestmentSell:
		if !in.Units.IsPositive() {
			return invalid("units", "must be positive for a %s", in.Type)
		}
	case models.InvestmentDividend, models.InvestmentFee:
		if !in.Units.IsZero() {
			return invalid("units", "must be zero for a %s, enter the amount as price", in.Type)
		}
	}

	if in.FrankingPercentage != nil {
		if in.Type != models.InvestmentDividend && in.Type != models.InvestmentDistribution {
			return invalid("franking_percentage", "only applies to dividends and distributions")
		}
		if in.FrankingPercentage.IsNegative() || in.FrankingPercentage.GreaterThan(hundred) {
			return invalid("franking_percentage", "must be between 0 and 100")
		}
	}
	return nil
}

// totalAmount is round(units × price) + fees, or price + fees when units is zero.
func totalAmount(units decimal.Decimal, price, fees int64) int64 {
	if units.IsZero() {
		return price + fees
	}
	return units.Mul(decimal.NewFromInt(price)).Round(0).IntPart() + fees
}

// frankingCredit returns the franking credit and the grossed-up amount.
func frankingCredit(total int64, pct decimal.Decimal) (credit, grossedUp int64) {
	credit = decimal.NewFromInt(total).
		Mul(pct).
		Mul(companyTaxRate).
		Div(hundred.Mul(afterTaxRate)).
		Round(0).
		IntPart()
	return credit, total + credit
}

// AddInvestmentTransaction records a buy, sell, dividend, distribution or fee
// and applies its effect to the holding.
func (s *Service) AddInvestmentTransaction(ctx context.Context, in NewInvestmentTransaction) (*models.InvestmentTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetHolding(ctx, in.HoldingID); errors.Is(err, store.ErrNotFound) {
		return nil, invalid("holding_id", "holding %s does not exist", in.HoldingID)
	} else if err != nil {
		return nil, storageError("add investment transaction", err)
	}

	now := s.timestamp()
	it := models.InvestmentTransaction{
		ID:                 s.newID(),
		HoldingID:          in.HoldingID,
		Type:               in.Type,
		Units:              in.Units,
		PricePerUnit:       in.PricePerUnit,
		Fees:               in.Fees,
		TotalAmount:        totalAmount(in.Units, in.PricePerUnit, in.Fees),
		FrankingPercentage: in.FrankingPercentage,
		Date:               in.Date.UTC(),
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
	}
	if in.FrankingPercentage != nil {
		credit, grossedUp := frankingCredit(it.TotalAmount, *in.FrankingPercentage)
		it.FrankingCreditAmount = &credit
		it.GrossedUpAmount = &grossedUp
	}

	err := s.store.RunAtomic(ctx, holdingTables, func(tx store.Tx) error {
		h, err := tx.GetHolding(ctx, in.HoldingID)
		if err != nil {
			return err
		}
		if err := checkPosition(h, it); err != nil {
			return err
		}
		seq, err := tx.NextInvestmentSeq(ctx)
		if err != nil {
			return err
		}
		it.Seq = seq

		apply(h, &it)
		h.UpdatedAt = now

		if err := tx.InsertInvestmentTransaction(ctx, it); err != nil {
			return err
		}
		return tx.UpdateHolding(ctx, *h)
	})
	if errors.Is(err, ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, storageError("add investment transaction", err)
	}

	s.logger.Debug("Added investment transaction",
		"id", it.ID,
		"holding_id", it.HoldingID,
		"type", it.Type,
		"units", it.Units.String(),
		"total_amount", it.TotalAmount,
	)
	return &it, nil
}

// DeleteInvestmentTransaction removes an investment transaction and undoes
// its effect on the holding. Deleting an unknown id is a no-op.
//
// Transactions applied after the deleted one are rewound newest first, the
// deleted one is undone, and the later ones are applied again in order. Sells
// among them get a fresh cost basis reduction. State from before the deleted
// transaction, including the opening position, is left as it is.
func (s *Service) DeleteInvestmentTransaction(ctx context.Context, id string) error {
	err := s.store.RunAtomic(ctx, holdingTables, func(tx store.Tx) error {
		target, err := tx.GetInvestmentTransaction(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		h, err := tx.GetHolding(ctx, target.HoldingID)
		if err != nil {
			return err
		}
		all, err := tx.ListInvestmentTransactions(ctx, target.HoldingID)
		if err != nil {
			return err
		}

		var later []models.InvestmentTransaction
		for _, it := range all {
			if it.Seq > target.Seq {
				later = append(later, it)
			}
		}

		for _, it := range slices.Backward(later) {
			reverse(h, it)
		}
		reverse(h, *target)
		if err := tx.DeleteInvestmentTransaction(ctx, target.ID); err != nil {
			return err
		}
		for i := range later {
			prev := later[i].CostBasisReduction
			apply(h, &later[i])
			if later[i].CostBasisReduction != prev {
				if err := tx.UpdateInvestmentTransaction(ctx, later[i]); err != nil {
					return err
				}
			}
		}

		h.UpdatedAt = s.timestamp()
		return tx.UpdateHolding(ctx, *h)
	})
	if err != nil {
		return storageError("delete investment transaction", err)
	}

	s.logger.Debug("Deleted investment transaction", "id", id)
	return nil
}

// checkPosition rejects sells of more units than are held and fees larger
// than the cost basis. Applying either would clamp, and deleting the row
// afterwards could not restore the holding.
func checkPosition(h *models.Holding, it models.InvestmentTransaction) error {
	switch it.Type {
	case models.InvestmentSell:
		if it.Units.GreaterThan(h.Units) {
			return invalid("units", "cannot sell %s units of a holding of %s", it.Units, h.Units)
		}
	case models.InvestmentFee:
		if it.TotalAmount > h.CostBasis {
			return invalid("price_per_unit", "fee of %d exceeds the cost basis of %d", it.TotalAmount, h.CostBasis)
		}
	}
	return nil
}

// apply adds the effect of it to h. For a sell it records the cost basis
// reduction on it.
func apply(h *models.Holding, it *models.InvestmentTransaction) {
	switch it.Type {
	case models.InvestmentBuy:
		h.Units = h.Units.Add(it.Units)
		h.CostBasis += it.TotalAmount
	case models.InvestmentSell:
		oldUnits := h.Units
		newUnits := decimal.Max(oldUnits.Sub(it.Units), decimal.Zero)
		newCostBasis := int64(0)
		if oldUnits.IsPositive() && newUnits.IsPositive() {
			newCostBasis = decimal.NewFromInt(h.CostBasis).
				Mul(newUnits).
				Div(oldUnits).
				Round(0).
				IntPart()
		}
		it.CostBasisReduction = h.CostBasis - newCostBasis
		h.Units = newUnits
		h.CostBasis = newCostBasis
	case models.InvestmentFee:
		h.CostBasis -= it.TotalAmount
	}
	clamp(h)
}

// reverse undoes the recorded effect of it on h.
func reverse(h *models.Holding, it models.InvestmentTransaction) {
	switch it.Type {
	case models.InvestmentBuy:
		h.Units = h.Units.Sub(it.Units)
		h.CostBasis -= it.TotalAmount
	case models.InvestmentSell:
		h.Units = h.Units.Add(it.Units)
		h.CostBasis += it.CostBasisReduction
	case models.InvestmentFee:
		h.CostBasis += it.TotalAmount
	}
	clamp(h)
}

func clamp(h *models.Holding) {
	if h.Units.IsNegative() {
		h.Units = decimal.Zero
	}
	if h.CostBasis < 0 {
		h.CostBasis = 0
	}
}

// GetHolding returns a holding or ErrNotFound.
func (s *Service) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	return s.store.GetHolding(ctx, id)
}

// ListHoldings returns all holdings.
func (s *Service) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	return s.store.ListHoldings(ctx)
}

// ListInvestmentTransactions returns a holding's transactions in the order
// they were applied.
func (s *Service) ListInvestmentTransactions(ctx context.Context, holdingID string) ([]models.InvestmentTransaction, error) {
	return s.store.ListInvestmentTransactions(ctx, holdingID)
}

// RefreshResult reports a price refresh. Notice is set when prices could
// not be fetched.
type RefreshResult struct {
	Updated int
	Missing []string
	Notice  *Notice
}

// RefreshPrices fetches the current price of every held symbol and stores it
// on each holding. Holdings are updated one at a time. A failed fetch is
// reported in the result, not as an error.
func (s *Service) RefreshPrices(ctx context.Context) (*RefreshResult, error) {
	holdings, err := s.store.ListHoldings(ctx)
	if err != nil {
		return nil, storageError("refresh prices", err)
	}

	result := &RefreshResult{}
	if len(holdings) == 0 {
		return result, nil
	}
	if s.prices == nil {
		result.Notice = &Notice{Level: NoticeWarning, Operation: "refresh prices", Message: "no price source configured"}
		return result, nil
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	quotes, err := s.prices.FetchPrices(ctx, symbols)
	if err != nil {
		s.logger.Warn("Failed to fetch prices", "symbols", len(symbols), "error", err)
		result.Notice = &Notice{Level: NoticeWarning, Operation: "refresh prices", Message: "prices could not be fetched", Err: err}
		return result, nil
	}

	for _, sym := range symbols {
		if _, ok := quotes[sym]; !ok {
			result.Missing = append(result.Missing, sym)
		}
	}

	for _, h := range holdings {
		q, ok := quotes[h.Symbol]
		if !ok {
			continue
		}
		err := s.store.RunAtomic(ctx, []store.Table{store.TableHoldings}, func(tx store.Tx) error {
			cur, err := tx.GetHolding(ctx, h.ID)
			if err != nil {
				return err
			}
			price := q.Price
			asOf := q.AsOf.UTC()
			if asOf.IsZero() {
				asOf = s.timestamp()
			}
			cur.CurrentPrice = &price
			cur.PriceUpdatedAt = &asOf
			return tx.UpdateHolding(ctx, *cur)
		})
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return result, storageError("refresh prices", err)
		}
		result.Updated++
	}

	s.logger.Debug("Refreshed prices", "updated", result.Updated, "missing", len(result.Missing))
	return result, nil
}
