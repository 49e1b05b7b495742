package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingType classifies an investment holding.
type HoldingType string

const (
	HoldingStock  HoldingType = "stock"
	HoldingETF    HoldingType = "etf"
	HoldingFund   HoldingType = "fund"
	HoldingBond   HoldingType = "bond"
	HoldingCrypto HoldingType = "crypto"
	HoldingOther  HoldingType = "other"
)

// Valid reports whether t is a known holding type.
func (t HoldingType) Valid() bool {
	switch t {
	case HoldingStock, HoldingETF, HoldingFund, HoldingBond, HoldingCrypto, HoldingOther:
		return true
	}
	return false
}

// Holding is a position in one security inside an investment account.
//
// Units and CostBasis are the cumulative effect of the holding's investment
// transactions on top of its opening position. Both are kept at or above zero.
type Holding struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Symbol         string          `json:"symbol"`
	Type           HoldingType     `json:"type"`
	Units          decimal.Decimal `json:"units"`
	CostBasis      int64           `json:"cost_basis"` // minor currency units
	CurrentPrice   *int64          `json:"current_price,omitempty"`
	PriceUpdatedAt *time.Time      `json:"price_updated_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MarketValue returns units × current price rounded to minor units,
// and false when no price is known.
func (h Holding) MarketValue() (int64, bool) {
	if h.CurrentPrice == nil {
		return 0, false
	}
	return h.Units.Mul(decimal.NewFromInt(*h.CurrentPrice)).Round(0).IntPart(), true
}

// InvestmentType is the kind of an investment transaction.
type InvestmentType string

const (
	InvestmentBuy          InvestmentType = "buy"
	InvestmentSell         InvestmentType = "sell"
	InvestmentDividend     InvestmentType = "dividend"
	InvestmentDistribution InvestmentType = "distribution"
	InvestmentFee          InvestmentType = "fee"
)

// Valid reports whether t is a known investment transaction type.
func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentBuy, InvestmentSell, InvestmentDividend, InvestmentDistribution, InvestmentFee:
		return true
	}
	return false
}

// InvestmentTransaction changes a holding's units or cost basis.
type InvestmentTransaction struct {
	ID        string          `json:"id"`
	HoldingID string          `json:"holding_id"`
	Seq       int64           `json:"seq"` // application order within the store
	Type      InvestmentType  `json:"type"`
	Units     decimal.Decimal `json:"units"`
	// PricePerUnit is in minor units. When Units is zero it carries a flat amount.
	PricePerUnit int64 `json:"price_per_unit"`
	Fees         int64 `json:"fees"`
	TotalAmount  int64 `json:"total_amount"`
	// CostBasisReduction is the exact amount a sell removed from the cost basis.
	CostBasisReduction   int64            `json:"cost_basis_reduction"`
	FrankingPercentage   *decimal.Decimal `json:"franking_percentage,omitempty"`
	FrankingCreditAmount *int64           `json:"franking_credit_amount,omitempty"`
	GrossedUpAmount      *int64           `json:"grossed_up_amount,omitempty"`
	Date                 time.Time        `json:"date"`
	Notes                string           `json:"notes,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}
