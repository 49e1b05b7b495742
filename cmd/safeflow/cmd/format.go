package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/statement"
)

func displayMoney(minor int64, currency string) string {
	return money.New(minor, currency).Display()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// parsePositiveAmount parses a decimal amount such as "12.50" into minor units.
func parsePositiveAmount(s string) (int64, error) {
	v, err := statement.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("amount must be positive: %s", s)
	}
	return v, nil
}

func parseUnits(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid units %q: %w", s, err)
	}
	return d, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseMinor parses a non-negative decimal amount into minor units.
func parseMinor(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	v, err := statement.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("amount must not be negative: %s", s)
	}
	return v, nil
}
