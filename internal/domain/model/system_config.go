package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SystemConfiguration carries the platform-wide financial constants a
// calculation runs under. It is supplied per request and treated as
// read-only for the duration of the run.
type SystemConfiguration struct {
	// ZakatRate is the rate applied to the positive zakat base, e.g. 0.025.
	ZakatRate decimal.Decimal `json:"zakat_rate"`
	// DebtInterestRate is the annual rate charged on the average debt balance.
	DebtInterestRate decimal.Decimal `json:"debt_interest_rate"`
	// DepositInterestRate is the annual rate earned on cash above the floor.
	DepositInterestRate decimal.Decimal `json:"deposit_interest_rate"`
	// MinCashBalance is the floor the reported cash balance may never drop
	// below; shortfalls are covered by drawing debt.
	MinCashBalance decimal.Decimal `json:"min_cash_balance"`
}

// Validate rejects rates outside [0, 1] and a negative cash floor.
func (c SystemConfiguration) Validate() error {
	one := decimal.NewFromInt(1)

	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"zakat_rate", c.ZakatRate},
		{"debt_interest_rate", c.DebtInterestRate},
		{"deposit_interest_rate", c.DepositInterestRate},
	}
	for _, r := range rates {
		if r.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidInput, r.name, r.value)
		}
		if r.value.GreaterThan(one) {
			return fmt.Errorf("%w: %s must not exceed 1, got %s", ErrInvalidInput, r.name, r.value)
		}
	}

	if c.MinCashBalance.IsNegative() {
		return fmt.Errorf("%w: min_cash_balance must not be negative, got %s", ErrInvalidInput, c.MinCashBalance)
	}

	return nil
}
