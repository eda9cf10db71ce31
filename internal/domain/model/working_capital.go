package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WorkingCapitalRatios expresses the five working-capital balances as
// fractions of annual revenue. When Locked, the ratios were fixed from a
// reference year and are reused as-is for every projected year; otherwise
// callers may recompute them before projecting.
type WorkingCapitalRatios struct {
	ReceivablePct      decimal.Decimal `json:"receivable_pct"`
	PrepaidPct         decimal.Decimal `json:"prepaid_pct"`
	PayablePct         decimal.Decimal `json:"payable_pct"`
	AccruedPct         decimal.Decimal `json:"accrued_pct"`
	DeferredRevenuePct decimal.Decimal `json:"deferred_revenue_pct"`
	Locked             bool            `json:"locked"`
}

// WorkingCapitalBalances holds the projected currency balances for one year.
type WorkingCapitalBalances struct {
	AccountsReceivable decimal.Decimal
	PrepaidExpenses    decimal.Decimal
	AccountsPayable    decimal.Decimal
	AccruedLiabilities decimal.Decimal
	DeferredRevenue    decimal.Decimal
}

// Validate rejects negative ratios.
func (r WorkingCapitalRatios) Validate() error {
	ratios := []struct {
		name  string
		value decimal.Decimal
	}{
		{"receivable_pct", r.ReceivablePct},
		{"prepaid_pct", r.PrepaidPct},
		{"payable_pct", r.PayablePct},
		{"accrued_pct", r.AccruedPct},
		{"deferred_revenue_pct", r.DeferredRevenuePct},
	}
	for _, ratio := range ratios {
		if ratio.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidInput, ratio.name, ratio.value)
		}
	}
	return nil
}

// Project scales each ratio by the year's revenue.
func (r WorkingCapitalRatios) Project(revenue decimal.Decimal) WorkingCapitalBalances {
	return WorkingCapitalBalances{
		AccountsReceivable: r.ReceivablePct.Mul(revenue),
		PrepaidExpenses:    r.PrepaidPct.Mul(revenue),
		AccountsPayable:    r.PayablePct.Mul(revenue),
		AccruedLiabilities: r.AccruedPct.Mul(revenue),
		DeferredRevenue:    r.DeferredRevenuePct.Mul(revenue),
	}
}
