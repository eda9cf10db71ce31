package model

import (
	"github.com/shopspring/decimal"
)

// IncomeStatement holds one projected year's profit and loss lines.
type IncomeStatement struct {
	Revenue         decimal.Decimal `json:"revenue"`
	RentExpense     decimal.Decimal `json:"rent_expense"`
	StaffCosts      decimal.Decimal `json:"staff_costs"`
	OtherOpex       decimal.Decimal `json:"other_opex"`
	Depreciation    decimal.Decimal `json:"depreciation"`
	EBIT            decimal.Decimal `json:"ebit"`
	InterestExpense decimal.Decimal `json:"interest_expense"`
	InterestIncome  decimal.Decimal `json:"interest_income"`
	EBT             decimal.Decimal `json:"ebt"`
	Zakat           decimal.Decimal `json:"zakat"`
	NetIncome       decimal.Decimal `json:"net_income"`
}

// EBITDA returns EBIT with depreciation added back.
func (s IncomeStatement) EBITDA() decimal.Decimal {
	return s.EBIT.Add(s.Depreciation)
}

// BalanceSheet holds one projected year's closing balances.
type BalanceSheet struct {
	Cash                    decimal.Decimal `json:"cash"`
	AccountsReceivable      decimal.Decimal `json:"accounts_receivable"`
	PrepaidExpenses         decimal.Decimal `json:"prepaid_expenses"`
	GrossPPE                decimal.Decimal `json:"gross_ppe"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
	NetPPE                  decimal.Decimal `json:"net_ppe"`
	AccountsPayable         decimal.Decimal `json:"accounts_payable"`
	AccruedLiabilities      decimal.Decimal `json:"accrued_liabilities"`
	DeferredRevenue         decimal.Decimal `json:"deferred_revenue"`
	DebtBalance             decimal.Decimal `json:"debt_balance"`
	RetainedEarnings        decimal.Decimal `json:"retained_earnings"`
	TotalEquity             decimal.Decimal `json:"total_equity"`
	TotalAssets             decimal.Decimal `json:"total_assets"`
	TotalLiabilitiesEquity  decimal.Decimal `json:"total_liabilities_equity"`
}

// CurrentAssets returns cash plus receivables plus prepaid expenses.
func (b BalanceSheet) CurrentAssets() decimal.Decimal {
	return b.Cash.Add(b.AccountsReceivable).Add(b.PrepaidExpenses)
}

// CurrentLiabilities returns payables plus accruals plus deferred revenue.
// Debt is excluded; it is the balancing item, not an operating liability.
func (b BalanceSheet) CurrentLiabilities() decimal.Decimal {
	return b.AccountsPayable.Add(b.AccruedLiabilities).Add(b.DeferredRevenue)
}

// CashFlowStatement reconciles a year's cash movement.
type CashFlowStatement struct {
	OperatingCashFlow decimal.Decimal `json:"operating_cash_flow"`
	InvestingCashFlow decimal.Decimal `json:"investing_cash_flow"`
	FinancingCashFlow decimal.Decimal `json:"financing_cash_flow"`
	BeginningCash     decimal.Decimal `json:"beginning_cash"`
	EndingCash        decimal.Decimal `json:"ending_cash"`
	// ReconciliationDifference is the reported ending cash minus the cash
	// implied by beginning cash plus the three flows. Non-zero only when the
	// minimum-balance floor lifted the reported figure.
	ReconciliationDifference decimal.Decimal `json:"reconciliation_difference"`
}

// FinancialPeriod is one fully resolved fiscal year of the projection.
// The engine constructs each period complete and never mutates it; the
// prior link gives read access to the preceding year and is kept out of
// serialization so the chain cannot cycle through JSON.
type FinancialPeriod struct {
	Year            int               `json:"year"`
	Income          IncomeStatement   `json:"income_statement"`
	Balance         BalanceSheet      `json:"balance_sheet"`
	CashFlow        CashFlowStatement `json:"cash_flow_statement"`
	Converged       bool              `json:"converged"`
	Iterations      int               `json:"iterations"`
	FinalDifference decimal.Decimal   `json:"final_difference"`

	prior *FinancialPeriod
}

// NewFinancialPeriod assembles a period and links it to its predecessor.
// prior may be nil for the first projected year.
func NewFinancialPeriod(
	year int,
	income IncomeStatement,
	balance BalanceSheet,
	cashFlow CashFlowStatement,
	converged bool,
	iterations int,
	finalDifference decimal.Decimal,
	prior *FinancialPeriod,
) FinancialPeriod {
	return FinancialPeriod{
		Year:            year,
		Income:          income,
		Balance:         balance,
		CashFlow:        cashFlow,
		Converged:       converged,
		Iterations:      iterations,
		FinalDifference: finalDifference,
		prior:           prior,
	}
}

// Prior returns the preceding period, or nil for the first year.
func (p *FinancialPeriod) Prior() *FinancialPeriod {
	return p.prior
}
