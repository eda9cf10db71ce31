package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// YearInput carries one fiscal year's operating assumptions. EBIT is derived
// by the engine from these lines, never supplied.
type YearInput struct {
	Year         int             `json:"year"`
	Revenue      decimal.Decimal `json:"revenue"`
	RentExpense  decimal.Decimal `json:"rent_expense"`
	StaffCosts   decimal.Decimal `json:"staff_costs"`
	OtherOpex    decimal.Decimal `json:"other_opex"`
	Depreciation decimal.Decimal `json:"depreciation"`
	// Capex is signed: negative values are cash outflows for asset purchases,
	// positive values are disposals.
	Capex decimal.Decimal `json:"capex"`
}

// OpeningBalances seeds the projection with the closing balance sheet of the
// period immediately before the first projected year. A zero value means the
// proposal starts with nothing on the books.
type OpeningBalances struct {
	Cash                    decimal.Decimal `json:"cash"`
	AccountsReceivable      decimal.Decimal `json:"accounts_receivable"`
	PrepaidExpenses         decimal.Decimal `json:"prepaid_expenses"`
	GrossPPE                decimal.Decimal `json:"gross_ppe"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
	AccountsPayable         decimal.Decimal `json:"accounts_payable"`
	AccruedLiabilities      decimal.Decimal `json:"accrued_liabilities"`
	DeferredRevenue         decimal.Decimal `json:"deferred_revenue"`
	DebtBalance             decimal.Decimal `json:"debt_balance"`
	TotalEquity             decimal.Decimal `json:"total_equity"`
}

// NetPPE returns gross PPE less accumulated depreciation.
func (o OpeningBalances) NetPPE() decimal.Decimal {
	return o.GrossPPE.Sub(o.AccumulatedDepreciation)
}

// CalculationEngineInput is everything a projection run depends on. Two
// inputs with equal economic content must produce identical outputs; the
// timestamps exist for audit only and are excluded from cache hashing.
type CalculationEngineInput struct {
	ProposalID     uuid.UUID            `json:"proposal_id"`
	TenantID       uuid.UUID            `json:"tenant_id"`
	System         SystemConfiguration  `json:"system_configuration"`
	Solver         CircularSolverConfig `json:"solver_config"`
	DiscountRate   decimal.Decimal      `json:"discount_rate"`
	Years          []YearInput          `json:"years"`
	WorkingCapital WorkingCapitalRatios `json:"working_capital"`
	Opening        OpeningBalances      `json:"opening_balances"`
	CalculatedAt   time.Time            `json:"calculated_at"`
	CreatedAt      time.Time            `json:"created_at"`
}

// Validate checks the whole input before any solving starts. All failures
// wrap ErrInvalidInput and name the offending field.
func (in CalculationEngineInput) Validate() error {
	if in.ProposalID == uuid.Nil {
		return fmt.Errorf("%w: proposal_id is required", ErrInvalidInput)
	}
	if in.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidInput)
	}
	if err := in.System.Validate(); err != nil {
		return err
	}
	if err := in.Solver.Validate(); err != nil {
		return err
	}
	if in.DiscountRate.IsNegative() {
		return fmt.Errorf("%w: discount_rate must not be negative, got %s", ErrInvalidInput, in.DiscountRate)
	}
	if err := in.WorkingCapital.Validate(); err != nil {
		return err
	}
	if len(in.Years) == 0 {
		return fmt.Errorf("%w: at least one projection year is required", ErrInvalidInput)
	}
	for i, y := range in.Years {
		if i > 0 && y.Year != in.Years[i-1].Year+1 {
			return fmt.Errorf("%w: years must be consecutive, year %d follows year %d",
				ErrInvalidInput, y.Year, in.Years[i-1].Year)
		}
		if y.Revenue.IsNegative() {
			return fmt.Errorf("%w: year %d revenue must not be negative, got %s",
				ErrInvalidInput, y.Year, y.Revenue)
		}
		if y.Depreciation.IsNegative() {
			return fmt.Errorf("%w: year %d depreciation must not be negative, got %s",
				ErrInvalidInput, y.Year, y.Depreciation)
		}
	}
	if in.Opening.GrossPPE.IsNegative() {
		return fmt.Errorf("%w: opening gross_ppe must not be negative, got %s",
			ErrInvalidInput, in.Opening.GrossPPE)
	}
	if in.Opening.DebtBalance.IsNegative() {
		return fmt.Errorf("%w: opening debt_balance must not be negative, got %s",
			ErrInvalidInput, in.Opening.DebtBalance)
	}
	return nil
}
