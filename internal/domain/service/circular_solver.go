// Package service holds the pure calculation engines: the circular solver
// that resolves one year's interdependent financial quantities, and the
// projection engine that chains solved years into a full proposal forecast.
// Both are stateless; identical inputs produce identical decimal outputs.
package service

import (
	"github.com/shopspring/decimal"

	"github.com/project2052/calculation-service/internal/domain/model"
)

// PriorState is the closing state of the preceding period the solver plugs
// against. Zero-valued for a proposal's first modeled year.
type PriorState struct {
	Cash               decimal.Decimal
	Debt               decimal.Decimal
	Equity             decimal.Decimal
	AccountsReceivable decimal.Decimal
	PrepaidExpenses    decimal.Decimal
	AccountsPayable    decimal.Decimal
	AccruedLiabilities decimal.Decimal
	DeferredRevenue    decimal.Decimal
}

// CircularSolverInput carries everything one year's solve depends on: the
// pre-interest operating result, the already-projected non-cash balance
// sheet lines, signed capex, and the prior period's closing state.
type CircularSolverInput struct {
	Year int

	Revenue      decimal.Decimal
	RentExpense  decimal.Decimal
	StaffCosts   decimal.Decimal
	OtherOpex    decimal.Decimal
	Depreciation decimal.Decimal
	EBIT         decimal.Decimal

	AccountsReceivable      decimal.Decimal
	PrepaidExpenses         decimal.Decimal
	GrossPPE                decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	AccountsPayable         decimal.Decimal
	AccruedLiabilities      decimal.Decimal
	DeferredRevenue         decimal.Decimal

	// Capex is signed: negative for purchases, positive for disposals.
	Capex decimal.Decimal

	Prior  PriorState
	System model.SystemConfiguration
	Config model.CircularSolverConfig
}

// CircularSolverResult is one year's resolved state. A result with
// Converged=false is still valid output; callers decide whether a
// non-converged year is acceptable.
type CircularSolverResult struct {
	Converged       bool
	Iterations      int
	FinalDifference decimal.Decimal

	Debt            decimal.Decimal
	InterestExpense decimal.Decimal
	InterestIncome  decimal.Decimal
	EBT             decimal.Decimal
	Zakat           decimal.Decimal
	NetIncome       decimal.Decimal

	// Cash is the reported balance, floored at the configured minimum.
	// CalculatedCash is the unfloored figure the cash-flow legs imply;
	// when the floor binds the two differ and debt covers the gap.
	Cash           decimal.Decimal
	CalculatedCash decimal.Decimal

	OperatingCashFlow decimal.Decimal
	InvestingCashFlow decimal.Decimal
	FinancingCashFlow decimal.Decimal
}

// InterestIncome returns the deposit interest earned on cash held above the
// minimum balance: max(0, cash − minCash) × rate.
func InterestIncome(cash, minCash, rate decimal.Decimal) decimal.Decimal {
	excess := cash.Sub(minCash)
	if !excess.IsPositive() {
		return decimal.Zero
	}
	return excess.Mul(rate)
}

// CircularSolver resolves the mutual dependency between debt, interest
// expense, interest income, zakat, net income and cash for a single year
// by fixed-point iteration with relaxation.
type CircularSolver struct{}

// NewCircularSolver creates a CircularSolver.
func NewCircularSolver() *CircularSolver {
	return &CircularSolver{}
}

// solverPass is one full derivation of the year's statements for a given
// debt estimate and interest income figure.
type solverPass struct {
	interestExpense   decimal.Decimal
	interestIncome    decimal.Decimal
	ebt               decimal.Decimal
	zakat             decimal.Decimal
	netIncome         decimal.Decimal
	operatingCashFlow decimal.Decimal
	investingCashFlow decimal.Decimal
	financingCashFlow decimal.Decimal
	calculatedCash    decimal.Decimal
}

// Solve runs the fixed-point loop. It never returns an error: numeric edge
// cases (losses, zero rates, zero revenue) are valid inputs, and exhausting
// MaxIterations yields a result with Converged=false rather than a failure.
func (s *CircularSolver) Solve(in CircularSolverInput) CircularSolverResult {
	cfg := in.Config
	sys := in.System
	one := decimal.NewFromInt(1)

	debtEstimate := in.Prior.Debt

	var (
		result CircularSolverResult
		pass   solverPass
	)

	for i := 1; i <= cfg.MaxIterations; i++ {
		interestExpense := decimal.Avg(in.Prior.Debt, debtEstimate).Mul(sys.DebtInterestRate)

		// First pass prices deposit interest off the prior year's closing
		// cash, since this year's cash is not known yet.
		firstIncome := InterestIncome(in.Prior.Cash, sys.MinCashBalance, sys.DepositInterestRate)
		pass = s.derive(in, debtEstimate, interestExpense, firstIncome)

		// Second pass re-prices it off the average of prior cash and the
		// calculated (unfloored) ending cash. The floored figure is
		// deliberately not used: interest cannot be earned on cash that was
		// never held. This refinement runs exactly once per outer iteration.
		refinedIncome := InterestIncome(
			decimal.Avg(in.Prior.Cash, pass.calculatedCash),
			sys.MinCashBalance,
			sys.DepositInterestRate,
		)
		pass = s.derive(in, debtEstimate, interestExpense, refinedIncome)

		reportedCash := decimal.Max(sys.MinCashBalance, pass.calculatedCash)

		equity := in.Prior.Equity.Add(pass.netIncome)
		netPPE := in.GrossPPE.Sub(in.AccumulatedDepreciation)
		totalAssets := reportedCash.
			Add(in.AccountsReceivable).
			Add(in.PrepaidExpenses).
			Add(netPPE)
		currentLiabilities := in.AccountsPayable.
			Add(in.AccruedLiabilities).
			Add(in.DeferredRevenue)

		requiredDebt := decimal.Max(decimal.Zero, totalAssets.Sub(currentLiabilities).Sub(equity))
		difference := requiredDebt.Sub(debtEstimate).Abs()

		result = CircularSolverResult{
			Converged:         difference.LessThan(cfg.ConvergenceTolerance),
			Iterations:        i,
			FinalDifference:   difference,
			Debt:              requiredDebt,
			InterestExpense:   pass.interestExpense,
			InterestIncome:    pass.interestIncome,
			EBT:               pass.ebt,
			Zakat:             pass.zakat,
			NetIncome:         pass.netIncome,
			Cash:              reportedCash,
			CalculatedCash:    pass.calculatedCash,
			OperatingCashFlow: pass.operatingCashFlow,
			InvestingCashFlow: pass.investingCashFlow,
			FinancingCashFlow: pass.financingCashFlow,
		}
		if result.Converged {
			return result
		}

		debtEstimate = debtEstimate.Mul(cfg.RelaxationFactor).
			Add(requiredDebt.Mul(one.Sub(cfg.RelaxationFactor)))
	}

	return result
}

// derive computes EBT, zakat, net income and the three cash-flow legs for a
// fixed debt estimate and interest income.
func (s *CircularSolver) derive(
	in CircularSolverInput,
	debtEstimate, interestExpense, interestIncome decimal.Decimal,
) solverPass {
	ebt := in.EBIT.Add(interestIncome).Sub(interestExpense)

	// Zakat applies to equity not tied up in fixed assets, measured before
	// the zakat charge itself.
	netPPE := in.GrossPPE.Sub(in.AccumulatedDepreciation)
	zakatBase := in.Prior.Equity.Add(ebt).Sub(netPPE)
	zakat := decimal.Zero
	if zakatBase.IsPositive() {
		zakat = zakatBase.Mul(in.System.ZakatRate)
	}

	netIncome := ebt.Sub(zakat)

	// Indirect-method operating cash flow: net income, depreciation added
	// back, working-capital deltas applied against the prior period.
	operating := netIncome.
		Add(in.Depreciation).
		Sub(in.AccountsReceivable.Sub(in.Prior.AccountsReceivable)).
		Sub(in.PrepaidExpenses.Sub(in.Prior.PrepaidExpenses)).
		Add(in.AccountsPayable.Sub(in.Prior.AccountsPayable)).
		Add(in.AccruedLiabilities.Sub(in.Prior.AccruedLiabilities)).
		Add(in.DeferredRevenue.Sub(in.Prior.DeferredRevenue))

	investing := in.Capex
	financing := debtEstimate.Sub(in.Prior.Debt)

	calculatedCash := in.Prior.Cash.Add(operating).Add(investing).Add(financing)

	return solverPass{
		interestExpense:   interestExpense,
		interestIncome:    interestIncome,
		ebt:               ebt,
		zakat:             zakat,
		netIncome:         netIncome,
		operatingCashFlow: operating,
		investingCashFlow: investing,
		financingCashFlow: financing,
		calculatedCash:    calculatedCash,
	}
}
