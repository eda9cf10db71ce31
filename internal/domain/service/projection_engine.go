package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/pkg/finmath"
)

// ProjectionEngine drives the circular solver once per fiscal year, strictly
// in order, threading each year's closing balance sheet into the next year's
// solve, then aggregates the multi-year metrics.
type ProjectionEngine struct {
	solver *CircularSolver
}

// NewProjectionEngine creates a ProjectionEngine around the given solver.
func NewProjectionEngine(solver *CircularSolver) *ProjectionEngine {
	return &ProjectionEngine{solver: solver}
}

// Run validates the input and resolves every projection year. Years are
// never reordered or parallelized: each solve consumes the previous year's
// closing state. The context is checked between years so a cancelled or
// timed-out run stops without producing partial output.
func (e *ProjectionEngine) Run(ctx context.Context, in model.CalculationEngineInput) (*model.CalculationEngineOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	prior := PriorState{
		Cash:               in.Opening.Cash,
		Debt:               in.Opening.DebtBalance,
		Equity:             in.Opening.TotalEquity,
		AccountsReceivable: in.Opening.AccountsReceivable,
		PrepaidExpenses:    in.Opening.PrepaidExpenses,
		AccountsPayable:    in.Opening.AccountsPayable,
		AccruedLiabilities: in.Opening.AccruedLiabilities,
		DeferredRevenue:    in.Opening.DeferredRevenue,
	}
	grossPPE := in.Opening.GrossPPE
	accumulatedDep := in.Opening.AccumulatedDepreciation
	retainedEarnings := decimal.Zero

	// Fixed capacity keeps the prior pointers valid: the backing array is
	// never reallocated while the chain is being built.
	periods := make([]model.FinancialPeriod, 0, len(in.Years))

	for i, year := range in.Years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ebit := year.Revenue.
			Sub(year.RentExpense).
			Sub(year.StaffCosts).
			Sub(year.OtherOpex).
			Sub(year.Depreciation)

		workingCapital := in.WorkingCapital.Project(year.Revenue)

		// Roll the asset base forward: purchases (negative capex) grow
		// gross PPE, disposals shrink it; depreciation accumulates.
		grossPPE = grossPPE.Sub(year.Capex)
		accumulatedDep = accumulatedDep.Add(year.Depreciation)

		solved := e.solver.Solve(CircularSolverInput{
			Year:         year.Year,
			Revenue:      year.Revenue,
			RentExpense:  year.RentExpense,
			StaffCosts:   year.StaffCosts,
			OtherOpex:    year.OtherOpex,
			Depreciation: year.Depreciation,
			EBIT:         ebit,

			AccountsReceivable:      workingCapital.AccountsReceivable,
			PrepaidExpenses:         workingCapital.PrepaidExpenses,
			GrossPPE:                grossPPE,
			AccumulatedDepreciation: accumulatedDep,
			AccountsPayable:         workingCapital.AccountsPayable,
			AccruedLiabilities:      workingCapital.AccruedLiabilities,
			DeferredRevenue:         workingCapital.DeferredRevenue,
			Capex:                   year.Capex,

			Prior:  prior,
			System: in.System,
			Config: in.Solver,
		})

		retainedEarnings = retainedEarnings.Add(solved.NetIncome)
		totalEquity := in.Opening.TotalEquity.Add(retainedEarnings)
		netPPE := grossPPE.Sub(accumulatedDep)

		balance := model.BalanceSheet{
			Cash:                    solved.Cash,
			AccountsReceivable:      workingCapital.AccountsReceivable,
			PrepaidExpenses:         workingCapital.PrepaidExpenses,
			GrossPPE:                grossPPE,
			AccumulatedDepreciation: accumulatedDep,
			NetPPE:                  netPPE,
			AccountsPayable:         workingCapital.AccountsPayable,
			AccruedLiabilities:      workingCapital.AccruedLiabilities,
			DeferredRevenue:         workingCapital.DeferredRevenue,
			DebtBalance:             solved.Debt,
			RetainedEarnings:        retainedEarnings,
			TotalEquity:             totalEquity,
		}
		balance.TotalAssets = balance.CurrentAssets().Add(netPPE)
		balance.TotalLiabilitiesEquity = balance.CurrentLiabilities().
			Add(solved.Debt).
			Add(totalEquity)

		income := model.IncomeStatement{
			Revenue:         year.Revenue,
			RentExpense:     year.RentExpense,
			StaffCosts:      year.StaffCosts,
			OtherOpex:       year.OtherOpex,
			Depreciation:    year.Depreciation,
			EBIT:            ebit,
			InterestExpense: solved.InterestExpense,
			InterestIncome:  solved.InterestIncome,
			EBT:             solved.EBT,
			Zakat:           solved.Zakat,
			NetIncome:       solved.NetIncome,
		}

		cashFlow := model.CashFlowStatement{
			OperatingCashFlow:        solved.OperatingCashFlow,
			InvestingCashFlow:        solved.InvestingCashFlow,
			FinancingCashFlow:        solved.FinancingCashFlow,
			BeginningCash:            prior.Cash,
			EndingCash:               solved.Cash,
			ReconciliationDifference: solved.Cash.Sub(solved.CalculatedCash),
		}

		var priorPeriod *model.FinancialPeriod
		if i > 0 {
			priorPeriod = &periods[i-1]
		}

		periods = append(periods, model.NewFinancialPeriod(
			year.Year, income, balance, cashFlow,
			solved.Converged, solved.Iterations, solved.FinalDifference,
			priorPeriod,
		))

		prior = PriorState{
			Cash:               solved.Cash,
			Debt:               solved.Debt,
			Equity:             totalEquity,
			AccountsReceivable: workingCapital.AccountsReceivable,
			PrepaidExpenses:    workingCapital.PrepaidExpenses,
			AccountsPayable:    workingCapital.AccountsPayable,
			AccruedLiabilities: workingCapital.AccruedLiabilities,
			DeferredRevenue:    workingCapital.DeferredRevenue,
		}
	}

	return &model.CalculationEngineOutput{
		ProposalID: in.ProposalID,
		Periods:    periods,
		Aggregates: e.aggregate(in, periods),
	}, nil
}

// aggregate computes the whole-projection metrics. NPV and IRR are taken
// over the pre-financing cash flow of each year (operating plus investing),
// so the financing plug does not flatter the return figures.
func (e *ProjectionEngine) aggregate(in model.CalculationEngineInput, periods []model.FinancialPeriod) model.Aggregates {
	flows := make([]decimal.Decimal, len(periods))
	cumulativeRent := decimal.Zero
	cumulativeEBITDA := decimal.Zero
	totalZakat := decimal.Zero
	peakDebt := decimal.Zero
	converged := 0

	for i, p := range periods {
		flows[i] = p.CashFlow.OperatingCashFlow.Add(p.CashFlow.InvestingCashFlow)
		cumulativeRent = cumulativeRent.Add(p.Income.RentExpense)
		cumulativeEBITDA = cumulativeEBITDA.Add(p.Income.EBITDA())
		totalZakat = totalZakat.Add(p.Income.Zakat)
		peakDebt = decimal.Max(peakDebt, p.Balance.DebtBalance)
		if p.Converged {
			converged++
		}
	}

	agg := model.Aggregates{
		NPV:              finmath.NPV(in.DiscountRate, flows),
		CumulativeRent:   cumulativeRent,
		CumulativeEBITDA: cumulativeEBITDA,
		FinalCash:        periods[len(periods)-1].Balance.Cash,
		PeakDebt:         peakDebt,
		TotalZakat:       totalZakat,
		YearsConverged:   converged,
		TotalYears:       len(periods),
	}

	if irr, ok := finmath.IRR(flows); ok {
		agg.IRR = &irr
	}

	return agg
}
