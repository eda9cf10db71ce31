package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/service"
)

func steadyStateYear(year int) model.YearInput {
	return model.YearInput{
		Year:         year,
		Revenue:      decimal.NewFromInt(12_000_000),
		RentExpense:  decimal.NewFromInt(2_200_000),
		StaffCosts:   decimal.NewFromInt(5_500_000),
		OtherOpex:    decimal.NewFromInt(1_100_000),
		Depreciation: decimal.NewFromInt(600_000),
		Capex:        decimal.NewFromInt(-600_000),
	}
}

func steadyStateInput(t *testing.T) model.CalculationEngineInput {
	t.Helper()
	return model.CalculationEngineInput{
		ProposalID:   uuid.New(),
		TenantID:     uuid.New(),
		System:       standardSystemConfig(t),
		Solver:       model.DefaultSolverConfig(),
		DiscountRate: decimal.RequireFromString("0.08"),
		Years: []model.YearInput{
			steadyStateYear(2027),
			steadyStateYear(2028),
		},
		WorkingCapital: model.WorkingCapitalRatios{
			ReceivablePct:      decimal.RequireFromString("0.10"),
			PrepaidPct:         decimal.RequireFromString("0.02"),
			PayablePct:         decimal.RequireFromString("0.08"),
			AccruedPct:         decimal.RequireFromString("0.03"),
			DeferredRevenuePct: decimal.RequireFromString("0.05"),
			Locked:             true,
		},
		Opening: model.OpeningBalances{
			Cash:                    decimal.NewFromInt(2_000_000),
			AccountsReceivable:      decimal.NewFromInt(1_200_000),
			PrepaidExpenses:         decimal.NewFromInt(240_000),
			GrossPPE:                decimal.NewFromInt(10_000_000),
			AccumulatedDepreciation: decimal.NewFromInt(1_320_000),
			AccountsPayable:         decimal.NewFromInt(960_000),
			AccruedLiabilities:      decimal.NewFromInt(360_000),
			DeferredRevenue:         decimal.NewFromInt(600_000),
			DebtBalance:             decimal.NewFromInt(2_000_000),
			TotalEquity:             decimal.NewFromInt(8_200_000),
		},
	}
}

func newEngine() *service.ProjectionEngine {
	return service.NewProjectionEngine(service.NewCircularSolver())
}

func TestProjectionEngine_Run_TwoYearSteadyState(t *testing.T) {
	in := steadyStateInput(t)

	out, err := newEngine().Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.Periods, 2)
	assert.Equal(t, in.ProposalID, out.ProposalID)

	first, second := out.Periods[0], out.Periods[1]

	assert.Equal(t, 2027, first.Year)
	assert.Equal(t, 2028, second.Year)
	require.True(t, first.Converged)
	require.True(t, second.Converged)

	// Year one lands on the hand-computed fixed point.
	assert.True(t, first.Balance.Cash.Equal(decimal.RequireFromString("4493072.75")),
		"expected cash 4493072.75, got %s", first.Balance.Cash)
	assert.True(t, first.Balance.DebtBalance.Equal(decimal.NewFromInt(2_000_000)),
		"expected debt 2000000, got %s", first.Balance.DebtBalance)

	// PPE rolls forward: 600k capex and 600k depreciation per year.
	assert.True(t, first.Balance.GrossPPE.Equal(decimal.NewFromInt(10_600_000)))
	assert.True(t, first.Balance.AccumulatedDepreciation.Equal(decimal.NewFromInt(1_920_000)))
	assert.True(t, second.Balance.GrossPPE.Equal(decimal.NewFromInt(11_200_000)))
	assert.True(t, second.Balance.AccumulatedDepreciation.Equal(decimal.NewFromInt(2_520_000)))

	// Each year's closing cash is the next year's beginning cash.
	assert.True(t, first.CashFlow.BeginningCash.Equal(decimal.NewFromInt(2_000_000)))
	assert.True(t, second.CashFlow.BeginningCash.Equal(first.Balance.Cash))
	assert.True(t, second.CashFlow.EndingCash.Equal(second.Balance.Cash))

	// The prior chain links backward only.
	assert.Nil(t, first.Prior())
	require.NotNil(t, second.Prior())
	assert.Equal(t, 2027, second.Prior().Year)

	// Every period's balance sheet balances exactly.
	for _, p := range out.Periods {
		assert.True(t, p.Balance.TotalAssets.Equal(p.Balance.TotalLiabilitiesEquity),
			"year %d: assets %s vs liabilities+equity %s",
			p.Year, p.Balance.TotalAssets, p.Balance.TotalLiabilitiesEquity)
	}

	// Equity accumulates retained earnings on top of the opening equity.
	assert.True(t, first.Balance.RetainedEarnings.Equal(first.Income.NetIncome))
	expectedRetained := first.Income.NetIncome.Add(second.Income.NetIncome)
	assert.True(t, second.Balance.RetainedEarnings.Equal(expectedRetained))
	assert.True(t, second.Balance.TotalEquity.Equal(in.Opening.TotalEquity.Add(expectedRetained)))

	agg := out.Aggregates
	assert.Equal(t, 2, agg.TotalYears)
	assert.Equal(t, 2, agg.YearsConverged)
	assert.True(t, agg.CumulativeRent.Equal(decimal.NewFromInt(4_400_000)),
		"expected cumulative rent 4400000, got %s", agg.CumulativeRent)
	assert.True(t, agg.CumulativeEBITDA.Equal(decimal.NewFromInt(6_400_000)),
		"expected cumulative EBITDA 6400000, got %s", agg.CumulativeEBITDA)
	assert.True(t, agg.PeakDebt.Equal(decimal.NewFromInt(2_000_000)))
	assert.True(t, agg.FinalCash.Equal(second.Balance.Cash))
	assert.True(t, agg.TotalZakat.Equal(first.Income.Zakat.Add(second.Income.Zakat)))
	assert.True(t, agg.NPV.IsPositive())

	// Both pre-financing flows are positive, so no internal rate exists.
	assert.Nil(t, agg.IRR)
}

func TestProjectionEngine_Run_StartupYearDrawsDebtThenRecovers(t *testing.T) {
	in := steadyStateInput(t)
	in.Opening = model.OpeningBalances{}
	in.Years = []model.YearInput{
		{
			Year:         2027,
			Revenue:      decimal.NewFromInt(5_000_000),
			RentExpense:  decimal.NewFromInt(1_000_000),
			StaffCosts:   decimal.NewFromInt(1_000_000),
			OtherOpex:    decimal.NewFromInt(500_000),
			Depreciation: decimal.NewFromInt(500_000),
			Capex:        decimal.NewFromInt(-3_000_000),
		},
		{
			Year:         2028,
			Revenue:      decimal.NewFromInt(6_000_000),
			RentExpense:  decimal.NewFromInt(1_200_000),
			StaffCosts:   decimal.NewFromInt(1_200_000),
			OtherOpex:    decimal.NewFromInt(600_000),
			Depreciation: decimal.NewFromInt(500_000),
			Capex:        decimal.Zero,
		},
	}

	out, err := newEngine().Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out.Periods, 2)

	first := out.Periods[0]
	require.True(t, first.Converged)

	// Year one: heavy capex pins cash to the floor and draws startup debt.
	assert.True(t, first.Balance.Cash.Equal(decimal.NewFromInt(1_000_000)),
		"expected cash 1000000, got %s", first.Balance.Cash)
	assert.True(t, first.Balance.DebtBalance.IsPositive())
	assert.True(t, first.CashFlow.ReconciliationDifference.IsPositive(),
		"floored cash must reconcile above the calculated figure")

	// Negative year-one flow followed by positive flows: IRR is defined.
	assert.Equal(t, 2, out.Aggregates.YearsConverged)
	require.NotNil(t, out.Aggregates.IRR)
}

func TestProjectionEngine_Run_NonConvergedYearIsValidOutput(t *testing.T) {
	in := steadyStateInput(t)

	// Understate opening equity: year one can never close the plug gap.
	in.Opening.TotalEquity = decimal.NewFromInt(7_700_000)

	out, err := newEngine().Run(context.Background(), in)
	require.NoError(t, err, "non-convergence is a result, not an error")
	require.Len(t, out.Periods, 2)

	first, second := out.Periods[0], out.Periods[1]

	assert.False(t, first.Converged)
	assert.Equal(t, in.Solver.MaxIterations, first.Iterations)
	assert.True(t, first.FinalDifference.Equal(decimal.NewFromInt(500_000)),
		"expected final difference 500000, got %s", first.FinalDifference)

	// Year one closes with a balanced sheet via the plug, so year two
	// converges immediately off that consistent prior.
	assert.True(t, second.Converged)
	assert.Equal(t, 1, out.Aggregates.YearsConverged)
}

func TestProjectionEngine_Run_InvalidInput(t *testing.T) {
	in := steadyStateInput(t)
	in.Years = nil

	out, err := newEngine().Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Nil(t, out)
}

func TestProjectionEngine_Run_NonConsecutiveYearsRejected(t *testing.T) {
	in := steadyStateInput(t)
	in.Years = []model.YearInput{steadyStateYear(2027), steadyStateYear(2030)}

	_, err := newEngine().Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Contains(t, err.Error(), "consecutive")
}

func TestProjectionEngine_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := newEngine().Run(ctx, steadyStateInput(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, out)
}

func TestProjectionEngine_Run_Deterministic(t *testing.T) {
	in := steadyStateInput(t)
	engine := newEngine()

	first, err := engine.Run(context.Background(), in)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), in)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, string(firstJSON), string(secondJSON))
}
