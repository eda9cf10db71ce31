package cache_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/infrastructure/cache"
	"github.com/project2052/calculation-service/pkg/testutil"
)

func keyableInput(t *testing.T) model.CalculationEngineInput {
	t.Helper()
	return model.CalculationEngineInput{
		ProposalID: testutil.TestProposalID1,
		TenantID:   testutil.TestTenantID,
		System: model.SystemConfiguration{
			ZakatRate:           decimal.RequireFromString("0.025"),
			DebtInterestRate:    decimal.RequireFromString("0.05"),
			DepositInterestRate: decimal.RequireFromString("0.02"),
			MinCashBalance:      decimal.NewFromInt(1_000_000),
		},
		Solver:       model.DefaultSolverConfig(),
		DiscountRate: decimal.RequireFromString("0.08"),
		Years: []model.YearInput{
			{
				Year:         2027,
				Revenue:      decimal.NewFromInt(12_000_000),
				RentExpense:  decimal.NewFromInt(2_200_000),
				StaffCosts:   decimal.NewFromInt(5_500_000),
				OtherOpex:    decimal.NewFromInt(1_100_000),
				Depreciation: decimal.NewFromInt(600_000),
				Capex:        decimal.NewFromInt(-600_000),
			},
		},
		WorkingCapital: model.WorkingCapitalRatios{
			ReceivablePct: decimal.RequireFromString("0.10"),
			PrepaidPct:    decimal.RequireFromString("0.02"),
		},
		Opening: model.OpeningBalances{
			Cash:        decimal.NewFromInt(2_000_000),
			DebtBalance: decimal.NewFromInt(2_000_000),
			TotalEquity: decimal.NewFromInt(8_200_000),
		},
		CalculatedAt: time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC),
		CreatedAt:    time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC),
	}
}

func TestGenerateKey_Deterministic(t *testing.T) {
	in := keyableInput(t)

	first, err := cache.GenerateKey(in)
	require.NoError(t, err)
	second, err := cache.GenerateKey(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateKey_EmbedsNamespaceAndProposal(t *testing.T) {
	in := keyableInput(t)

	key, err := cache.GenerateKey(in)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "calc:v1:"+in.ProposalID.String()+":"),
		"unexpected key layout: %s", key)
}

func TestGenerateKey_IgnoresTimestamps(t *testing.T) {
	base := keyableInput(t)
	later := keyableInput(t)
	later.CalculatedAt = later.CalculatedAt.Add(48 * time.Hour)
	later.CreatedAt = later.CreatedAt.Add(48 * time.Hour)

	baseKey, err := cache.GenerateKey(base)
	require.NoError(t, err)
	laterKey, err := cache.GenerateKey(later)
	require.NoError(t, err)

	assert.Equal(t, baseKey, laterKey,
		"re-running the same scenario later must hit the same key")
}

func TestGenerateKey_CanonicalDecimalForm(t *testing.T) {
	first := keyableInput(t)
	first.DiscountRate = decimal.RequireFromString("0.0800")

	second := keyableInput(t)
	second.DiscountRate = decimal.RequireFromString("0.08")

	firstKey, err := cache.GenerateKey(first)
	require.NoError(t, err)
	secondKey, err := cache.GenerateKey(second)
	require.NoError(t, err)

	assert.Equal(t, firstKey, secondKey,
		"numerically equal decimals must hash identically")
}

func TestGenerateKey_SensitiveToRateChange(t *testing.T) {
	base := keyableInput(t)
	changed := keyableInput(t)
	changed.System.ZakatRate = decimal.RequireFromString("0.0251")

	baseKey, err := cache.GenerateKey(base)
	require.NoError(t, err)
	changedKey, err := cache.GenerateKey(changed)
	require.NoError(t, err)

	assert.NotEqual(t, baseKey, changedKey)
}

func TestGenerateKey_SensitiveToYearValues(t *testing.T) {
	base := keyableInput(t)
	changed := keyableInput(t)
	changed.Years[0].Revenue = changed.Years[0].Revenue.Add(decimal.RequireFromString("0.01"))

	baseKey, err := cache.GenerateKey(base)
	require.NoError(t, err)
	changedKey, err := cache.GenerateKey(changed)
	require.NoError(t, err)

	assert.NotEqual(t, baseKey, changedKey)
}

func TestGenerateKey_SensitiveToProposal(t *testing.T) {
	base := keyableInput(t)
	other := keyableInput(t)
	other.ProposalID = testutil.TestProposalID2

	baseKey, err := cache.GenerateKey(base)
	require.NoError(t, err)
	otherKey, err := cache.GenerateKey(other)
	require.NoError(t, err)

	assert.NotEqual(t, baseKey, otherKey)
}

func TestGenerateKey_FastForLongHorizon(t *testing.T) {
	in := keyableInput(t)
	in.Years = nil
	for year := 2027; year < 2057; year++ {
		in.Years = append(in.Years, model.YearInput{
			Year:         year,
			Revenue:      decimal.NewFromInt(int64(year) * 1000),
			RentExpense:  decimal.NewFromInt(2_200_000),
			StaffCosts:   decimal.NewFromInt(5_500_000),
			OtherOpex:    decimal.NewFromInt(1_100_000),
			Depreciation: decimal.NewFromInt(600_000),
			Capex:        decimal.NewFromInt(-600_000),
		})
	}

	start := time.Now()
	_, err := cache.GenerateKey(in)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 10*time.Millisecond)
}

func TestGenerateKey_NilProposalStillKeys(t *testing.T) {
	in := keyableInput(t)
	in.ProposalID = uuid.Nil

	key, err := cache.GenerateKey(in)
	require.NoError(t, err)
	assert.NotEmpty(t, key)
}
