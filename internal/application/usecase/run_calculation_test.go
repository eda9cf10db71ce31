package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/application/usecase"
	"github.com/project2052/calculation-service/internal/domain/event"
	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
	"github.com/project2052/calculation-service/pkg/testutil"
)

// --- Mock implementations ---

type mockExecutor struct {
	result    port.ExecutionResult
	err       error
	called    bool
	lastInput model.CalculationEngineInput
}

func (m *mockExecutor) Submit(_ context.Context, in model.CalculationEngineInput) (port.ExecutionResult, error) {
	m.called = true
	m.lastInput = in
	if m.err != nil {
		return port.ExecutionResult{}, m.err
	}
	return m.result, nil
}

type mockCache struct {
	keyErr     error
	entries    map[string]model.CalculationEngineOutput
	getCalls   int
	setCalls   int
	purgedID   uuid.UUID
	purgeCount int
	stats      model.CacheStats
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]model.CalculationEngineOutput{}}
}

func (m *mockCache) Key(in model.CalculationEngineInput) (string, error) {
	if m.keyErr != nil {
		return "", m.keyErr
	}
	return "calc:v1:" + in.ProposalID.String() + ":deadbeef", nil
}

func (m *mockCache) Get(key string) (*model.CalculationEngineOutput, bool) {
	m.getCalls++
	out, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return &out, true
}

func (m *mockCache) Set(key string, _ model.CalculationEngineInput, output model.CalculationEngineOutput) {
	m.setCalls++
	m.entries[key] = output
}

func (m *mockCache) Invalidate(key string) {
	delete(m.entries, key)
}

func (m *mockCache) InvalidateByProposalID(proposalID uuid.UUID) int {
	m.purgedID = proposalID
	return m.purgeCount
}

func (m *mockCache) Stats() model.CacheStats { return m.stats }

type mockSnapshotRepository struct {
	saved           []model.CalculationSnapshot
	saveErr         error
	latest          model.CalculationSnapshot
	findErr         error
	deleted         int64
	deleteErr       error
	deletedTenant   uuid.UUID
	deletedProposal uuid.UUID
}

func (m *mockSnapshotRepository) Save(_ context.Context, s model.CalculationSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockSnapshotRepository) FindLatestByProposal(_ context.Context, _, _ uuid.UUID) (model.CalculationSnapshot, error) {
	if m.findErr != nil {
		return model.CalculationSnapshot{}, m.findErr
	}
	return m.latest, nil
}

func (m *mockSnapshotRepository) ListByProposal(_ context.Context, _, _ uuid.UUID, _ int) ([]model.CalculationSnapshot, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSnapshotRepository) DeleteByProposal(_ context.Context, tenantID, proposalID uuid.UUID) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletedTenant = tenantID
	m.deletedProposal = proposalID
	return m.deleted, nil
}

type mockEventPublisher struct {
	published  []event.DomainEvent
	publishErr error
}

func (m *mockEventPublisher) Publish(_ context.Context, events ...event.DomainEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, events...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Fixtures ---

func runRequest() dto.RunCalculationRequest {
	return dto.RunCalculationRequest{
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
			ReceivablePct:      decimal.RequireFromString("0.10"),
			PrepaidPct:         decimal.RequireFromString("0.02"),
			PayablePct:         decimal.RequireFromString("0.08"),
			AccruedPct:         decimal.RequireFromString("0.03"),
			DeferredRevenuePct: decimal.RequireFromString("0.05"),
			Locked:             true,
		},
		Opening: model.OpeningBalances{
			Cash:        decimal.NewFromInt(2_000_000),
			GrossPPE:    decimal.NewFromInt(10_000_000),
			DebtBalance: decimal.NewFromInt(2_000_000),
			TotalEquity: decimal.NewFromInt(8_200_000),
		},
	}
}

func engineOutput() *model.CalculationEngineOutput {
	return &model.CalculationEngineOutput{
		ProposalID: testutil.TestProposalID1,
		Aggregates: model.Aggregates{
			NPV:            decimal.NewFromInt(1_234_567),
			FinalCash:      decimal.NewFromInt(4_493_072),
			PeakDebt:       decimal.NewFromInt(2_000_000),
			TotalZakat:     decimal.NewFromInt(51_617),
			YearsConverged: 1,
			TotalYears:     1,
		},
	}
}

// --- Tests ---

func TestRunCalculationUseCase_Execute(t *testing.T) {
	t.Run("computes, caches, persists and publishes on first run", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput(), ElapsedMs: 42}}
		store := newMockCache()
		repo := &mockSnapshotRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewRunCalculationUseCase(exec, store, repo, publisher, nil, testLogger())

		resp, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, resp.RunID)
		assert.Equal(t, testutil.TestProposalID1, resp.ProposalID)
		assert.False(t, resp.FromCache)
		assert.Equal(t, int64(42), resp.ElapsedMs)
		require.NotNil(t, resp.Output)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1_234_567), resp.Output.Aggregates.NPV)

		assert.True(t, exec.called)
		assert.Equal(t, 1, store.setCalls)
		_, cached := store.entries[resp.CacheKey]
		assert.True(t, cached, "result must be stored under the returned key")

		require.Len(t, repo.saved, 1)
		snap := repo.saved[0]
		assert.Equal(t, resp.RunID, snap.RunID)
		assert.Equal(t, resp.CacheKey, snap.CacheKey)
		assert.True(t, snap.IsLatest)
		assert.Equal(t, int64(42), snap.ComputedMs)

		require.Len(t, publisher.published, 1)
		completed, ok := publisher.published[0].(event.CalculationCompleted)
		require.True(t, ok)
		assert.Equal(t, "calculation.completed", completed.EventType())
		assert.False(t, completed.FromCache)
		assert.Equal(t, resp.RunID.String(), completed.RunID)
	})

	t.Run("serves identical request from cache without executing", func(t *testing.T) {
		exec := &mockExecutor{}
		store := newMockCache()
		repo := &mockSnapshotRepository{}
		publisher := &mockEventPublisher{}

		req := runRequest()
		key := "calc:v1:" + req.ProposalID.String() + ":deadbeef"
		store.entries[key] = *engineOutput()

		uc := usecase.NewRunCalculationUseCase(exec, store, repo, publisher, nil, testLogger())

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.True(t, resp.FromCache)
		assert.Equal(t, key, resp.CacheKey)
		require.NotNil(t, resp.Output)
		assert.False(t, exec.called, "a cache hit must not re-run the projection")
		assert.Empty(t, repo.saved, "a cache hit writes no new snapshot")

		require.Len(t, publisher.published, 1)
		completed, ok := publisher.published[0].(event.CalculationCompleted)
		require.True(t, ok)
		assert.True(t, completed.FromCache)
	})

	t.Run("distinct runs of the same scenario get distinct run IDs", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput(), ElapsedMs: 5}}
		store := newMockCache()

		uc := usecase.NewRunCalculationUseCase(exec, store, nil, nil, nil, testLogger())

		first, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)
		second, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)

		assert.True(t, second.FromCache)
		assert.NotEqual(t, first.RunID, second.RunID)
	})

	t.Run("uncacheable input still runs, bypassing the cache", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput(), ElapsedMs: 7}}
		store := newMockCache()
		store.keyErr = fmt.Errorf("hash input: unsupported field")
		repo := &mockSnapshotRepository{}

		uc := usecase.NewRunCalculationUseCase(exec, store, repo, nil, nil, testLogger())

		resp, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)

		assert.True(t, exec.called)
		assert.True(t, strings.HasPrefix(resp.CacheKey, "calc:uncacheable:"), "got key %s", resp.CacheKey)
		assert.Zero(t, store.getCalls, "unkeyable inputs must not touch the cache")
		assert.Zero(t, store.setCalls)

		require.Len(t, repo.saved, 1)
		assert.Equal(t, resp.CacheKey, repo.saved[0].CacheKey)
	})

	t.Run("rejects invalid input before executing", func(t *testing.T) {
		exec := &mockExecutor{}
		store := newMockCache()

		uc := usecase.NewRunCalculationUseCase(exec, store, nil, nil, nil, testLogger())

		req := runRequest()
		req.ProposalID = uuid.Nil

		_, err := uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
		assert.False(t, exec.called)
	})

	t.Run("defaults solver configuration when unset", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput()}}
		store := newMockCache()

		uc := usecase.NewRunCalculationUseCase(exec, store, nil, nil, nil, testLogger())

		req := runRequest()
		req.Solver = model.CircularSolverConfig{}

		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		def := model.DefaultSolverConfig()
		assert.Equal(t, def.MaxIterations, exec.lastInput.Solver.MaxIterations)
		testutil.AssertDecimalEqual(t, def.ConvergenceTolerance, exec.lastInput.Solver.ConvergenceTolerance)
		testutil.AssertDecimalEqual(t, def.RelaxationFactor, exec.lastInput.Solver.RelaxationFactor)
	})

	t.Run("executor failure publishes calculation.failed", func(t *testing.T) {
		exec := &mockExecutor{err: fmt.Errorf("%w: run exceeded 30s", model.ErrTimeout)}
		store := newMockCache()
		repo := &mockSnapshotRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewRunCalculationUseCase(exec, store, repo, publisher, nil, testLogger())

		_, err := uc.Execute(context.Background(), runRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrTimeout))

		assert.Zero(t, store.setCalls, "failed runs are never cached")
		assert.Empty(t, repo.saved)

		require.Len(t, publisher.published, 1)
		failed, ok := publisher.published[0].(event.CalculationFailed)
		require.True(t, ok)
		assert.Equal(t, "calculation.failed", failed.EventType())
		assert.Equal(t, "timeout", failed.Kind)
		assert.NotEmpty(t, failed.Reason)
	})

	t.Run("succeeds even when snapshot persistence fails", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput(), ElapsedMs: 9}}
		store := newMockCache()
		repo := &mockSnapshotRepository{saveErr: fmt.Errorf("database unavailable")}
		publisher := &mockEventPublisher{}

		uc := usecase.NewRunCalculationUseCase(exec, store, repo, publisher, nil, testLogger())

		resp, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)
		require.NotNil(t, resp.Output)
		assert.Equal(t, 1, store.setCalls, "the result is still cached")
		require.Len(t, publisher.published, 1)
	})

	t.Run("succeeds even when event publishing fails", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput()}}
		store := newMockCache()
		publisher := &mockEventPublisher{publishErr: fmt.Errorf("kafka unavailable")}

		uc := usecase.NewRunCalculationUseCase(exec, store, nil, publisher, nil, testLogger())

		resp, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)
		require.NotNil(t, resp.Output)
	})

	t.Run("works without snapshot repository and publisher (nil)", func(t *testing.T) {
		exec := &mockExecutor{result: port.ExecutionResult{Output: engineOutput()}}
		store := newMockCache()

		uc := usecase.NewRunCalculationUseCase(exec, store, nil, nil, nil, testLogger())

		resp, err := uc.Execute(context.Background(), runRequest())
		require.NoError(t, err)
		require.NotNil(t, resp.Output)
	})
}
