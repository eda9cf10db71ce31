package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/domain/event"
	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
	"github.com/project2052/calculation-service/pkg/observability"
)

// uncacheableKeyPrefix marks runs whose input could not be content hashed.
// Such runs execute normally but bypass the cache.
const uncacheableKeyPrefix = "calc:uncacheable:"

// RunCalculationUseCase orchestrates one projection run: cache lookup,
// isolated execution, snapshot persistence, and event publication.
type RunCalculationUseCase struct {
	executor  port.Executor
	cache     port.CalculationCache
	snapshots port.SnapshotRepository
	publisher port.EventPublisher
	metrics   *observability.CalculationMetrics
	logger    *slog.Logger
}

// NewRunCalculationUseCase wires dependencies. snapshots, publisher, and
// metrics may be nil; the run then skips persistence, events, or
// instrumentation respectively.
func NewRunCalculationUseCase(
	executor port.Executor,
	cache port.CalculationCache,
	snapshots port.SnapshotRepository,
	publisher port.EventPublisher,
	metrics *observability.CalculationMetrics,
	logger *slog.Logger,
) *RunCalculationUseCase {
	return &RunCalculationUseCase{
		executor:  executor,
		cache:     cache,
		snapshots: snapshots,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute runs the projection for one proposal scenario.
func (uc *RunCalculationUseCase) Execute(ctx context.Context, req dto.RunCalculationRequest) (dto.RunCalculationResponse, error) {
	runID := uuid.New()
	now := time.Now().UTC()

	// Callers that send no solver configuration get the defaults.
	if req.Solver.MaxIterations == 0 {
		req.Solver = model.DefaultSolverConfig()
	}

	input := req.ToEngineInput(now)
	if err := input.Validate(); err != nil {
		return dto.RunCalculationResponse{}, fmt.Errorf("validate input: %w", err)
	}

	// 1. Derive the content hash key. Inputs that cannot be keyed still
	// run; they just bypass the cache.
	cacheKey, err := uc.cache.Key(input)
	cacheable := err == nil
	if !cacheable {
		cacheKey = uncacheableKeyPrefix + runID.String()
		uc.logger.Warn("input not cacheable, running uncached",
			"proposal_id", req.ProposalID,
			"run_id", runID,
			"error", err,
		)
	}

	// 2. Serve from cache when an identical scenario was already solved.
	if cacheable {
		if out, ok := uc.cache.Get(cacheKey); ok {
			uc.logger.Info("calculation served from cache",
				"proposal_id", req.ProposalID,
				"run_id", runID,
			)
			uc.recordRun(ctx, true, 0, out)
			uc.publishCompleted(ctx, req, runID, cacheKey, out, true, 0)
			return dto.RunCalculationResponse{
				RunID:      runID,
				ProposalID: req.ProposalID,
				FromCache:  true,
				CacheKey:   cacheKey,
				Output:     out,
			}, nil
		}
	}

	// 3. Run the projection on the execution boundary.
	res, err := uc.executor.Submit(ctx, input)
	if err != nil {
		uc.recordFailure(ctx)
		uc.publishFailed(ctx, req, runID, err)
		return dto.RunCalculationResponse{}, fmt.Errorf("execute projection: %w", err)
	}

	// 4. Cache the result for identical future requests.
	if cacheable {
		uc.cache.Set(cacheKey, input, *res.Output)
	}

	// 5. Persist the run snapshot. The result is already computed and
	// cached; history may lag, so a storage failure does not fail the run.
	if uc.snapshots != nil {
		snapshot := model.CalculationSnapshot{
			ID:         uuid.New(),
			ProposalID: req.ProposalID,
			TenantID:   req.TenantID,
			RunID:      runID,
			CacheKey:   cacheKey,
			Output:     *res.Output,
			IsLatest:   true,
			ComputedMs: res.ElapsedMs,
			CreatedAt:  now,
		}
		if err := uc.snapshots.Save(ctx, snapshot); err != nil {
			uc.logger.Error("failed to save calculation snapshot",
				"error", err,
				"proposal_id", req.ProposalID,
				"run_id", runID,
			)
		}
	}

	uc.recordRun(ctx, false, res.ElapsedMs, res.Output)
	uc.publishCompleted(ctx, req, runID, cacheKey, res.Output, false, res.ElapsedMs)

	uc.logger.Info("calculation completed",
		"proposal_id", req.ProposalID,
		"run_id", runID,
		"years", res.Output.Aggregates.TotalYears,
		"years_converged", res.Output.Aggregates.YearsConverged,
		"elapsed_ms", res.ElapsedMs,
	)

	return dto.RunCalculationResponse{
		RunID:      runID,
		ProposalID: req.ProposalID,
		FromCache:  false,
		CacheKey:   cacheKey,
		ElapsedMs:  res.ElapsedMs,
		Output:     res.Output,
	}, nil
}

func (uc *RunCalculationUseCase) recordRun(ctx context.Context, fromCache bool, elapsedMs int64, out *model.CalculationEngineOutput) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RunsTotal.Add(ctx, 1)
	if fromCache {
		uc.metrics.CacheHitsTotal.Add(ctx, 1)
		return
	}
	uc.metrics.CacheMissTotal.Add(ctx, 1)
	uc.metrics.RunDuration.Record(ctx, float64(elapsedMs)/1000)
	if gap := out.Aggregates.TotalYears - out.Aggregates.YearsConverged; gap > 0 {
		uc.metrics.YearsNotSettled.Add(ctx, int64(gap))
	}
}

func (uc *RunCalculationUseCase) recordFailure(ctx context.Context) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RunsTotal.Add(ctx, 1)
	uc.metrics.FailuresTotal.Add(ctx, 1)
}

// publishCompleted emits calculation.completed. Event delivery is
// best-effort; a broker outage must not fail a finished run.
func (uc *RunCalculationUseCase) publishCompleted(
	ctx context.Context,
	req dto.RunCalculationRequest,
	runID uuid.UUID,
	cacheKey string,
	out *model.CalculationEngineOutput,
	fromCache bool,
	elapsedMs int64,
) {
	if uc.publisher == nil {
		return
	}
	evt := event.NewCalculationCompleted(
		req.ProposalID.String(),
		req.TenantID.String(),
		runID.String(),
		cacheKey,
		fromCache,
		out.Aggregates.TotalYears,
		out.Aggregates.YearsConverged,
		out.Aggregates.NPV,
		out.Aggregates.FinalCash,
		elapsedMs,
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Error("failed to publish calculation.completed",
			"error", err,
			"proposal_id", req.ProposalID,
			"run_id", runID,
		)
	}
}

func (uc *RunCalculationUseCase) publishFailed(ctx context.Context, req dto.RunCalculationRequest, runID uuid.UUID, cause error) {
	if uc.publisher == nil {
		return
	}
	evt := event.NewCalculationFailed(
		req.ProposalID.String(),
		req.TenantID.String(),
		runID.String(),
		failureKind(cause),
		cause.Error(),
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Error("failed to publish calculation.failed",
			"error", err,
			"proposal_id", req.ProposalID,
			"run_id", runID,
		)
	}
}

// failureKind classifies a run failure for the event payload.
func failureKind(err error) string {
	switch {
	case errors.Is(err, model.ErrTimeout):
		return "timeout"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid"
	default:
		return "internal"
	}
}
