package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/project2052/calculation-service/internal/domain/event"
	"github.com/project2052/calculation-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// SnapshotRepository persists completed calculation runs.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot model.CalculationSnapshot) error
	FindLatestByProposal(ctx context.Context, tenantID, proposalID uuid.UUID) (model.CalculationSnapshot, error)
	ListByProposal(ctx context.Context, tenantID, proposalID uuid.UUID, limit int) ([]model.CalculationSnapshot, error)
	DeleteByProposal(ctx context.Context, tenantID, proposalID uuid.UUID) (int64, error)
}

// ---------------------------------------------------------------------------
// Cache port
// ---------------------------------------------------------------------------

// CalculationCache is the bounded result store shared by all concurrent
// runs. Implementations must be safe for concurrent use; every method is
// atomic with respect to the others.
type CalculationCache interface {
	// Key derives the deterministic cache key for an input. Inputs that
	// cannot be keyed report an error; the caller decides whether to run
	// uncached.
	Key(input model.CalculationEngineInput) (string, error)
	Get(key string) (*model.CalculationEngineOutput, bool)
	Set(key string, input model.CalculationEngineInput, output model.CalculationEngineOutput)
	Invalidate(key string)
	InvalidateByProposalID(proposalID uuid.UUID) int
	Stats() model.CacheStats
}

// ---------------------------------------------------------------------------
// Execution port
// ---------------------------------------------------------------------------

// ExecutionResult is a successful isolated run: the output plus how long the
// solve took.
type ExecutionResult struct {
	Output    *model.CalculationEngineOutput
	ElapsedMs int64
}

// Executor runs a projection in isolation from the caller. Submit blocks
// until the run finishes, fails, or the boundary's hard timeout fires; a
// timed-out or failed run never yields partial output.
type Executor interface {
	Submit(ctx context.Context, input model.CalculationEngineInput) (ExecutionResult, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
