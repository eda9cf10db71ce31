package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/domain/event"
	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
)

// InvalidateProposalUseCase purges a proposal's cached results and stored
// snapshots, e.g. after the proposal is edited or deleted upstream.
type InvalidateProposalUseCase struct {
	cache     port.CalculationCache
	snapshots port.SnapshotRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewInvalidateProposalUseCase wires dependencies. snapshots and publisher
// may be nil; the purge then covers the cache only or skips events.
func NewInvalidateProposalUseCase(
	cache port.CalculationCache,
	snapshots port.SnapshotRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *InvalidateProposalUseCase {
	return &InvalidateProposalUseCase{
		cache:     cache,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute removes everything cached or stored for the proposal.
func (uc *InvalidateProposalUseCase) Execute(ctx context.Context, req dto.InvalidateProposalRequest) (dto.InvalidateProposalResponse, error) {
	if req.ProposalID == uuid.Nil {
		return dto.InvalidateProposalResponse{}, fmt.Errorf("%w: proposal_id is required", model.ErrInvalidInput)
	}

	removed := uc.cache.InvalidateByProposalID(req.ProposalID)

	var deleted int64
	if uc.snapshots != nil {
		var err error
		deleted, err = uc.snapshots.DeleteByProposal(ctx, req.TenantID, req.ProposalID)
		if err != nil {
			return dto.InvalidateProposalResponse{}, fmt.Errorf("delete snapshots: %w", err)
		}
	}

	uc.logger.Info("proposal invalidated",
		"proposal_id", req.ProposalID,
		"trigger", req.Trigger,
		"cache_entries_removed", removed,
		"snapshots_deleted", deleted,
	)

	// Event delivery is best-effort; the purge itself already happened.
	if uc.publisher != nil {
		evt := event.NewCacheInvalidated(req.ProposalID.String(), req.TenantID.String(), removed, req.Trigger)
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.logger.Error("failed to publish calculation.cache_invalidated",
				"error", err,
				"proposal_id", req.ProposalID,
			)
		}
	}

	return dto.InvalidateProposalResponse{
		ProposalID:          req.ProposalID,
		CacheEntriesRemoved: removed,
		SnapshotsDeleted:    deleted,
	}, nil
}
