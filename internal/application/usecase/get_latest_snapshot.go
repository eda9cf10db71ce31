package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
)

// GetLatestSnapshotUseCase retrieves the most recent stored calculation for
// a proposal without re-running the projection.
type GetLatestSnapshotUseCase struct {
	snapshots port.SnapshotRepository
}

// NewGetLatestSnapshotUseCase creates a new GetLatestSnapshotUseCase.
func NewGetLatestSnapshotUseCase(snapshots port.SnapshotRepository) *GetLatestSnapshotUseCase {
	return &GetLatestSnapshotUseCase{snapshots: snapshots}
}

// Execute loads the latest snapshot for the proposal.
func (uc *GetLatestSnapshotUseCase) Execute(ctx context.Context, req dto.GetLatestSnapshotRequest) (dto.SnapshotResponse, error) {
	if req.ProposalID == uuid.Nil {
		return dto.SnapshotResponse{}, fmt.Errorf("%w: proposal_id is required", model.ErrInvalidInput)
	}

	snapshot, err := uc.snapshots.FindLatestByProposal(ctx, req.TenantID, req.ProposalID)
	if err != nil {
		return dto.SnapshotResponse{}, fmt.Errorf("find latest snapshot: %w", err)
	}

	return dto.FromSnapshot(snapshot), nil
}
