// Package dto defines the request and response shapes of the application
// layer. Transport handlers translate wire messages into these types; use
// cases never see transport concerns.
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/project2052/calculation-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// RunCalculationRequest carries a full projection scenario for one proposal.
type RunCalculationRequest struct {
	ProposalID     uuid.UUID                  `json:"proposal_id"`
	TenantID       uuid.UUID                  `json:"tenant_id"`
	System         model.SystemConfiguration  `json:"system_configuration"`
	Solver         model.CircularSolverConfig `json:"solver_configuration"`
	DiscountRate   decimal.Decimal            `json:"discount_rate"`
	Years          []model.YearInput          `json:"years"`
	WorkingCapital model.WorkingCapitalRatios `json:"working_capital"`
	Opening        model.OpeningBalances      `json:"opening_balances"`
}

// ToEngineInput maps the request onto the engine's input model.
func (r RunCalculationRequest) ToEngineInput(now time.Time) model.CalculationEngineInput {
	return model.CalculationEngineInput{
		ProposalID:     r.ProposalID,
		TenantID:       r.TenantID,
		System:         r.System,
		Solver:         r.Solver,
		DiscountRate:   r.DiscountRate,
		Years:          r.Years,
		WorkingCapital: r.WorkingCapital,
		Opening:        r.Opening,
		CalculatedAt:   now,
		CreatedAt:      now,
	}
}

// InvalidateProposalRequest identifies a proposal whose cached results and
// stored snapshots are to be purged.
type InvalidateProposalRequest struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	ProposalID uuid.UUID `json:"proposal_id"`
	// Trigger records what caused the purge, e.g. "api" or "proposal.deleted".
	Trigger string `json:"trigger"`
}

// GetLatestSnapshotRequest identifies a proposal whose most recent
// calculation snapshot is to be retrieved.
type GetLatestSnapshotRequest struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	ProposalID uuid.UUID `json:"proposal_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// RunCalculationResponse is the external representation of one run.
type RunCalculationResponse struct {
	RunID      uuid.UUID                      `json:"run_id"`
	ProposalID uuid.UUID                      `json:"proposal_id"`
	FromCache  bool                           `json:"from_cache"`
	CacheKey   string                         `json:"cache_key"`
	ElapsedMs  int64                          `json:"elapsed_ms"`
	Output     *model.CalculationEngineOutput `json:"output"`
}

// CacheStatsResponse reports result cache usage counters.
type CacheStatsResponse struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	HitRate   float64 `json:"hit_rate"`
}

// FromCacheStats maps the domain stats snapshot to the response DTO.
func FromCacheStats(s model.CacheStats) CacheStatsResponse {
	return CacheStatsResponse{
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
		Size:      s.Size,
		Capacity:  s.Capacity,
		HitRate:   s.HitRate,
	}
}

// InvalidateProposalResponse reports what an invalidation removed.
type InvalidateProposalResponse struct {
	ProposalID          uuid.UUID `json:"proposal_id"`
	CacheEntriesRemoved int       `json:"cache_entries_removed"`
	SnapshotsDeleted    int64     `json:"snapshots_deleted"`
}

// SnapshotResponse is the external representation of a stored calculation run.
type SnapshotResponse struct {
	ID         uuid.UUID                      `json:"id"`
	ProposalID uuid.UUID                      `json:"proposal_id"`
	TenantID   uuid.UUID                      `json:"tenant_id"`
	RunID      uuid.UUID                      `json:"run_id"`
	CacheKey   string                         `json:"cache_key"`
	IsLatest   bool                           `json:"is_latest"`
	ComputedMs int64                          `json:"computed_ms"`
	CreatedAt  time.Time                      `json:"created_at"`
	Output     *model.CalculationEngineOutput `json:"output"`
}

// FromSnapshot maps a stored snapshot to the response DTO.
func FromSnapshot(s model.CalculationSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:         s.ID,
		ProposalID: s.ProposalID,
		TenantID:   s.TenantID,
		RunID:      s.RunID,
		CacheKey:   s.CacheKey,
		IsLatest:   s.IsLatest,
		ComputedMs: s.ComputedMs,
		CreatedAt:  s.CreatedAt,
		Output:     &s.Output,
	}
}
