package model

import (
	"time"

	"github.com/google/uuid"
)

// CalculationSnapshot is a persisted record of one completed run: the full
// output plus the run metadata that is deliberately kept out of the output
// itself. The latest snapshot per proposal answers reads without recomputing.
type CalculationSnapshot struct {
	ID         uuid.UUID               `json:"id"`
	ProposalID uuid.UUID               `json:"proposal_id"`
	TenantID   uuid.UUID               `json:"tenant_id"`
	RunID      uuid.UUID               `json:"run_id"`
	CacheKey   string                  `json:"cache_key"`
	Output     CalculationEngineOutput `json:"output"`
	IsLatest   bool                    `json:"is_latest"`
	ComputedMs int64                   `json:"computed_ms"`
	CreatedAt  time.Time               `json:"created_at"`
}
