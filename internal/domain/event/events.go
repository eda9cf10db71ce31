package event

import (
	"github.com/shopspring/decimal"

	"github.com/project2052/calculation-service/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// CalculationCompleted is raised when a projection run finishes and its
// snapshot is available.
type CalculationCompleted struct {
	events.BaseEvent
	RunID          string          `json:"run_id"`
	CacheKey       string          `json:"cache_key"`
	FromCache      bool            `json:"from_cache"`
	TotalYears     int             `json:"total_years"`
	YearsConverged int             `json:"years_converged"`
	NPV            decimal.Decimal `json:"npv"`
	FinalCash      decimal.Decimal `json:"final_cash"`
	ElapsedMs      int64           `json:"elapsed_ms"`
}

func NewCalculationCompleted(
	proposalID, tenantID, runID, cacheKey string,
	fromCache bool,
	totalYears, yearsConverged int,
	npv, finalCash decimal.Decimal,
	elapsedMs int64,
) CalculationCompleted {
	return CalculationCompleted{
		BaseEvent:      events.NewBaseEvent("calculation.completed", proposalID, "Calculation", tenantID),
		RunID:          runID,
		CacheKey:       cacheKey,
		FromCache:      fromCache,
		TotalYears:     totalYears,
		YearsConverged: yearsConverged,
		NPV:            npv,
		FinalCash:      finalCash,
		ElapsedMs:      elapsedMs,
	}
}

// CalculationFailed is raised when a run fails. Kind distinguishes timeouts
// and invalid input from internal faults.
type CalculationFailed struct {
	events.BaseEvent
	RunID  string `json:"run_id"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

func NewCalculationFailed(proposalID, tenantID, runID, kind, reason string) CalculationFailed {
	return CalculationFailed{
		BaseEvent: events.NewBaseEvent("calculation.failed", proposalID, "Calculation", tenantID),
		RunID:     runID,
		Kind:      kind,
		Reason:    reason,
	}
}

// CacheInvalidated is raised after cached results for a proposal are purged.
type CacheInvalidated struct {
	events.BaseEvent
	EntriesRemoved int    `json:"entries_removed"`
	Trigger        string `json:"trigger"`
}

func NewCacheInvalidated(proposalID, tenantID string, entriesRemoved int, trigger string) CacheInvalidated {
	return CacheInvalidated{
		BaseEvent:      events.NewBaseEvent("calculation.cache_invalidated", proposalID, "Calculation", tenantID),
		EntriesRemoved: entriesRemoved,
		Trigger:        trigger,
	}
}
