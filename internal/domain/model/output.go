package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregates summarizes a whole projection. NPV and IRR are computed over
// the pre-financing cash flows (operating plus investing) of each year.
type Aggregates struct {
	NPV decimal.Decimal `json:"npv"`
	// IRR is nil when the flows admit no rate: all positive, all negative,
	// or no sign change the root finder can bracket.
	IRR              *decimal.Decimal `json:"irr"`
	CumulativeRent   decimal.Decimal  `json:"cumulative_rent"`
	CumulativeEBITDA decimal.Decimal  `json:"cumulative_ebitda"`
	FinalCash        decimal.Decimal  `json:"final_cash"`
	PeakDebt         decimal.Decimal  `json:"peak_debt"`
	TotalZakat       decimal.Decimal  `json:"total_zakat"`
	YearsConverged   int              `json:"years_converged"`
	TotalYears       int              `json:"total_years"`
}

// CalculationEngineOutput is the deterministic product of a projection run:
// equal inputs yield byte-equal outputs. Run identifiers and wall-clock
// timings belong to the surrounding request, never in here.
type CalculationEngineOutput struct {
	ProposalID uuid.UUID         `json:"proposal_id"`
	Periods    []FinancialPeriod `json:"periods"`
	Aggregates Aggregates        `json:"aggregates"`
}
