// Package cache provides the bounded, content-addressed store for completed
// calculation runs: deterministic key generation over the economic content
// of an input, and an LRU-evicting in-memory store with usage counters.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/project2052/calculation-service/internal/domain/model"
)

// keyNamespace versions the key layout. Bump it when the canonical
// serialization changes so stale entries can never be read back.
const keyNamespace = "calc:v1"

// GenerateKey derives the cache key for an input by walking its typed
// fields in a fixed order and hashing the canonical form. Decimals are
// rendered through their canonical string form so numerically equal values
// hash identically regardless of construction; CalculatedAt and CreatedAt
// are excluded so re-running the same scenario later still hits; year order
// is preserved because it is semantically significant.
//
// The proposal ID is embedded in cleartext between namespace and digest,
// which is what makes per-proposal invalidation a substring scan.
func GenerateKey(in model.CalculationEngineInput) (key string, err error) {
	// A malformed value deep in the input must never take the request down;
	// the caller falls back to an uncacheable key instead.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache key generation: %v", r)
		}
	}()

	var b strings.Builder

	b.WriteString("proposal:")
	b.WriteString(in.ProposalID.String())
	b.WriteString("|tenant:")
	b.WriteString(in.TenantID.String())

	b.WriteString("|sys:")
	writeDecimals(&b,
		in.System.ZakatRate,
		in.System.DebtInterestRate,
		in.System.DepositInterestRate,
		in.System.MinCashBalance,
	)

	b.WriteString("|solver:")
	b.WriteString(strconv.Itoa(in.Solver.MaxIterations))
	b.WriteByte(',')
	writeDecimals(&b, in.Solver.ConvergenceTolerance, in.Solver.RelaxationFactor)

	b.WriteString("|discount:")
	writeDecimals(&b, in.DiscountRate)

	b.WriteString("|wc:")
	writeDecimals(&b,
		in.WorkingCapital.ReceivablePct,
		in.WorkingCapital.PrepaidPct,
		in.WorkingCapital.PayablePct,
		in.WorkingCapital.AccruedPct,
		in.WorkingCapital.DeferredRevenuePct,
	)
	b.WriteByte(',')
	b.WriteString(strconv.FormatBool(in.WorkingCapital.Locked))

	b.WriteString("|opening:")
	writeDecimals(&b,
		in.Opening.Cash,
		in.Opening.AccountsReceivable,
		in.Opening.PrepaidExpenses,
		in.Opening.GrossPPE,
		in.Opening.AccumulatedDepreciation,
		in.Opening.AccountsPayable,
		in.Opening.AccruedLiabilities,
		in.Opening.DeferredRevenue,
		in.Opening.DebtBalance,
		in.Opening.TotalEquity,
	)

	for _, y := range in.Years {
		b.WriteString("|year:")
		b.WriteString(strconv.Itoa(y.Year))
		b.WriteByte(',')
		writeDecimals(&b,
			y.Revenue,
			y.RentExpense,
			y.StaffCosts,
			y.OtherOpex,
			y.Depreciation,
			y.Capex,
		)
	}

	digest := sha256.Sum256([]byte(b.String()))

	return keyNamespace + ":" + in.ProposalID.String() + ":" + hex.EncodeToString(digest[:]), nil
}

func writeDecimals(b *strings.Builder, values ...decimal.Decimal) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.String())
	}
}
