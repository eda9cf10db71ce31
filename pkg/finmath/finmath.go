// Package finmath provides decimal-exact financial aggregation helpers for
// multi-year projections: series sums, net present value, and internal rate
// of return.
package finmath

import (
	"math"

	"github.com/shopspring/decimal"
)

// Root-search bounds for IRR. Rates at or below -100% have no meaning and
// anything above 1000% is treated as undefined rather than reported.
const (
	irrLowerBound = -0.9999
	irrUpperBound = 10.0
)

// Sum returns the exact sum of the given values.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// NPV computes the net present value of a series of annual cash flows at the
// given discount rate. The first flow is discounted one full period:
//
//	NPV = Σ flows[i] / (1+rate)^(i+1)
//
// All arithmetic stays in decimal so repeated runs produce string-identical
// results. Rates of -100% or below have no meaningful present value and
// yield zero.
func NPV(rate decimal.Decimal, flows []decimal.Decimal) decimal.Decimal {
	onePlus := decimal.NewFromInt(1).Add(rate)
	if !onePlus.IsPositive() {
		return decimal.Zero
	}

	npv := decimal.Zero
	factor := decimal.NewFromInt(1)
	for _, flow := range flows {
		factor = factor.Mul(onePlus)
		npv = npv.Add(flow.Div(factor))
	}
	return npv
}

// IRR computes the internal rate of return of a series of annual cash flows,
// the rate at which their NPV reaches zero. The root search runs in float64
// (decimal has no general power or root operations) and the result is
// converted back to decimal rounded to six places. The boolean is false when
// no rate in the supported range zeroes the NPV, e.g. when all flows share
// one sign.
func IRR(flows []decimal.Decimal) (decimal.Decimal, bool) {
	f := make([]float64, len(flows))
	hasPositive, hasNegative := false, false
	for i, flow := range flows {
		f[i] = flow.InexactFloat64()
		if f[i] > 0 {
			hasPositive = true
		}
		if f[i] < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return decimal.Zero, false
	}

	npvAt := func(rate float64) float64 {
		pv := 0.0
		factor := 1.0
		for _, c := range f {
			factor *= 1 + rate
			pv += c / factor
		}
		return pv
	}

	// Newton-Raphson with a numeric derivative.
	rate := 0.1
	for i := 0; i < 60; i++ {
		v := npvAt(rate)
		if math.Abs(v) < 1e-9 {
			return decimal.NewFromFloat(rate).Round(6), true
		}
		const h = 1e-7
		slope := (npvAt(rate+h) - v) / h
		if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
			break
		}
		next := rate - v/slope
		if math.IsNaN(next) || next <= irrLowerBound || next > irrUpperBound {
			break
		}
		rate = next
	}

	// Bisection fallback: scan for a sign change, then halve.
	lo, hi := irrLowerBound, irrUpperBound
	vlo := npvAt(lo)
	bracketed := false
	for step := lo + 0.01; step <= hi; step += 0.01 {
		v := npvAt(step)
		if (vlo < 0) != (v < 0) {
			hi = step
			bracketed = true
			break
		}
		lo, vlo = step, v
	}
	if !bracketed {
		return decimal.Zero, false
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		v := npvAt(mid)
		if math.Abs(v) < 1e-9 {
			lo, hi = mid, mid
			break
		}
		if (v < 0) == (vlo < 0) {
			lo, vlo = mid, v
		} else {
			hi = mid
		}
	}
	return decimal.NewFromFloat((lo + hi) / 2).Round(6), true
}
