package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CircularSolverConfig tunes the fixed-point iteration that resolves the
// debt/interest/zakat/cash cycle for a single year.
type CircularSolverConfig struct {
	// MaxIterations caps the fixed-point loop. Hitting the cap is not an
	// error; the result is returned with Converged=false.
	MaxIterations int `json:"max_iterations"`
	// ConvergenceTolerance is the absolute difference between required and
	// estimated debt below which the year counts as converged.
	ConvergenceTolerance decimal.Decimal `json:"convergence_tolerance"`
	// RelaxationFactor in (0, 1] damps each debt update: the next estimate
	// keeps this fraction of the previous one and takes the remainder from
	// the newly required debt. Smaller values chase the new figure faster.
	RelaxationFactor decimal.Decimal `json:"relaxation_factor"`
}

// DefaultSolverConfig returns the production defaults: 50 iterations,
// tolerance of 0.01 currency units, relaxation 0.5.
func DefaultSolverConfig() CircularSolverConfig {
	return CircularSolverConfig{
		MaxIterations:        50,
		ConvergenceTolerance: decimal.RequireFromString("0.01"),
		RelaxationFactor:     decimal.RequireFromString("0.5"),
	}
}

// Validate rejects configs the solver cannot run with.
func (c CircularSolverConfig) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be at least 1, got %d", ErrInvalidInput, c.MaxIterations)
	}
	if !c.ConvergenceTolerance.IsPositive() {
		return fmt.Errorf("%w: convergence_tolerance must be positive, got %s", ErrInvalidInput, c.ConvergenceTolerance)
	}
	one := decimal.NewFromInt(1)
	if !c.RelaxationFactor.IsPositive() || c.RelaxationFactor.GreaterThan(one) {
		return fmt.Errorf("%w: relaxation_factor must be in (0, 1], got %s", ErrInvalidInput, c.RelaxationFactor)
	}
	return nil
}
