package model_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project2052/calculation-service/internal/domain/model"
)

func TestDefaultSolverConfig(t *testing.T) {
	cfg := model.DefaultSolverConfig()

	assert.Equal(t, 50, cfg.MaxIterations)
	assert.True(t, cfg.ConvergenceTolerance.Equal(decimal.RequireFromString("0.01")),
		"expected 0.01, got %s", cfg.ConvergenceTolerance)
	assert.True(t, cfg.RelaxationFactor.Equal(decimal.RequireFromString("0.5")),
		"expected 0.5, got %s", cfg.RelaxationFactor)
	require.NoError(t, cfg.Validate())
}

func TestCircularSolverConfig_Validate_MaxIterationsTooLow(t *testing.T) {
	cfg := model.DefaultSolverConfig()
	cfg.MaxIterations = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Contains(t, err.Error(), "max_iterations")
}

func TestCircularSolverConfig_Validate_NonPositiveTolerance(t *testing.T) {
	cfg := model.DefaultSolverConfig()
	cfg.ConvergenceTolerance = decimal.Zero

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Contains(t, err.Error(), "convergence_tolerance")
}

func TestCircularSolverConfig_Validate_RelaxationOutOfRange(t *testing.T) {
	cfg := model.DefaultSolverConfig()

	cfg.RelaxationFactor = decimal.Zero
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relaxation_factor")

	cfg.RelaxationFactor = decimal.RequireFromString("1.1")
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relaxation_factor")
}

func TestCircularSolverConfig_Validate_RelaxationOfOneAllowed(t *testing.T) {
	cfg := model.DefaultSolverConfig()
	cfg.RelaxationFactor = decimal.NewFromInt(1)
	require.NoError(t, cfg.Validate())
}
