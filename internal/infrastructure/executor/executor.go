// Package executor runs projection calculations on a bounded worker pool
// with a hard per-run deadline and panic isolation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
	"github.com/project2052/calculation-service/internal/domain/service"
)

// Compile-time interface checks.
var (
	_ port.Executor = (*Pool)(nil)
	_ Engine        = (*service.ProjectionEngine)(nil)
)

// Engine runs one projection. It is satisfied by service.ProjectionEngine
// and enables testing the pool with substitute engines.
type Engine interface {
	Run(ctx context.Context, in model.CalculationEngineInput) (*model.CalculationEngineOutput, error)
}

// Config holds executor tuning parameters.
type Config struct {
	// Workers caps the number of calculations running at once.
	Workers int
	// Timeout is the hard deadline for a single calculation run.
	Timeout time.Duration
}

// DefaultConfig returns executor defaults suitable for development.
func DefaultConfig() Config {
	return Config{
		Workers: 4,
		Timeout: 30 * time.Second,
	}
}

// Pool executes projection runs with bounded concurrency. A run that
// overshoots its deadline or panics is contained; the caller always gets
// a structured error rather than a crashed process.
type Pool struct {
	engine  Engine
	logger  *slog.Logger
	timeout time.Duration
	slots   chan struct{}
}

// New creates a Pool around the given engine. Zero config fields fall
// back to DefaultConfig values.
func New(engine Engine, logger *slog.Logger, cfg Config) *Pool {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Pool{
		engine:  engine,
		logger:  logger,
		timeout: cfg.Timeout,
		slots:   make(chan struct{}, cfg.Workers),
	}
}

type runResult struct {
	output *model.CalculationEngineOutput
	err    error
}

// Submit runs one calculation, blocking until a worker slot is free.
// The slot is held until the run actually stops, so a hung run cannot
// be stacked under a fresh one.
func (p *Pool) Submit(ctx context.Context, in model.CalculationEngineInput) (port.ExecutionResult, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return port.ExecutionResult{}, fmt.Errorf("acquire execution slot: %w", ctx.Err())
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan runResult, 1)

	go func() {
		defer func() { <-p.slots }()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("calculation panicked",
					"proposal_id", in.ProposalID,
					"panic", r,
				)
				done <- runResult{err: fmt.Errorf("%w: calculation panicked: %v", model.ErrInternal, r)}
			}
		}()
		out, err := p.engine.Run(runCtx, in)
		done <- runResult{output: out, err: err}
	}()

	select {
	case res := <-done:
		elapsed := time.Since(start).Milliseconds()
		if res.err != nil {
			return port.ExecutionResult{ElapsedMs: elapsed}, p.mapRunError(res.err)
		}
		return port.ExecutionResult{Output: res.output, ElapsedMs: elapsed}, nil
	case <-runCtx.Done():
		elapsed := time.Since(start).Milliseconds()
		p.logger.Warn("calculation abandoned",
			"proposal_id", in.ProposalID,
			"elapsed_ms", elapsed,
			"cause", runCtx.Err(),
		)
		return port.ExecutionResult{ElapsedMs: elapsed}, p.mapRunError(runCtx.Err())
	}
}

// mapRunError normalizes deadline expiry to ErrTimeout so callers can
// distinguish slow runs from bad input.
func (p *Pool) mapRunError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: run exceeded %s", model.ErrTimeout, p.timeout)
	}
	return err
}
