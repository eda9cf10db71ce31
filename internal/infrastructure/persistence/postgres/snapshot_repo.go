// Package postgres persists calculation snapshots. Each successful run is
// stored as one row; the newest row per proposal carries is_latest so the
// common "current numbers for this proposal" read never sorts history.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
	pgdb "github.com/project2052/calculation-service/pkg/postgres"
)

// Compile-time interface check.
var _ port.SnapshotRepository = (*SnapshotRepo)(nil)

const defaultListLimit = 20

// SnapshotRepo implements port.SnapshotRepository.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepo creates a new PostgreSQL-backed snapshot repository.
func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Save stores a snapshot and makes it the proposal's latest. The previous
// latest row is demoted in the same transaction, so readers never see two
// latest rows for one proposal.
func (r *SnapshotRepo) Save(ctx context.Context, snapshot model.CalculationSnapshot) error {
	payload, err := json.Marshal(snapshot.Output)
	if err != nil {
		return fmt.Errorf("marshal snapshot output: %w", err)
	}

	return pgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		demote := `
			UPDATE calculation_snapshots
			SET is_latest = false
			WHERE tenant_id = $1 AND proposal_id = $2 AND is_latest
		`
		if _, err := tx.Exec(ctx, demote, snapshot.TenantID, snapshot.ProposalID); err != nil {
			return fmt.Errorf("demote previous latest snapshot: %w", err)
		}

		insert := `
			INSERT INTO calculation_snapshots (
				id, tenant_id, proposal_id, run_id, cache_key,
				output, is_latest, computed_ms, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`
		if _, err := tx.Exec(ctx, insert,
			snapshot.ID, snapshot.TenantID, snapshot.ProposalID, snapshot.RunID, snapshot.CacheKey,
			payload, snapshot.IsLatest, snapshot.ComputedMs, snapshot.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
}

// FindLatestByProposal retrieves the proposal's current snapshot.
func (r *SnapshotRepo) FindLatestByProposal(ctx context.Context, tenantID, proposalID uuid.UUID) (model.CalculationSnapshot, error) {
	query := `
		SELECT id, tenant_id, proposal_id, run_id, cache_key,
		       output, is_latest, computed_ms, created_at
		FROM calculation_snapshots
		WHERE tenant_id = $1 AND proposal_id = $2 AND is_latest
		ORDER BY created_at DESC
		LIMIT 1
	`
	snapshot, err := scanSnapshot(r.pool.QueryRow(ctx, query, tenantID, proposalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CalculationSnapshot{}, fmt.Errorf("%w: no calculation for proposal %s", model.ErrNotFound, proposalID)
		}
		return model.CalculationSnapshot{}, err
	}
	return snapshot, nil
}

// ListByProposal retrieves a proposal's run history, newest first.
func (r *SnapshotRepo) ListByProposal(ctx context.Context, tenantID, proposalID uuid.UUID, limit int) ([]model.CalculationSnapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, tenant_id, proposal_id, run_id, cache_key,
		       output, is_latest, computed_ms, created_at
		FROM calculation_snapshots
		WHERE tenant_id = $1 AND proposal_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, tenantID, proposalID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var result []model.CalculationSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, snapshot)
	}
	return result, rows.Err()
}

// DeleteByProposal removes every stored run for the proposal and reports how
// many rows went away.
func (r *SnapshotRepo) DeleteByProposal(ctx context.Context, tenantID, proposalID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM calculation_snapshots
		WHERE tenant_id = $1 AND proposal_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, tenantID, proposalID)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// scan helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scannable) (model.CalculationSnapshot, error) {
	var (
		id, tenantID, proposalID, runID uuid.UUID
		cacheKey                        string
		payload                         []byte
		isLatest                        bool
		computedMs                      int64
		createdAt                       time.Time
	)

	err := s.Scan(
		&id, &tenantID, &proposalID, &runID, &cacheKey,
		&payload, &isLatest, &computedMs, &createdAt,
	)
	if err != nil {
		return model.CalculationSnapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	var output model.CalculationEngineOutput
	if err := json.Unmarshal(payload, &output); err != nil {
		return model.CalculationSnapshot{}, fmt.Errorf("unmarshal snapshot output: %w", err)
	}

	return model.CalculationSnapshot{
		ID:         id,
		ProposalID: proposalID,
		TenantID:   tenantID,
		RunID:      runID,
		CacheKey:   cacheKey,
		Output:     output,
		IsLatest:   isLatest,
		ComputedMs: computedMs,
		CreatedAt:  createdAt,
	}, nil
}
