// Package repository provides PostgreSQL storage for discovery runs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscout_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const runNotFoundMessage = "discovery run not found"

const runColumns = `id, user_id, query, city, category, requested_limit, status, job_id,
		discovered_count, persisted_count, error_message, started_at, completed_at,
		created_at, updated_at`

// Repo implements RunsRepository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new discovery runs repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ RunsRepository = (*Repo)(nil)

// Create inserts a new run in queued status.
func (r *Repo) Create(ctx context.Context, params CreateRunParams) (DiscoveryRun, error) {
	query := `
		INSERT INTO discovery_runs (id, user_id, query, city, category, requested_limit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + runColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New(), params.UserID, params.Query, params.City, params.Category,
		params.RequestedLimit, StatusQueued,
	)

	run, err := scanRun(row)
	if err != nil {
		return DiscoveryRun{}, fmt.Errorf("create discovery run: %w", err)
	}
	return run, nil
}

// GetByID retrieves a run scoped to its owning user.
func (r *Repo) GetByID(ctx context.Context, runID, userID uuid.UUID) (DiscoveryRun, error) {
	query := `SELECT ` + runColumns + ` FROM discovery_runs WHERE id = $1 AND user_id = $2`

	run, err := scanRun(r.pool.QueryRow(ctx, query, runID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DiscoveryRun{}, apperr.NotFound(runNotFoundMessage)
		}
		return DiscoveryRun{}, fmt.Errorf("get discovery run: %w", err)
	}
	return run, nil
}

// SetJobID records the queue job backing a run.
func (r *Repo) SetJobID(ctx context.Context, runID uuid.UUID, jobID string) error {
	query := `UPDATE discovery_runs SET job_id = $1, updated_at = now() WHERE id = $2`

	if _, err := r.pool.Exec(ctx, query, jobID, runID); err != nil {
		return fmt.Errorf("set discovery run job id: %w", err)
	}
	return nil
}

// MarkRunning advances a queued run to running. A run that already moved on
// is left untouched, so repeated polling cannot regress status.
func (r *Repo) MarkRunning(ctx context.Context, runID uuid.UUID) error {
	query := `UPDATE discovery_runs
		SET status = $1, started_at = COALESCE(started_at, now()), updated_at = now()
		WHERE id = $2 AND status = $3`

	if _, err := r.pool.Exec(ctx, query, StatusRunning, runID, StatusQueued); err != nil {
		return fmt.Errorf("mark discovery run running: %w", err)
	}
	return nil
}

// MarkCompleted writes the terminal completed state with its counts. The
// status guard makes the write happen at most once; re-reconciliation of an
// already-terminal run is a no-op.
func (r *Repo) MarkCompleted(ctx context.Context, runID uuid.UUID, discoveredCount, persistedCount int) error {
	query := `UPDATE discovery_runs
		SET status = $1, discovered_count = $2, persisted_count = $3,
			completed_at = now(), updated_at = now()
		WHERE id = $4 AND status IN ($5, $6)`

	if _, err := r.pool.Exec(ctx, query, StatusCompleted, discoveredCount, persistedCount,
		runID, StatusQueued, StatusRunning); err != nil {
		return fmt.Errorf("mark discovery run completed: %w", err)
	}
	return nil
}

// MarkFailed writes the terminal failed state with the captured message.
func (r *Repo) MarkFailed(ctx context.Context, runID uuid.UUID, message string) error {
	query := `UPDATE discovery_runs
		SET status = $1, error_message = $2, completed_at = now(), updated_at = now()
		WHERE id = $3 AND status IN ($4, $5)`

	if _, err := r.pool.Exec(ctx, query, StatusFailed, message,
		runID, StatusQueued, StatusRunning); err != nil {
		return fmt.Errorf("mark discovery run failed: %w", err)
	}
	return nil
}

// CountRunsSince counts the user's runs created at or after the given moment.
// Quota admission uses local midnight as the boundary.
func (r *Repo) CountRunsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM discovery_runs WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count discovery runs: %w", err)
	}
	return count, nil
}

// UpsertRunLeadMappings associates leads with a run. The pair is the primary
// key and conflicts are ignored, so re-reconciliation never duplicates rows.
func (r *Repo) UpsertRunLeadMappings(ctx context.Context, runID uuid.UUID, leadIDs []uuid.UUID) error {
	if len(leadIDs) == 0 {
		return nil
	}

	query := `INSERT INTO discovery_run_leads (discovery_run_id, lead_id)
		VALUES ($1, $2)
		ON CONFLICT (discovery_run_id, lead_id) DO NOTHING`

	batch := &pgx.Batch{}
	for _, leadID := range leadIDs {
		batch.Queue(query, runID, leadID)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range leadIDs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert run lead mapping: %w", err)
		}
	}
	return nil
}

// GetRunLeadIDs returns the lead IDs mapped to a run.
func (r *Repo) GetRunLeadIDs(ctx context.Context, runID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT lead_id FROM discovery_run_leads WHERE discovery_run_id = $1`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get run lead ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run lead id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run lead ids: %w", err)
	}
	return ids, nil
}

func scanRun(row pgx.Row) (DiscoveryRun, error) {
	var run DiscoveryRun
	err := row.Scan(
		&run.ID, &run.UserID, &run.Query, &run.City, &run.Category, &run.RequestedLimit,
		&run.Status, &run.JobID, &run.DiscoveredCount, &run.PersistedCount,
		&run.ErrorMessage, &run.StartedAt, &run.CompletedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return DiscoveryRun{}, err
	}
	return run, nil
}
