package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run statuses. Transitions only move forward:
// queued → running → completed | failed.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DiscoveryRun is one user-initiated search, tracked as a durable record
// independent of the underlying queue job. Counts are set exactly once, at
// completion.
type DiscoveryRun struct {
	ID              uuid.UUID  `db:"id"`
	UserID          uuid.UUID  `db:"user_id"`
	Query           string     `db:"query"`
	City            string     `db:"city"`
	Category        string     `db:"category"`
	RequestedLimit  int        `db:"requested_limit"`
	Status          string     `db:"status"`
	JobID           *string    `db:"job_id"`
	DiscoveredCount *int       `db:"discovered_count"`
	PersistedCount  *int       `db:"persisted_count"`
	ErrorMessage    *string    `db:"error_message"`
	StartedAt       *time.Time `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// IsTerminal reports whether the run reached a final state.
func (r DiscoveryRun) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// CreateRunParams holds the fields for a new queued run.
type CreateRunParams struct {
	UserID         uuid.UUID
	Query          string
	City           string
	Category       string
	RequestedLimit int
}

// RunsRepository provides durable storage for discovery runs and their
// run↔lead mappings.
type RunsRepository interface {
	Create(ctx context.Context, params CreateRunParams) (DiscoveryRun, error)
	GetByID(ctx context.Context, runID, userID uuid.UUID) (DiscoveryRun, error)
	SetJobID(ctx context.Context, runID uuid.UUID, jobID string) error
	MarkRunning(ctx context.Context, runID uuid.UUID) error
	MarkCompleted(ctx context.Context, runID uuid.UUID, discoveredCount, persistedCount int) error
	MarkFailed(ctx context.Context, runID uuid.UUID, message string) error
	CountRunsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	UpsertRunLeadMappings(ctx context.Context, runID uuid.UUID, leadIDs []uuid.UUID) error
	GetRunLeadIDs(ctx context.Context, runID uuid.UUID) ([]uuid.UUID, error)
}
