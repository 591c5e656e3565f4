// Package service implements the discovery-run orchestrator: the user-facing
// entry point that admits a search against the quota, hands it to the queue
// (or runs it in-process when no queue is configured), and reconciles pipeline
// output back onto the durable run record.
package service

import (
	"context"
	"fmt"

	"leadscout_backend/internal/discovery/quota"
	"leadscout_backend/internal/discovery/repository"
	leadsrepo "leadscout_backend/internal/leads/repository"
	"leadscout_backend/internal/pipeline"
	"leadscout_backend/internal/queue"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
)

// JobQueue is the contract the orchestrator needs from the queue engine. A
// nil JobQueue means no durable queue is configured and discovery runs
// execute synchronously in-process.
type JobQueue interface {
	EnqueueDiscover(ctx context.Context, runID uuid.UUID, payload pipeline.FetchPayload) (string, error)
	JobStatus(ctx context.Context, jobID string) (queue.JobStatus, error)
}

// LeadReader reads persisted leads for run results.
type LeadReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]leadsrepo.Lead, error)
}

// Service orchestrates discovery runs.
type Service struct {
	runs     repository.RunsRepository
	leads    LeadReader
	quota    *quota.Enforcer
	jobs     JobQueue
	pipeline pipeline.Deps
	log      *logger.Logger
}

// New creates the discovery orchestrator. Pass a nil jobs queue to run
// discoveries synchronously.
func New(runs repository.RunsRepository, leads LeadReader, enforcer *quota.Enforcer, jobs JobQueue, deps pipeline.Deps, log *logger.Logger) *Service {
	return &Service{
		runs:     runs,
		leads:    leads,
		quota:    enforcer,
		jobs:     jobs,
		pipeline: deps,
		log:      log,
	}
}

// StartParams describes a user-initiated discovery request.
type StartParams struct {
	UserID   uuid.UUID
	City     string
	Category string
	Limit    int
	Tier     string
}

// StartResult is what a caller gets back from StartDiscovery. When Queued is
// false the run already reached a terminal state in-process.
type StartResult struct {
	Run    repository.DiscoveryRun
	JobID  string
	Queued bool
	Quota  quota.Quota
}

// StartDiscovery admits a search against the user's daily quota, creates a
// queued run and either enqueues a pipeline job or, with no queue configured,
// executes the pipeline synchronously before returning.
func (s *Service) StartDiscovery(ctx context.Context, params StartParams) (StartResult, error) {
	userQuota, err := s.quota.Check(ctx, params.UserID, params.Tier)
	if err != nil {
		return StartResult{}, fmt.Errorf("quota check: %w", err)
	}
	if userQuota.Remaining <= 0 {
		return StartResult{}, apperr.QuotaExceeded(
			fmt.Sprintf("daily discovery limit of %d runs reached", userQuota.DailyLimit))
	}

	limit := s.quota.ClampLimit(params.Tier, params.Limit)
	searchQuery := fmt.Sprintf("%s in %s", params.Category, params.City)

	run, err := s.runs.Create(ctx, repository.CreateRunParams{
		UserID:         params.UserID,
		Query:          searchQuery,
		City:           params.City,
		Category:       params.Category,
		RequestedLimit: limit,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("create run: %w", err)
	}

	payload := pipeline.FetchPayload{Query: searchQuery, Limit: limit}

	// Degraded mode: no durable queue configured, run in-process. The run is
	// terminal before this call returns.
	if s.jobs == nil {
		run, err = s.runSynchronously(ctx, run, payload)
		if err != nil {
			return StartResult{}, err
		}
		return StartResult{Run: run, Queued: false, Quota: userQuota}, nil
	}

	jobID, err := s.jobs.EnqueueDiscover(ctx, run.ID, payload)
	if err != nil {
		s.log.Error("discover enqueue failed", "runId", run.ID, "error", err)
		if markErr := s.runs.MarkFailed(ctx, run.ID, "queue unavailable: "+err.Error()); markErr != nil {
			s.log.Error("mark run failed after enqueue error", "runId", run.ID, "error", markErr)
		}
		return StartResult{}, apperr.Unavailable("discovery queue is unavailable")
	}

	if err := s.runs.SetJobID(ctx, run.ID, jobID); err != nil {
		return StartResult{}, fmt.Errorf("record job id: %w", err)
	}
	run.JobID = &jobID

	s.log.Info("discovery run queued", "runId", run.ID, "jobId", jobID, "query", searchQuery, "limit", limit)
	return StartResult{Run: run, JobID: jobID, Queued: true, Quota: userQuota}, nil
}

// runSynchronously executes the full pipeline in-process and settles the run
// before returning. A pipeline failure becomes a failed run, not an error to
// the caller; the run record carries the message.
func (s *Service) runSynchronously(ctx context.Context, run repository.DiscoveryRun, payload pipeline.FetchPayload) (repository.DiscoveryRun, error) {
	if err := s.runs.MarkRunning(ctx, run.ID); err != nil {
		return repository.DiscoveryRun{}, err
	}

	result, err := pipeline.RunFull(ctx, payload, s.pipeline)
	if err != nil {
		s.log.Error("synchronous discovery failed", "runId", run.ID, "error", err)
		if markErr := s.runs.MarkFailed(ctx, run.ID, err.Error()); markErr != nil {
			return repository.DiscoveryRun{}, markErr
		}
		return s.runs.GetByID(ctx, run.ID, run.UserID)
	}

	s.completeRun(ctx, run, result)
	return s.runs.GetByID(ctx, run.ID, run.UserID)
}

// SyncRunWithQueue mirrors the backing job's queue state onto the run. It is
// the single place run status is advanced from queue state and is idempotent:
// terminal runs and runs without a job are returned unchanged, and repeated
// observations of the same transition are no-ops at the storage layer.
func (s *Service) SyncRunWithQueue(ctx context.Context, runID, userID uuid.UUID) (repository.DiscoveryRun, error) {
	run, err := s.runs.GetByID(ctx, runID, userID)
	if err != nil {
		return repository.DiscoveryRun{}, err
	}

	if run.JobID == nil || run.IsTerminal() || s.jobs == nil {
		return run, nil
	}

	status, err := s.jobs.JobStatus(ctx, *run.JobID)
	if err != nil {
		// Leave the run as-is; the next poll retries.
		s.log.Warn("job status poll failed", "runId", run.ID, "jobId", *run.JobID, "error", err)
		return run, nil
	}

	switch status.State {
	case queue.JobStateActive:
		if err := s.runs.MarkRunning(ctx, run.ID); err != nil {
			return repository.DiscoveryRun{}, err
		}
	case queue.JobStateCompleted:
		s.reconcile(ctx, run, status.Result)
	case queue.JobStateFailed:
		message := status.LastErr
		if message == "" {
			message = "pipeline job failed"
		}
		if err := s.runs.MarkFailed(ctx, run.ID, message); err != nil {
			return repository.DiscoveryRun{}, err
		}
	default:
		// Still queued; nothing to mirror.
		return run, nil
	}

	return s.runs.GetByID(ctx, runID, userID)
}

// GetDiscoveryStatus returns the run's current state, polling the queue
// first. Status is always pulled, never pushed.
func (s *Service) GetDiscoveryStatus(ctx context.Context, runID, userID uuid.UUID) (repository.DiscoveryRun, error) {
	return s.SyncRunWithQueue(ctx, runID, userID)
}

// GetDiscoveryResults returns the run plus the leads mapped to it.
func (s *Service) GetDiscoveryResults(ctx context.Context, runID, userID uuid.UUID) (repository.DiscoveryRun, []leadsrepo.Lead, error) {
	run, err := s.SyncRunWithQueue(ctx, runID, userID)
	if err != nil {
		return repository.DiscoveryRun{}, nil, err
	}

	leadIDs, err := s.runs.GetRunLeadIDs(ctx, runID)
	if err != nil {
		return repository.DiscoveryRun{}, nil, err
	}
	if len(leadIDs) == 0 {
		return run, nil, nil
	}

	leads, err := s.leads.GetByIDs(ctx, leadIDs)
	if err != nil {
		return repository.DiscoveryRun{}, nil, err
	}
	return run, leads, nil
}
