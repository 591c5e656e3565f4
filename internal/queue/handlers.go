package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadscout_backend/internal/pipeline"
	"leadscout_backend/internal/provider/places"

	"github.com/hibiken/asynq"
)

// handleDiscover runs the fully-composed pipeline in one invocation and writes
// the result onto the task so status polling can read it back.
func (o *Orchestrator) handleDiscover(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	payload, err := ParseDiscoverPayload(task)
	if err != nil {
		return fmt.Errorf("parse discover payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := pipeline.RunFull(ctx, payload.Fetch, o.deps)
	if err != nil {
		return o.stageError(QueueDiscover, err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode pipeline result: %v: %w", err, asynq.SkipRetry)
	}
	if _, err := task.ResultWriter().Write(data); err != nil {
		return fmt.Errorf("write pipeline result: %w", err)
	}

	jobID, _ := asynq.GetTaskID(ctx)
	o.log.StageCompleted(QueueDiscover, jobID, float64(time.Since(start).Milliseconds()))
	return nil
}

// handleFetch calls the provider and hands the raw batch to the clean queue.
func (o *Orchestrator) handleFetch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStagePayload(task)
	if err != nil || payload.Fetch == nil {
		return fmt.Errorf("parse fetch payload: %v: %w", err, asynq.SkipRetry)
	}

	fetched, err := pipeline.Fetch(ctx, *payload.Fetch, o.deps.Provider)
	if err != nil {
		return o.stageError(QueueFetch, err)
	}

	if _, err := o.enqueueStage(ctx, QueueClean, TaskClean, StagePayload{RunID: payload.RunID, Clean: &fetched}); err != nil {
		return err
	}
	return nil
}

// handleClean runs the quality partition and hands off to the enrich queue.
func (o *Orchestrator) handleClean(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStagePayload(task)
	if err != nil || payload.Clean == nil {
		return fmt.Errorf("parse clean payload: %v: %w", err, asynq.SkipRetry)
	}

	cleaned := pipeline.Clean(*payload.Clean, time.Now().UTC())
	o.log.Info("batch cleaned",
		"runId", payload.RunID,
		"input", cleaned.QualityMeta.InputCount,
		"deduped", cleaned.QualityMeta.DedupedCount,
		"valid", cleaned.QualityMeta.ValidCount,
		"rejected", cleaned.QualityMeta.RejectedCount)

	if _, err := o.enqueueStage(ctx, QueueEnrich, TaskEnrich, StagePayload{RunID: payload.RunID, Enrich: &cleaned}); err != nil {
		return err
	}
	return nil
}

// handleEnrich derives metadata and hands off to the persist queue.
func (o *Orchestrator) handleEnrich(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStagePayload(task)
	if err != nil || payload.Enrich == nil {
		return fmt.Errorf("parse enrich payload: %v: %w", err, asynq.SkipRetry)
	}

	enriched := pipeline.Enrich(*payload.Enrich, time.Now().UTC())

	if _, err := o.enqueueStage(ctx, QueuePersist, TaskPersist, StagePayload{RunID: payload.RunID, Persist: &enriched}); err != nil {
		return err
	}
	return nil
}

// handlePersist is the terminal stage of the per-stage path.
func (o *Orchestrator) handlePersist(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	payload, err := ParseStagePayload(task)
	if err != nil || payload.Persist == nil {
		return fmt.Errorf("parse persist payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := pipeline.Persist(ctx, *payload.Persist, o.deps.Repository)
	if err != nil {
		return o.stageError(QueuePersist, err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode pipeline result: %v: %w", err, asynq.SkipRetry)
	}
	if _, err := task.ResultWriter().Write(data); err != nil {
		return fmt.Errorf("write pipeline result: %w", err)
	}

	jobID, _ := asynq.GetTaskID(ctx)
	o.log.StageCompleted(QueuePersist, jobID, float64(time.Since(start).Milliseconds()))
	return nil
}

// stageError marks terminal provider failures as non-retryable so they archive
// immediately instead of burning retry attempts.
func (o *Orchestrator) stageError(stage string, err error) error {
	var providerErr *places.Error
	if errors.As(err, &providerErr) && !providerErr.Retryable() {
		return fmt.Errorf("%s: %v: %w", stage, err, asynq.SkipRetry)
	}
	return fmt.Errorf("%s: %w", stage, err)
}
