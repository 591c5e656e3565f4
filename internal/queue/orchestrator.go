// Package queue implements the durable pipeline execution engine: one
// asynq-backed queue and bounded-concurrency worker pool per stage, automatic
// retry with exponential backoff, and dead-letter forwarding for jobs that
// exhaust their attempts.
package queue

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"leadscout_backend/internal/pipeline"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Job states exposed to the discovery orchestrator. These are deliberately
// coarser than asynq's task states: callers only care about the four-state
// lifecycle queued → active → completed | failed.
const (
	JobStateQueued    = "queued"
	JobStateActive    = "active"
	JobStateCompleted = "completed"
	JobStateFailed    = "failed"
)

// JobStatus is a point-in-time view of a pipeline job.
type JobStatus struct {
	ID       string
	State    string
	Result   []byte
	FailedAt time.Time
	LastErr  string
}

// Orchestrator owns the stage queues, their worker servers and the enqueue
// client. It is constructed explicitly and handed to the composition root; no
// package-level mutable state.
type Orchestrator struct {
	cfg  config.QueueConfig
	log  *logger.Logger
	deps pipeline.Deps

	redisOpt asynq.RedisClientOpt

	mu        sync.Mutex
	started   bool
	stopped   bool
	client    *asynq.Client
	inspector *asynq.Inspector
	servers   []*asynq.Server
}

// New creates an orchestrator for the configured Redis backend. It does not
// connect; Start (or the first enqueue) does.
func New(cfg config.QueueConfig, deps pipeline.Deps, log *logger.Logger) (*Orchestrator, error) {
	if !cfg.IsQueueEnabled() {
		return nil, fmt.Errorf("queue: redis url not configured")
	}

	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:      cfg,
		log:      log,
		deps:     deps,
		redisOpt: opt,
	}, nil
}

// Start brings up the enqueue client, the inspector and one worker server per
// stage queue. It is idempotent and safe to call concurrently.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startLocked()
}

func (o *Orchestrator) startLocked() error {
	if o.started {
		return nil
	}
	if o.stopped {
		return fmt.Errorf("queue: orchestrator already shut down")
	}

	o.client = asynq.NewClient(o.redisOpt)
	o.inspector = asynq.NewInspector(o.redisOpt)

	stages := []struct {
		queue       string
		taskType    string
		handler     func(context.Context, *asynq.Task) error
		concurrency int
	}{
		{QueueDiscover, TaskDiscover, o.handleDiscover, o.discoverConcurrency()},
		{QueueFetch, TaskFetch, o.handleFetch, o.stageConcurrency()},
		{QueueClean, TaskClean, o.handleClean, o.stageConcurrency()},
		{QueueEnrich, TaskEnrich, o.handleEnrich, o.stageConcurrency()},
		{QueuePersist, TaskPersist, o.handlePersist, o.stageConcurrency()},
	}

	for _, stage := range stages {
		server := asynq.NewServer(o.redisOpt, asynq.Config{
			Concurrency:    stage.concurrency,
			Queues:         map[string]int{stage.queue: 1},
			RetryDelayFunc: o.retryDelay,
			ErrorHandler:   asynq.ErrorHandlerFunc(o.onJobError),
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(stage.taskType, stage.handler)

		if err := server.Start(mux); err != nil {
			o.shutdownLocked()
			return fmt.Errorf("queue: start %s worker: %w", stage.queue, err)
		}
		o.servers = append(o.servers, server)
	}

	o.started = true
	o.log.Info("queue orchestrator started",
		"stageConcurrency", o.stageConcurrency(),
		"discoverConcurrency", o.discoverConcurrency(),
		"attempts", o.attempts(),
		"backoffBase", o.cfg.GetQueueBackoffBase())
	return nil
}

// Shutdown stops all workers before closing the enqueue client and releasing
// the Redis connections. Idempotent and safe when nothing was started.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shutdownLocked()
}

func (o *Orchestrator) shutdownLocked() {
	if o.stopped {
		return
	}
	o.stopped = true
	o.started = false

	// Workers first so in-flight jobs finish before connections close.
	for _, server := range o.servers {
		server.Shutdown()
	}
	o.servers = nil

	if o.client != nil {
		if err := o.client.Close(); err != nil {
			o.log.Error("queue client close failed", "error", err)
		}
		o.client = nil
	}
	if o.inspector != nil {
		if err := o.inspector.Close(); err != nil {
			o.log.Error("queue inspector close failed", "error", err)
		}
		o.inspector = nil
	}

	o.log.Info("queue orchestrator stopped")
}

// ensureStarted lazily starts the orchestrator so enqueue helpers work before
// an explicit Start call.
func (o *Orchestrator) ensureStarted() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startLocked()
}

// EnqueueDiscover schedules a full pipeline run for a discovery run and
// returns the durable job ID the run should record.
func (o *Orchestrator) EnqueueDiscover(ctx context.Context, runID uuid.UUID, payload pipeline.FetchPayload) (string, error) {
	if err := o.ensureStarted(); err != nil {
		return "", err
	}

	task, err := NewDiscoverTask(DiscoverPayload{RunID: runID.String(), Fetch: payload})
	if err != nil {
		return "", err
	}

	info, err := o.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDiscover),
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(o.attempts()-1),
		asynq.Retention(o.cfg.GetQueueRetention()),
	)
	if err != nil {
		return "", fmt.Errorf("queue: enqueue discover: %w", err)
	}

	o.log.Info("discover job enqueued", "jobId", info.ID, "runId", runID, "query", payload.Query)
	return info.ID, nil
}

// EnqueueFetch starts the per-stage path: fetch hands off to clean, clean to
// enrich, enrich to persist.
func (o *Orchestrator) EnqueueFetch(ctx context.Context, payload pipeline.FetchPayload) (string, error) {
	if err := o.ensureStarted(); err != nil {
		return "", err
	}
	return o.enqueueStage(ctx, QueueFetch, TaskFetch, StagePayload{Fetch: &payload})
}

func (o *Orchestrator) enqueueStage(ctx context.Context, queueName, taskType string, payload StagePayload) (string, error) {
	task, err := NewStageTask(taskType, payload)
	if err != nil {
		return "", err
	}

	info, err := o.client.EnqueueContext(ctx, task,
		asynq.Queue(queueName),
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(o.attempts()-1),
		asynq.Retention(o.cfg.GetQueueRetention()),
	)
	if err != nil {
		return "", fmt.Errorf("queue: enqueue %s: %w", queueName, err)
	}
	return info.ID, nil
}

// JobStatus reports the current state of a discover job. Completed jobs carry
// the serialized pipeline result; failed jobs carry the last error message.
func (o *Orchestrator) JobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	if err := o.ensureStarted(); err != nil {
		return JobStatus{}, err
	}

	info, err := o.inspector.GetTaskInfo(QueueDiscover, jobID)
	if err != nil {
		return JobStatus{}, fmt.Errorf("queue: job status %s: %w", jobID, err)
	}

	return JobStatus{
		ID:       info.ID,
		State:    mapTaskState(info.State),
		Result:   info.Result,
		FailedAt: info.LastFailedAt,
		LastErr:  info.LastErr,
	}, nil
}

func mapTaskState(state asynq.TaskState) string {
	switch state {
	case asynq.TaskStateActive:
		return JobStateActive
	case asynq.TaskStateCompleted:
		return JobStateCompleted
	case asynq.TaskStateArchived:
		return JobStateFailed
	default:
		// pending, scheduled, retry and aggregating all mean "not picked up
		// for its next attempt yet".
		return JobStateQueued
	}
}

// retryDelay implements exponential backoff on the configured base:
// base, 2*base, 4*base between attempts.
func (o *Orchestrator) retryDelay(retried int, _ error, _ *asynq.Task) time.Duration {
	base := o.cfg.GetQueueBackoffBase()
	if base <= 0 {
		base = 2000 * time.Millisecond
	}
	return base << retried
}

func (o *Orchestrator) attempts() int {
	if attempts := o.cfg.GetQueueAttempts(); attempts > 0 {
		return attempts
	}
	return 3
}

func (o *Orchestrator) stageConcurrency() int {
	if c := o.cfg.GetStageConcurrency(); c > 0 {
		return c
	}
	return 5
}

func (o *Orchestrator) discoverConcurrency() int {
	if c := o.cfg.GetDiscoverConcurrency(); c > 0 {
		return c
	}
	return 3
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
