package queue

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// ForwardResult reports the outcome of a best-effort dead-letter forward.
// Forwarding never propagates its own failure: a broken dead-letter path must
// not crash a worker.
type ForwardResult struct {
	Forwarded bool
	Err       error
}

// onJobError runs for every failed task attempt. Attempts that still have
// retries left are only logged; final failures are forwarded to the
// dead-letter queue.
func (o *Orchestrator) onJobError(ctx context.Context, task *asynq.Task, err error) {
	jobID, _ := asynq.GetTaskID(ctx)
	queueName, _ := asynq.GetQueueName(ctx)
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	final := retried >= maxRetry || errors.Is(err, asynq.SkipRetry)
	o.log.StageFailed(queueName, jobID, err, !final)

	if !final || queueName == QueueDeadLetter {
		return
	}

	outcome := o.forwardToDeadLetter(task, queueName, err)
	if outcome.Err != nil {
		o.log.Error("dead-letter forward failed",
			"stage", queueName,
			"jobId", jobID,
			"error", outcome.Err)
	}
}

// forwardToDeadLetter enqueues the failed job's payload onto the dead-letter
// queue, tagged with its stage and failure message.
func (o *Orchestrator) forwardToDeadLetter(task *asynq.Task, stage string, cause error) ForwardResult {
	dlq, err := NewDeadLetterTask(DeadLetterPayload{
		Stage:    stage,
		FailedAt: time.Now().UTC(),
		Payload:  task.Payload(),
		Message:  cause.Error(),
	})
	if err != nil {
		return ForwardResult{Err: err}
	}

	// A short timeout keeps a broken Redis from stalling the error handler.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := o.client.EnqueueContext(ctx, dlq, asynq.Queue(QueueDeadLetter), asynq.MaxRetry(0)); err != nil {
		return ForwardResult{Err: err}
	}
	return ForwardResult{Forwarded: true}
}
