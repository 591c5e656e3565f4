package queue

import (
	"encoding/json"
	"time"

	"leadscout_backend/internal/pipeline"

	"github.com/hibiken/asynq"
)

// One durable queue per pipeline stage plus the dead-letter sink. No stage
// queue is fed by anything but the preceding stage and the dead-letter path.
const (
	QueueDiscover   = "discover"
	QueueFetch      = "fetch"
	QueueClean      = "clean"
	QueueEnrich     = "enrich"
	QueuePersist    = "persist"
	QueueDeadLetter = "dead_letter"
)

// Task type names, one per stage.
const (
	TaskDiscover   = "pipeline.discover"
	TaskFetch      = "pipeline.fetch"
	TaskClean      = "pipeline.clean"
	TaskEnrich     = "pipeline.enrich"
	TaskPersist    = "pipeline.persist"
	TaskDeadLetter = "pipeline.dead_letter"
)

// DiscoverPayload runs the fully-composed pipeline in one worker invocation.
// This is the path the discovery-run orchestrator uses.
type DiscoverPayload struct {
	RunID string                `json:"runId"`
	Fetch pipeline.FetchPayload `json:"fetch"`
}

// StagePayload carries a stage's input envelope through the per-stage queues.
// Exactly one envelope field is populated, matching the task type.
type StagePayload struct {
	RunID   string                 `json:"runId,omitempty"`
	Fetch   *pipeline.FetchPayload `json:"fetch,omitempty"`
	Clean   *pipeline.FetchResult  `json:"clean,omitempty"`
	Enrich  *pipeline.CleanResult  `json:"enrich,omitempty"`
	Persist *pipeline.EnrichResult `json:"persist,omitempty"`
}

// DeadLetterPayload is the envelope forwarded for a job that exhausted all
// retry attempts.
type DeadLetterPayload struct {
	Stage    string          `json:"stage"`
	FailedAt time.Time       `json:"failedAt"`
	Payload  json.RawMessage `json:"payload"`
	Message  string          `json:"message"`
}

func NewDiscoverTask(payload DiscoverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDiscover, data), nil
}

func ParseDiscoverPayload(task *asynq.Task) (DiscoverPayload, error) {
	var payload DiscoverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DiscoverPayload{}, err
	}
	return payload, nil
}

func NewStageTask(taskType string, payload StagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

func ParseStagePayload(task *asynq.Task) (StagePayload, error) {
	var payload StagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return StagePayload{}, err
	}
	return payload, nil
}

func NewDeadLetterTask(payload DeadLetterPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeadLetter, data), nil
}

func ParseDeadLetterPayload(task *asynq.Task) (DeadLetterPayload, error) {
	var payload DeadLetterPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DeadLetterPayload{}, err
	}
	return payload, nil
}
