package queue

import (
	"testing"
	"time"

	"leadscout_backend/internal/pipeline"
	"leadscout_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type testQueueConfig struct {
	redisURL    string
	attempts    int
	backoffBase time.Duration
}

func (c testQueueConfig) GetRedisURL() string                { return c.redisURL }
func (c testQueueConfig) GetRedisTLSInsecure() bool          { return false }
func (c testQueueConfig) GetQueueAttempts() int              { return c.attempts }
func (c testQueueConfig) GetQueueBackoffBase() time.Duration { return c.backoffBase }
func (c testQueueConfig) GetQueueRetention() time.Duration   { return 24 * time.Hour }
func (c testQueueConfig) GetStageConcurrency() int           { return 5 }
func (c testQueueConfig) GetDiscoverConcurrency() int        { return 3 }
func (c testQueueConfig) IsQueueEnabled() bool               { return c.redisURL != "" }

func newTestOrchestrator(t *testing.T, cfg testQueueConfig) *Orchestrator {
	t.Helper()
	o, err := New(cfg, pipeline.Deps{}, logger.New("development"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return o
}

func TestNewRequiresRedisURL(t *testing.T) {
	_, err := New(testQueueConfig{}, pipeline.Deps{}, logger.New("development"))
	if err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestRetryDelayIsExponentialOnConfiguredBase(t *testing.T) {
	o := newTestOrchestrator(t, testQueueConfig{redisURL: "redis://localhost:6379", backoffBase: 2 * time.Second})

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	for retried, expected := range want {
		if got := o.retryDelay(retried, nil, nil); got != expected {
			t.Errorf("retryDelay(%d) = %v, want %v", retried, got, expected)
		}
	}
}

func TestRetryDelayDefaultsToTwoSeconds(t *testing.T) {
	o := newTestOrchestrator(t, testQueueConfig{redisURL: "redis://localhost:6379"})

	if got := o.retryDelay(0, nil, nil); got != 2000*time.Millisecond {
		t.Errorf("default backoff base = %v, want 2s", got)
	}
}

func TestAttemptsDefaultsToThree(t *testing.T) {
	o := newTestOrchestrator(t, testQueueConfig{redisURL: "redis://localhost:6379"})
	if got := o.attempts(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}

	o = newTestOrchestrator(t, testQueueConfig{redisURL: "redis://localhost:6379", attempts: 5})
	if got := o.attempts(); got != 5 {
		t.Errorf("attempts = %d, want 5", got)
	}
}

func TestMapTaskStateCoversLifecycle(t *testing.T) {
	tests := []struct {
		state asynq.TaskState
		want  string
	}{
		{asynq.TaskStatePending, JobStateQueued},
		{asynq.TaskStateScheduled, JobStateQueued},
		{asynq.TaskStateRetry, JobStateQueued},
		{asynq.TaskStateActive, JobStateActive},
		{asynq.TaskStateCompleted, JobStateCompleted},
		{asynq.TaskStateArchived, JobStateFailed},
	}

	for _, tt := range tests {
		if got := mapTaskState(tt.state); got != tt.want {
			t.Errorf("mapTaskState(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestShutdownIsIdempotentAndSafeWhenNeverStarted(t *testing.T) {
	o := newTestOrchestrator(t, testQueueConfig{redisURL: "redis://localhost:6379"})

	// Never started: both calls must be no-ops.
	o.Shutdown()
	o.Shutdown()

	if err := o.Start(); err == nil {
		t.Fatal("expected Start after Shutdown to be rejected")
	}
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@redis.internal:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt returned error: %v", err)
	}
	if opt.Addr != "redis.internal:6380" {
		t.Errorf("Addr = %q", opt.Addr)
	}
	if opt.Password != "secret" {
		t.Errorf("Password = %q", opt.Password)
	}
	if opt.DB != 2 {
		t.Errorf("DB = %d", opt.DB)
	}
	if opt.TLSConfig != nil {
		t.Error("expected no TLS config for redis:// URL")
	}
}
