package quota

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type staticConfig struct {
	daily      map[string]int
	maxResults map[string]int
}

func (c staticConfig) GetTierDailyLimits() map[string]int { return c.daily }
func (c staticConfig) GetTierMaxResults() map[string]int  { return c.maxResults }

type staticCounter struct {
	count int
	since time.Time
}

func (c *staticCounter) CountRunsSince(_ context.Context, _ uuid.UUID, since time.Time) (int, error) {
	c.since = since
	return c.count, nil
}

func testConfig() staticConfig {
	return staticConfig{
		daily:      map[string]int{"free_trial": 3, "starter": 10, "growth": 50},
		maxResults: map[string]int{"free_trial": 20, "starter": 60, "growth": 120},
	}
}

func TestCheckAdmission(t *testing.T) {
	tests := []struct {
		name          string
		tier          string
		todayCount    int
		wantLimit     int
		wantRemaining int
	}{
		{"under limit admits", "starter", 4, 10, 6},
		{"at limit exhausts", "starter", 10, 10, 0},
		{"over limit clamps remaining to zero", "starter", 12, 10, 0},
		{"unknown tier falls back to free trial", "enterprise", 1, 3, 2},
		{"empty tier falls back to free trial", "", 0, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &staticCounter{count: tt.todayCount}
			enforcer := New(testConfig(), counter)

			quota, err := enforcer.Check(context.Background(), uuid.New(), tt.tier)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if quota.DailyLimit != tt.wantLimit {
				t.Errorf("DailyLimit = %d, want %d", quota.DailyLimit, tt.wantLimit)
			}
			if quota.TodayCount != tt.todayCount {
				t.Errorf("TodayCount = %d, want %d", quota.TodayCount, tt.todayCount)
			}
			if quota.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", quota.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestCheckMonotonicity(t *testing.T) {
	counter := &staticCounter{}
	enforcer := New(testConfig(), counter)

	// For a fixed tier, admission depends only on count vs limit.
	for count := 0; count <= 15; count++ {
		counter.count = count
		quota, err := enforcer.Check(context.Background(), uuid.New(), "starter")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}

		admitted := quota.Remaining > 0
		wantAdmitted := count < 10
		if admitted != wantAdmitted {
			t.Errorf("count %d: admitted = %v, want %v", count, admitted, wantAdmitted)
		}
	}
}

func TestCheckCountsSinceLocalMidnight(t *testing.T) {
	counter := &staticCounter{}
	enforcer := New(testConfig(), counter)
	enforcer.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	}

	if _, err := enforcer.Check(context.Background(), uuid.New(), "starter"); err != nil {
		t.Fatalf("Check: %v", err)
	}

	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	if !counter.since.Equal(want) {
		t.Errorf("counted since %v, want local midnight %v", counter.since, want)
	}
}

func TestClampLimit(t *testing.T) {
	enforcer := New(testConfig(), &staticCounter{})

	tests := []struct {
		name      string
		tier      string
		requested int
		want      int
	}{
		{"zero means tier maximum", "starter", 0, 60},
		{"negative means tier maximum", "starter", -5, 60},
		{"within cap passes through", "starter", 25, 25},
		{"above cap clamps", "starter", 500, 60},
		{"exactly at cap", "growth", 120, 120},
		{"unknown tier uses fallback cap", "enterprise", 50, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enforcer.ClampLimit(tt.tier, tt.requested); got != tt.want {
				t.Errorf("ClampLimit(%q, %d) = %d, want %d", tt.tier, tt.requested, got, tt.want)
			}
		})
	}
}

func TestClampDoesNotAffectQuota(t *testing.T) {
	counter := &staticCounter{count: 2}
	enforcer := New(testConfig(), counter)

	before, err := enforcer.Check(context.Background(), uuid.New(), "starter")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	// Clamping a requested limit is a pure computation on tier config.
	enforcer.ClampLimit("starter", 5)

	after, err := enforcer.Check(context.Background(), uuid.New(), "starter")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if before != after {
		t.Errorf("quota changed after clamp: before %+v, after %+v", before, after)
	}
}
