// Package quota computes per-tier admission budgets for discovery runs. The
// daily run limit and the max-results-per-run cap are independent: requesting
// fewer leads than the tier maximum never changes the daily budget.
package quota

import (
	"context"
	"time"

	"leadscout_backend/platform/config"

	"github.com/google/uuid"
)

// FallbackTier is used when a user's subscription tier is unknown.
const FallbackTier = "free_trial"

// Quota is a point-in-time view of a user's daily run budget.
type Quota struct {
	Tier       string `json:"tier"`
	DailyLimit int    `json:"dailyLimit"`
	TodayCount int    `json:"todayCount"`
	Remaining  int    `json:"remaining"`
}

// RunCounter is the narrow storage contract the enforcer needs.
type RunCounter interface {
	CountRunsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

// Enforcer computes quotas from tier configuration and the day's run count.
type Enforcer struct {
	cfg  config.QuotaConfig
	runs RunCounter
	now  func() time.Time
}

// New creates a quota enforcer.
func New(cfg config.QuotaConfig, runs RunCounter) *Enforcer {
	return &Enforcer{cfg: cfg, runs: runs, now: time.Now}
}

// Check returns the user's current quota. Admission fails when Remaining is
// zero; the caller maps that to its quota-exceeded error.
func (e *Enforcer) Check(ctx context.Context, userID uuid.UUID, tier string) (Quota, error) {
	limit := e.DailyLimit(tier)

	count, err := e.runs.CountRunsSince(ctx, userID, e.midnight())
	if err != nil {
		return Quota{}, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Quota{
		Tier:       normalizeTier(tier, e.cfg.GetTierDailyLimits()),
		DailyLimit: limit,
		TodayCount: count,
		Remaining:  remaining,
	}, nil
}

// DailyLimit returns the tier's run-per-day budget, falling back to the
// free-trial tier for unknown tiers.
func (e *Enforcer) DailyLimit(tier string) int {
	limits := e.cfg.GetTierDailyLimits()
	if limit, ok := limits[tier]; ok {
		return limit
	}
	return limits[FallbackTier]
}

// MaxResults returns the tier's per-run result cap.
func (e *Enforcer) MaxResults(tier string) int {
	caps := e.cfg.GetTierMaxResults()
	if max, ok := caps[tier]; ok {
		return max
	}
	return caps[FallbackTier]
}

// ClampLimit fits a requested per-run limit into [1, tier maximum]. A zero or
// negative request means "as many as the tier allows".
func (e *Enforcer) ClampLimit(tier string, requested int) int {
	max := e.MaxResults(tier)
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}

func (e *Enforcer) midnight() time.Time {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func normalizeTier(tier string, limits map[string]int) string {
	if _, ok := limits[tier]; ok {
		return tier
	}
	return FallbackTier
}
