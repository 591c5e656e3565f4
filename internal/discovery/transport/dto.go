// Package transport defines the HTTP DTOs for the discovery module.
package transport

import (
	"time"

	"leadscout_backend/internal/discovery/quota"
	"leadscout_backend/internal/discovery/repository"
)

// SearchRequest starts a discovery run. Tier is a shim the same way user
// identity is; billing integration supplies it for real deployments.
type SearchRequest struct {
	City             string `json:"city" binding:"required,min=2,max=120"`
	BusinessCategory string `json:"businessCategory" binding:"required,min=2,max=120"`
	Limit            int    `json:"limit" binding:"omitempty,min=1,max=200"`
	SubscriptionTier string `json:"subscriptionTier" binding:"omitempty,oneof=free_trial starter growth scale"`
}

// QuotaResponse is the wire shape of a quota snapshot.
type QuotaResponse struct {
	Tier       string `json:"tier"`
	DailyLimit int    `json:"dailyLimit"`
	TodayCount int    `json:"todayCount"`
	Remaining  int    `json:"remaining"`
}

// RunResponse is the wire shape of a discovery run.
type RunResponse struct {
	ID              string     `json:"id"`
	Query           string     `json:"query"`
	City            string     `json:"city"`
	Category        string     `json:"category"`
	RequestedLimit  int        `json:"requestedLimit"`
	Status          string     `json:"status"`
	JobID           *string    `json:"jobId,omitempty"`
	DiscoveredCount *int       `json:"discoveredCount,omitempty"`
	PersistedCount  *int       `json:"persistedCount,omitempty"`
	ErrorMessage    *string    `json:"errorMessage,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// SearchResponse is returned by StartDiscovery.
type SearchResponse struct {
	Run    RunResponse   `json:"run"`
	JobID  string        `json:"jobId,omitempty"`
	Queued bool          `json:"queued"`
	Quota  QuotaResponse `json:"quota"`
}

// FromRun maps a repository run onto the wire shape.
func FromRun(run repository.DiscoveryRun) RunResponse {
	return RunResponse{
		ID:              run.ID.String(),
		Query:           run.Query,
		City:            run.City,
		Category:        run.Category,
		RequestedLimit:  run.RequestedLimit,
		Status:          run.Status,
		JobID:           run.JobID,
		DiscoveredCount: run.DiscoveredCount,
		PersistedCount:  run.PersistedCount,
		ErrorMessage:    run.ErrorMessage,
		StartedAt:       run.StartedAt,
		CompletedAt:     run.CompletedAt,
		CreatedAt:       run.CreatedAt,
	}
}

// FromQuota maps a quota snapshot onto the wire shape.
func FromQuota(q quota.Quota) QuotaResponse {
	return QuotaResponse{
		Tier:       q.Tier,
		DailyLimit: q.DailyLimit,
		TodayCount: q.TodayCount,
		Remaining:  q.Remaining,
	}
}
