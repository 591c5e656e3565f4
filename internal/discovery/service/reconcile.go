package service

import (
	"context"
	"encoding/json"
	"strings"

	"leadscout_backend/internal/discovery/repository"
	"leadscout_backend/internal/pipeline"

	"github.com/google/uuid"
)

// reconcile settles a run whose queue job completed, decoding the serialized
// pipeline result the worker wrote. A completed job with no readable result
// means the outcome is lost, so the run is marked failed rather than
// completed with fabricated counts.
func (s *Service) reconcile(ctx context.Context, run repository.DiscoveryRun, resultBytes []byte) {
	var result pipeline.Result
	if len(resultBytes) == 0 || json.Unmarshal(resultBytes, &result) != nil {
		s.log.Error("completed job carried no readable result", "runId", run.ID)
		if err := s.runs.MarkFailed(ctx, run.ID, "pipeline completed without a readable result"); err != nil {
			s.log.Error("mark run failed", "runId", run.ID, "error", err)
		}
		return
	}

	s.completeRun(ctx, run, result)
}

// completeRun filters the persisted rows against the requested city and
// category, truncates to the requested limit, marks the run completed with
// its counts and records the run↔lead mappings. A mapping-write failure is
// logged and swallowed; the run's completion state takes precedence over
// mapping completeness.
func (s *Service) completeRun(ctx context.Context, run repository.DiscoveryRun, result pipeline.Result) {
	filtered := filterRunLeads(result.PersistedRows, run.City, run.Category)
	if run.RequestedLimit > 0 && len(filtered) > run.RequestedLimit {
		filtered = filtered[:run.RequestedLimit]
	}

	if err := s.runs.MarkCompleted(ctx, run.ID, len(filtered), result.PersistedCount); err != nil {
		s.log.Error("mark run completed", "runId", run.ID, "error", err)
		return
	}

	leadIDs := make([]uuid.UUID, 0, len(filtered))
	for _, lead := range filtered {
		leadIDs = append(leadIDs, lead.ID)
	}
	if err := s.runs.UpsertRunLeadMappings(ctx, run.ID, leadIDs); err != nil {
		s.log.Error("run lead mapping write failed", "runId", run.ID, "leadCount", len(leadIDs), "error", err)
	}

	s.log.Info("discovery run reconciled",
		"runId", run.ID,
		"discoveredCount", len(filtered),
		"persistedCount", result.PersistedCount,
		"rejectedCount", result.RejectedCount)
}

// filterRunLeads keeps leads loosely matching the requested city and
// category. The match is deliberately permissive: a lead with a blank city or
// category passes rather than being filtered out, since provider records are
// often missing those fields.
func filterRunLeads(rows []pipeline.PersistedLead, city, category string) []pipeline.PersistedLead {
	filtered := make([]pipeline.PersistedLead, 0, len(rows))
	for _, row := range rows {
		if matchesCity(row, city) && matchesCategory(row, category) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func matchesCity(row pipeline.PersistedLead, city string) bool {
	if city == "" || row.City == "" {
		return true
	}
	want := strings.ToLower(city)
	return strings.Contains(strings.ToLower(row.City), want) ||
		strings.Contains(strings.ToLower(row.Address), want)
}

func matchesCategory(row pipeline.PersistedLead, category string) bool {
	if category == "" || row.Category == "" {
		return true
	}
	return strings.Contains(strings.ToLower(row.Category), strings.ToLower(category))
}
