package quality

import "time"

// Enrich merges a patch right-biased onto a validated lead. LastSyncedAt is
// always refreshed, the freshness score is recomputed when the patch moves
// SourceUpdatedAt, and a missing patch status defaults to "validated".
func Enrich(lead NormalizedLead, patch EnrichmentPatch, now time.Time) EnrichedLead {
	enriched := EnrichedLead{
		NormalizedLead: lead,
		Metadata:       patch.Metadata,
		Status:         patch.Status,
		LastSyncedAt:   now,
	}

	if enriched.Status == "" {
		enriched.Status = StatusValidated
	}

	if patch.SourceUpdatedAt != nil && !equalTimePtr(patch.SourceUpdatedAt, lead.SourceUpdatedAt) {
		enriched.SourceUpdatedAt = patch.SourceUpdatedAt
		enriched.FreshnessScore = FreshnessScore(patch.SourceUpdatedAt, now)
	}

	return enriched
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
