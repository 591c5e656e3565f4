package quality

import (
	"testing"
	"time"
)

func TestEnrichDefaultsStatusAndRefreshesSync(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	lead := NormalizedLead{BusinessName: "Acme", FreshnessScore: 90}

	enriched := Enrich(lead, EnrichmentPatch{}, now)

	if enriched.Status != StatusValidated {
		t.Errorf("expected default status %q, got %q", StatusValidated, enriched.Status)
	}
	if !enriched.LastSyncedAt.Equal(now) {
		t.Errorf("expected LastSyncedAt refreshed to %v, got %v", now, enriched.LastSyncedAt)
	}
	if enriched.FreshnessScore != 90 {
		t.Errorf("expected freshness untouched without source timestamp change, got %d", enriched.FreshnessScore)
	}
}

func TestEnrichPatchIsRightBiased(t *testing.T) {
	now := time.Now()
	lead := NormalizedLead{BusinessName: "Acme"}

	patch := EnrichmentPatch{
		Metadata: Metadata{WebsiteHost: "acme.com", HasContactChannel: true, QualityScore: 70},
		Status:   StatusEnriched,
	}

	enriched := Enrich(lead, patch, now)

	if enriched.Status != StatusEnriched {
		t.Errorf("expected patch status to win, got %q", enriched.Status)
	}
	if enriched.QualityScore != 70 || enriched.WebsiteHost != "acme.com" {
		t.Errorf("expected patch metadata carried over, got %+v", enriched.Metadata)
	}
	if enriched.BusinessName != "Acme" {
		t.Errorf("expected lead fields preserved, got %q", enriched.BusinessName)
	}
}

func TestEnrichRecomputesFreshnessWhenSourceTimestampMoves(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -40)
	recent := now.AddDate(0, 0, -5)

	lead := NormalizedLead{BusinessName: "Acme", SourceUpdatedAt: &old, FreshnessScore: 20}

	enriched := Enrich(lead, EnrichmentPatch{SourceUpdatedAt: &recent}, now)

	if enriched.SourceUpdatedAt == nil || !enriched.SourceUpdatedAt.Equal(recent) {
		t.Fatalf("expected SourceUpdatedAt moved to %v, got %v", recent, enriched.SourceUpdatedAt)
	}
	if enriched.FreshnessScore != 90 {
		t.Errorf("expected recomputed freshness 90, got %d", enriched.FreshnessScore)
	}

	// Unchanged timestamp keeps the existing score.
	same := Enrich(lead, EnrichmentPatch{SourceUpdatedAt: &old}, now)
	if same.FreshnessScore != 20 {
		t.Errorf("expected score preserved for unchanged timestamp, got %d", same.FreshnessScore)
	}
}
