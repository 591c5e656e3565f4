package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadscout_backend/internal/quality"

	"github.com/google/uuid"
)

type fakeProvider struct {
	records []quality.RawRecord
	err     error
	queries []string
}

func (f *fakeProvider) Search(_ context.Context, query string, _ int) ([]quality.RawRecord, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakeLeadRepo mimics the upsert semantics of the real repository: one row per
// (source, external_place_id), latest write wins, records without a place ID
// always insert.
type fakeLeadRepo struct {
	rows map[string]PersistedLead
	err  error
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{rows: make(map[string]PersistedLead)}
}

func (f *fakeLeadRepo) UpsertLeads(_ context.Context, leads []quality.EnrichedLead) (UpsertResult, error) {
	if f.err != nil {
		return UpsertResult{}, f.err
	}

	result := UpsertResult{}
	for _, lead := range leads {
		key := lead.Source + "|" + lead.ExternalPlaceID
		existing, found := f.rows[key]

		id := existing.ID
		if !found {
			id = uuid.New()
		}
		if lead.ExternalPlaceID == "" {
			// No conflict key: behaves like a plain insert.
			id = uuid.New()
			key = key + "|" + id.String()
		}

		row := PersistedLead{
			ID:              id,
			Source:          lead.Source,
			ExternalPlaceID: lead.ExternalPlaceID,
			BusinessName:    lead.BusinessName,
			Address:         lead.Address,
			City:            lead.City,
			Category:        lead.Category,
			Status:          lead.Status,
		}
		f.rows[key] = row
		result.Rows = append(result.Rows, row)
	}

	result.PersistedCount = len(result.Rows)
	return result, nil
}

func TestFetchPropagatesProviderErrorUnchanged(t *testing.T) {
	wantErr := errors.New("places: upstream unavailable")
	provider := &fakeProvider{err: wantErr}

	_, err := Fetch(context.Background(), FetchPayload{Query: "plumbers in Austin", Limit: 10}, provider)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error propagated unchanged, got %v", err)
	}
}

func TestCleanPartitionsAndCounts(t *testing.T) {
	now := time.Now().UTC()
	payload := FetchResult{
		Query:           "plumbers in Austin",
		SourceUpdatedAt: now,
		RawLeads: []quality.RawRecord{
			{Name: "Acme Plumbing", ExternalPlaceID: "p1", Address: "123 Main St"},
			{Name: "Acme Plumbing", ExternalPlaceID: "p1", Address: "123 Main St"},
			{Name: "Bad Lead", ExternalPlaceID: "p2"},
		},
	}

	result := Clean(payload, now)

	meta := result.QualityMeta
	if meta.InputCount != 3 || meta.DedupedCount != 2 || meta.ValidCount != 1 || meta.RejectedCount != 1 {
		t.Fatalf("unexpected quality meta %+v", meta)
	}
	if len(result.ValidLeads) != 1 || result.ValidLeads[0].ExternalPlaceID != "p1" {
		t.Fatalf("expected the Acme lead to survive, got %+v", result.ValidLeads)
	}
	if len(result.RejectedLeads) != 1 {
		t.Fatalf("expected one rejected lead, got %d", len(result.RejectedLeads))
	}
	if len(result.RejectedLeads[0].Errors) == 0 {
		t.Error("expected rejected lead tagged with its validation errors")
	}
	if result.Query != payload.Query {
		t.Errorf("expected query carried forward, got %q", result.Query)
	}
}

func TestEnrichStampsStatusAndMetadata(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	payload := CleanResult{
		Query:           "plumbers in Austin",
		SourceUpdatedAt: now.AddDate(0, 0, -10),
		ValidLeads: []quality.NormalizedLead{
			{BusinessName: "Acme Plumbing", Address: "123 Main St", Phone: "+15125550142", Source: quality.SourceGooglePlaces, ExternalPlaceID: "p1"},
		},
		QualityMeta: QualityMeta{InputCount: 1, DedupedCount: 1, ValidCount: 1},
	}

	result := Enrich(payload, now)

	if len(result.EnrichedLeads) != 1 {
		t.Fatalf("expected one enriched lead, got %d", len(result.EnrichedLeads))
	}
	lead := result.EnrichedLeads[0]
	if lead.Status != quality.StatusEnriched {
		t.Errorf("expected status enriched, got %q", lead.Status)
	}
	if !lead.LastSyncedAt.Equal(now) {
		t.Errorf("expected LastSyncedAt = %v, got %v", now, lead.LastSyncedAt)
	}
	if lead.QualityScore != 70 {
		t.Errorf("expected quality score 70 (name+address+phone), got %d", lead.QualityScore)
	}
	if lead.FreshnessScore != 80 {
		t.Errorf("expected freshness recomputed to 80, got %d", lead.FreshnessScore)
	}
}

func TestRunFullEndToEnd(t *testing.T) {
	provider := &fakeProvider{records: []quality.RawRecord{
		{Name: "Acme Plumbing", ExternalPlaceID: "p1", Address: "123 Main St", City: "Austin"},
		{Name: "Acme Plumbing", ExternalPlaceID: "p1", Address: "123 Main St", City: "Austin"},
		{Name: "Bad Lead", ExternalPlaceID: "p2"},
	}}
	repo := newFakeLeadRepo()

	result, err := RunFull(context.Background(), FetchPayload{Query: "plumbers in Austin", Limit: 20}, Deps{
		Provider:   provider,
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("RunFull returned error: %v", err)
	}

	want := QualityMeta{InputCount: 3, DedupedCount: 2, ValidCount: 1, RejectedCount: 1}
	if result.QualityMeta != want {
		t.Fatalf("quality meta = %+v, want %+v", result.QualityMeta, want)
	}
	if result.PersistedCount != 1 {
		t.Fatalf("expected exactly 1 persisted row, got %d", result.PersistedCount)
	}
	if result.RejectedCount != 1 {
		t.Errorf("expected 1 rejected record, got %d", result.RejectedCount)
	}
	if result.PersistedRows[0].Status != quality.StatusEnriched {
		t.Errorf("expected persisted row status enriched, got %q", result.PersistedRows[0].Status)
	}
}

func TestPersistIsIdempotentOnConflictKey(t *testing.T) {
	repo := newFakeLeadRepo()
	now := time.Now().UTC()

	first := EnrichResult{EnrichedLeads: []quality.EnrichedLead{{
		NormalizedLead: quality.NormalizedLead{BusinessName: "Acme", Address: "1 St", Source: quality.SourceGooglePlaces, ExternalPlaceID: "p1"},
		Status:         quality.StatusEnriched,
		LastSyncedAt:   now,
	}}}
	second := EnrichResult{EnrichedLeads: []quality.EnrichedLead{{
		NormalizedLead: quality.NormalizedLead{BusinessName: "Acme Plumbing LLC", Address: "1 St", Source: quality.SourceGooglePlaces, ExternalPlaceID: "p1"},
		Status:         quality.StatusEnriched,
		LastSyncedAt:   now,
	}}}

	r1, err := Persist(context.Background(), first, repo)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Persist(context.Background(), second, repo)
	if err != nil {
		t.Fatal(err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("expected exactly one stored row after re-persist, got %d", len(repo.rows))
	}
	if r1.PersistedRows[0].ID != r2.PersistedRows[0].ID {
		t.Error("expected upsert to keep the same row identity")
	}
	if r2.PersistedRows[0].BusinessName != "Acme Plumbing LLC" {
		t.Errorf("expected latest values to win, got %q", r2.PersistedRows[0].BusinessName)
	}
}

func TestRunFullSurfacesPersistenceError(t *testing.T) {
	provider := &fakeProvider{records: []quality.RawRecord{{Name: "Acme", Address: "1 St", ExternalPlaceID: "p1"}}}
	repo := newFakeLeadRepo()
	repo.err = errors.New("storage unavailable")

	_, err := RunFull(context.Background(), FetchPayload{Query: "plumbers in Austin"}, Deps{Provider: provider, Repository: repo})
	if err == nil {
		t.Fatal("expected persistence error to surface")
	}
}
