// Package pipeline implements the fetch→clean→enrich→persist lead ingestion
// pipeline. Each stage takes the previous stage's output envelope plus its own
// injected dependency and returns a new envelope carrying the original query
// and accumulated quality metrics forward. Retries are the queue
// orchestrator's job; stages propagate failures unchanged.
package pipeline

import (
	"context"
	"time"

	"leadscout_backend/internal/quality"
)

// QualityMeta carries per-run data-quality counters for observability.
type QualityMeta struct {
	InputCount    int `json:"inputCount"`
	DedupedCount  int `json:"dedupedCount"`
	ValidCount    int `json:"validCount"`
	RejectedCount int `json:"rejectedCount"`
}

// FetchPayload starts a pipeline run.
type FetchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// FetchResult is the fetch stage's output envelope.
type FetchResult struct {
	Query           string              `json:"query"`
	Limit           int                 `json:"limit"`
	RawLeads        []quality.RawRecord `json:"rawLeads"`
	SourceUpdatedAt time.Time           `json:"sourceUpdatedAt"`
}

// CleanResult is the clean stage's output envelope: the valid/rejected
// partition plus quality counters.
type CleanResult struct {
	Query           string                   `json:"query"`
	Limit           int                      `json:"limit"`
	SourceUpdatedAt time.Time                `json:"sourceUpdatedAt"`
	ValidLeads      []quality.NormalizedLead `json:"validLeads"`
	RejectedLeads   []quality.RejectedLead   `json:"rejectedLeads"`
	QualityMeta     QualityMeta              `json:"qualityMeta"`
}

// EnrichResult is the enrich stage's output envelope.
type EnrichResult struct {
	Query         string                 `json:"query"`
	Limit         int                    `json:"limit"`
	QualityMeta   QualityMeta            `json:"qualityMeta"`
	EnrichedLeads []quality.EnrichedLead `json:"enrichedLeads"`
}

// Result is the terminal pipeline envelope, produced by the persist stage and
// by RunFull.
type Result struct {
	Query          string          `json:"query"`
	QualityMeta    QualityMeta     `json:"qualityMeta"`
	PersistedCount int             `json:"persistedCount"`
	RejectedCount  int             `json:"rejectedCount"`
	PersistedRows  []PersistedLead `json:"persistedRows"`
}

// Fetch calls the provider and wraps the raw listings in an envelope. Provider
// errors propagate unchanged.
func Fetch(ctx context.Context, payload FetchPayload, provider ProviderClient) (FetchResult, error) {
	raw, err := provider.Search(ctx, payload.Query, payload.Limit)
	if err != nil {
		return FetchResult{}, err
	}

	return FetchResult{
		Query:           payload.Query,
		Limit:           payload.Limit,
		RawLeads:        raw,
		SourceUpdatedAt: time.Now().UTC(),
	}, nil
}

// Clean runs normalize → deduplicate → validate and partitions the batch into
// valid and rejected leads. One bad record never aborts the batch.
func Clean(payload FetchResult, now time.Time) CleanResult {
	normalized := make([]quality.NormalizedLead, 0, len(payload.RawLeads))
	for _, raw := range payload.RawLeads {
		if raw.SourceUpdatedAt == nil && !payload.SourceUpdatedAt.IsZero() {
			at := payload.SourceUpdatedAt
			raw.SourceUpdatedAt = &at
		}
		normalized = append(normalized, quality.Normalize(raw, now))
	}

	deduped := quality.Deduplicate(normalized)

	result := CleanResult{
		Query:           payload.Query,
		Limit:           payload.Limit,
		SourceUpdatedAt: payload.SourceUpdatedAt,
	}

	for _, lead := range deduped {
		validation := quality.Validate(lead)
		if validation.Valid {
			result.ValidLeads = append(result.ValidLeads, lead)
		} else {
			result.RejectedLeads = append(result.RejectedLeads, quality.RejectedLead{
				Lead:   lead,
				Errors: validation.Errors,
			})
		}
	}

	result.QualityMeta = QualityMeta{
		InputCount:    len(payload.RawLeads),
		DedupedCount:  len(deduped),
		ValidCount:    len(result.ValidLeads),
		RejectedCount: len(result.RejectedLeads),
	}

	return result
}

// Enrich derives quality metadata for every valid lead and merges it in with
// status "enriched" and refreshed sync timestamps.
func Enrich(payload CleanResult, now time.Time) EnrichResult {
	result := EnrichResult{
		Query:       payload.Query,
		Limit:       payload.Limit,
		QualityMeta: payload.QualityMeta,
	}

	var sourceUpdatedAt *time.Time
	if !payload.SourceUpdatedAt.IsZero() {
		at := payload.SourceUpdatedAt
		sourceUpdatedAt = &at
	}

	for _, lead := range payload.ValidLeads {
		patch := quality.EnrichmentPatch{
			Metadata:        quality.DeriveMetadata(lead),
			Status:          quality.StatusEnriched,
			SourceUpdatedAt: sourceUpdatedAt,
		}
		result.EnrichedLeads = append(result.EnrichedLeads, quality.Enrich(lead, patch, now))
	}

	return result
}

// Persist upserts the enriched batch on the (source, external_place_id)
// conflict key. Re-running it on the same leads is a no-op upsert, never a
// duplicate insert.
func Persist(ctx context.Context, payload EnrichResult, repo LeadRepository) (Result, error) {
	upserted, err := repo.UpsertLeads(ctx, payload.EnrichedLeads)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Query:          payload.Query,
		QualityMeta:    payload.QualityMeta,
		PersistedCount: upserted.PersistedCount,
		RejectedCount:  payload.QualityMeta.RejectedCount,
		PersistedRows:  upserted.Rows,
	}, nil
}

// RunFull chains all four stages synchronously in one invocation. The discover
// queue job uses it, as does the degraded no-queue fallback path.
func RunFull(ctx context.Context, payload FetchPayload, deps Deps) (Result, error) {
	fetched, err := Fetch(ctx, payload, deps.Provider)
	if err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	cleaned := Clean(fetched, now)
	enriched := Enrich(cleaned, now)

	return Persist(ctx, enriched, deps.Repository)
}
