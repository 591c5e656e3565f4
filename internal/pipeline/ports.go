package pipeline

import (
	"context"

	"leadscout_backend/internal/quality"

	"github.com/google/uuid"
)

// ProviderClient is the narrow contract the fetch stage needs from a places
// provider. Implementations must return typed provider errors so the
// orchestrator can classify failures.
type ProviderClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]quality.RawRecord, error)
}

// PersistedLead is the slice of a stored lead the pipeline needs back from an
// upsert: enough to reconcile run membership without re-reading the row.
type PersistedLead struct {
	ID              uuid.UUID `json:"id"`
	Source          string    `json:"source"`
	ExternalPlaceID string    `json:"externalPlaceId"`
	BusinessName    string    `json:"businessName"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
}

// UpsertResult reports the outcome of a batch lead upsert.
type UpsertResult struct {
	PersistedCount int             `json:"persistedCount"`
	Rows           []PersistedLead `json:"rows"`
}

// LeadRepository is the narrow contract the persist stage needs from storage.
// UpsertLeads must insert-or-update on the (source, external_place_id)
// conflict key and return the current rows.
type LeadRepository interface {
	UpsertLeads(ctx context.Context, leads []quality.EnrichedLead) (UpsertResult, error)
}

// Deps bundles the side-effecting collaborators for a full pipeline run.
type Deps struct {
	Provider   ProviderClient
	Repository LeadRepository
}
