package repository

import (
	"context"
	"time"

	"leadscout_backend/internal/pipeline"
	"leadscout_backend/internal/quality"

	"github.com/google/uuid"
)

// Lead is a persisted business listing. Leads are never hard-deleted; user
// archival and later enrichment runs mutate status in place.
type Lead struct {
	ID                uuid.UUID  `db:"id"`
	Source            string     `db:"source"`
	ExternalPlaceID   *string    `db:"external_place_id"`
	BusinessName      string     `db:"business_name"`
	Address           string     `db:"address"`
	City              string     `db:"city"`
	Region            string     `db:"region"`
	PostalCode        string     `db:"postal_code"`
	CountryCode       string     `db:"country_code"`
	Phone             string     `db:"phone"`
	WebsiteURL        string     `db:"website_url"`
	HasWebsite        bool       `db:"has_website"`
	Category          string     `db:"category"`
	GoogleRating      *float64   `db:"google_rating"`
	RatingsCount      *int       `db:"ratings_count"`
	WebsiteHost       string     `db:"website_host"`
	HasContactChannel bool       `db:"has_contact_channel"`
	QualityScore      int        `db:"quality_score"`
	FreshnessScore    int        `db:"freshness_score"`
	Status            string     `db:"status"`
	LastSyncedAt      time.Time  `db:"last_synced_at"`
	SourceUpdatedAt   *time.Time `db:"source_updated_at"`
	CreatedAt         string     `db:"created_at"`
	UpdatedAt         string     `db:"updated_at"`
}

// ListParams filters and pages the lead listing.
type ListParams struct {
	Search   string
	City     string
	Category string
	Status   string
	Page     int
	Limit    int
}

// Reader provides read operations for leads.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// Writer provides write operations for leads. UpsertLeads implements the
// pipeline persistence port: insert-or-update on (source, external_place_id),
// returning current rows.
type Writer interface {
	UpsertLeads(ctx context.Context, leads []quality.EnrichedLead) (pipeline.UpsertResult, error)
	Archive(ctx context.Context, id uuid.UUID) (Lead, error)
}

// LeadsRepository combines read and write operations.
type LeadsRepository interface {
	Reader
	Writer
}
