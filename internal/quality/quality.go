// Package quality implements the data-quality engine for ingested business
// listings: normalization, deduplication, validation, metadata derivation and
// enrichment. Every function here is pure and safe to call concurrently; the
// pipeline layer is responsible for all I/O.
package quality

import "time"

// SourceGooglePlaces identifies listings ingested from the Google Places API.
const SourceGooglePlaces = "google_places"

// RawRecord is a provider-shaped business listing. It exists only inside a
// pipeline run and is never persisted.
type RawRecord struct {
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	Region          string     `json:"region"`
	PostalCode      string     `json:"postalCode"`
	CountryCode     string     `json:"countryCode"`
	Phone           string     `json:"phone"`
	Website         string     `json:"website"`
	Rating          *float64   `json:"rating,omitempty"`
	RatingsCount    *int       `json:"ratingsCount,omitempty"`
	Category        string     `json:"category"`
	ExternalPlaceID string     `json:"externalPlaceId"`
	OpeningHours    []string   `json:"openingHours,omitempty"`
	Source          string     `json:"source"`
	FreshnessScore  *int       `json:"freshnessScore,omitempty"`
	SourceUpdatedAt *time.Time `json:"sourceUpdatedAt,omitempty"`
}

// NormalizedLead is a RawRecord mapped onto the fixed lead schema.
// (Source, ExternalPlaceID) is the natural dedup and upsert key.
type NormalizedLead struct {
	BusinessName    string     `json:"businessName"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	Region          string     `json:"region"`
	PostalCode      string     `json:"postalCode"`
	CountryCode     string     `json:"countryCode"`
	Phone           string     `json:"phone"`
	WebsiteURL      string     `json:"websiteUrl"`
	HasWebsite      bool       `json:"hasWebsite"`
	Category        string     `json:"category"`
	GoogleRating    *float64   `json:"googleRating,omitempty"`
	RatingsCount    *int       `json:"ratingsCount,omitempty"`
	OpeningHours    []string   `json:"openingHours,omitempty"`
	Source          string     `json:"source"`
	ExternalPlaceID string     `json:"externalPlaceId"`
	FreshnessScore  int        `json:"freshnessScore"`
	SourceUpdatedAt *time.Time `json:"sourceUpdatedAt,omitempty"`
}

// ValidationResult reports every rule a lead violated. It is a value, not an
// error: records failing validation are routed to a rejected side channel and
// the batch continues.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// RejectedLead is a lead that failed validation, tagged with its violations.
type RejectedLead struct {
	Lead   NormalizedLead `json:"lead"`
	Errors []string       `json:"errors"`
}

// Metadata holds derived quality signals for a validated lead.
type Metadata struct {
	WebsiteHost       string `json:"websiteHost"`
	HasContactChannel bool   `json:"hasContactChannel"`
	QualityScore      int    `json:"qualityScore"`
}

// EnrichmentPatch is merged right-biased onto a lead by Enrich.
type EnrichmentPatch struct {
	Metadata
	Status          string     `json:"status"`
	SourceUpdatedAt *time.Time `json:"sourceUpdatedAt,omitempty"`
}

// EnrichedLead is the shape handed to the persistence layer.
type EnrichedLead struct {
	NormalizedLead
	Metadata
	Status       string    `json:"status"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

// Lead statuses. Leads are never hard-deleted; user archival is a status
// transition.
const (
	StatusNew       = "new"
	StatusValidated = "validated"
	StatusEnriched  = "enriched"
	StatusArchived  = "archived"
)
