// Package transport defines the HTTP DTOs for the leads module.
package transport

import (
	"time"

	"leadscout_backend/internal/leads/repository"
)

// ListQuery binds the lead listing query parameters.
type ListQuery struct {
	Search   string `form:"search"`
	City     string `form:"city"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=new validated enriched archived"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// LeadResponse is the wire shape of a persisted lead.
type LeadResponse struct {
	ID                string     `json:"id"`
	Source            string     `json:"source"`
	ExternalPlaceID   *string    `json:"externalPlaceId,omitempty"`
	BusinessName      string     `json:"businessName"`
	Address           string     `json:"address"`
	City              string     `json:"city,omitempty"`
	Region            string     `json:"region,omitempty"`
	PostalCode        string     `json:"postalCode,omitempty"`
	CountryCode       string     `json:"countryCode,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	WebsiteURL        string     `json:"websiteUrl,omitempty"`
	HasWebsite        bool       `json:"hasWebsite"`
	Category          string     `json:"category,omitempty"`
	GoogleRating      *float64   `json:"googleRating,omitempty"`
	RatingsCount      *int       `json:"ratingsCount,omitempty"`
	WebsiteHost       string     `json:"websiteHost,omitempty"`
	HasContactChannel bool       `json:"hasContactChannel"`
	QualityScore      int        `json:"qualityScore"`
	FreshnessScore    int        `json:"freshnessScore"`
	Status            string     `json:"status"`
	LastSyncedAt      time.Time  `json:"lastSyncedAt"`
	SourceUpdatedAt   *time.Time `json:"sourceUpdatedAt,omitempty"`
	CreatedAt         string     `json:"createdAt"`
	UpdatedAt         string     `json:"updatedAt"`
}

// ListResponse pages lead results.
type ListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// FromLead maps a repository lead onto the wire shape.
func FromLead(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:                lead.ID.String(),
		Source:            lead.Source,
		ExternalPlaceID:   lead.ExternalPlaceID,
		BusinessName:      lead.BusinessName,
		Address:           lead.Address,
		City:              lead.City,
		Region:            lead.Region,
		PostalCode:        lead.PostalCode,
		CountryCode:       lead.CountryCode,
		Phone:             lead.Phone,
		WebsiteURL:        lead.WebsiteURL,
		HasWebsite:        lead.HasWebsite,
		Category:          lead.Category,
		GoogleRating:      lead.GoogleRating,
		RatingsCount:      lead.RatingsCount,
		WebsiteHost:       lead.WebsiteHost,
		HasContactChannel: lead.HasContactChannel,
		QualityScore:      lead.QualityScore,
		FreshnessScore:    lead.FreshnessScore,
		Status:            lead.Status,
		LastSyncedAt:      lead.LastSyncedAt,
		SourceUpdatedAt:   lead.SourceUpdatedAt,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
}

// FromLeads maps a batch.
func FromLeads(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromLead(lead))
	}
	return out
}
