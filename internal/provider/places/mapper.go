package places

import (
	"slices"
	"time"

	"leadscout_backend/internal/quality"
)

type searchResponse struct {
	Places []place `json:"places"`
}

type place struct {
	ID                       string              `json:"id"`
	DisplayName              localizedText       `json:"displayName"`
	FormattedAddress         string              `json:"formattedAddress"`
	AddressComponents        []addressComponent  `json:"addressComponents"`
	NationalPhoneNumber      string              `json:"nationalPhoneNumber"`
	InternationalPhoneNumber string              `json:"internationalPhoneNumber"`
	WebsiteURI               string              `json:"websiteUri"`
	Rating                   *float64            `json:"rating,omitempty"`
	UserRatingCount          *int                `json:"userRatingCount,omitempty"`
	PrimaryTypeDisplayName   localizedText       `json:"primaryTypeDisplayName"`
	RegularOpeningHours      regularOpeningHours `json:"regularOpeningHours"`
}

type localizedText struct {
	Text string `json:"text"`
}

type addressComponent struct {
	LongText  string   `json:"longText"`
	ShortText string   `json:"shortText"`
	Types     []string `json:"types"`
}

type regularOpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// mapPlace maps one Places API result onto the provider-shaped RawRecord the
// pipeline ingests. Address components take precedence over parsing the
// formatted address.
func mapPlace(p place, fetchedAt time.Time) quality.RawRecord {
	record := quality.RawRecord{
		Name:            p.DisplayName.Text,
		Address:         p.FormattedAddress,
		Phone:           firstNonEmpty(p.InternationalPhoneNumber, p.NationalPhoneNumber),
		Website:         p.WebsiteURI,
		Rating:          p.Rating,
		RatingsCount:    p.UserRatingCount,
		Category:        p.PrimaryTypeDisplayName.Text,
		ExternalPlaceID: p.ID,
		OpeningHours:    p.RegularOpeningHours.WeekdayDescriptions,
		Source:          quality.SourceGooglePlaces,
		SourceUpdatedAt: &fetchedAt,
	}

	for _, component := range p.AddressComponents {
		switch {
		case slices.Contains(component.Types, "locality"):
			record.City = component.LongText
		case slices.Contains(component.Types, "administrative_area_level_1"):
			record.Region = component.ShortText
		case slices.Contains(component.Types, "postal_code"):
			record.PostalCode = component.LongText
		case slices.Contains(component.Types, "country"):
			record.CountryCode = component.ShortText
		}
	}

	return record
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
