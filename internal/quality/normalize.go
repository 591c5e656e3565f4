package quality

import (
	"net/url"
	"strings"
	"time"

	"leadscout_backend/platform/phone"
)

// freshnessDecayPerDay is how many points a lead's freshness score loses for
// each day of provider-data age.
const freshnessDecayPerDay = 2

// socialHosts are website hosts that do not count as a business owning its own
// website. A listing whose only URL points here has HasWebsite=false.
var socialHosts = []string{
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"tiktok.com",
	"youtube.com",
	"yelp.com",
	"tripadvisor.com",
	"yellowpages.com",
	"foursquare.com",
	"business.site",
}

// Normalize maps a provider-shaped record onto the fixed lead schema: trims
// strings, normalizes the phone number, repairs bare-domain websites and
// computes the freshness score from provider-data age when the provider did
// not supply one.
func Normalize(raw RawRecord, now time.Time) NormalizedLead {
	lead := NormalizedLead{
		BusinessName:    strings.TrimSpace(raw.Name),
		Address:         strings.TrimSpace(raw.Address),
		City:            strings.TrimSpace(raw.City),
		Region:          strings.TrimSpace(raw.Region),
		PostalCode:      strings.TrimSpace(raw.PostalCode),
		CountryCode:     strings.TrimSpace(raw.CountryCode),
		Phone:           normalizePhone(raw.Phone),
		WebsiteURL:      normalizeWebsite(raw.Website),
		Category:        strings.TrimSpace(raw.Category),
		GoogleRating:    raw.Rating,
		RatingsCount:    raw.RatingsCount,
		OpeningHours:    raw.OpeningHours,
		Source:          strings.TrimSpace(raw.Source),
		ExternalPlaceID: strings.TrimSpace(raw.ExternalPlaceID),
		SourceUpdatedAt: raw.SourceUpdatedAt,
	}

	if lead.Source == "" {
		lead.Source = SourceGooglePlaces
	}

	lead.HasWebsite = lead.WebsiteURL != "" && !isSocialHost(websiteHost(lead.WebsiteURL))

	if raw.FreshnessScore != nil {
		lead.FreshnessScore = clampScore(*raw.FreshnessScore)
	} else {
		lead.FreshnessScore = FreshnessScore(raw.SourceUpdatedAt, now)
	}

	return lead
}

// FreshnessScore decays from 100 by two points per day of provider-data age.
// A lead with no provider timestamp is treated as fully fresh.
func FreshnessScore(sourceUpdatedAt *time.Time, now time.Time) int {
	if sourceUpdatedAt == nil || sourceUpdatedAt.IsZero() {
		return 100
	}

	age := now.Sub(*sourceUpdatedAt)
	if age < 0 {
		return 100
	}

	days := int(age.Hours() / 24)
	return clampScore(100 - days*freshnessDecayPerDay)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// normalizePhone attempts E.164 formatting first, then strips everything that
// is not a digit, keeping a single leading "+".
func normalizePhone(input string) string {
	normalized := phone.NormalizeE164(input)
	if normalized == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range normalized {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeWebsite prefixes bare domains with https://.
func normalizeWebsite(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	return trimmed
}

// websiteHost extracts the lowercased host from a URL, dropping any www prefix.
func websiteHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func isSocialHost(host string) bool {
	if host == "" {
		return false
	}
	for _, social := range socialHosts {
		if host == social || strings.HasSuffix(host, "."+social) {
			return true
		}
	}
	return false
}
