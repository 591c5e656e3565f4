package quality

import (
	"testing"
	"time"
)

func TestNormalizeTrimsAndDefaultsSource(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	lead := Normalize(RawRecord{
		Name:            "  Acme Plumbing  ",
		Address:         " 123 Main St ",
		City:            " Austin ",
		ExternalPlaceID: " p1 ",
	}, now)

	if lead.BusinessName != "Acme Plumbing" {
		t.Errorf("expected trimmed business name, got %q", lead.BusinessName)
	}
	if lead.Address != "123 Main St" {
		t.Errorf("expected trimmed address, got %q", lead.Address)
	}
	if lead.ExternalPlaceID != "p1" {
		t.Errorf("expected trimmed external place id, got %q", lead.ExternalPlaceID)
	}
	if lead.Source != SourceGooglePlaces {
		t.Errorf("expected default source, got %q", lead.Source)
	}
}

func TestNormalizePhoneKeepsLeadingPlusAndDigitsOnly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"formatted us number", "(512) 555-0142", "+15125550142"},
		{"already e164", "+15125550142", "+15125550142"},
		{"dashes and spaces", "512 555 0142", "+15125550142"},
		{"short garbage keeps digits", "ext. 12-34", "1234"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(RawRecord{Phone: tt.input}, time.Now()).Phone
			if got != tt.want {
				t.Errorf("normalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeWebsitePrefixesBareDomains(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"acmeplumbing.com", "https://acmeplumbing.com"},
		{"http://acmeplumbing.com", "http://acmeplumbing.com"},
		{"https://acmeplumbing.com", "https://acmeplumbing.com"},
		{"", ""},
	}

	for _, tt := range tests {
		got := Normalize(RawRecord{Website: tt.input}, time.Now()).WebsiteURL
		if got != tt.want {
			t.Errorf("website %q normalized to %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHasWebsiteExcludesSocialAndDirectoryHosts(t *testing.T) {
	tests := []struct {
		website string
		want    bool
	}{
		{"https://acmeplumbing.com", true},
		{"https://www.facebook.com/acmeplumbing", false},
		{"https://m.facebook.com/acmeplumbing", false},
		{"https://www.yelp.com/biz/acme", false},
		{"acme.business.site", false},
		{"", false},
	}

	for _, tt := range tests {
		got := Normalize(RawRecord{Website: tt.website}, time.Now()).HasWebsite
		if got != tt.want {
			t.Errorf("HasWebsite for %q = %v, want %v", tt.website, got, tt.want)
		}
	}
}

func TestFreshnessScoreDecaysTwoPointsPerDay(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		updated *time.Time
		want    int
	}{
		{"nil timestamp is fully fresh", nil, 100},
		{"same day", timePtr(now), 100},
		{"ten days old", timePtr(now.AddDate(0, 0, -10)), 80},
		{"fifty days old", timePtr(now.AddDate(0, 0, -50)), 0},
		{"floor at zero", timePtr(now.AddDate(-1, 0, 0)), 0},
		{"future timestamp clamps to ceiling", timePtr(now.AddDate(0, 0, 3)), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FreshnessScore(tt.updated, now); got != tt.want {
				t.Errorf("FreshnessScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeKeepsProviderSuppliedFreshnessScore(t *testing.T) {
	supplied := 55
	lead := Normalize(RawRecord{FreshnessScore: &supplied}, time.Now())
	if lead.FreshnessScore != 55 {
		t.Errorf("expected supplied score 55, got %d", lead.FreshnessScore)
	}

	outOfRange := 180
	lead = Normalize(RawRecord{FreshnessScore: &outOfRange}, time.Now())
	if lead.FreshnessScore != 100 {
		t.Errorf("expected clamped score 100, got %d", lead.FreshnessScore)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
