package quality

import (
	"slices"
	"testing"
)

func TestValidateCollectsAllViolations(t *testing.T) {
	result := Validate(NormalizedLead{
		BusinessName: "A",
		Address:      "",
		Phone:        "123",
	})

	if result.Valid {
		t.Fatal("expected lead to be invalid")
	}
	if !slices.Contains(result.Errors, "address is required") {
		t.Errorf("expected address violation, got %v", result.Errors)
	}
	if !slices.Contains(result.Errors, "phone must contain at least 10 digits") {
		t.Errorf("expected phone violation, got %v", result.Errors)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected exactly 2 violations, got %v", result.Errors)
	}
}

func TestValidateRules(t *testing.T) {
	rating := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		lead    NormalizedLead
		valid   bool
		wantErr string
	}{
		{
			name:  "complete lead passes",
			lead:  NormalizedLead{BusinessName: "Acme", Address: "123 Main St", Phone: "+15125550142", WebsiteURL: "https://acme.com", GoogleRating: rating(4.5)},
			valid: true,
		},
		{
			name:    "missing business name",
			lead:    NormalizedLead{Address: "123 Main St"},
			wantErr: "business_name is required",
		},
		{
			name:    "rating above five",
			lead:    NormalizedLead{BusinessName: "Acme", Address: "123 Main St", GoogleRating: rating(5.1)},
			wantErr: "google_rating must be between 0 and 5",
		},
		{
			name:    "negative rating",
			lead:    NormalizedLead{BusinessName: "Acme", Address: "123 Main St", GoogleRating: rating(-1)},
			wantErr: "google_rating must be between 0 and 5",
		},
		{
			name:  "absent optional fields pass",
			lead:  NormalizedLead{BusinessName: "Acme", Address: "123 Main St"},
			valid: true,
		},
		{
			name:    "malformed website",
			lead:    NormalizedLead{BusinessName: "Acme", Address: "123 Main St", WebsiteURL: "ftp://acme.com"},
			wantErr: "website_url must be a valid http(s) URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.lead)
			if result.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", result.Valid, tt.valid, result.Errors)
			}
			if tt.wantErr != "" && !slices.Contains(result.Errors, tt.wantErr) {
				t.Errorf("expected %q in %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateNeverReturnsErrorForEmptyLead(t *testing.T) {
	result := Validate(NormalizedLead{})
	if result.Valid {
		t.Fatal("expected empty lead to be invalid")
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected violations for empty lead")
	}
}
