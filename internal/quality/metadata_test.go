package quality

import "testing"

func TestDeriveMetadataQualityScoreIsAllOrNothingPerField(t *testing.T) {
	rating := 4.2

	tests := []struct {
		name string
		lead NormalizedLead
		want int
	}{
		{
			name: "all fields present",
			lead: NormalizedLead{BusinessName: "Acme", Address: "1 St", Phone: "+15125550142", WebsiteURL: "https://acme.com", GoogleRating: &rating},
			want: 100,
		},
		{
			name: "name only",
			lead: NormalizedLead{BusinessName: "Acme"},
			want: 30,
		},
		{
			name: "name address phone",
			lead: NormalizedLead{BusinessName: "Acme", Address: "1 St", Phone: "+15125550142"},
			want: 70,
		},
		{
			name: "empty lead",
			lead: NormalizedLead{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveMetadata(tt.lead).QualityScore; got != tt.want {
				t.Errorf("QualityScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDeriveMetadataContactChannelAndHost(t *testing.T) {
	meta := DeriveMetadata(NormalizedLead{WebsiteURL: "https://www.acme.com/contact"})
	if meta.WebsiteHost != "acme.com" {
		t.Errorf("WebsiteHost = %q, want acme.com", meta.WebsiteHost)
	}
	if !meta.HasContactChannel {
		t.Error("expected website to count as contact channel")
	}

	meta = DeriveMetadata(NormalizedLead{Phone: "+15125550142"})
	if !meta.HasContactChannel {
		t.Error("expected phone to count as contact channel")
	}

	meta = DeriveMetadata(NormalizedLead{BusinessName: "Acme"})
	if meta.HasContactChannel {
		t.Error("expected no contact channel without phone or website")
	}
}
