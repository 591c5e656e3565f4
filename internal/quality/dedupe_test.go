package quality

import "testing"

func TestDeduplicateFirstOccurrenceWinsOrderPreserved(t *testing.T) {
	leads := []NormalizedLead{
		{BusinessName: "Acme Plumbing", Address: "123 Main St", ExternalPlaceID: "p1", Phone: "111"},
		{BusinessName: "Bravo Roofing", Address: "9 Oak Ave", ExternalPlaceID: "p2"},
		{BusinessName: "Acme Plumbing", Address: "123 Main St", ExternalPlaceID: "p1", Phone: "222"},
		{BusinessName: "Charlie Cafe", Address: "1 Elm St"},
	}

	got := Deduplicate(leads)

	if len(got) != 3 {
		t.Fatalf("expected 3 leads after dedup, got %d", len(got))
	}
	if got[0].ExternalPlaceID != "p1" || got[1].ExternalPlaceID != "p2" || got[2].BusinessName != "Charlie Cafe" {
		t.Errorf("expected first-seen order preserved, got %+v", got)
	}
	if got[0].Phone != "111" {
		t.Errorf("expected first occurrence to win, got phone %q", got[0].Phone)
	}
}

func TestDeduplicateFallsBackToNameAddressKey(t *testing.T) {
	leads := []NormalizedLead{
		{BusinessName: "Acme Plumbing", Address: "123 Main St"},
		{BusinessName: "ACME PLUMBING", Address: "123 MAIN ST"},
		{BusinessName: "Acme Plumbing", Address: "456 Side St"},
	}

	got := Deduplicate(leads)

	if len(got) != 2 {
		t.Fatalf("expected case-insensitive name|address dedup to keep 2, got %d", len(got))
	}
}

func TestDeduplicateNameKeyDoesNotCollideWithPlaceID(t *testing.T) {
	leads := []NormalizedLead{
		{BusinessName: "Acme", Address: "1 St", ExternalPlaceID: "p1"},
		{BusinessName: "Acme", Address: "1 St"},
	}

	// Same business, one record carrying a place ID and one without: the keys
	// differ, so both survive. Reconciliation relies on the upsert key instead.
	if got := Deduplicate(leads); len(got) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(got))
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	if got := Deduplicate(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %d", len(got))
	}
}
