package quality

import "strings"

// Deduplicate removes duplicate leads in a stable one-pass scan. The dedup key
// is the external place ID when present, otherwise the lowercased
// "businessName|address" pair. The first occurrence wins and input order is
// preserved.
func Deduplicate(leads []NormalizedLead) []NormalizedLead {
	if len(leads) == 0 {
		return leads
	}

	seen := make(map[string]struct{}, len(leads))
	out := make([]NormalizedLead, 0, len(leads))

	for _, lead := range leads {
		key := dedupKey(lead)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, lead)
	}

	return out
}

func dedupKey(lead NormalizedLead) string {
	if lead.ExternalPlaceID != "" {
		return "id:" + lead.ExternalPlaceID
	}
	return "na:" + strings.ToLower(lead.BusinessName+"|"+lead.Address)
}
