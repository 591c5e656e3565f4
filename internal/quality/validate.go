package quality

import (
	"regexp"

	"leadscout_backend/platform/phone"
)

const minPhoneDigits = 10

var websitePattern = regexp.MustCompile(`^https?://\S+\.\S+`)

// Validate checks a normalized lead against the persistence rules and
// accumulates every violation so callers can report all problems at once.
// It never short-circuits and never returns an error.
func Validate(lead NormalizedLead) ValidationResult {
	var errs []string

	if lead.BusinessName == "" {
		errs = append(errs, "business_name is required")
	}

	if lead.Address == "" {
		errs = append(errs, "address is required")
	}

	if lead.GoogleRating != nil && (*lead.GoogleRating < 0 || *lead.GoogleRating > 5) {
		errs = append(errs, "google_rating must be between 0 and 5")
	}

	if lead.Phone != "" && phone.DigitCount(lead.Phone) < minPhoneDigits {
		errs = append(errs, "phone must contain at least 10 digits")
	}

	if lead.WebsiteURL != "" && !websitePattern.MatchString(lead.WebsiteURL) {
		errs = append(errs, "website_url must be a valid http(s) URL")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
