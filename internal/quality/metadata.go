package quality

// Quality score weights. Each dimension is full-credit-or-zero, no partial
// credit.
const (
	weightBusinessName = 30
	weightAddress      = 20
	weightPhone        = 20
	weightWebsite      = 20
	weightRating       = 10
)

// DeriveMetadata computes the derived quality signals for a lead: the website
// host, whether any contact channel exists, and the weighted quality score.
func DeriveMetadata(lead NormalizedLead) Metadata {
	meta := Metadata{
		WebsiteHost:       websiteHost(lead.WebsiteURL),
		HasContactChannel: lead.Phone != "" || lead.WebsiteURL != "",
	}

	if lead.BusinessName != "" {
		meta.QualityScore += weightBusinessName
	}
	if lead.Address != "" {
		meta.QualityScore += weightAddress
	}
	if lead.Phone != "" {
		meta.QualityScore += weightPhone
	}
	if lead.WebsiteURL != "" {
		meta.QualityScore += weightWebsite
	}
	if lead.GoogleRating != nil {
		meta.QualityScore += weightRating
	}

	return meta
}
