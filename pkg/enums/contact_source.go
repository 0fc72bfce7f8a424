package enums

import "strings"

// ContactSource records where a marketing contact came from. Besides the fixed
// values below, the webhook path stores the CRM's change-source verbatim.
type ContactSource string

const (
	ContactSourceNewsletter     ContactSource = "newsletter"
	ContactSourceHubSpotSync    ContactSource = "hubspot_sync"
	ContactSourceHubSpotWebhook ContactSource = "hubspot_webhook"
)

// ContactProvenance is the closed classification of a ContactSource.
type ContactProvenance int

const (
	ProvenanceWebhook ContactProvenance = iota
	ProvenanceNewsletter
	ProvenanceSync
)

// ContactSourceFromChangeSource maps a webhook changeSource into a ContactSource,
// falling back to ContactSourceHubSpotWebhook when the field is blank.
func ContactSourceFromChangeSource(changeSource string) ContactSource {
	trimmed := strings.TrimSpace(changeSource)
	if trimmed == "" {
		return ContactSourceHubSpotWebhook
	}
	return ContactSource(trimmed)
}

// Provenance classifies the source; anything that is not the newsletter or the
// bulk sync tag came in through a webhook change-source.
func (s ContactSource) Provenance() ContactProvenance {
	switch ContactSource(strings.ToLower(strings.TrimSpace(string(s)))) {
	case ContactSourceNewsletter:
		return ProvenanceNewsletter
	case ContactSourceHubSpotSync:
		return ProvenanceSync
	default:
		return ProvenanceWebhook
	}
}
