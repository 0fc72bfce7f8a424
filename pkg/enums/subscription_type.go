package enums

import "strings"

// SubscriptionType is the CRM event kind carried on a webhook payload.
type SubscriptionType string

const (
	SubscriptionContactCreation       SubscriptionType = "contact.creation"
	SubscriptionContactPropertyChange SubscriptionType = "contact.propertyChange"
	SubscriptionContactDeletion       SubscriptionType = "contact.deletion"
	SubscriptionContactMerge          SubscriptionType = "contact.merge"
	SubscriptionContactRestore        SubscriptionType = "contact.restore"
	SubscriptionUnknown               SubscriptionType = "unknown"
)

var validSubscriptionTypes = []SubscriptionType{
	SubscriptionContactCreation,
	SubscriptionContactPropertyChange,
	SubscriptionContactDeletion,
	SubscriptionContactMerge,
	SubscriptionContactRestore,
}

// IsValid reports whether s is a recognised subscription kind.
func (s SubscriptionType) IsValid() bool {
	for _, candidate := range validSubscriptionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubscriptionType normalises separators and case, so "contact creation",
// "contact_creation" and "contact.creation" all map to SubscriptionContactCreation.
// Unrecognised or empty values yield SubscriptionUnknown.
func ParseSubscriptionType(value string) SubscriptionType {
	normalized := normalizeSubscription(value)
	if normalized == "" {
		return SubscriptionUnknown
	}
	for _, candidate := range validSubscriptionTypes {
		if normalizeSubscription(string(candidate)) == normalized {
			return candidate
		}
	}
	return SubscriptionUnknown
}

func normalizeSubscription(value string) string {
	replacer := strings.NewReplacer(" ", ".", "_", ".", "-", ".")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(value)))
}
