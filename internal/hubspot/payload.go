package hubspot

import (
	"bytes"
	"encoding/json"
	"strings"

	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
	"github.com/lynk-ai/lynk-backend/pkg/enums"
)

// Notification is the subset of a CRM webhook payload the pipeline acts on.
type Notification struct {
	SubscriptionType    enums.SubscriptionType
	RawSubscriptionType string
	ObjectID            string
	ChangeSource        string
	PortalID            string
}

// payload is a decoded request body. Document is what gets stored in the
// events log; Notification is nil when the body carries nothing actionable.
type payload struct {
	Document     dbtypes.JSONDocument
	Notification *Notification
	BatchSize    int
}

type wireNotification struct {
	SubscriptionType *string         `json:"subscriptionType"`
	ObjectID         json.RawMessage `json:"objectId"`
	ChangeSource     *string         `json:"changeSource"`
	PortalID         json.RawMessage `json:"portalId"`
}

// decodePayload never fails: bodies that are not JSON are stored as {"raw": body}.
// CRM batches arrive as arrays; the first element drives enrichment and the
// whole array is stored.
func decodePayload(body []byte) payload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return payload{Document: rawDocument(body)}
	}

	if trimmed[0] != '[' {
		return payload{
			Document:     dbtypes.JSONDocument(trimmed),
			Notification: parseNotification(trimmed),
			BatchSize:    1,
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return payload{Document: rawDocument(body)}
	}
	switch len(items) {
	case 0:
		return payload{Document: dbtypes.JSONDocument(trimmed)}
	case 1:
		return payload{
			Document:     dbtypes.JSONDocument(items[0]),
			Notification: parseNotification(items[0]),
			BatchSize:    1,
		}
	default:
		return payload{
			Document:     dbtypes.JSONDocument(trimmed),
			Notification: parseNotification(items[0]),
			BatchSize:    len(items),
		}
	}
}

func rawDocument(body []byte) dbtypes.JSONDocument {
	doc, err := dbtypes.NewJSONDocument(map[string]string{"raw": string(body)})
	if err != nil {
		return nil
	}
	return doc
}

// parseNotification returns nil for non-object JSON and for objects that
// carry neither a subscription type nor an object id.
func parseNotification(raw json.RawMessage) *Notification {
	var wire wireNotification
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}

	n := &Notification{
		ObjectID: scalarString(wire.ObjectID),
		PortalID: scalarString(wire.PortalID),
	}
	if wire.SubscriptionType != nil {
		n.RawSubscriptionType = strings.TrimSpace(*wire.SubscriptionType)
	}
	if wire.ChangeSource != nil {
		n.ChangeSource = strings.TrimSpace(*wire.ChangeSource)
	}
	if n.RawSubscriptionType == "" && n.ObjectID == "" {
		return nil
	}
	n.SubscriptionType = enums.ParseSubscriptionType(n.RawSubscriptionType)
	return n
}

// scalarString renders a JSON string or number as text; anything else is empty.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		return ""
	}
}
