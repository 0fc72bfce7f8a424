package enums

// CommunicationChannel is the delivery channel of a communications-log entry.
type CommunicationChannel string

const (
	CommunicationChannelEmail CommunicationChannel = "email"
)

// MessageType tags the purpose of an outbound message.
type MessageType string

const (
	MessageTypeWelcome MessageType = "welcome"
)

// DeliveryStatus is the recorded status of a send attempt.
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// DeliveryStatusFor maps a success flag to its status.
func DeliveryStatusFor(success bool) DeliveryStatus {
	if success {
		return DeliveryStatusSent
	}
	return DeliveryStatusFailed
}
