package mqtt

import (
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// QoS represents MQTT quality of service levels.
type QoS byte

const (
	// QoSAtMostOnce means the message is delivered at most once, or it may not be delivered at all.
	QoSAtMostOnce QoS = 0
	// QoSAtLeastOnce means the message is always delivered at least once.
	QoSAtLeastOnce QoS = 1
	// QoSExactlyOnce means the message is always delivered exactly once.
	QoSExactlyOnce QoS = 2
)

// TopicParameter describes a parameter in an MQTT topic pattern.
type TopicParameter struct {
	Name        string // Name is the parameter name (e.g., "robotID")
	Description string // Description explains what this parameter represents
}

// PublicationSpec describes an MQTT publication operation.
type PublicationSpec struct {
	OperationID     string           // OperationID is a unique identifier for this publication (e.g., "publishDiagnostics").
	Topic           string           // Topic is the parameterized pattern it was registered with (e.g., robots/{robotID}/diagnostics).
	TopicMQTT       string           // TopicMQTT is the MQTT wildcard format (e.g., robots/+/diagnostics).
	Summary         string           // Summary is a short description of the publication.
	Group           string           // Group is a logical grouping for the publication (e.g., "Diagnostics").
	TopicParameters []TopicParameter // TopicParameters describes the parameters in the topic pattern.
	MessageType     any              // MessageType is a zero value of the payload type; Publish rejects any other type.
	QoS             QoS              // QoS is the quality of service level for this publication.
	Retained        bool             // Retained indicates whether the message should be retained by the broker.
}

// SubscriptionSpec describes an MQTT subscription operation.
type SubscriptionSpec struct {
	OperationID     string                  // OperationID is a unique identifier for this subscription (e.g., "subscribeDiagnosticsCommand").
	Topic           string                  // Topic is the parameterized pattern it was registered with.
	TopicMQTT       string                  // TopicMQTT is the MQTT wildcard format.
	Summary         string                  // Summary is a short description of the subscription.
	Group           string                  // Group is a logical grouping for the subscription.
	TopicParameters []TopicParameter        // TopicParameters describes the parameters in the topic pattern.
	MessageType     any                     // Expected Go type of messages received on this subscription.
	Handler         pahomqtt.MessageHandler // Handler is the function that will be called when a message is received.
	QoS             QoS                     // QoS is the quality of service level for this subscription.
}
