package mqtt

import (
	"errors"
	"log/slog"
)

// ErrNotConnected is returned when a report is dropped because the client has no broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher sends payloads on registered publications.
type Publisher interface {
	Publish(operationID string, actualTopic string, payload any) error
	IsConnected() bool
}

// Poller accepts on-demand poll requests.
type Poller interface {
	Trigger() bool
}

// Handler handles MQTT message processing.
type Handler struct {
	l         *slog.Logger
	publisher Publisher
	poller    Poller
	robotID   string
}

// NewMQTTHandler creates a new MQTT handler for a single robot.
func NewMQTTHandler(l *slog.Logger, publisher Publisher, poller Poller, robotID string) *Handler {
	return &Handler{
		l:         l.With(slog.String("component", "mqtt-handler")),
		publisher: publisher,
		poller:    poller,
		robotID:   robotID,
	}
}
