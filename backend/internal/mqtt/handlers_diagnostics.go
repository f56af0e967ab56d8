package mqtt

import (
	"context"
	"fmt"
	"log/slog"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"joint-diagnostics/backend/internal/diagnostics"
	"joint-diagnostics/backend/internal/mqtt/types"
	"joint-diagnostics/backend/pkg/mqtt"
	"joint-diagnostics/backend/pkg/utils"
)

const (
	DiagnosticsTopic        = "robots/{robotID}/diagnostics"
	DiagnosticsCommandTopic = "robots/{robotID}/diagnostics/commands"

	publishDiagnosticsID          = "publishDiagnostics"
	subscribeDiagnosticsCommandID = "subscribeDiagnosticsCommand"
)

var robotIDParameter = mqtt.TopicParameter{
	Name:        "robotID",
	Description: "Identifier of the robot the joints belong to",
}

// RegisterDiagnosticsPublish registers the diagnostics report publication.
func (h *Handler) RegisterDiagnosticsPublish(mb *mqtt.MQTTBuilder) {
	mb.MustRegisterPublish(DiagnosticsTopic, mqtt.PublicationSpec{
		OperationID:     publishDiagnosticsID,
		Summary:         "Publish joint diagnostics",
		Group:           "Diagnostics",
		TopicParameters: []mqtt.TopicParameter{robotIDParameter},
		MessageType:     diagnostics.Report{},
		QoS:             mqtt.QoSAtLeastOnce,
		Retained:        true,
	})
}

// RegisterDiagnosticsCommandSubscribe registers the diagnostics command subscription.
func (h *Handler) RegisterDiagnosticsCommandSubscribe(mb *mqtt.MQTTBuilder) {
	mb.MustRegisterSubscribe(DiagnosticsCommandTopic, mqtt.SubscriptionSpec{
		OperationID:     subscribeDiagnosticsCommandID,
		Summary:         "Subscribe to diagnostics commands",
		Group:           "Diagnostics",
		TopicParameters: []mqtt.TopicParameter{robotIDParameter},
		MessageType:     types.DiagnosticsCommand{Command: types.CommandPoll},
		Handler:         h.handleDiagnosticsCommand,
		QoS:             mqtt.QoSAtLeastOnce,
	})
}

// PublishReport publishes a diagnostics report on the robot's diagnostics topic.
func (h *Handler) PublishReport(_ context.Context, report diagnostics.Report) error {
	if !h.publisher.IsConnected() {
		return ErrNotConnected
	}

	topic, err := mqtt.ExpandTopic(DiagnosticsTopic, map[string]string{"robotID": h.robotID})
	if err != nil {
		return fmt.Errorf("failed to build diagnostics topic: %w", err)
	}

	if err := h.publisher.Publish(publishDiagnosticsID, topic, report); err != nil {
		return fmt.Errorf("failed to publish diagnostics report: %w", err)
	}

	return nil
}

// handleDiagnosticsCommand handles incoming diagnostics commands.
func (h *Handler) handleDiagnosticsCommand(_ pahomqtt.Client, msg pahomqtt.Message) {
	want, err := mqtt.ExpandTopic(DiagnosticsCommandTopic, map[string]string{"robotID": h.robotID})
	if err != nil || msg.Topic() != want {
		h.l.Debug("ignoring command for another robot", slog.String("topic", msg.Topic()))
		return
	}

	command, err := utils.FromJSON[types.DiagnosticsCommand](msg.Payload())
	if err != nil {
		h.l.Error("failed to unmarshal diagnostics command",
			slog.String("topic", msg.Topic()),
			utils.ErrAttr(err))

		return
	}

	switch command.Command {
	case types.CommandPoll:
		queued := h.poller.Trigger()
		h.l.Info("received poll command",
			slog.String("requestID", command.RequestID),
			slog.Bool("queued", queued))
	default:
		h.l.Warn("unknown diagnostics command",
			slog.String("command", command.Command),
			slog.String("requestID", command.RequestID))
	}
}
