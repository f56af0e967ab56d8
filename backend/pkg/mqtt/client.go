package mqtt

import (
	"fmt"
	"reflect"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"joint-diagnostics/backend/pkg/utils"
)

type MQTTClient struct {
	client  pahomqtt.Client
	builder *MQTTBuilder
}

// Publish sends a message to the specified topic using the publication spec identified by operationID.
// The payload must have the publication's MessageType. The topic is not validated.
func (c *MQTTClient) Publish(operationID string, actualTopic string, payload any) error {
	pub, ok := c.builder.Publication(operationID)
	if !ok {
		return fmt.Errorf("publication not found for operationID %s", operationID)
	}

	if want, got := reflect.TypeOf(pub.MessageType), reflect.TypeOf(payload); want != got {
		return fmt.Errorf("payload type %v does not match %v for operationID %s", got, want, operationID)
	}

	bytes, err := utils.ToJSON(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %w", err)
	}

	token := c.client.Publish(actualTopic, byte(pub.QoS), pub.Retained, bytes)
	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", actualTopic, err)
	}

	return nil
}

// IsConnected reports whether the client currently holds a broker connection.
func (c *MQTTClient) IsConnected() bool {
	return c.builder.connected.Load() && c.client.IsConnectionOpen()
}
