package mqtt

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

func TestValidateTopicPattern(t *testing.T) {
	tests := []struct {
		name        string
		topic       string
		expectError bool
		errorMsg    string
	}{
		// Valid patterns
		{name: "simple topic", topic: "robots/diagnostics"},
		{name: "topic with one parameter", topic: "robots/{robotID}/diagnostics"},
		{name: "topic with multiple parameters", topic: "robots/{robotID}/joints/{joint}/temperature"},
		{name: "parameter with underscore", topic: "robots/{robot_id}/diagnostics"},
		{name: "parameter with numbers", topic: "robots/{robot2}/diagnostics"},

		// Invalid patterns
		{name: "empty topic", topic: "", expectError: true, errorMsg: "topic cannot be empty"},
		{name: "leading slash", topic: "/robots/diagnostics", expectError: true, errorMsg: "leading slash is not allowed"},
		{name: "trailing slash", topic: "robots/diagnostics/", expectError: true, errorMsg: "trailing slash is not allowed"},
		{name: "multi-level wildcard", topic: "robots/#", expectError: true, errorMsg: "multi-level wildcard '#' is not supported"},
		{name: "single-level wildcard", topic: "robots/+/diagnostics", expectError: true, errorMsg: "wildcard '+' is not supported"},
		{name: "parameter starts with number", topic: "robots/{1robot}/diagnostics", expectError: true, errorMsg: "invalid parameter name '1robot'"},
		{name: "parameter starts with underscore", topic: "robots/{_robot}/diagnostics", expectError: true, errorMsg: "invalid parameter name '_robot'"},
		{name: "parameter with hyphen", topic: "robots/{robot-id}/diagnostics", expectError: true, errorMsg: "invalid parameter name 'robot-id'"},
		{name: "incomplete parameter opening brace", topic: "robots/{robotID/diagnostics", expectError: true, errorMsg: "invalid parameter syntax"},
		{name: "incomplete parameter closing brace", topic: "robots/robotID}/diagnostics", expectError: true, errorMsg: "invalid parameter syntax"},
		{name: "empty parameter name", topic: "robots/{}/diagnostics", expectError: true, errorMsg: "invalid parameter name ''"},
		{name: "empty segments in middle", topic: "robots//diagnostics", expectError: true, errorMsg: "empty segments are not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTopicPattern(tt.topic)
			if tt.expectError {
				if err == nil {
					t.Errorf("validateTopicPattern(%q) expected error containing %q, got nil", tt.topic, tt.errorMsg)
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("validateTopicPattern(%q) error = %q, want error containing %q", tt.topic, err.Error(), tt.errorMsg)
				}
			} else if err != nil {
				t.Errorf("validateTopicPattern(%q) unexpected error: %v", tt.topic, err)
			}
		})
	}
}

func TestConvertTopicToMQTT(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no parameters", input: "robots/diagnostics", expected: "robots/diagnostics"},
		{name: "single parameter", input: "robots/{robotID}/diagnostics", expected: "robots/+/diagnostics"},
		{name: "multiple parameters", input: "robots/{robotID}/joints/{joint}", expected: "robots/+/joints/+"},
		{name: "parameter at start", input: "{robotID}/diagnostics", expected: "+/diagnostics"},
		{name: "empty topic", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertTopicToMQTT(tt.input)
			if result != tt.expected {
				t.Errorf("convertTopicToMQTT(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExpandTopic(t *testing.T) {
	tests := []struct {
		name        string
		topic       string
		params      map[string]string
		expected    string
		expectError bool
	}{
		{name: "no parameters", topic: "robots/diagnostics", expected: "robots/diagnostics"},
		{name: "single parameter", topic: "robots/{robotID}/diagnostics", params: map[string]string{"robotID": "nao"}, expected: "robots/nao/diagnostics"},
		{name: "missing value", topic: "robots/{robotID}/diagnostics", expectError: true},
		{name: "empty value", topic: "robots/{robotID}/diagnostics", params: map[string]string{"robotID": ""}, expectError: true},
		{name: "value with slash", topic: "robots/{robotID}/diagnostics", params: map[string]string{"robotID": "a/b"}, expectError: true},
		{name: "value with wildcard", topic: "robots/{robotID}/diagnostics", params: map[string]string{"robotID": "+"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExpandTopic(tt.topic, tt.params)
			if tt.expectError {
				if err == nil {
					t.Errorf("ExpandTopic(%q) expected error, got %q", tt.topic, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandTopic(%q) unexpected error: %v", tt.topic, err)
			}
			if result != tt.expected {
				t.Errorf("ExpandTopic(%q) = %q, want %q", tt.topic, result, tt.expected)
			}
		})
	}
}

func TestValidateParameters(t *testing.T) {
	robotID := TopicParameter{Name: "robotID", Description: "Robot identifier"}

	tests := []struct {
		name        string
		topic       string
		documented  []TopicParameter
		expectError bool
	}{
		{name: "no parameters", topic: "robots/diagnostics"},
		{name: "documented parameter", topic: "robots/{robotID}/diagnostics", documented: []TopicParameter{robotID}},
		{name: "undocumented parameter", topic: "robots/{robotID}/diagnostics", expectError: true},
		{name: "unknown parameter", topic: "robots/diagnostics", documented: []TopicParameter{robotID}, expectError: true},
		{name: "missing description", topic: "robots/{robotID}/diagnostics", documented: []TopicParameter{{Name: "robotID"}}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateParameters(tt.topic, tt.documented)
			if tt.expectError && err == nil {
				t.Errorf("validateParameters(%q) expected error, got nil", tt.topic)
			}
			if !tt.expectError && err != nil {
				t.Errorf("validateParameters(%q) unexpected error: %v", tt.topic, err)
			}
		})
	}
}

func TestValidateQoS(t *testing.T) {
	tests := []struct {
		name        string
		qos         QoS
		expectError bool
	}{
		{name: "QoS 0 - At Most Once", qos: QoSAtMostOnce},
		{name: "QoS 1 - At Least Once", qos: QoSAtLeastOnce},
		{name: "QoS 2 - Exactly Once", qos: QoSExactlyOnce},
		{name: "Invalid QoS 3", qos: 3, expectError: true},
		{name: "Invalid QoS 255", qos: 255, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQoS(tt.qos)
			if tt.expectError && err == nil {
				t.Errorf("validateQoS(%d) expected error, got nil", tt.qos)
			}
			if !tt.expectError && err != nil {
				t.Errorf("validateQoS(%d) unexpected error: %v", tt.qos, err)
			}
		})
	}
}

func newTestBuilder(t *testing.T) *MQTTBuilder {
	t.Helper()

	mb, err := NewMQTTBuilder(slog.New(slog.NewTextHandler(io.Discard, nil)), MQTTClientOptions{
		BrokerURL: "tcp://127.0.0.1:1883",
		ClientID:  "test",
	})
	if err != nil {
		t.Fatalf("NewMQTTBuilder() unexpected error: %v", err)
	}

	return mb
}

func TestNewMQTTBuilderRequiresOptions(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := NewMQTTBuilder(l, MQTTClientOptions{ClientID: "test"}); err == nil {
		t.Error("expected error for missing broker URL")
	}

	if _, err := NewMQTTBuilder(l, MQTTClientOptions{BrokerURL: "tcp://127.0.0.1:1883"}); err == nil {
		t.Error("expected error for missing client ID")
	}
}

func TestRegisterPublish(t *testing.T) {
	mb := newTestBuilder(t)

	spec := PublicationSpec{
		OperationID:     "publishDiagnostics",
		Summary:         "Joint diagnostics",
		Group:           "Diagnostics",
		TopicParameters: []TopicParameter{{Name: "robotID", Description: "Robot identifier"}},
		MessageType:     struct{}{},
		QoS:             QoSAtLeastOnce,
		Retained:        true,
	}

	if err := mb.RegisterPublish("robots/{robotID}/diagnostics", spec); err != nil {
		t.Fatalf("RegisterPublish() unexpected error: %v", err)
	}

	got, ok := mb.Publication("publishDiagnostics")
	if !ok {
		t.Fatal("publication not registered")
	}
	if got.TopicMQTT != "robots/+/diagnostics" {
		t.Errorf("TopicMQTT = %q, want %q", got.TopicMQTT, "robots/+/diagnostics")
	}
	if got.Topic != "robots/{robotID}/diagnostics" {
		t.Errorf("Topic = %q", got.Topic)
	}

	if err := mb.RegisterPublish("robots/{robotID}/other", spec); err == nil {
		t.Error("expected duplicate operationID error")
	}

	mb.runConnectOnce.Store(true)
	spec.OperationID = "publishLate"
	if err := mb.RegisterPublish("robots/{robotID}/late", spec); err == nil {
		t.Error("expected error when registering after connect")
	}
}

func TestRegisterSubscribe(t *testing.T) {
	mb := newTestBuilder(t)

	spec := SubscriptionSpec{
		OperationID:     "subscribeDiagnosticsCommand",
		Summary:         "Diagnostics commands",
		Group:           "Diagnostics",
		TopicParameters: []TopicParameter{{Name: "robotID", Description: "Robot identifier"}},
		MessageType:     struct{}{},
		QoS:             QoSAtLeastOnce,
	}

	if err := mb.RegisterSubscribe("robots/{robotID}/diagnostics/commands", spec); err == nil {
		t.Error("expected error for missing handler")
	}

	spec.Handler = func(pahomqtt.Client, pahomqtt.Message) {}
	if err := mb.RegisterSubscribe("robots/{robotID}/diagnostics/commands", spec); err != nil {
		t.Fatalf("RegisterSubscribe() unexpected error: %v", err)
	}

	if _, ok := mb.Publication("subscribeDiagnosticsCommand"); ok {
		t.Error("subscription must not be returned as a publication")
	}
}

func TestClientPublishUnknownOperation(t *testing.T) {
	mb := newTestBuilder(t)

	if err := mb.Client().Publish("missing", "robots/nao/diagnostics", map[string]string{}); err == nil {
		t.Error("expected error for unknown operationID")
	}

	if mb.Client().IsConnected() {
		t.Error("client must not report connected before Connect")
	}
}

func TestClientPublishWrongMessageType(t *testing.T) {
	mb := newTestBuilder(t)

	type report struct {
		ID string `json:"id"`
	}

	mb.MustRegisterPublish("robots/{robotID}/diagnostics", PublicationSpec{
		OperationID:     "publishDiagnostics",
		Summary:         "Joint diagnostics",
		Group:           "Diagnostics",
		TopicParameters: []TopicParameter{{Name: "robotID", Description: "Robot identifier"}},
		MessageType:     report{},
		QoS:             QoSAtLeastOnce,
	})

	tests := []struct {
		name    string
		payload any
	}{
		{name: "map", payload: map[string]string{"id": "r1"}},
		{name: "pointer", payload: &report{ID: "r1"}},
		{name: "nil", payload: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mb.Client().Publish("publishDiagnostics", "robots/nao/diagnostics", tt.payload)
			if err == nil || !strings.Contains(err.Error(), "does not match") {
				t.Errorf("Publish() error = %v, want payload type mismatch", err)
			}
		})
	}
}
