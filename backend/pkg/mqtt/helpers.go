package mqtt

import (
	"errors"
	"fmt"
	"strings"
)

// validateTopicPattern validates an MQTT topic pattern with {param} placeholders.
// Valid patterns:
// - Parameters must be in {paramName} format (e.g., robots/{robotID}/diagnostics)
// - Parameter names must start with a letter and contain only alphanumeric characters and underscores
// - Wildcards '#' and '+' are NOT supported for explicitness.
func validateTopicPattern(topic string) error {
	if topic == "" {
		return errors.New("topic cannot be empty")
	}

	if strings.HasPrefix(topic, "/") {
		return errors.New("leading slash is not allowed")
	}

	if strings.HasSuffix(topic, "/") {
		return errors.New("trailing slash is not allowed")
	}

	for segment := range strings.SplitSeq(topic, "/") {
		if segment == "" {
			return errors.New("empty segments are not allowed")
		}

		if strings.Contains(segment, "#") {
			return errors.New("multi-level wildcard '#' is not supported - use explicit parameters {param} instead")
		}

		if strings.Contains(segment, "+") {
			return errors.New("wildcard '+' is not supported - use parameter syntax {param} instead")
		}

		if name, ok := paramName(segment); ok {
			if !isValidParameterName(name) {
				return fmt.Errorf("invalid parameter name '%s' - must start with a letter and contain only alphanumeric characters and underscores", name)
			}
		} else if strings.ContainsAny(segment, "{}") {
			return errors.New("invalid parameter syntax - use {paramName} format")
		}
	}

	return nil
}

// paramName returns the name inside a {name} segment.
func paramName(segment string) (string, bool) {
	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") && len(segment) >= 2 {
		return segment[1 : len(segment)-1], true
	}

	return "", false
}

func isValidParameterName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'

		if i == 0 && !isLetter {
			return false
		}

		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}

	return true
}

// convertTopicToMQTT converts a parameterized topic (robots/{robotID}/diagnostics)
// to an MQTT wildcard pattern (robots/+/diagnostics).
func convertTopicToMQTT(topic string) string {
	segments := strings.Split(topic, "/")
	for i, segment := range segments {
		if _, ok := paramName(segment); ok {
			segments[i] = "+"
		}
	}

	return strings.Join(segments, "/")
}

// ExpandTopic fills the {param} placeholders of a topic pattern.
// Values must be non-empty and must not contain '/', '+' or '#'.
func ExpandTopic(topic string, params map[string]string) (string, error) {
	segments := strings.Split(topic, "/")
	for i, segment := range segments {
		name, ok := paramName(segment)
		if !ok {
			continue
		}

		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("missing value for topic parameter %s", name)
		}

		if value == "" || strings.ContainsAny(value, "/+#") {
			return "", fmt.Errorf("invalid value %q for topic parameter %s", value, name)
		}

		segments[i] = value
	}

	return strings.Join(segments, "/"), nil
}

// topicParameterNames returns the parameter names of a topic pattern in order.
func topicParameterNames(topic string) []string {
	var names []string

	for segment := range strings.SplitSeq(topic, "/") {
		if name, ok := paramName(segment); ok {
			names = append(names, name)
		}
	}

	return names
}

// validateParameters checks that the documented parameters match the topic exactly.
func validateParameters(topic string, documented []TopicParameter) error {
	inTopic := map[string]struct{}{}
	for _, name := range topicParameterNames(topic) {
		inTopic[name] = struct{}{}
	}

	seen := map[string]struct{}{}

	for _, p := range documented {
		if p.Name == "" {
			return fmt.Errorf("parameter name required for topic %s", topic)
		}

		if p.Description == "" {
			return fmt.Errorf("parameter Description required for topic %s", topic)
		}

		if _, exists := inTopic[p.Name]; !exists {
			return fmt.Errorf("documented parameter %s not found in topic", p.Name)
		}

		seen[p.Name] = struct{}{}
	}

	for name := range inTopic {
		if _, exists := seen[name]; !exists {
			return fmt.Errorf("topic parameter %s not documented", name)
		}
	}

	return nil
}

// validateQoS validates a QoS level.
func validateQoS(qos QoS) error {
	if qos != QoSAtMostOnce && qos != QoSAtLeastOnce && qos != QoSExactlyOnce {
		return errors.New("qos must be 0, 1, or 2")
	}

	return nil
}

// validatePublicationSpec validates a publication specification.
func validatePublicationSpec(spec PublicationSpec) error {
	if spec.OperationID == "" {
		return errors.New("operationID is required")
	}

	if spec.Summary == "" {
		return errors.New("summary is required")
	}

	if spec.Group == "" {
		return errors.New("group is required")
	}

	if spec.MessageType == nil {
		return errors.New("messageType is required")
	}

	return validateQoS(spec.QoS)
}

// validateSubscriptionSpec validates a subscription specification.
func validateSubscriptionSpec(spec SubscriptionSpec) error {
	if spec.OperationID == "" {
		return errors.New("operationID is required")
	}

	if spec.Summary == "" {
		return errors.New("summary is required")
	}

	if spec.Group == "" {
		return errors.New("group is required")
	}

	if spec.MessageType == nil {
		return errors.New("messageType is required")
	}

	if spec.Handler == nil {
		return errors.New("handler is required")
	}

	return validateQoS(spec.QoS)
}
