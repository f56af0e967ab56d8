package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"joint-diagnostics/backend/pkg/utils"
)

// MQTTBuilder registers MQTT publications and subscriptions and owns the client connection.
type MQTTBuilder struct {
	client        pahomqtt.Client
	wrappedClient *MQTTClient
	l             *slog.Logger

	mu            sync.RWMutex
	operationIDs  map[string]struct{}
	publications  map[string]*PublicationSpec
	subscriptions map[string]*SubscriptionSpec

	connected      atomic.Bool
	runConnectOnce atomic.Bool
}

// MQTTClientOptions contains configuration for creating an MQTT client.
type MQTTClientOptions struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

// NewMQTTBuilder creates a new MQTT builder with the given broker configuration.
func NewMQTTBuilder(l *slog.Logger, opts MQTTClientOptions) (*MQTTBuilder, error) {
	l = l.With(slog.String("component", "mqtt-builder"))

	if opts.BrokerURL == "" {
		return nil, errors.New("broker URL is required")
	}

	if opts.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	mb := &MQTTBuilder{
		l:             l,
		operationIDs:  make(map[string]struct{}),
		publications:  make(map[string]*PublicationSpec),
		subscriptions: make(map[string]*SubscriptionSpec),
	}

	clientOpts := pahomqtt.NewClientOptions()
	clientOpts.AddBroker(opts.BrokerURL)
	clientOpts.SetClientID(opts.ClientID)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}

	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	// Retry every 5 seconds, max interval 15 seconds
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectTimeout(5 * time.Second)
	clientOpts.SetConnectRetryInterval(5 * time.Second)
	clientOpts.SetMaxReconnectInterval(15 * time.Second)
	clientOpts.SetKeepAlive(30 * time.Second)

	clientOpts.SetOnConnectHandler(mb.onConnect)
	clientOpts.SetConnectionLostHandler(mb.onConnectionLost)
	clientOpts.SetReconnectingHandler(mb.onReconnecting)

	mb.client = pahomqtt.NewClient(clientOpts)
	mb.wrappedClient = &MQTTClient{
		client:  mb.client,
		builder: mb,
	}

	l.Info("MQTT builder created", slog.String("broker", opts.BrokerURL), slog.String("clientID", opts.ClientID))

	return mb, nil
}

// Client returns the wrapped MQTT client.
func (mb *MQTTBuilder) Client() *MQTTClient {
	return mb.wrappedClient
}

// RegisterPublish registers a publication operation.
func (mb *MQTTBuilder) RegisterPublish(topic string, spec PublicationSpec) error {
	if mb.runConnectOnce.Load() {
		return errors.New("cannot register publication after connecting to MQTT broker")
	}

	if err := validateTopicPattern(topic); err != nil {
		return fmt.Errorf("invalid topic pattern: %w", err)
	}

	if err := validatePublicationSpec(spec); err != nil {
		return fmt.Errorf("invalid publication spec: %w", err)
	}

	if err := validateParameters(topic, spec.TopicParameters); err != nil {
		return fmt.Errorf("invalid topic parameters in operationID %s: %w", spec.OperationID, err)
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.operationIDs[spec.OperationID]; exists {
		return fmt.Errorf("duplicate operationID: %s", spec.OperationID)
	}

	spec.Topic = topic
	spec.TopicMQTT = convertTopicToMQTT(topic)

	mb.operationIDs[spec.OperationID] = struct{}{}
	mb.publications[spec.OperationID] = &spec

	mb.l.Info("Registered MQTT publication",
		slog.String("operationID", spec.OperationID),
		slog.String("topic", topic),
		slog.String("group", spec.Group),
		slog.String("summary", spec.Summary),
		slog.String("messageType", fmt.Sprintf("%T", spec.MessageType)),
	)

	return nil
}

// MustRegisterPublish registers a publication operation and terminates the program if an error occurs.
func (mb *MQTTBuilder) MustRegisterPublish(topic string, spec PublicationSpec) {
	if err := mb.RegisterPublish(topic, spec); err != nil {
		mb.l.Error("Failed to register publication", slog.String("operationID", spec.OperationID), slog.String("topic", topic), utils.ErrAttr(err))
		os.Exit(1)
	}
}

// RegisterSubscribe registers a subscription operation. Subscriptions are
// (re)established on every connect.
func (mb *MQTTBuilder) RegisterSubscribe(topic string, spec SubscriptionSpec) error {
	if mb.runConnectOnce.Load() {
		return errors.New("cannot register subscription after connecting to MQTT broker")
	}

	if err := validateTopicPattern(topic); err != nil {
		return fmt.Errorf("invalid topic pattern: %w", err)
	}

	if err := validateSubscriptionSpec(spec); err != nil {
		return fmt.Errorf("invalid subscription spec: %w", err)
	}

	if err := validateParameters(topic, spec.TopicParameters); err != nil {
		return fmt.Errorf("invalid topic parameters in operationID %s: %w", spec.OperationID, err)
	}

	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.operationIDs[spec.OperationID]; exists {
		return fmt.Errorf("duplicate operationID: %s", spec.OperationID)
	}

	spec.Topic = topic
	spec.TopicMQTT = convertTopicToMQTT(topic)

	mb.operationIDs[spec.OperationID] = struct{}{}
	mb.subscriptions[spec.OperationID] = &spec

	mb.l.Info("Registered MQTT subscription",
		slog.String("operationID", spec.OperationID),
		slog.String("topic", topic),
		slog.String("group", spec.Group),
		slog.String("summary", spec.Summary),
		slog.String("messageType", fmt.Sprintf("%T", spec.MessageType)),
	)

	return nil
}

// MustRegisterSubscribe registers a subscription operation and terminates the program if an error occurs.
func (mb *MQTTBuilder) MustRegisterSubscribe(topic string, spec SubscriptionSpec) {
	if err := mb.RegisterSubscribe(topic, spec); err != nil {
		mb.l.Error("Failed to register subscription", slog.String("operationID", spec.OperationID), slog.String("topic", topic), utils.ErrAttr(err))
		os.Exit(1)
	}
}

// Publication returns the registered publication for operationID.
func (mb *MQTTBuilder) Publication(operationID string) (PublicationSpec, bool) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	spec, ok := mb.publications[operationID]
	if !ok {
		return PublicationSpec{}, false
	}

	return *spec, true
}

// Connect connects to the MQTT broker, waiting until the first connection succeeds.
func (mb *MQTTBuilder) Connect() error {
	mb.runConnectOnce.Store(true)

	mb.l.Info("Connecting to MQTT broker... Will wait indefinitely for connection to complete")

	token := mb.client.Connect()

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if mb.client.IsConnectionOpen() {
					return
				}
				mb.l.Warn("MQTT has not done an initial connection yet, still waiting...")
			}
		}
	}()

	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	mb.l.Info("Connected to MQTT broker")

	return nil
}

// Disconnect disconnects from the MQTT broker.
func (mb *MQTTBuilder) Disconnect() {
	if !mb.client.IsConnected() {
		return
	}

	mb.l.Info("Disconnecting from MQTT broker...")
	mb.client.Disconnect(250) // 250ms grace period
	mb.connected.Store(false)
	mb.l.Info("Disconnected from MQTT broker")
}

// onConnect is called when the client successfully connects or reconnects to the broker.
func (mb *MQTTBuilder) onConnect(client pahomqtt.Client) {
	mb.mu.RLock()
	subs := make([]*SubscriptionSpec, 0, len(mb.subscriptions))
	for _, spec := range mb.subscriptions {
		subs = append(subs, spec)
	}
	mb.mu.RUnlock()

	mb.l.Info("Connected to MQTT broker, subscribing to topics", slog.Int("subscriptionCount", len(subs)))

	for _, spec := range subs {
		token := client.Subscribe(spec.TopicMQTT, byte(spec.QoS), spec.Handler)
		token.Wait()

		if err := token.Error(); err != nil {
			mb.l.Error("Failed to subscribe", slog.String("topic", spec.TopicMQTT), slog.String("operationID", spec.OperationID), utils.ErrAttr(err))
			continue
		}

		mb.l.Info("Subscribed", slog.String("topic", spec.TopicMQTT), slog.String("operationID", spec.OperationID))
	}

	// Only report connected once subscriptions are in place.
	mb.connected.Store(true)
}

// onConnectionLost is called when the client loses connection to the broker.
func (mb *MQTTBuilder) onConnectionLost(_ pahomqtt.Client, err error) {
	mb.l.Warn("Connection to MQTT broker lost", utils.ErrAttr(err))
	mb.connected.Store(false)
}

// onReconnecting is called when the client is reconnecting to the broker.
func (mb *MQTTBuilder) onReconnecting(_ pahomqtt.Client, opts *pahomqtt.ClientOptions) {
	mb.l.Info("Reconnecting to MQTT broker", slog.String("broker", opts.Servers[0].String()))
}
