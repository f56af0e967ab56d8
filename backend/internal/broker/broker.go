// Package broker runs an embedded MQTT broker so the reporter can be used
// without external infrastructure.
package broker

import (
	"fmt"
	"log/slog"

	mqttbroker "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// Broker is an embedded MQTT broker with a single TCP listener that allows every client.
type Broker struct {
	l      *slog.Logger
	server *mqttbroker.Server
	addr   string
}

// New creates a broker listening on addr once served.
func New(l *slog.Logger, addr string) (*Broker, error) {
	l = l.With(slog.String("component", "mqtt-broker"))

	server := mqttbroker.New(&mqttbroker.Options{
		Logger: l,
	})

	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: addr})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("failed to add listener on %s: %w", addr, err)
	}

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("failed to add auth hook: %w", err)
	}

	return &Broker{l: l, server: server, addr: addr}, nil
}

// Serve starts accepting connections.
func (b *Broker) Serve() error {
	b.l.Info("MQTT broker listening", slog.String("address", b.addr))

	if err := b.server.Serve(); err != nil {
		return fmt.Errorf("mqtt broker failed: %w", err)
	}

	return nil
}

// Close stops the listeners and disconnects all clients.
func (b *Broker) Close() error {
	b.l.Info("mqtt broker shutting down...")

	return b.server.Close()
}

// Addr returns the configured listen address.
func (b *Broker) Addr() string {
	return b.addr
}
