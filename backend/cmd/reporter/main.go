package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"joint-diagnostics/backend/internal/api"
	"joint-diagnostics/backend/internal/broker"
	"joint-diagnostics/backend/internal/config"
	"joint-diagnostics/backend/internal/diagnostics"
	"joint-diagnostics/backend/internal/memory"
	"joint-diagnostics/backend/internal/metrics"
	mqttapi "joint-diagnostics/backend/internal/mqtt"
	"joint-diagnostics/backend/internal/poller"
	"joint-diagnostics/backend/pkg/mqtt"
	"joint-diagnostics/backend/pkg/utils"
)

const connectTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run starts the reporter and blocks until shutdown. The error returned is
// the one that stopped the service, already logged.
func run() error {
	sigCtx, sigCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer sigCancel()

	config, err := config.New()
	if err != nil {
		fatalIfErr(slog.Default(), fmt.Errorf("failed to create config: %w", err))
	}

	defer utils.LogOnError(slog.Default(), config.Close, "failed to close config")

	logger := getLogger(config)
	setMQTTLoggers(logger)

	logger.Info("starting joint diagnostics",
		slog.Any("build", utils.GetBuildInfo()),
		slog.String("robotID", config.RobotID),
		slog.Int("joints", len(config.Joints)),
		slog.String("memoryBackend", config.MemoryBackend),
		slog.Duration("pollInterval", config.PollInterval))

	// Embedded MQTT broker
	var mqttBroker *broker.Broker

	if config.MQTTServerEnabled {
		mqttBroker, err = broker.New(logger, fmt.Sprintf(":%d", config.MQTTBrokerPort))
		fatalIfErr(logger, err)
		fatalIfErr(logger, mqttBroker.Serve())
	}

	mb, err := mqtt.NewMQTTBuilder(logger, mqtt.MQTTClientOptions{
		BrokerURL: config.MQTTBroker,
		ClientID:  config.MQTTClientID,
		Username:  config.MQTTUsername,
		Password:  config.MQTTPassword,
	})
	fatalIfErr(logger, err)

	p := poller.New(logger, config.PollInterval)
	m := metrics.New()

	mqttHandler := mqttapi.NewMQTTHandler(logger, mb.Client(), p, config.RobotID)
	registerMQTTHandlers(logger, mb, mqttHandler)

	session, closeSession := getSession(logger, config)
	defer utils.LogOnError(logger, closeSession, "failed to close memory session")

	resolveCtx, resolveCancel := context.WithTimeout(sigCtx, connectTimeout)
	reporter := diagnostics.New(resolveCtx, logger, session, mqttHandler, config.Joints, config.TemperatureErrorLevel,
		diagnostics.WithRobotID(config.RobotID),
		diagnostics.WithNamespace(config.Namespace),
		diagnostics.WithObserver(m),
	)

	resolveCancel()

	go func() {
		if err := mb.Connect(); err != nil {
			logger.Error("Failed to connect to MQTT broker", utils.ErrAttr(err))
		}
	}()

	apiHandler := api.NewHandler(logger, reporter, p, mb.Client(), m.Handler())
	httpServer := api.NewHTTPServer(logger, fmt.Sprintf(":%d", config.Port), apiHandler.Router())

	waitErr := serve(sigCtx, logger, httpServer, p, reporter)

	logger.Info("disconnecting from MQTT broker...")
	mb.Disconnect()

	if mqttBroker != nil {
		utils.LogOnError(logger, mqttBroker.Close, "mqtt broker shutdown failed")
	}

	if waitErr != nil {
		return waitErr
	}

	logger.Info("server exited gracefully")

	return nil
}

// serve runs the HTTP server and the poller until ctx is done or either fails.
func serve(ctx context.Context, logger *slog.Logger, httpServer *api.HTTPServer, p *poller.Poller, target poller.Target) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(httpServer.ListenAndServe)
	g.Go(func() error { return p.Run(ctx, target) })
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("received signal, shutting down...")

		return httpServer.ShutdownWithDefaultTimeout()
	})

	if err := g.Wait(); err != nil {
		logger.Error("service failed", utils.ErrAttr(err))

		return err
	}

	return nil
}

// getSession returns the memory service session selected by the configuration.
//
//nolint:ireturn // Returns the Session implementation for the configured backend
func getSession(l *slog.Logger, c *config.Config) (diagnostics.Session, func() error) {
	switch c.MemoryBackend {
	case config.BackendRedis:
		s := memory.NewRedisSession(l, memory.RedisOptions{
			Addr:      c.RedisAddr,
			Password:  c.RedisPassword,
			DB:        c.RedisDB,
			KeyPrefix: c.MemoryKeyPrefix,
		})

		return s, s.Close
	default:
		return memory.NewSimulator(c.Joints, c.SimulatorSeed), func() error { return nil }
	}
}

// registerMQTTHandlers registers all MQTT handlers.
func registerMQTTHandlers(l *slog.Logger, mb *mqtt.MQTTBuilder, h *mqttapi.Handler) {
	l.Info("Registering MQTT handlers...")
	h.RegisterDiagnosticsPublish(mb)
	h.RegisterDiagnosticsCommandSubscribe(mb)
	l.Info("MQTT handlers registered successfully")
}

func getLogger(config *config.Config) *slog.Logger {
	logOptions := slog.HandlerOptions{
		Level:       config.LogLevel,
		ReplaceAttr: utils.SlogReplacer,
	}

	var logHandler slog.Handler = slog.NewJSONHandler(config.LogOutput, &logOptions)
	if config.LogFormat == "text" {
		logHandler = slog.NewTextHandler(config.LogOutput, &logOptions)
	}

	return slog.New(logHandler).With(slog.String("version", utils.GetVersionShort()))
}

// setMQTTLoggers routes the paho client's package loggers into slog.
func setMQTTLoggers(l *slog.Logger) {
	l = l.With(slog.String("component", "paho"))

	pahomqtt.ERROR = log.New(utils.NewSlogLevelWriter(l, slog.LevelError), "", 0)
	pahomqtt.CRITICAL = log.New(utils.NewSlogLevelWriter(l, slog.LevelError), "", 0)
	pahomqtt.WARN = log.New(utils.NewSlogLevelWriter(l, slog.LevelWarn), "", 0)
}

func fatalIfErr(l *slog.Logger, err error) {
	if err == nil {
		return
	}

	l.Error("error", utils.ErrAttr(err))
	os.Exit(1)
}
