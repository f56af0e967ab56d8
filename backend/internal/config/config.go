package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"joint-diagnostics/backend/internal/diagnostics"
)

type EnvKey string

const (
	EnvPort      EnvKey = "PORT"
	EnvDataDir   EnvKey = "DATA_DIR"
	EnvLogLevel  EnvKey = "LOG_LEVEL"
	EnvLogFormat EnvKey = "LOG_FORMAT"
	EnvLogToFile EnvKey = "LOG_TO_FILE"

	EnvRobotID               EnvKey = "ROBOT_ID"
	EnvNamespace             EnvKey = "DIAGNOSTICS_NAMESPACE"
	EnvJoints                EnvKey = "JOINTS"
	EnvJointsFile            EnvKey = "JOINTS_FILE"
	EnvTemperatureErrorLevel EnvKey = "TEMPERATURE_ERROR_LEVEL"
	EnvPollInterval          EnvKey = "POLL_INTERVAL"

	EnvMemoryBackend   EnvKey = "MEMORY_BACKEND"
	EnvRedisAddr       EnvKey = "REDIS_ADDR"
	EnvRedisPassword   EnvKey = "REDIS_PASSWORD"
	EnvRedisDB         EnvKey = "REDIS_DB"
	EnvMemoryKeyPrefix EnvKey = "MEMORY_KEY_PREFIX"
	EnvSimulatorSeed   EnvKey = "SIMULATOR_SEED"

	EnvMQTTServerEnabled EnvKey = "MQTT_SERVER_ENABLED"
	EnvMQTTBrokerPort    EnvKey = "MQTT_SERVER_PORT"

	EnvMQTTBroker   EnvKey = "MQTT_BROKER"
	EnvMQTTClientID EnvKey = "MQTT_CLIENT_ID"
	EnvMQTTUsername EnvKey = "MQTT_USERNAME"
	EnvMQTTPassword EnvKey = "MQTT_PASSWORD"
)

// Memory backends.
const (
	BackendRedis     = "redis"
	BackendSimulated = "simulated"
)

const (
	DefaultTemperatureErrorLevel = 70.0
	DefaultPollInterval          = time.Second
)

// DefaultJoints are the joints of a NAO robot in the order reported.
var DefaultJoints = []string{
	"HeadYaw", "HeadPitch",
	"LShoulderPitch", "LShoulderRoll", "LElbowYaw", "LElbowRoll", "LWristYaw", "LHand",
	"LHipYawPitch", "LHipRoll", "LHipPitch", "LKneePitch", "LAnklePitch", "LAnkleRoll",
	"RHipYawPitch", "RHipRoll", "RHipPitch", "RKneePitch", "RAnklePitch", "RAnkleRoll",
	"RShoulderPitch", "RShoulderRoll", "RElbowYaw", "RElbowRoll", "RWristYaw", "RHand",
}

type Config struct {
	Port      int
	DataDir   string
	LogLevel  slog.Leveler
	LogFormat string
	LogOutput io.Writer

	// Diagnostics configuration
	RobotID               string
	Namespace             string
	Joints                []string
	TemperatureErrorLevel float64
	PollInterval          time.Duration

	// Memory service configuration
	MemoryBackend   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MemoryKeyPrefix string
	SimulatorSeed   uint64

	// MQTT Server configuration
	MQTTServerEnabled bool
	MQTTBrokerPort    int

	// MQTT configuration
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
}

// jointsFile is the layout of the optional YAML file named by JOINTS_FILE.
type jointsFile struct {
	Joints                []string `yaml:"joints"`
	TemperatureErrorLevel *float64 `yaml:"temperatureErrorLevel"`
}

func New() (*Config, error) {
	// Get data directory
	dataDir := getStringEnv(EnvDataDir, "data")

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Derive paths from data directory
	logPath := filepath.Join(dataDir, "reporter.log")

	var logOutput io.Writer = os.Stdout

	if getBoolEnv(EnvLogToFile, false) {
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		logOutput = f
	}

	robotID := getStringEnv(EnvRobotID, "nao")

	c := &Config{
		Port:                  getIntEnv(EnvPort, 8080),
		DataDir:               dataDir,
		LogLevel:              getLogLevelEnv(EnvLogLevel, slog.LevelInfo),
		LogFormat:             strings.ToLower(getStringEnv(EnvLogFormat, "json")),
		LogOutput:             logOutput,
		RobotID:               robotID,
		Namespace:             getStringEnv(EnvNamespace, diagnostics.DefaultNamespace),
		Joints:                getListEnv(EnvJoints, DefaultJoints),
		TemperatureErrorLevel: getFloatEnv(EnvTemperatureErrorLevel, DefaultTemperatureErrorLevel),
		PollInterval:          getDurationEnv(EnvPollInterval, DefaultPollInterval),
		MemoryBackend:         strings.ToLower(getStringEnv(EnvMemoryBackend, BackendSimulated)),
		RedisAddr:             getStringEnv(EnvRedisAddr, "127.0.0.1:6379"),
		RedisPassword:         getStringEnv(EnvRedisPassword, ""),
		RedisDB:               getIntEnv(EnvRedisDB, 0),
		MemoryKeyPrefix:       getStringEnv(EnvMemoryKeyPrefix, ""),
		SimulatorSeed:         uint64(getIntEnv(EnvSimulatorSeed, 1)), //nolint:gosec // seeds are small positive ints
		MQTTServerEnabled:     getBoolEnv(EnvMQTTServerEnabled, true),
		MQTTBrokerPort:        getIntEnv(EnvMQTTBrokerPort, 1883),
		MQTTBroker:            getStringEnv(EnvMQTTBroker, "tcp://127.0.0.1:1883"),
		MQTTClientID:          getStringEnv(EnvMQTTClientID, "joint-diagnostics-"+robotID),
		MQTTUsername:          getStringEnv(EnvMQTTUsername, ""),
		MQTTPassword:          getStringEnv(EnvMQTTPassword, ""),
	}

	if path := getStringEnv(EnvJointsFile, ""); path != "" {
		if err := c.loadJointsFile(path); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// loadJointsFile overrides the joint list, and optionally the error level, from a YAML file.
func (c *Config) loadJointsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read joints file: %w", err)
	}

	var jf jointsFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return fmt.Errorf("failed to parse joints file %s: %w", path, err)
	}

	if len(jf.Joints) > 0 {
		c.Joints = jf.Joints
	}

	if jf.TemperatureErrorLevel != nil {
		c.TemperatureErrorLevel = *jf.TemperatureErrorLevel
	}

	return nil
}

// Validate checks the configuration for values the reporter cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.RobotID == "" || strings.ContainsAny(c.RobotID, "/+#") {
		errs = append(errs, fmt.Errorf("robot ID %q must be non-empty and must not contain '/', '+' or '#'", c.RobotID))
	}

	if len(c.Joints) == 0 {
		errs = append(errs, errors.New("at least one joint is required"))
	}

	for i, joint := range c.Joints {
		if strings.TrimSpace(joint) == "" || strings.Contains(joint, "/") {
			errs = append(errs, fmt.Errorf("invalid joint name %q", joint))
		}

		if slices.Contains(c.Joints[:i], joint) {
			errs = append(errs, fmt.Errorf("duplicate joint %s", joint))
		}
	}

	if math.IsNaN(c.TemperatureErrorLevel) || math.IsInf(c.TemperatureErrorLevel, 0) {
		errs = append(errs, errors.New("temperature error level must be a finite number"))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}

	switch c.MemoryBackend {
	case BackendRedis, BackendSimulated:
	default:
		errs = append(errs, fmt.Errorf("unsupported memory backend %q", c.MemoryBackend))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c *Config) Close() error {
	if f, ok := c.LogOutput.(*os.File); ok {
		if f != os.Stdout && f != os.Stderr {
			return f.Close()
		}
	}

	return nil
}

func getStringEnv(key EnvKey, defaultVal string) string {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return defaultVal
	}

	return val
}

func getBoolEnv(key EnvKey, defaultVal bool) bool {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return defaultVal
	}

	val = strings.ToLower(val)
	switch val {
	case "true", "1":
		return true
	default:
		return false
	}
}

func getIntEnv(key EnvKey, defaultVal int) int {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return defaultVal
	}

	if intVal, err := strconv.Atoi(val); err == nil {
		return intVal
	}

	return defaultVal
}

func getFloatEnv(key EnvKey, defaultVal float64) float64 {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return defaultVal
	}

	if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
		return f
	}

	return defaultVal
}

func getDurationEnv(key EnvKey, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return defaultVal
	}

	if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
		return d
	}

	return defaultVal
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key EnvKey, defaultVal []string) []string {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return slices.Clone(defaultVal)
	}

	var out []string

	for item := range strings.SplitSeq(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func getLogLevelEnv(key EnvKey, defaultVal slog.Leveler) slog.Leveler {
	val, exists := os.LookupEnv(string(key))
	if !exists {
		return defaultVal
	}

	switch strings.ToUpper(val) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}

	return defaultVal
}
