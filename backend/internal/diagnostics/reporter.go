package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"joint-diagnostics/backend/pkg/utils"
)

// MemoryServiceName is the service resolved through the Session at construction.
const MemoryServiceName = "ALMemory"

// DefaultNamespace prefixes every status name.
const DefaultNamespace = "robot_joints"

const (
	aggregateHardwareID = "joints"
	trackerHardwareID   = "robot"
)

var (
	// ErrServiceUnavailable is returned when the memory service was never resolved.
	ErrServiceUnavailable = errors.New("memory service unavailable")
	// ErrIncompleteSensorData is returned when the memory service returns a
	// different number of values than keys requested.
	ErrIncompleteSensorData = errors.New("incomplete sensor data")
	// ErrInvalidSensorData is returned when the memory service returns NaN or an infinity.
	ErrInvalidSensorData = errors.New("invalid sensor data")
)

// ValueSource reads a batch of named values from the robot memory.
// Values come back in key order.
type ValueSource interface {
	FetchValues(ctx context.Context, keys []string) ([]float64, error)
}

// Session resolves robot services by name.
type Session interface {
	Service(ctx context.Context, name string) (ValueSource, error)
}

// Sink receives every report produced by the reporter.
type Sink interface {
	PublishReport(ctx context.Context, report Report) error
}

// Observer is notified about poll outcomes. Used for metrics.
type Observer interface {
	ObserveReport(report Report)
	ObserveFailure(err error)
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithRobotID sets the robot ID stamped on reports.
func WithRobotID(id string) Option {
	return func(r *Reporter) { r.robotID = id }
}

// WithNamespace sets the prefix of status names.
func WithNamespace(ns string) Option {
	return func(r *Reporter) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithObserver registers an observer for poll outcomes.
func WithObserver(o Observer) Option {
	return func(r *Reporter) { r.observer = o }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// WithIDGenerator overrides the report ID source.
func WithIDGenerator(newID func() string) Option {
	return func(r *Reporter) { r.newID = newID }
}

// Reporter polls joint sensors and publishes a health report per poll.
type Reporter struct {
	l          *slog.Logger
	source     ValueSource
	sink       Sink
	observer   Observer
	joints     []string
	keys       []string
	thresholds Thresholds
	namespace  string
	robotID    string
	now        func() time.Time
	newID      func() string

	// mu serialises polls; the tracker is only written while it is held.
	mu      sync.Mutex
	tracker *Tracker

	// lastMu guards the outcome of the latest finished poll, including a
	// copy of the tracker taken when the poll ended.
	lastMu        sync.RWMutex
	last          *Report
	healthy       bool
	stickyLevel   Level
	stickyMessage string
}

// New creates a reporter for the given joints and resolves the memory
// service. A resolution failure is logged and leaves the reporter degraded:
// every poll fails until a new reporter is built.
func New(ctx context.Context, l *slog.Logger, session Session, sink Sink, joints []string, errorTemperature float64, opts ...Option) *Reporter {
	r := &Reporter{
		l:          l.With(slog.String("component", "joint-diagnostics")),
		sink:       sink,
		joints:     slices.Clone(joints),
		keys:       JointKeys(joints),
		thresholds: NewThresholds(errorTemperature),
		namespace:  DefaultNamespace,
		now:        time.Now,
		newID:      utils.NewUUID,
		tracker:    NewTracker(),
	}

	r.stickyLevel = r.tracker.Level()
	r.stickyMessage = r.tracker.Message()

	for _, opt := range opts {
		opt(r)
	}

	source, err := session.Service(ctx, MemoryServiceName)
	if err != nil {
		r.l.Error("failed to connect to memory service", slog.String("service", MemoryServiceName), utils.ErrAttr(err))
	} else {
		r.source = source
	}

	r.l.Info("joint diagnostics ready",
		slog.Int("joints", len(r.joints)),
		slog.Float64("warnTemperature", r.thresholds.Warn),
		slog.Float64("errorTemperature", r.thresholds.Error),
		slog.Bool("connected", r.source != nil))

	return r
}

// Publish runs one poll: it fetches every joint's readings, grades them,
// publishes the report and returns false when the robot is in ERROR or
// when no report could be built.
func (r *Reporter) Publish(ctx context.Context) bool {
	_, healthy, _ := r.Poll(ctx)

	return healthy
}

// Poll is Publish returning the report it published, or the error that
// abandoned the poll.
func (r *Reporter) Poll(ctx context.Context) (Report, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.Reset()

	report, err := r.collect(ctx)
	if err != nil {
		r.l.Error("could not get joint data from the robot", utils.ErrAttr(err))
		r.finish(nil, false)

		if r.observer != nil {
			r.observer.ObserveFailure(err)
		}

		return Report{}, false, err
	}

	if err := r.sink.PublishReport(ctx, report); err != nil {
		r.l.Warn("failed to publish diagnostics report", slog.String("reportID", report.ID), utils.ErrAttr(err))
	}

	healthy := r.tracker.Level() < LevelError
	r.finish(&report, healthy)

	if r.observer != nil {
		r.observer.ObserveReport(report)
	}

	return report, healthy, nil
}

// finish records the outcome of a poll. Readers only ever see the tracker
// as it was at the end of a poll.
func (r *Reporter) finish(report *Report, healthy bool) {
	r.lastMu.Lock()
	defer r.lastMu.Unlock()

	if report != nil {
		r.last = report
	}

	r.healthy = healthy
	r.stickyLevel = r.tracker.Level()
	r.stickyMessage = r.tracker.Message()
}

// collect fetches the readings and builds the report, feeding the tracker
// with every joint status on the way.
func (r *Reporter) collect(ctx context.Context) (Report, error) {
	if r.source == nil {
		return Report{}, ErrServiceUnavailable
	}

	values, err := r.source.FetchValues(ctx, r.keys)
	if err != nil {
		return Report{}, fmt.Errorf("failed to fetch %d values: %w", len(r.keys), err)
	}

	if len(values) != len(r.keys) {
		return Report{}, fmt.Errorf("%w: got %d values for %d keys", ErrIncompleteSensorData, len(values), len(r.keys))
	}

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Report{}, fmt.Errorf("%w: %s = %v", ErrInvalidSensorData, r.keys[i], v)
		}
	}

	statuses := make([]Status, 0, len(r.joints)+1)
	summary := newSummary()

	for i, joint := range r.joints {
		reading := Reading{
			Joint:       joint,
			Temperature: values[i*valuesPerJoint],
			Stiffness:   values[i*valuesPerJoint+1],
			Current:     values[i*valuesPerJoint+2],
		}

		status := r.jointStatus(reading)
		statuses = append(statuses, status)

		r.tracker.Observe(status.Level, status.Message)
		summary.observe(reading, status.Level)
	}

	statuses = append(statuses, r.aggregateStatus(summary))

	return Report{
		ID:        r.newID(),
		RobotID:   r.robotID,
		Timestamp: r.now(),
		Status:    statuses,
		Summary:   summary,
	}, nil
}

func (r *Reporter) jointStatus(reading Reading) Status {
	level, message := r.thresholds.Classify(reading.Joint, reading.Temperature)

	status := Status{
		Name:       r.namespace + ":" + reading.Joint,
		HardwareID: reading.Joint,
		Level:      level,
		Message:    message,
	}
	status.add(KeyTemperature, reading.Temperature)
	status.add(KeyStiffness, reading.Stiffness)
	status.add(KeyElectricCurrent, reading.Current)

	return status
}

func (r *Reporter) aggregateStatus(s Summary) Status {
	status := Status{
		Name:       r.StatusName(),
		HardwareID: aggregateHardwareID,
		Level:      s.Level,
		Message:    AggregateMessage(s.Level),
	}
	status.add(KeyHighestTemperature, s.HighestTemperature)
	status.add(KeyHighestStiffness, s.HighestStiffness)
	status.add(KeyLowestStiffness, s.LowestStiffness)
	status.add(KeyLowestStiffnessWithoutHands, s.LowestStiffnessWithoutHands)
	status.add(KeyHighestElectricCurrent, s.HighestCurrent)
	status.add(KeyLowestElectricCurrent, s.LowestCurrent)
	status.Values = append(status.Values, KeyValue{Key: KeyHotJoints, Value: s.HotJoints})

	return status
}

// StatusMessage returns the message of the most severe joint seen by the
// latest finished poll, or "OK". A poll in flight is not visible.
func (r *Reporter) StatusMessage() string {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()

	return r.stickyMessage
}

// Status returns the robot-wide status kept across polls.
func (r *Reporter) Status() Status {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()

	return Status{
		Name:       r.StatusName(),
		HardwareID: trackerHardwareID,
		Level:      r.stickyLevel,
		Message:    r.stickyMessage,
	}
}

// StatusName is the name of the aggregate status.
func (r *Reporter) StatusName() string {
	return r.namespace + ":Status"
}

// Healthy returns the result of the latest Publish. It is false before the first poll.
func (r *Reporter) Healthy() bool {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()

	return r.healthy
}

// LastReport returns the latest published report.
func (r *Reporter) LastReport() (Report, bool) {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()

	if r.last == nil {
		return Report{}, false
	}

	return *r.last, true
}

// Connected reports whether the memory service was resolved.
func (r *Reporter) Connected() bool {
	return r.source != nil
}

// Joints returns the monitored joint names in poll order.
func (r *Reporter) Joints() []string {
	return slices.Clone(r.joints)
}

// Keys returns the memory keys read on every poll.
func (r *Reporter) Keys() []string {
	return slices.Clone(r.keys)
}
