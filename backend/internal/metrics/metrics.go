// Package metrics exposes diagnostics poll outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"joint-diagnostics/backend/internal/diagnostics"
)

const namespace = "joint_diagnostics"

// Metrics implements diagnostics.Observer on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	polls              prometheus.Counter
	failures           *prometheus.CounterVec
	level              prometheus.Gauge
	highestTemperature prometheus.Gauge
	lastReport         prometheus.Gauge
	jointTemperature   *prometheus.GaugeVec
	jointStiffness     *prometheus.GaugeVec
	jointCurrent       *prometheus.GaugeVec
	jointLevel         *prometheus.GaugeVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	jointLabels := []string{"joint"}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Polls that produced a report.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Polls abandoned before a report was produced.",
		}, []string{"reason"}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Aggregate level of the last report (0=OK, 1=WARN, 2=ERROR).",
		}),
		highestTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "highest_temperature_celsius",
			Help:      "Highest joint temperature of the last report.",
		}),
		lastReport: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_report_timestamp_seconds",
			Help:      "Unix time of the last report.",
		}),
		jointTemperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "joint_temperature_celsius",
			Help:      "Joint temperature sensor value.",
		}, jointLabels),
		jointStiffness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "joint_stiffness",
			Help:      "Joint stiffness actuator value.",
		}, jointLabels),
		jointCurrent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "joint_electric_current_amperes",
			Help:      "Joint electric current sensor value.",
		}, jointLabels),
		jointLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "joint_level",
			Help:      "Joint level (0=OK, 1=WARN, 2=ERROR).",
		}, jointLabels),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.polls,
		m.failures,
		m.level,
		m.highestTemperature,
		m.lastReport,
		m.jointTemperature,
		m.jointStiffness,
		m.jointCurrent,
		m.jointLevel,
	)

	return m
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReport records a produced report.
func (m *Metrics) ObserveReport(report diagnostics.Report) {
	m.polls.Inc()
	m.level.Set(float64(report.Summary.Level))
	m.highestTemperature.Set(report.Summary.HighestTemperature)
	m.lastReport.Set(float64(report.Timestamp.Unix()))

	for _, st := range report.Joints() {
		joint := st.HardwareID
		m.jointLevel.WithLabelValues(joint).Set(float64(st.Level))
		setFromValue(m.jointTemperature.WithLabelValues(joint), st, diagnostics.KeyTemperature)
		setFromValue(m.jointStiffness.WithLabelValues(joint), st, diagnostics.KeyStiffness)
		setFromValue(m.jointCurrent.WithLabelValues(joint), st, diagnostics.KeyElectricCurrent)
	}
}

// ObserveFailure records an abandoned poll.
func (m *Metrics) ObserveFailure(err error) {
	m.failures.WithLabelValues(failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, diagnostics.ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, diagnostics.ErrIncompleteSensorData):
		return "incomplete_data"
	case errors.Is(err, diagnostics.ErrInvalidSensorData):
		return "invalid_data"
	default:
		return "fetch_error"
	}
}

func setFromValue(g prometheus.Gauge, st diagnostics.Status, key string) {
	raw, ok := st.Value(key)
	if !ok {
		return
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}

	g.Set(v)
}
