package diagnostics

// WarnTemperature is the joint temperature in °C from which a joint reports WARN.
const WarnTemperature = 68.0

// Thresholds are the temperature limits used to grade a joint.
type Thresholds struct {
	Warn  float64
	Error float64
}

// NewThresholds returns the fixed warn limit with the given error limit.
func NewThresholds(errorTemperature float64) Thresholds {
	return Thresholds{Warn: WarnTemperature, Error: errorTemperature}
}

// Classify grades a joint temperature. Checks run in order and the first
// match wins: below Warn is OK, below Error is WARN, anything else is ERROR.
func (t Thresholds) Classify(joint string, temperature float64) (Level, string) {
	switch {
	case temperature < t.Warn:
		return LevelOK, "OK"
	case temperature < t.Error:
		return LevelWarn, "Hot"
	default:
		return LevelError, "HIGH JOINT TEMPERATURE : " + joint
	}
}
