package diagnostics

import (
	"strconv"
	"strings"
	"time"
)

// Value keys carried by joint statuses.
const (
	KeyTemperature     = "Temperature"
	KeyStiffness       = "Stiffness"
	KeyElectricCurrent = "ElectricCurrent"
)

// Value keys carried by the aggregate status.
const (
	KeyHighestTemperature          = "Highest Temperature"
	KeyHighestStiffness            = "Highest Stiffness"
	KeyLowestStiffness             = "Lowest Stiffness"
	KeyLowestStiffnessWithoutHands = "Lowest Stiffness without Hands"
	KeyHighestElectricCurrent      = "Highest Electric Current"
	KeyLowestElectricCurrent       = "Lowest Electric current"
	KeyHotJoints                   = "Hot Joints"
)

// handMarker marks joints left out of the "without hands" stiffness minimum.
const handMarker = "Hand"

// KeyValue is a named attribute of a status.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Status is the health of a single joint, or of all joints together.
type Status struct {
	// Name identifies the status, e.g. "robot_joints:HeadYaw"
	Name string `json:"name"`
	// HardwareID is the joint name, or "joints" for the aggregate
	HardwareID string `json:"hardwareID"`
	// Level is the severity
	Level Level `json:"level"`
	// Message is a human readable description
	Message string `json:"message"`
	// Values are the readings backing the level
	Values []KeyValue `json:"values"`
}

// Value returns the attribute stored under key.
func (s Status) Value(key string) (string, bool) {
	for _, kv := range s.Values {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return "", false
}

func (s *Status) add(key string, v float64) {
	s.Values = append(s.Values, KeyValue{Key: key, Value: formatFloat(v)})
}

// Reading is one joint's sensor values for a single poll.
type Reading struct {
	Joint       string  `json:"joint"`
	Temperature float64 `json:"temperature"`
	Stiffness   float64 `json:"stiffness"`
	Current     float64 `json:"current"`
}

// Summary holds the statistics over all joints of a poll.
type Summary struct {
	Level                       Level   `json:"level"`
	HighestTemperature          float64 `json:"highestTemperature"`
	HighestStiffness            float64 `json:"highestStiffness"`
	LowestStiffness             float64 `json:"lowestStiffness"`
	LowestStiffnessWithoutHands float64 `json:"lowestStiffnessWithoutHands"`
	HighestCurrent              float64 `json:"highestCurrent"`
	LowestCurrent               float64 `json:"lowestCurrent"`
	HotJoints                   string  `json:"hotJoints"`
}

func newSummary() Summary {
	return Summary{
		Level:                       LevelOK,
		LowestStiffness:             1,
		LowestStiffnessWithoutHands: 1,
		LowestCurrent:               10,
	}
}

func (s *Summary) observe(r Reading, level Level) {
	s.Level = max(s.Level, level)
	s.HighestTemperature = max(s.HighestTemperature, r.Temperature)
	s.HighestStiffness = max(s.HighestStiffness, r.Stiffness)
	s.LowestStiffness = min(s.LowestStiffness, r.Stiffness)

	if !strings.Contains(r.Joint, handMarker) {
		s.LowestStiffnessWithoutHands = min(s.LowestStiffnessWithoutHands, r.Stiffness)
	}

	s.HighestCurrent = max(s.HighestCurrent, r.Current)
	s.LowestCurrent = min(s.LowestCurrent, r.Current)

	if level >= LevelWarn {
		s.HotJoints += "\n" + r.Joint + ": " + formatFloat(r.Temperature) + "°C"
	}
}

// Report is everything published for one poll: one status per joint in
// joint order, followed by the aggregate status.
type Report struct {
	ID        string    `json:"id"`
	RobotID   string    `json:"robotID"`
	Timestamp time.Time `json:"timestamp"`
	Status    []Status  `json:"status"`
	Summary   Summary   `json:"summary"`
}

// Joints returns the per-joint statuses.
func (r Report) Joints() []Status {
	if len(r.Status) == 0 {
		return nil
	}

	return r.Status[:len(r.Status)-1]
}

// Aggregate returns the trailing aggregate status.
func (r Report) Aggregate() (Status, bool) {
	if len(r.Status) == 0 {
		return Status{}, false
	}

	return r.Status[len(r.Status)-1], true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
