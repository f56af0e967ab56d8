package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	th := NewThresholds(75.0)

	tests := []struct {
		name        string
		temperature float64
		level       Level
		message     string
	}{
		{name: "cold", temperature: 20, level: LevelOK, message: "OK"},
		{name: "just below warn", temperature: 67.99, level: LevelOK, message: "OK"},
		{name: "at warn", temperature: 68.0, level: LevelWarn, message: "Hot"},
		{name: "just below error", temperature: 74.99, level: LevelWarn, message: "Hot"},
		{name: "at error", temperature: 75.0, level: LevelError, message: "HIGH JOINT TEMPERATURE : RKneePitch"},
		{name: "far above error", temperature: 120, level: LevelError, message: "HIGH JOINT TEMPERATURE : RKneePitch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, message := th.Classify("RKneePitch", tt.temperature)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestClassifyErrorBelowWarn(t *testing.T) {
	// The OK check runs first, so an error limit under the warn limit only
	// matters from the warn limit upwards.
	th := NewThresholds(60.0)

	level, _ := th.Classify("HeadYaw", 65)
	assert.Equal(t, LevelOK, level)

	level, _ = th.Classify("HeadYaw", 68)
	assert.Equal(t, LevelError, level)
}
