package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJointKeys(t *testing.T) {
	keys := JointKeys([]string{"HeadYaw", "LHand"})

	assert.Equal(t, []string{
		"Device/SubDeviceList/HeadYaw/Temperature/Sensor/Value",
		"Device/SubDeviceList/HeadYaw/Hardness/Actuator/Value",
		"Device/SubDeviceList/HeadYaw/ElectricCurrent/Sensor/Value",
		"Device/SubDeviceList/LHand/Temperature/Sensor/Value",
		"Device/SubDeviceList/LHand/Hardness/Actuator/Value",
		"Device/SubDeviceList/LHand/ElectricCurrent/Sensor/Value",
	}, keys)

	assert.Empty(t, JointKeys(nil))
}
