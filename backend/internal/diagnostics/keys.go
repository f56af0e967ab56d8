package diagnostics

import "fmt"

// Sensor paths in the robot memory, one per metric. %s is the joint name.
const (
	temperatureKeyFormat = "Device/SubDeviceList/%s/Temperature/Sensor/Value"
	stiffnessKeyFormat   = "Device/SubDeviceList/%s/Hardness/Actuator/Value"
	currentKeyFormat     = "Device/SubDeviceList/%s/ElectricCurrent/Sensor/Value"
)

// valuesPerJoint is the number of memory keys read for every joint.
const valuesPerJoint = 3

// JointKeys returns the memory keys for the given joints: temperature,
// stiffness and current for the first joint, then the next joint, and so on.
func JointKeys(joints []string) []string {
	keys := make([]string, 0, len(joints)*valuesPerJoint)
	for _, joint := range joints {
		keys = append(keys,
			fmt.Sprintf(temperatureKeyFormat, joint),
			fmt.Sprintf(stiffnessKeyFormat, joint),
			fmt.Sprintf(currentKeyFormat, joint),
		)
	}

	return keys
}
