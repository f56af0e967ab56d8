// Package memory provides the robot memory services read by the joint
// diagnostics reporter.
package memory

import (
	"errors"
	"fmt"

	"joint-diagnostics/backend/internal/diagnostics"
)

var (
	// ErrUnknownService is returned when a session is asked for a service it does not serve.
	ErrUnknownService = errors.New("unknown service")
	// ErrMissingValue is returned when a requested key has no value.
	ErrMissingValue = fmt.Errorf("%w: missing value", diagnostics.ErrIncompleteSensorData)
)

func checkService(name string) error {
	if name != diagnostics.MemoryServiceName {
		return fmt.Errorf("%w: %s", ErrUnknownService, name)
	}

	return nil
}
