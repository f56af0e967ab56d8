package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"joint-diagnostics/backend/internal/diagnostics"
)

const (
	simAmbient     = 35.0
	simMaxTemp     = 85.0
	simMaxCurrent  = 1.2
	simHandStiff   = 0.6
	simBodyStiff   = 1.0
	simHeatPerPoll = 1.5
)

type simJoint struct {
	temperature float64
	stiffness   float64
	current     float64
	pinned      bool
}

// Simulator is an in-process memory service for running without a robot.
// Temperatures follow a bounded random walk seeded at construction.
type Simulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	joints map[string]*simJoint
}

// NewSimulator creates a simulator for the given joints.
func NewSimulator(joints []string, seed uint64) *Simulator {
	s := &Simulator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // Not used for security
		joints: make(map[string]*simJoint, len(joints)),
	}

	for _, name := range joints {
		stiffness := simBodyStiff
		if strings.Contains(name, "Hand") {
			stiffness = simHandStiff
		}

		s.joints[name] = &simJoint{
			temperature: simAmbient + s.rng.Float64()*10,
			stiffness:   stiffness,
		}
	}

	return s
}

// Service returns the simulator itself as the memory service.
//
//nolint:ireturn // Satisfies diagnostics.Session
func (s *Simulator) Service(_ context.Context, name string) (diagnostics.ValueSource, error) {
	if err := checkService(name); err != nil {
		return nil, err
	}

	return s, nil
}

// Pin fixes a joint's readings until the next Unpin.
func (s *Simulator) Pin(joint string, temperature, stiffness, current float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.joints[joint] = &simJoint{temperature: temperature, stiffness: stiffness, current: current, pinned: true}
}

// Unpin lets a pinned joint drift again.
func (s *Simulator) Unpin(joint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.joints[joint]; ok {
		j.pinned = false
	}
}

// FetchValues advances the simulation one step and returns the requested values.
func (s *Simulator) FetchValues(ctx context.Context, keys []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.step()

	values := make([]float64, 0, len(keys))
	for _, key := range keys {
		v, err := s.lookup(key)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

func (s *Simulator) step() {
	for _, j := range s.joints {
		if j.pinned {
			continue
		}

		j.current = s.rng.Float64() * simMaxCurrent * j.stiffness
		j.temperature += (s.rng.Float64()*2-1)*simHeatPerPoll + (j.current-simMaxCurrent/2)*0.5
		j.temperature = min(max(j.temperature, simAmbient), simMaxTemp)
	}
}

// lookup resolves Device/SubDeviceList/<joint>/<metric>/... keys.
func (s *Simulator) lookup(key string) (float64, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 6 || parts[0] != "Device" || parts[1] != "SubDeviceList" {
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, key)
	}

	j, ok := s.joints[parts[2]]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, key)
	}

	switch parts[3] {
	case "Temperature":
		return j.temperature, nil
	case "Hardness":
		return j.stiffness, nil
	case "ElectricCurrent":
		return j.current, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, key)
	}
}
