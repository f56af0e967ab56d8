package diagnostics

import "sync"

// Tracker holds the robot-wide status that outlives a single poll.
// It is reset to OK at the start of every poll and then fed each joint's
// level and message; only a strictly higher level replaces the message.
type Tracker struct {
	mu      sync.RWMutex
	level   Level
	message string
}

// NewTracker returns a tracker in the OK state.
func NewTracker() *Tracker {
	return &Tracker{level: LevelOK, message: AggregateMessage(LevelOK)}
}

// Reset puts the tracker back to OK.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.level = LevelOK
	t.message = AggregateMessage(LevelOK)
}

// Observe folds a status into the tracker. It reports whether the tracker changed.
func (t *Tracker) Observe(level Level, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if level.Compare(t.level) <= 0 {
		return false
	}

	t.level = level
	t.message = message

	return true
}

// Level returns the current level.
func (t *Tracker) Level() Level {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.level
}

// Message returns the message of the most severe status observed since the last reset.
func (t *Tracker) Message() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.message
}
