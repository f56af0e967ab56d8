package diagnostics

import "fmt"

// Level is the severity of a joint or of the whole robot.
// Levels are totally ordered: LevelOK < LevelWarn < LevelError.
type Level uint8

const (
	// LevelOK means the reading is within normal limits.
	LevelOK Level = iota
	// LevelWarn means the joint is hot but still usable.
	LevelWarn
	// LevelError means the joint is over its error temperature.
	LevelError
)

// String returns the wire name of the level.
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "OK"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", uint8(l))
	}
}

// Compare returns -1, 0 or +1 depending on whether l is less than, equal to
// or greater than o.
func (l Level) Compare(o Level) int {
	switch {
	case l < o:
		return -1
	case l > o:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "OK":
		*l = LevelOK
	case "WARN":
		*l = LevelWarn
	case "ERROR":
		*l = LevelError
	default:
		return fmt.Errorf("unknown level %q", string(b))
	}

	return nil
}

// AggregateMessage returns the summary text for an aggregate level.
// Anything above WARN reports as ERROR.
func AggregateMessage(l Level) string {
	switch l {
	case LevelOK:
		return "OK"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}
