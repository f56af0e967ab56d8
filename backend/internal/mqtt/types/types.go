package types

// CommandPoll requests an immediate diagnostics poll.
const CommandPoll = "poll"

// DiagnosticsCommand is a command sent to the diagnostics reporter of a robot.
type DiagnosticsCommand struct {
	// Command is the command to execute (e.g., "poll")
	Command string `json:"command"`
	// RequestID is an optional caller supplied identifier echoed in logs
	RequestID string `json:"requestID,omitempty"`
}
