package toolchat

// StopReason indicates why the assistant stopped generating.
type StopReason string

const (
	StopEndTurn StopReason = "end_turn"
	StopLength  StopReason = "length"
	StopToolUse StopReason = "tool_use"
	StopError   StopReason = "error"
	StopUnknown StopReason = "unknown"

	// StopMaxRounds is never returned by a gateway. The agent reports it when
	// a conversation ends because the tool round limit was reached.
	StopMaxRounds StopReason = "max_rounds"
)
