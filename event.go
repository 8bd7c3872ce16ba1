package toolchat

// BlockKind identifies the kind of content block a stream is opening.
type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockToolCall BlockKind = "tool_call"
)

// Event is a sealed interface representing a streaming event.
// Events are purely semantic. Transport errors come from Next()'s error
// return, not from events. Blocks are addressed by Index so a consumer can
// detect out-of-order or duplicate events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventBlockStart opens a content block. ID, Name and Signature are set for
// tool calls; Signature may be empty.
type EventBlockStart struct {
	Index     int
	Kind      BlockKind
	ID        string
	Name      string
	Signature []byte
}

func (EventBlockStart) event() {}

// EventTextDelta appends text to an open text block.
type EventTextDelta struct {
	Index int
	Text  string
}

func (EventTextDelta) event() {}

// EventArgumentsDelta appends a fragment of a tool call's JSON arguments.
// Fragments are not valid JSON on their own.
type EventArgumentsDelta struct {
	Index    int
	Fragment string
}

func (EventArgumentsDelta) event() {}

// EventBlockStop closes a content block.
type EventBlockStop struct {
	Index int
}

func (EventBlockStop) event() {}

// EventMessageStop carries the stop indicator. It is the last event of a
// well-formed stream.
type EventMessageStop struct {
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
}

func (EventMessageStop) event() {}

// Interface compliance checks.
var (
	_ Event = EventBlockStart{}
	_ Event = EventTextDelta{}
	_ Event = EventArgumentsDelta{}
	_ Event = EventBlockStop{}
	_ Event = EventMessageStop{}
)
