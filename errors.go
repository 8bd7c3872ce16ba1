package toolchat

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, message or transcript failed validation.
	ErrValidation = errors.New("validation error")

	// ErrProtocol indicates a gateway stream violated the event protocol,
	// e.g. a tool call whose arguments never closed.
	ErrProtocol = errors.New("protocol violation")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool indicates a tool name was registered twice under a
	// policy that rejects duplicates.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrBusy indicates a conversation already has a request in flight.
	ErrBusy = errors.New("conversation busy")

	// ErrNoteNotFound indicates a note title does not exist in the store.
	ErrNoteNotFound = errors.New("note not found")
)
