package toolchat

import "context"

// Stream uses a pull-based iterator pattern. Next returns io.EOF once the
// transport has delivered everything. Cancellation flows through the context
// passed to Gateway.Stream(). Close may be called at any point and releases
// the underlying transport.
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Gateway is a strategy pattern interface over a hosted model service.
// Complete returns the whole assistant turn at once. Stream delivers the same
// turn as ordered events; assembling them is the caller's job.
type Gateway interface {
	Complete(ctx context.Context, req Request) (AssistantMessage, error)
	Stream(ctx context.Context, req Request) (Stream, error)
}
