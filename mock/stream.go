package mock

import (
	"io"

	"github.com/fwojciec/toolchat"
)

// Interface compliance check.
var _ toolchat.Stream = (*Stream)(nil)

// Stream is a test double for toolchat.Stream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// because callers commonly defer stream.Close().
type Stream struct {
	NextFn  func() (toolchat.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (toolchat.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Replay returns a Stream that yields events in order and then io.EOF.
func Replay(events ...toolchat.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (toolchat.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
	}
}
