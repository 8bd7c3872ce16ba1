package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/toolchat"
	"google.golang.org/genai"
)

type streamState int

const (
	stateStreaming streamState = iota
	stateComplete
	stateError
	stateClosed
)

// stream implements [toolchat.Stream] by wrapping the genai SDK's streaming
// iterator. Gemini delivers whole parts per chunk, so consecutive text parts
// are folded into one text block and every function call becomes a complete
// start, arguments, stop triple.
type stream struct {
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	ctx   context.Context
	state streamState
	err   error

	pending   []toolchat.Event
	next      int // next block index
	textIndex int // index of the open text block, -1 if none
	sawCall   bool
	finish    genai.FinishReason
	usage     toolchat.Usage
}

// Interface compliance check.
var _ toolchat.Stream = (*stream)(nil)

func newStream(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull:      next,
		stop:      stop,
		ctx:       ctx,
		textIndex: -1,
	}
}

// Next returns the next event. The last event of a complete response is
// EventMessageStop; after it Next returns io.EOF.
func (s *stream) Next() (toolchat.Event, error) {
	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}
		switch s.state {
		case stateComplete:
			return nil, io.EOF
		case stateError:
			return nil, s.err
		case stateClosed:
			return nil, fmt.Errorf("gemini: %w", toolchat.ErrStreamClosed)
		}

		resp, err, ok := s.pull()
		if !ok {
			s.finishMessage()
			continue
		}
		if err != nil {
			s.state = stateError
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				s.err = fmt.Errorf("gemini: %w", ctxErr)
			} else {
				s.err = fmt.Errorf("gemini: %w", err)
			}
			continue
		}
		s.processChunk(resp)
	}
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	if s.state == stateStreaming {
		s.state = stateClosed
		s.pending = nil
	}
	s.stop()
	return nil
}

func (s *stream) processChunk(resp *genai.GenerateContentResponse) {
	if resp.UsageMetadata != nil {
		s.usage = convertUsage(resp.UsageMetadata)
	}
	if len(resp.Candidates) == 0 {
		return
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != "" {
		s.finish = cand.FinishReason
	}
	if cand.Content == nil {
		return
	}
	for _, p := range cand.Content.Parts {
		switch {
		case p.Thought:
		case p.FunctionCall != nil:
			s.closeText()
			idx := s.next
			s.next++
			s.sawCall = true
			s.emit(
				toolchat.EventBlockStart{Index: idx, Kind: toolchat.BlockToolCall, ID: callID(p.FunctionCall), Name: p.FunctionCall.Name, Signature: p.ThoughtSignature},
				toolchat.EventArgumentsDelta{Index: idx, Fragment: string(marshalArgs(p.FunctionCall.Args))},
				toolchat.EventBlockStop{Index: idx},
			)
		case p.Text != "":
			if s.textIndex < 0 {
				s.textIndex = s.next
				s.next++
				s.emit(toolchat.EventBlockStart{Index: s.textIndex, Kind: toolchat.BlockText})
			}
			s.emit(toolchat.EventTextDelta{Index: s.textIndex, Text: p.Text})
		}
	}
}

func (s *stream) closeText() {
	if s.textIndex >= 0 {
		s.emit(toolchat.EventBlockStop{Index: s.textIndex})
		s.textIndex = -1
	}
}

func (s *stream) finishMessage() {
	s.closeText()
	stop := mapFinishReason(s.finish)
	if s.sawCall {
		stop = toolchat.StopToolUse
	}
	s.emit(toolchat.EventMessageStop{
		StopReason:    stop,
		RawStopReason: string(s.finish),
		Usage:         s.usage,
	})
	s.state = stateComplete
}

func (s *stream) emit(evts ...toolchat.Event) {
	s.pending = append(s.pending, evts...)
}
