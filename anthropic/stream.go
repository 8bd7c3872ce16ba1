package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/toolchat"
)

type streamState int

const (
	stateStreaming streamState = iota
	stateComplete
	stateError
	stateClosed
)

// stream implements [toolchat.Stream] by parsing SSE events from an HTTP
// response body. It tracks which block indexes it has announced so deltas
// for block types it does not surface (thinking, server tools) are dropped.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   streamState
	err     error // terminal error, if any

	blocks        map[int]toolchat.BlockKind
	usage         toolchat.Usage
	stopReason    toolchat.StopReason
	rawStopReason string
}

// Interface compliance check.
var _ toolchat.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{
		body:       body,
		scanner:    scanner,
		ctx:        ctx,
		blocks:     make(map[int]toolchat.BlockKind),
		stopReason: toolchat.StopUnknown,
	}
}

// Next reads the next event from the SSE stream. The last event of a
// complete response is EventMessageStop; after it Next returns io.EOF.
func (s *stream) Next() (toolchat.Event, error) {
	switch s.state {
	case stateComplete:
		return nil, io.EOF
	case stateError:
		return nil, s.err
	case stateClosed:
		return nil, fmt.Errorf("anthropic: %w", toolchat.ErrStreamClosed)
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		evt, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if evt != nil {
			return evt, nil
		}
		// Non-semantic event (ping, message_start, etc.) - keep reading.
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state == stateStreaming {
		s.state = stateClosed
	}
	return s.body.Close()
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = stateError
	switch {
	case err == io.EOF:
		s.err = fmt.Errorf("anthropic: unexpected end of stream: %w", io.ErrUnexpectedEOF)
	case s.ctx.Err() != nil:
		s.err = fmt.Errorf("anthropic: %w", s.ctx.Err())
	default:
		s.err = err
	}
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps an SSE event to a toolchat.Event.
// Returns nil event for non-semantic events (ping, message_start, etc.).
func (s *stream) processEvent(eventType, data string) (toolchat.Event, error) {
	switch eventType {
	case "message_start":
		return nil, s.handleMessageStart(data)
	case "content_block_start":
		return s.handleContentBlockStart(data)
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "content_block_stop":
		return s.handleContentBlockStop(data)
	case "message_delta":
		return nil, s.handleMessageDelta(data)
	case "message_stop":
		s.state = stateComplete
		return toolchat.EventMessageStop{
			StopReason:    s.stopReason,
			RawStopReason: s.rawStopReason,
			Usage:         s.usage,
		}, nil
	case "error":
		return nil, s.handleError(data)
	default:
		// ping and unknown event types are ignored per the API spec.
		return nil, nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_start: %w", err)
	}
	s.usage = convertUsage(evt.Message.Usage)
	return nil
}

func (s *stream) handleContentBlockStart(data string) (toolchat.Event, error) {
	var evt sseContentBlockStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_start: %w", err)
	}

	switch evt.ContentBlock.Type {
	case "text":
		s.blocks[evt.Index] = toolchat.BlockText
		return toolchat.EventBlockStart{Index: evt.Index, Kind: toolchat.BlockText}, nil
	case "tool_use":
		s.blocks[evt.Index] = toolchat.BlockToolCall
		return toolchat.EventBlockStart{
			Index: evt.Index,
			Kind:  toolchat.BlockToolCall,
			ID:    evt.ContentBlock.ID,
			Name:  evt.ContentBlock.Name,
		}, nil
	default:
		return nil, nil
	}
}

func (s *stream) handleContentBlockDelta(data string) (toolchat.Event, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	if _, ok := s.blocks[evt.Index]; !ok {
		return nil, nil
	}

	switch evt.Delta.Type {
	case "text_delta":
		return toolchat.EventTextDelta{Index: evt.Index, Text: evt.Delta.Text}, nil
	case "input_json_delta":
		if evt.Delta.PartialJSON == "" {
			return nil, nil
		}
		return toolchat.EventArgumentsDelta{Index: evt.Index, Fragment: evt.Delta.PartialJSON}, nil
	default:
		return nil, nil
	}
}

func (s *stream) handleContentBlockStop(data string) (toolchat.Event, error) {
	var evt sseContentBlockStop
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_stop: %w", err)
	}
	if _, ok := s.blocks[evt.Index]; !ok {
		return nil, nil
	}
	return toolchat.EventBlockStop{Index: evt.Index}, nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}

	s.usage.OutputTokens = evt.Usage.OutputTokens
	if evt.Usage.InputTokens != nil {
		s.usage.InputTokens = *evt.Usage.InputTokens
	}
	if evt.Usage.CacheCreationInputTokens != nil {
		s.usage.CacheWriteTokens += *evt.Usage.CacheCreationInputTokens
	}
	if evt.Usage.CacheReadInputTokens != nil {
		s.usage.CacheReadTokens += *evt.Usage.CacheReadInputTokens
	}

	if evt.Delta.StopReason != nil {
		s.rawStopReason = *evt.Delta.StopReason
		s.stopReason = mapStopReason(*evt.Delta.StopReason)
	}
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}
