package agent

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/toolchat"
)

type blockState int

const (
	blockOpen blockState = iota
	blockAccumulating
	blockClosed
)

type block struct {
	kind  toolchat.BlockKind
	id    string
	name  string
	sig   []byte
	buf   strings.Builder
	state blockState
}

// assembler rebuilds an AssistantMessage from stream events. Each block
// index moves Open -> Accumulating -> Closed; any event that does not fit
// that progression is a protocol violation.
type assembler struct {
	blocks map[int]*block
	stop   *toolchat.EventMessageStop
}

func newAssembler() *assembler {
	return &assembler{blocks: make(map[int]*block)}
}

func (a *assembler) apply(evt toolchat.Event) error {
	if a.stop != nil {
		return fmt.Errorf("%T after message stop: %w", evt, toolchat.ErrProtocol)
	}
	switch e := evt.(type) {
	case toolchat.EventBlockStart:
		if _, ok := a.blocks[e.Index]; ok {
			return fmt.Errorf("block %d started twice: %w", e.Index, toolchat.ErrProtocol)
		}
		switch e.Kind {
		case toolchat.BlockText:
		case toolchat.BlockToolCall:
			if e.ID == "" || e.Name == "" {
				return fmt.Errorf("tool call block %d missing id or name: %w", e.Index, toolchat.ErrProtocol)
			}
		default:
			return fmt.Errorf("block %d has unknown kind %q: %w", e.Index, e.Kind, toolchat.ErrProtocol)
		}
		a.blocks[e.Index] = &block{kind: e.Kind, id: e.ID, name: e.Name, sig: e.Signature}
	case toolchat.EventTextDelta:
		b, err := a.open(e.Index, toolchat.BlockText)
		if err != nil {
			return err
		}
		b.buf.WriteString(e.Text)
		b.state = blockAccumulating
	case toolchat.EventArgumentsDelta:
		b, err := a.open(e.Index, toolchat.BlockToolCall)
		if err != nil {
			return err
		}
		b.buf.WriteString(e.Fragment)
		b.state = blockAccumulating
	case toolchat.EventBlockStop:
		b, err := a.open(e.Index, "")
		if err != nil {
			return err
		}
		b.state = blockClosed
	case toolchat.EventMessageStop:
		a.stop = &e
	default:
		return fmt.Errorf("unknown event %T: %w", evt, toolchat.ErrProtocol)
	}
	return nil
}

// open returns the block at index if it exists, is not closed and, when
// kind is set, has that kind.
func (a *assembler) open(index int, kind toolchat.BlockKind) (*block, error) {
	b, ok := a.blocks[index]
	if !ok {
		return nil, fmt.Errorf("event for unknown block %d: %w", index, toolchat.ErrProtocol)
	}
	if b.state == blockClosed {
		return nil, fmt.Errorf("event for closed block %d: %w", index, toolchat.ErrProtocol)
	}
	if kind != "" && b.kind != kind {
		return nil, fmt.Errorf("%s delta for %s block %d: %w", kind, b.kind, index, toolchat.ErrProtocol)
	}
	return b, nil
}

// message returns the assembled turn. Blocks are ordered by index and empty
// text blocks are dropped.
func (a *assembler) message() (toolchat.AssistantMessage, error) {
	if a.stop == nil {
		return toolchat.AssistantMessage{}, fmt.Errorf("stream ended without message stop: %w", toolchat.ErrProtocol)
	}
	indexes := make([]int, 0, len(a.blocks))
	for i := range a.blocks {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	msg := toolchat.AssistantMessage{
		StopReason:    a.stop.StopReason,
		RawStopReason: a.stop.RawStopReason,
		Usage:         a.stop.Usage,
		Timestamp:     time.Now(),
	}
	for _, i := range indexes {
		b := a.blocks[i]
		if b.state != blockClosed {
			return toolchat.AssistantMessage{}, fmt.Errorf("block %d never closed: %w", i, toolchat.ErrProtocol)
		}
		switch b.kind {
		case toolchat.BlockText:
			if b.buf.Len() > 0 {
				msg.Content = append(msg.Content, toolchat.TextBlock{Text: b.buf.String()})
			}
		case toolchat.BlockToolCall:
			args := json.RawMessage(b.buf.String())
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			if !json.Valid(args) {
				return toolchat.AssistantMessage{}, fmt.Errorf("tool call %s arguments are not valid JSON: %w", b.id, toolchat.ErrProtocol)
			}
			msg.Content = append(msg.Content, toolchat.ToolCallBlock{ID: b.id, Name: b.name, Arguments: args, Signature: b.sig})
		}
	}
	return msg, nil
}
