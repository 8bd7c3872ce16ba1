package json

import (
	"fmt"
	"time"

	"github.com/fwojciec/toolchat"
)

const (
	kindUser       = "user"
	kindAssistant  = "assistant"
	kindToolResult = "tool_result"
)

// messageDTO is one transcript entry tagged by role. Only assistant entries
// carry a stop reason and usage.
type messageDTO struct {
	Type          string      `json:"type"`
	Content       []blockDTO  `json:"content,omitempty"`
	Results       []resultDTO `json:"results,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	StopReason    string      `json:"stop_reason,omitempty"`
	RawStopReason string      `json:"raw_stop_reason,omitempty"`
	Usage         *usageDTO   `json:"usage,omitempty"`
}

type resultDTO struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

type usageDTO struct {
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
	CacheReadTokens  int `json:"cache_read_tokens,omitempty"`
	CacheWriteTokens int `json:"cache_write_tokens,omitempty"`
}

func encodeMessage(msg toolchat.Message) (messageDTO, error) {
	switch m := msg.(type) {
	case toolchat.UserMessage:
		blocks, err := encodeBlocks(m.Content)
		return messageDTO{Type: kindUser, Content: blocks, Timestamp: m.Timestamp}, err
	case toolchat.AssistantMessage:
		blocks, err := encodeBlocks(m.Content)
		u := usageDTO(m.Usage)
		return messageDTO{
			Type:          kindAssistant,
			Content:       blocks,
			Timestamp:     m.Timestamp,
			StopReason:    string(m.StopReason),
			RawStopReason: m.RawStopReason,
			Usage:         &u,
		}, err
	case toolchat.ToolResultMessage:
		dto := messageDTO{Type: kindToolResult, Timestamp: m.Timestamp}
		for _, r := range m.Results {
			dto.Results = append(dto.Results, resultDTO(r))
		}
		return dto, nil
	default:
		return messageDTO{}, fmt.Errorf("cannot encode %T", msg)
	}
}

func decodeMessage(dto messageDTO) (toolchat.Message, error) {
	switch dto.Type {
	case kindUser:
		blocks, err := decodeBlocks(dto.Content)
		if err != nil {
			return nil, err
		}
		return toolchat.UserMessage{Content: blocks, Timestamp: dto.Timestamp}, nil
	case kindAssistant:
		blocks, err := decodeBlocks(dto.Content)
		if err != nil {
			return nil, err
		}
		m := toolchat.AssistantMessage{
			Content:       blocks,
			StopReason:    toolchat.StopReason(dto.StopReason),
			RawStopReason: dto.RawStopReason,
			Timestamp:     dto.Timestamp,
		}
		if dto.Usage != nil {
			m.Usage = toolchat.Usage(*dto.Usage)
		}
		return m, nil
	case kindToolResult:
		m := toolchat.ToolResultMessage{Timestamp: dto.Timestamp}
		for _, r := range dto.Results {
			m.Results = append(m.Results, toolchat.ToolResultBlock(r))
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", dto.Type)
	}
}
