package toolchat

import "fmt"

// ValidateMessage checks that a message's content blocks are valid for its role.
func ValidateMessage(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		return validateBlocks(m.Content, m.Role(), allowText)
	case AssistantMessage:
		return validateBlocks(m.Content, m.Role(), allowText|allowToolCall)
	case ToolResultMessage:
		if len(m.Results) == 0 {
			return fmt.Errorf("%s message has no results: %w", m.Role(), ErrValidation)
		}
		for _, r := range m.Results {
			if r.ToolCallID == "" {
				return fmt.Errorf("tool result for %q has empty call id: %w", r.ToolName, ErrValidation)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %T: %w", msg, ErrValidation)
	}
}

type blockAllow uint8

const (
	allowText blockAllow = 1 << iota
	allowToolCall
)

func validateBlocks(blocks []ContentBlock, role Role, allowed blockAllow) error {
	for _, b := range blocks {
		switch b := b.(type) {
		case TextBlock:
			if allowed&allowText == 0 {
				return fmt.Errorf("TextBlock not allowed in %s message: %w", role, ErrValidation)
			}
		case ToolCallBlock:
			if allowed&allowToolCall == 0 {
				return fmt.Errorf("ToolCallBlock not allowed in %s message: %w", role, ErrValidation)
			}
			if b.ID == "" || b.Name == "" {
				return fmt.Errorf("ToolCallBlock needs id and name, got %q/%q: %w", b.ID, b.Name, ErrValidation)
			}
		default:
			return fmt.Errorf("unknown content block type %T in %s message: %w", b, role, ErrValidation)
		}
	}
	return nil
}

// ValidateTranscript checks every message and the pairing rule: an assistant
// message with N tool calls is immediately followed by one tool result
// message with N results answering those calls in the same order, and tool
// result messages appear nowhere else.
func ValidateTranscript(msgs []Message) error {
	for i, msg := range msgs {
		if err := ValidateMessage(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		switch m := msg.(type) {
		case AssistantMessage:
			calls := m.ToolCalls()
			if len(calls) == 0 {
				continue
			}
			if i+1 >= len(msgs) {
				return fmt.Errorf("message %d: %d tool calls left unanswered: %w", i, len(calls), ErrValidation)
			}
			next, ok := msgs[i+1].(ToolResultMessage)
			if !ok {
				return fmt.Errorf("message %d: tool calls followed by %s message: %w", i, msgs[i+1].Role(), ErrValidation)
			}
			if len(next.Results) != len(calls) {
				return fmt.Errorf("message %d: %d tool calls but %d results: %w", i, len(calls), len(next.Results), ErrValidation)
			}
			for j, c := range calls {
				if next.Results[j].ToolCallID != c.ID {
					return fmt.Errorf("message %d: result %d answers %q, want %q: %w", i+1, j, next.Results[j].ToolCallID, c.ID, ErrValidation)
				}
			}
		case ToolResultMessage:
			prev, ok := previous(msgs, i).(AssistantMessage)
			if !ok || len(prev.ToolCalls()) == 0 {
				return fmt.Errorf("message %d: tool results without preceding tool calls: %w", i, ErrValidation)
			}
		}
	}
	return nil
}

func previous(msgs []Message, i int) Message {
	if i == 0 {
		return nil
	}
	return msgs[i-1]
}
