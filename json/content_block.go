package json

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/toolchat"
)

const (
	blockText     = "text"
	blockToolCall = "tool_call"
)

// blockDTO is one content block tagged by kind. Tool calls always carry an
// arguments object, even an empty one. Signature is base64.
type blockDTO struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

func encodeBlocks(blocks []toolchat.ContentBlock) ([]blockDTO, error) {
	out := make([]blockDTO, 0, len(blocks))
	for i, b := range blocks {
		switch b := b.(type) {
		case toolchat.TextBlock:
			out = append(out, blockDTO{Type: blockText, Text: b.Text})
		case toolchat.ToolCallBlock:
			args := b.Arguments
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			dto := blockDTO{Type: blockToolCall, ID: b.ID, Name: b.Name, Arguments: args}
			if len(b.Signature) > 0 {
				dto.Signature = base64.StdEncoding.EncodeToString(b.Signature)
			}
			out = append(out, dto)
		default:
			return nil, fmt.Errorf("block %d: cannot encode %T", i, b)
		}
	}
	return out, nil
}

func decodeBlocks(dtos []blockDTO) ([]toolchat.ContentBlock, error) {
	out := make([]toolchat.ContentBlock, 0, len(dtos))
	for i, d := range dtos {
		switch d.Type {
		case blockText:
			out = append(out, toolchat.TextBlock{Text: d.Text})
		case blockToolCall:
			var sig []byte
			if d.Signature != "" {
				var err error
				sig, err = base64.StdEncoding.DecodeString(d.Signature)
				if err != nil {
					return nil, fmt.Errorf("block %d: decode tool call signature: %w", i, err)
				}
			}
			out = append(out, toolchat.ToolCallBlock{ID: d.ID, Name: d.Name, Arguments: d.Arguments, Signature: sig})
		default:
			return nil, fmt.Errorf("block %d: unknown type %q", i, d.Type)
		}
	}
	return out, nil
}
