package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/toolchat"
)

// Interface compliance check.
var _ toolchat.Tool = (*Tool)(nil)

// Tool is a test double for toolchat.Tool. ToolName is required; ExecuteFn
// panics when nil.
type Tool struct {
	ToolName        string
	ToolDescription string
	ToolSchema      toolchat.Schema
	ExecuteFn       func(ctx context.Context, args json.RawMessage) string
}

// Name returns ToolName.
func (t *Tool) Name() string { return t.ToolName }

// Description returns ToolDescription.
func (t *Tool) Description() string { return t.ToolDescription }

// Schema returns ToolSchema, defaulting to an empty object schema.
func (t *Tool) Schema() toolchat.Schema {
	if t.ToolSchema.Type == "" {
		return toolchat.ObjectSchema(nil)
	}
	return t.ToolSchema
}

// Execute delegates to ExecuteFn.
func (t *Tool) Execute(ctx context.Context, args json.RawMessage) string {
	return t.ExecuteFn(ctx, args)
}
