package toolchat_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fwojciec/toolchat"
	"github.com/stretchr/testify/assert"
)

func TestSchema_JSON(t *testing.T) {
	t.Parallel()

	t.Run("nested properties", func(t *testing.T) {
		t.Parallel()
		s := toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"action": {Type: "string", Enum: []string{"add", "list"}},
			"length": {Type: "integer", Default: 16},
		}, "action")
		assert.JSONEq(t, `{
			"type": "object",
			"properties": {
				"action": {"type": "string", "enum": ["add", "list"]},
				"length": {"type": "integer", "default": 16}
			},
			"required": ["action"]
		}`, string(s.JSON()))
	})

	t.Run("object without properties", func(t *testing.T) {
		t.Parallel()
		s := toolchat.ObjectSchema(nil)
		assert.JSONEq(t, `{"type":"object","properties":{}}`, string(s.JSON()))
	})

	t.Run("nested object without properties", func(t *testing.T) {
		t.Parallel()
		s := toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"options": {Type: "object"},
			"city":    {Type: "string"},
		})
		assert.JSONEq(t, `{
			"type": "object",
			"properties": {
				"options": {"type": "object"},
				"city": {"type": "string"}
			}
		}`, string(s.JSON()))
	})

	t.Run("map form without properties", func(t *testing.T) {
		t.Parallel()
		m := toolchat.ObjectSchema(nil).Map()
		assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, m)
	})

	t.Run("map form", func(t *testing.T) {
		t.Parallel()
		s := toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"city": {Type: "string", Description: "City name"},
		}, "city")
		m := s.Map()
		assert.Equal(t, "object", m["type"])
		assert.Equal(t, []any{"city"}, m["required"])
	})
}

type echoTool struct{}

func (echoTool) Name() string            { return "echo" }
func (echoTool) Description() string     { return "Echo the input" }
func (echoTool) Schema() toolchat.Schema { return toolchat.ObjectSchema(nil) }
func (echoTool) Execute(_ context.Context, args json.RawMessage) string {
	return string(args)
}

func TestCapabilityOf(t *testing.T) {
	t.Parallel()
	c := toolchat.CapabilityOf(echoTool{})
	assert.Equal(t, "echo", c.Name)
	assert.Equal(t, "Echo the input", c.Description)
	assert.Equal(t, "object", c.Schema.Type)
}
