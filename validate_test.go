package toolchat_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/toolchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate_ValidDefaults(t *testing.T) {
	t.Parallel()
	r := toolchat.Request{
		Messages: []toolchat.Message{toolchat.NewUserMessage("hello")},
	}
	assert.NoError(t, r.Validate())
}

func TestRequest_Validate_ValidWithAllFields(t *testing.T) {
	t.Parallel()
	temp := 1.0
	r := toolchat.Request{
		Model:        "claude-sonnet-4-20250514",
		SystemPrompt: "You are helpful.",
		Messages:     []toolchat.Message{toolchat.NewUserMessage("hello")},
		Tools:        []toolchat.Capability{{Name: "calculator", Description: "Evaluate math"}},
		MaxTokens:    4096,
		Temperature:  &temp,
	}
	assert.NoError(t, r.Validate())
}

func TestRequest_Validate_Invalid(t *testing.T) {
	t.Parallel()

	neg := -0.1
	high := 2.1

	tests := []struct {
		name string
		req  toolchat.Request
	}{
		{"temperature below zero", toolchat.Request{Temperature: &neg}},
		{"temperature above two", toolchat.Request{Temperature: &high}},
		{"negative max tokens", toolchat.Request{MaxTokens: -1}},
		{"empty tool name", toolchat.Request{Tools: []toolchat.Capability{{Name: ""}}}},
		{"duplicate tool name", toolchat.Request{Tools: []toolchat.Capability{{Name: "a"}, {Name: "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, toolchat.ErrValidation))
		})
	}
}

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     toolchat.Message
		wantErr bool
	}{
		{
			name: "user text",
			msg:  toolchat.NewUserMessage("hi"),
		},
		{
			name:    "user with tool call",
			msg:     toolchat.UserMessage{Content: []toolchat.ContentBlock{toolchat.ToolCallBlock{ID: "1", Name: "x"}}},
			wantErr: true,
		},
		{
			name: "assistant text and tool call",
			msg: toolchat.AssistantMessage{Content: []toolchat.ContentBlock{
				toolchat.TextBlock{Text: "let me check"},
				toolchat.ToolCallBlock{ID: "1", Name: "x", Arguments: json.RawMessage(`{}`)},
			}},
		},
		{
			name:    "assistant tool call without id",
			msg:     toolchat.AssistantMessage{Content: []toolchat.ContentBlock{toolchat.ToolCallBlock{Name: "x"}}},
			wantErr: true,
		},
		{
			name:    "assistant with result block",
			msg:     toolchat.AssistantMessage{Content: []toolchat.ContentBlock{toolchat.ToolResultBlock{ToolCallID: "1"}}},
			wantErr: true,
		},
		{
			name: "tool results",
			msg:  toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{{ToolCallID: "1", ToolName: "x", Content: "ok"}}},
		},
		{
			name:    "empty tool results",
			msg:     toolchat.ToolResultMessage{},
			wantErr: true,
		},
		{
			name:    "tool result without call id",
			msg:     toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{{ToolName: "x"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := toolchat.ValidateMessage(tt.msg)
			if tt.wantErr {
				assert.ErrorIs(t, err, toolchat.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func call(id string) toolchat.ToolCallBlock {
	return toolchat.ToolCallBlock{ID: id, Name: "calculator", Arguments: json.RawMessage(`{}`)}
}

func result(id string) toolchat.ToolResultBlock {
	return toolchat.ToolResultBlock{ToolCallID: id, ToolName: "calculator", Content: "{}"}
}

func TestValidateTranscript(t *testing.T) {
	t.Parallel()

	user := toolchat.NewUserMessage("what is 2+2 and 3+3?")
	answer := toolchat.AssistantMessage{Content: []toolchat.ContentBlock{toolchat.TextBlock{Text: "4 and 6"}}}
	twoCalls := toolchat.AssistantMessage{Content: []toolchat.ContentBlock{call("a"), call("b")}}

	tests := []struct {
		name    string
		msgs    []toolchat.Message
		wantErr bool
	}{
		{
			name: "empty",
		},
		{
			name: "single round trip",
			msgs: []toolchat.Message{user, answer},
		},
		{
			name: "paired tool round",
			msgs: []toolchat.Message{
				user, twoCalls,
				toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{result("a"), result("b")}},
				answer,
			},
		},
		{
			name:    "unanswered calls at end",
			msgs:    []toolchat.Message{user, twoCalls},
			wantErr: true,
		},
		{
			name:    "calls followed by assistant",
			msgs:    []toolchat.Message{user, twoCalls, answer},
			wantErr: true,
		},
		{
			name: "missing result",
			msgs: []toolchat.Message{
				user, twoCalls,
				toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{result("a")}},
			},
			wantErr: true,
		},
		{
			name: "results out of order",
			msgs: []toolchat.Message{
				user, twoCalls,
				toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{result("b"), result("a")}},
			},
			wantErr: true,
		},
		{
			name: "orphan results",
			msgs: []toolchat.Message{
				user,
				toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{result("a")}},
			},
			wantErr: true,
		},
		{
			name: "results first",
			msgs: []toolchat.Message{
				toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{result("a")}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := toolchat.ValidateTranscript(tt.msgs)
			if tt.wantErr {
				assert.ErrorIs(t, err, toolchat.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
