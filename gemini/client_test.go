package gemini_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages_UserMessage(t *testing.T) {
	t.Parallel()
	got := gemini.ConvertMessages([]toolchat.Message{toolchat.NewUserMessage("Hello")})
	require.Len(t, got, 1)
	assert.Equal(t, "user", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Hello", got[0].Parts[0].Text)
}

func TestConvertMessages_AssistantMessage(t *testing.T) {
	t.Parallel()
	msgs := []toolchat.Message{
		toolchat.AssistantMessage{Content: []toolchat.ContentBlock{
			toolchat.TextBlock{Text: ""},
			toolchat.TextBlock{Text: "Let me help."},
		}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	assert.Equal(t, "model", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Let me help.", got[0].Parts[0].Text)
}

func TestConvertMessages_ToolCallSignature(t *testing.T) {
	t.Parallel()
	msgs := []toolchat.Message{
		toolchat.AssistantMessage{Content: []toolchat.ContentBlock{
			toolchat.ToolCallBlock{ID: "call_1", Name: "calculator", Arguments: json.RawMessage(`{}`), Signature: []byte("call-sig")},
			toolchat.ToolCallBlock{ID: "call_2", Name: "calculator", Arguments: json.RawMessage(`{}`)},
		}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	require.Len(t, got[0].Parts, 2)
	assert.Equal(t, []byte("call-sig"), got[0].Parts[0].ThoughtSignature)
	assert.Nil(t, got[0].Parts[1].ThoughtSignature)
}

func TestConvertMessages_ToolCallsAndResults(t *testing.T) {
	t.Parallel()
	msgs := []toolchat.Message{
		toolchat.AssistantMessage{Content: []toolchat.ContentBlock{
			toolchat.ToolCallBlock{ID: "call_1", Name: "get_weather", Arguments: json.RawMessage(`{"city":"Rome"}`)},
			toolchat.ToolCallBlock{ID: "call_2", Name: "get_weather", Arguments: json.RawMessage(`{"city":"Oslo"}`)},
		}},
		toolchat.ToolResultMessage{Results: []toolchat.ToolResultBlock{
			{ToolCallID: "call_1", ToolName: "get_weather", Content: `{"success":true}`},
			{ToolCallID: "call_2", ToolName: "get_weather", Content: `{"success":false}`, IsError: true},
		}},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 2)

	assert.Equal(t, "model", got[0].Role)
	require.Len(t, got[0].Parts, 2)
	require.NotNil(t, got[0].Parts[0].FunctionCall)
	assert.Equal(t, "call_1", got[0].Parts[0].FunctionCall.ID)
	assert.Equal(t, "Rome", got[0].Parts[0].FunctionCall.Args["city"])

	assert.Equal(t, "user", got[1].Role)
	require.Len(t, got[1].Parts, 2)
	first := got[1].Parts[0].FunctionResponse
	require.NotNil(t, first)
	assert.Equal(t, "call_1", first.ID)
	assert.Equal(t, "get_weather", first.Name)
	assert.Equal(t, `{"success":true}`, first.Response["output"])
	assert.Equal(t, `{"success":false}`, got[1].Parts[1].FunctionResponse.Response["error"])
}

func TestConvertTools(t *testing.T) {
	t.Parallel()

	assert.Nil(t, gemini.ConvertTools(nil))

	got := gemini.ConvertTools([]toolchat.Capability{{
		Name:        "calculator",
		Description: "Evaluate math",
		Schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"expression": {Type: "string"},
		}, "expression"),
	}})
	require.Len(t, got, 1)
	require.Len(t, got[0].FunctionDeclarations, 1)
	decl := got[0].FunctionDeclarations[0]
	assert.Equal(t, "calculator", decl.Name)
	assert.Equal(t, "Evaluate math", decl.Description)
	schema, ok := decl.ParametersJsonSchema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
}

func TestConvertResponse(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		msg := gemini.ConvertResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking...", Thought: true},
					{Text: "The answer is 4."},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 3},
		})
		assert.Equal(t, "The answer is 4.", msg.Text())
		assert.Equal(t, toolchat.StopEndTurn, msg.StopReason)
		assert.Equal(t, "STOP", msg.RawStopReason)
		assert.Equal(t, toolchat.Usage{InputTokens: 7, OutputTokens: 3}, msg.Usage)
	})

	t.Run("function call promotes stop reason", func(t *testing.T) {
		t.Parallel()
		msg := gemini.ConvertResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: "calculator", Args: map[string]any{"expression": "2+2"}}},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
		})
		assert.Equal(t, toolchat.StopToolUse, msg.StopReason)
		calls := msg.ToolCalls()
		require.Len(t, calls, 1)
		assert.NotEmpty(t, calls[0].ID)
		assert.JSONEq(t, `{"expression":"2+2"}`, string(calls[0].Arguments))
	})

	t.Run("function call keeps thought signature", func(t *testing.T) {
		t.Parallel()
		msg := gemini.ConvertResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{ID: "c1", Name: "calculator"}, ThoughtSignature: []byte("sig")},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
		})
		calls := msg.ToolCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, []byte("sig"), calls[0].Signature)

		replayed := gemini.ConvertMessages([]toolchat.Message{msg})
		require.Len(t, replayed, 1)
		require.Len(t, replayed[0].Parts, 1)
		assert.Equal(t, []byte("sig"), replayed[0].Parts[0].ThoughtSignature)
	})

	t.Run("max tokens", func(t *testing.T) {
		t.Parallel()
		msg := gemini.ConvertResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
		})
		assert.Equal(t, toolchat.StopLength, msg.StopReason)
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()
		msg := gemini.ConvertResponse(&genai.GenerateContentResponse{})
		assert.Equal(t, toolchat.StopUnknown, msg.StopReason)
		assert.Empty(t, msg.Content)
	})
}
