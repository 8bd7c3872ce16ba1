package gemini_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks.
func mockChunks(chunks []*genai.GenerateContentResponse) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func collectStreamEvents(t *testing.T, s toolchat.Stream) []toolchat.Event {
	t.Helper()
	var events []toolchat.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func textChunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestStream_TextDeltas(t *testing.T) {
	t.Parallel()
	last := textChunk(" world")
	last.Candidates[0].FinishReason = genai.FinishReasonStop
	last.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{textChunk("Hello"), last}))
	defer s.Close()

	events := collectStreamEvents(t, s)
	assert.Equal(t, []toolchat.Event{
		toolchat.EventBlockStart{Index: 0, Kind: toolchat.BlockText},
		toolchat.EventTextDelta{Index: 0, Text: "Hello"},
		toolchat.EventTextDelta{Index: 0, Text: " world"},
		toolchat.EventBlockStop{Index: 0},
		toolchat.EventMessageStop{
			StopReason:    toolchat.StopEndTurn,
			RawStopReason: "STOP",
			Usage:         toolchat.Usage{InputTokens: 10, OutputTokens: 5},
		},
	}, events)
}

func TestStream_TextThenFunctionCalls(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "pondering", Thought: true},
					{Text: "Let me check."},
					{FunctionCall: &genai.FunctionCall{ID: "tc_1", Name: "get_weather", Args: map[string]any{"city": "Rome"}}},
					{FunctionCall: &genai.FunctionCall{ID: "tc_2", Name: "get_datetime"}},
				}},
				FinishReason: genai.FinishReasonStop,
			}},
		},
	}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	defer s.Close()

	events := collectStreamEvents(t, s)
	require.Len(t, events, 10)
	assert.Equal(t, toolchat.EventBlockStart{Index: 0, Kind: toolchat.BlockText}, events[0])
	assert.Equal(t, toolchat.EventTextDelta{Index: 0, Text: "Let me check."}, events[1])
	assert.Equal(t, toolchat.EventBlockStop{Index: 0}, events[2])
	assert.Equal(t, toolchat.EventBlockStart{Index: 1, Kind: toolchat.BlockToolCall, ID: "tc_1", Name: "get_weather"}, events[3])
	args, ok := events[4].(toolchat.EventArgumentsDelta)
	require.True(t, ok)
	assert.JSONEq(t, `{"city":"Rome"}`, args.Fragment)
	assert.Equal(t, toolchat.EventBlockStop{Index: 1}, events[5])
	assert.Equal(t, toolchat.EventBlockStart{Index: 2, Kind: toolchat.BlockToolCall, ID: "tc_2", Name: "get_datetime"}, events[6])
	assert.Equal(t, toolchat.EventArgumentsDelta{Index: 2, Fragment: "{}"}, events[7])
	assert.Equal(t, toolchat.EventBlockStop{Index: 2}, events[8])

	stop, ok := events[9].(toolchat.EventMessageStop)
	require.True(t, ok)
	assert.Equal(t, toolchat.StopToolUse, stop.StopReason)
}

func TestStream_FunctionCallSignature(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{ID: "tc_1", Name: "calculator"}, ThoughtSignature: []byte("sig123")},
			}},
		}},
	}}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	defer s.Close()

	events := collectStreamEvents(t, s)
	assert.Equal(t, toolchat.EventBlockStart{
		Index:     0,
		Kind:      toolchat.BlockToolCall,
		ID:        "tc_1",
		Name:      "calculator",
		Signature: []byte("sig123"),
	}, events[0])
}

func TestStream_GeneratesMissingCallID(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{Name: "calculator", Args: map[string]any{"expression": "1+1"}}},
			}},
		}},
	}}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	defer s.Close()

	events := collectStreamEvents(t, s)
	start, ok := events[0].(toolchat.EventBlockStart)
	require.True(t, ok)
	assert.NotEmpty(t, start.ID)
	assert.Equal(t, "calculator", start.Name)
}

func TestStream_MaxTokens(t *testing.T) {
	t.Parallel()
	c := textChunk("cut")
	c.Candidates[0].FinishReason = genai.FinishReasonMaxTokens
	s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{c}))
	defer s.Close()

	events := collectStreamEvents(t, s)
	stop, ok := events[len(events)-1].(toolchat.EventMessageStop)
	require.True(t, ok)
	assert.Equal(t, toolchat.StopLength, stop.StopReason)
	assert.Equal(t, "MAX_TOKENS", stop.RawStopReason)
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	it := func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk("partial"), nil) {
			return
		}
		yield(nil, boom)
	}
	s := gemini.NewStreamFromIter(context.Background(), it)
	defer s.Close()

	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, err = s.Next()
	assert.ErrorIs(t, err, boom)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()
	s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{textChunk("hi")}))
	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, toolchat.ErrStreamClosed)
}

func TestStream_NextAfterComplete(t *testing.T) {
	t.Parallel()
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(nil))
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, toolchat.EventMessageStop{StopReason: toolchat.StopUnknown}, evt)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}
