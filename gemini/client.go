package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/httpclient"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ toolchat.Gateway = (*Client)(nil)

// Client implements [toolchat.Gateway] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
	http   *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets the HTTP client handed to the SDK. The default is a
// retrying, traced client from package httpclient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = httpclient.New()
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.http,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Complete sends a blocking request and returns the whole assistant turn.
func (c *Client) Complete(ctx context.Context, req toolchat.Request) (toolchat.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return toolchat.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.modelFor(req), ConvertMessages(req.Messages), buildConfig(req))
	if err != nil {
		return toolchat.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	return ConvertResponse(resp), nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [toolchat.Stream] that emits index-addressed block events.
func (c *Client) Stream(ctx context.Context, req toolchat.Request) (toolchat.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	iter := c.client.Models.GenerateContentStream(ctx, c.modelFor(req), ConvertMessages(req.Messages), buildConfig(req))
	return newStream(ctx, iter), nil
}

func (c *Client) modelFor(req toolchat.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func buildConfig(req toolchat.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts toolchat Messages to genai Contents. A tool
// result message becomes one user content with a FunctionResponse part per
// result.
func ConvertMessages(msgs []toolchat.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case toolchat.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: convertParts(m.Content),
			})
		case toolchat.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: convertParts(m.Content),
			})
		case toolchat.ToolResultMessage:
			parts := make([]*genai.Part, 0, len(m.Results))
			for _, r := range m.Results {
				key := "output"
				if r.IsError {
					key = "error"
				}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       r.ToolCallID,
						Name:     r.ToolName,
						Response: map[string]any{key: r.Content},
					},
				})
			}
			result = append(result, &genai.Content{Role: "user", Parts: parts})
		}
	}
	return result
}

func convertParts(blocks []toolchat.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case toolchat.TextBlock:
			if bl.Text == "" {
				continue
			}
			parts = append(parts, &genai.Part{Text: bl.Text})
		case toolchat.ToolCallBlock:
			// Arguments is json.RawMessage, always valid JSON from domain types.
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
				ThoughtSignature: bl.Signature,
			})
		}
	}
	return parts
}

// ConvertTools converts toolchat Capabilities to genai Tools.
func ConvertTools(tools []toolchat.Capability) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Schema.Map(),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// ConvertResponse maps a blocking GenerateContent response to an assistant
// message. Thought parts are dropped.
func ConvertResponse(resp *genai.GenerateContentResponse) toolchat.AssistantMessage {
	msg := toolchat.AssistantMessage{
		StopReason: toolchat.StopUnknown,
		Timestamp:  time.Now(),
		Usage:      convertUsage(resp.UsageMetadata),
	}
	if len(resp.Candidates) == 0 {
		return msg
	}
	cand := resp.Candidates[0]
	msg.RawStopReason = string(cand.FinishReason)
	msg.StopReason = mapFinishReason(cand.FinishReason)
	if cand.Content == nil {
		return msg
	}
	for _, p := range cand.Content.Parts {
		switch {
		case p.Thought:
		case p.FunctionCall != nil:
			msg.Content = append(msg.Content, toolchat.ToolCallBlock{
				ID:        callID(p.FunctionCall),
				Name:      p.FunctionCall.Name,
				Arguments: marshalArgs(p.FunctionCall.Args),
				Signature: p.ThoughtSignature,
			})
		case p.Text != "":
			msg.Content = append(msg.Content, toolchat.TextBlock{Text: p.Text})
		}
	}
	if len(msg.ToolCalls()) > 0 {
		msg.StopReason = toolchat.StopToolUse
	}
	return msg
}

// callID returns the SDK-assigned call ID, or a fresh one when the API
// omitted it. Results are correlated by ID, so every call needs one.
func callID(fc *genai.FunctionCall) string {
	if fc.ID != "" {
		return fc.ID
	}
	return "call_" + uuid.NewString()
}

func marshalArgs(args map[string]any) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage(`{}`)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func convertUsage(u *genai.GenerateContentResponseUsageMetadata) toolchat.Usage {
	if u == nil {
		return toolchat.Usage{}
	}
	return toolchat.Usage{
		InputTokens:     int(u.PromptTokenCount),
		OutputTokens:    int(u.CandidatesTokenCount),
		CacheReadTokens: int(u.CachedContentTokenCount),
	}
}

// mapFinishReason maps a Gemini finish reason. Gemini reports STOP for
// function calls too; callers promote to StopToolUse when calls are present.
func mapFinishReason(r genai.FinishReason) toolchat.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return toolchat.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return toolchat.StopLength
	case "":
		return toolchat.StopUnknown
	default:
		return toolchat.StopError
	}
}
