package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/httpclient"
)

// Interface compliance check.
var _ toolchat.Gateway = (*Client)(nil)

// Client implements [toolchat.Gateway] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Anthropic [Client] with the given API key and options.
// The default HTTP client retries transient failures.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.New()
	}
	return c
}

// Complete sends a non-streaming request and returns the whole assistant turn.
func (c *Client) Complete(ctx context.Context, req toolchat.Request) (toolchat.AssistantMessage, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return toolchat.AssistantMessage{}, err
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return toolchat.AssistantMessage{}, fmt.Errorf("anthropic: failed to decode response: %w", err)
	}

	msg := toolchat.AssistantMessage{
		Usage:     convertUsage(body.Usage),
		Timestamp: time.Now(),
	}
	if body.StopReason != nil {
		msg.RawStopReason = *body.StopReason
		msg.StopReason = mapStopReason(*body.StopReason)
	} else {
		msg.StopReason = toolchat.StopUnknown
	}
	for _, b := range body.Content {
		switch b.Type {
		case "text":
			msg.Content = append(msg.Content, toolchat.TextBlock{Text: b.Text})
		case "tool_use":
			args := b.Input
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			msg.Content = append(msg.Content, toolchat.ToolCallBlock{ID: b.ID, Name: b.Name, Arguments: args})
		}
	}
	return msg, nil
}

// Stream sends a streaming request to the Anthropic Messages API and returns
// a [toolchat.Stream] that emits block events.
func (c *Client) Stream(ctx context.Context, req toolchat.Request) (toolchat.Stream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return newStream(ctx, resp.Body), nil
}

// do posts req and returns the response when the status is 200.
func (c *Client) do(ctx context.Context, req toolchat.Request, stream bool) (*http.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	body, err := c.buildRequestBody(req, stream)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

func (c *Client) buildRequestBody(req toolchat.Request, stream bool) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Stream:      stream,
		System:      convertSystem(req.SystemPrompt),
		Messages:    convertMessages(req.Messages),
		Tools:       convertTools(req.Tools),
		Temperature: req.Temperature,
	}
	injectCacheMarkers(&apiReq)

	return json.Marshal(apiReq)
}

// convertSystem converts a system prompt string to an array of content blocks
// suitable for the Anthropic API. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt}}
}

// injectCacheMarkers sets cache_control breakpoints on the request:
//  1. Top-level: automatic caching for the conversation message window.
//  2. System prompt last block: stable content breakpoint.
//  3. Last tool: stable tool definitions breakpoint.
func injectCacheMarkers(req *apiRequest) {
	cc := &apiCacheControl{Type: "ephemeral"}
	req.CacheControl = cc
	if len(req.System) > 0 {
		req.System[len(req.System)-1].CacheControl = cc
	}
	if len(req.Tools) > 0 {
		req.Tools[len(req.Tools)-1].CacheControl = cc
	}
}

// convertMessages maps the transcript onto API roles. A tool result message
// becomes a single user turn carrying one tool_result block per call.
func convertMessages(msgs []toolchat.Message) []apiMessage {
	var result []apiMessage
	for _, msg := range msgs {
		switch m := msg.(type) {
		case toolchat.UserMessage:
			result = append(result, apiMessage{Role: "user", Content: convertContentBlocks(m.Content)})
		case toolchat.AssistantMessage:
			result = append(result, apiMessage{Role: "assistant", Content: convertContentBlocks(m.Content)})
		case toolchat.ToolResultMessage:
			blocks := make([]apiContentBlock, 0, len(m.Results))
			for _, r := range m.Results {
				block := apiContentBlock{Type: "tool_result", ToolUseID: r.ToolCallID, IsError: r.IsError}
				if r.Content != "" {
					block.Content = []apiContentBlock{{Type: "text", Text: r.Content}}
				}
				blocks = append(blocks, block)
			}
			result = append(result, apiMessage{Role: "user", Content: blocks})
		}
	}
	return result
}

func convertContentBlocks(blocks []toolchat.ContentBlock) []apiContentBlock {
	result := make([]apiContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch bl := b.(type) {
		case toolchat.TextBlock:
			if bl.Text == "" {
				continue
			}
			result = append(result, apiContentBlock{Type: "text", Text: bl.Text})
		case toolchat.ToolCallBlock:
			result = append(result, apiContentBlock{Type: "tool_use", ID: bl.ID, Name: bl.Name, Input: bl.Arguments})
		}
	}
	return result
}

func convertTools(tools []toolchat.Capability) []apiTool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]apiTool, len(tools))
	for i, t := range tools {
		result[i] = apiTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema.JSON(),
		}
	}
	return result
}

func convertUsage(u sseUsage) toolchat.Usage {
	usage := toolchat.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
	if u.CacheCreationInputTokens != nil {
		usage.CacheWriteTokens = *u.CacheCreationInputTokens
	}
	if u.CacheReadInputTokens != nil {
		usage.CacheReadTokens = *u.CacheReadInputTokens
	}
	return usage
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}

func mapStopReason(raw string) toolchat.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return toolchat.StopEndTurn
	case "max_tokens":
		return toolchat.StopLength
	case "tool_use":
		return toolchat.StopToolUse
	default:
		return toolchat.StopUnknown
	}
}
