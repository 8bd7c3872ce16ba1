// Package agent runs the tool-augmented conversation loop between a
// Gateway and a set of tools.
package agent

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/registry"
	"github.com/fwojciec/toolchat/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Markers yielded by ChatStream between text deltas.
const (
	ToolMarker  = "\n🛠️ Running tools...\n"
	LimitMarker = "\n[tool round limit reached]\n"
)

// DefaultMaxRounds is the round limit used when WithMaxRounds is not given.
const DefaultMaxRounds = 10

// Result describes a completed Run.
type Result struct {
	Text       string
	StopReason toolchat.StopReason
	Rounds     int
	Usage      toolchat.Usage
}

// Option configures an Agent.
type Option func(*Agent)

// WithModel sets the model ID sent with every request. Empty means the
// gateway default.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithSystemPrompt sets the system prompt of a new conversation.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.session.SystemPrompt = prompt }
}

// WithMaxTokens sets the output token limit per gateway call.
func WithMaxTokens(n int) Option {
	return func(a *Agent) { a.maxTokens = n }
}

// WithMaxRounds bounds the number of gateway calls per user turn. Zero
// means unlimited.
func WithMaxRounds(n int) Option {
	return func(a *Agent) { a.maxRounds = n }
}

// WithSession resumes an existing conversation.
func WithSession(s toolchat.Session) Option {
	return func(a *Agent) { a.session = s }
}

// WithLogger sets the logger for round diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// Agent owns one conversation. Only one Chat, Run, RunStream or ChatStream
// may be in flight at a time; a concurrent call fails with toolchat.ErrBusy.
type Agent struct {
	gateway toolchat.Gateway
	tools   toolchat.ToolDispatcher

	model     string
	maxTokens int
	maxRounds int
	logger    *slog.Logger

	busy sync.Mutex // held for the duration of a turn

	mu      sync.RWMutex // guards session
	session toolchat.Session
}

// New returns an Agent talking to gateway with the given tools. A nil tools
// means the model is offered no tools.
func New(gateway toolchat.Gateway, tools toolchat.ToolDispatcher, opts ...Option) *Agent {
	if tools == nil {
		tools = registry.New()
	}
	a := &Agent{
		gateway:   gateway,
		tools:     tools,
		maxRounds: DefaultMaxRounds,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		session:   toolchat.NewSession(""),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Chat sends text and returns the final answer.
func (a *Agent) Chat(ctx context.Context, text string) (string, error) {
	res, err := a.Run(ctx, text)
	return res.Text, err
}

// Run sends text and drives the blocking loop until the model produces a
// final answer, stops for another reason, or the round limit is reached.
// On error the transcript keeps every message appended so far.
func (a *Agent) Run(ctx context.Context, text string) (Result, error) {
	if !a.busy.TryLock() {
		return Result{}, toolchat.ErrBusy
	}
	defer a.busy.Unlock()

	ctx, span := tracing.Start(ctx, "agent.Run", attribute.String("session.id", a.ID()))
	defer span.End()

	a.append(toolchat.NewUserMessage(text))

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			tracing.RecordErrorAndStatus(span, err)
			return res, err
		}
		res.Rounds++
		msg, err := a.gateway.Complete(ctx, a.request())
		if err != nil {
			tracing.RecordErrorAndStatus(span, err)
			return res, fmt.Errorf("agent: round %d: %w", res.Rounds, err)
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		a.append(msg)
		res.Text = msg.Text()
		res.StopReason = msg.StopReason
		res.Usage = res.Usage.Add(msg.Usage)

		switch a.decide(ctx, msg, res.Rounds) {
		case stepDone:
			span.SetAttributes(attribute.Int("agent.rounds", res.Rounds))
			tracing.RecordErrorAndStatus(span, nil)
			return res, nil
		case stepLimit:
			res.StopReason = toolchat.StopMaxRounds
			tracing.RecordErrorAndStatus(span, nil)
			return res, nil
		case stepDispatch:
			a.append(a.runTools(ctx, msg.ToolCalls()))
		}
	}
}

// ChatStream sends text and yields answer text as it arrives. ToolMarker is
// yielded before each round of tool execution and LimitMarker when the round
// limit ends the turn. An error is yielded at most once, as the last value.
// Breaking out of the range closes the underlying stream.
func (a *Agent) ChatStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_, err := a.RunStream(ctx, text, func(chunk string) bool { return yield(chunk, nil) })
		if err != nil {
			yield("", err)
		}
	}
}

// RunStream is the streaming form of Run. onText receives text deltas and
// the ToolMarker and LimitMarker markers as they occur; returning false ends
// the turn early without an error. Calls left unexecuted by an early end are
// answered with error results.
func (a *Agent) RunStream(ctx context.Context, text string, onText func(string) bool) (Result, error) {
	if !a.busy.TryLock() {
		return Result{}, toolchat.ErrBusy
	}
	defer a.busy.Unlock()

	ctx, span := tracing.Start(ctx, "agent.RunStream", attribute.String("session.id", a.ID()))
	defer span.End()

	a.append(toolchat.NewUserMessage(text))

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			tracing.RecordErrorAndStatus(span, err)
			return res, err
		}
		res.Rounds++
		msg, stopped, err := a.streamRound(ctx, onText)
		if stopped {
			return res, nil
		}
		if err != nil {
			tracing.RecordErrorAndStatus(span, err)
			return res, fmt.Errorf("agent: round %d: %w", res.Rounds, err)
		}
		a.append(msg)
		res.Text = msg.Text()
		res.StopReason = msg.StopReason
		res.Usage = res.Usage.Add(msg.Usage)

		switch a.decide(ctx, msg, res.Rounds) {
		case stepDone:
			span.SetAttributes(attribute.Int("agent.rounds", res.Rounds))
			tracing.RecordErrorAndStatus(span, nil)
			return res, nil
		case stepLimit:
			res.StopReason = toolchat.StopMaxRounds
			tracing.RecordErrorAndStatus(span, nil)
			onText(LimitMarker)
			return res, nil
		case stepDispatch:
			calls := msg.ToolCalls()
			if !onText(ToolMarker) {
				a.append(skipped(calls, "tool call not executed: conversation interrupted"))
				return res, nil
			}
			a.append(a.runTools(ctx, calls))
		}
	}
}

// streamRound performs one streaming gateway call, passing text deltas to
// onText. stopped reports that onText asked to end the turn.
func (a *Agent) streamRound(ctx context.Context, onText func(string) bool) (msg toolchat.AssistantMessage, stopped bool, err error) {
	s, err := a.gateway.Stream(ctx, a.request())
	if err != nil {
		return msg, false, err
	}
	defer s.Close()

	asm := newAssembler()
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return msg, false, err
		}
		if err := asm.apply(evt); err != nil {
			return msg, false, err
		}
		if d, ok := evt.(toolchat.EventTextDelta); ok && d.Text != "" {
			if !onText(d.Text) {
				return msg, true, nil
			}
		}
	}
	msg, err = asm.message()
	return msg, false, err
}

type step int

const (
	stepDone step = iota
	stepDispatch
	stepLimit
)

// decide picks what follows an appended assistant message. Tool calls that
// will not run are answered with error results so every call in the
// transcript stays paired.
func (a *Agent) decide(ctx context.Context, msg toolchat.AssistantMessage, round int) step {
	calls := msg.ToolCalls()
	switch {
	case msg.StopReason == toolchat.StopToolUse && len(calls) > 0:
		if a.maxRounds > 0 && round >= a.maxRounds {
			a.logger.WarnContext(ctx, "tool round limit reached", "rounds", round, "calls", len(calls))
			a.append(skipped(calls, fmt.Sprintf("tool call not executed: round limit of %d reached", a.maxRounds)))
			return stepLimit
		}
		return stepDispatch
	case len(calls) > 0:
		a.logger.WarnContext(ctx, "tool calls in non tool-use turn", "stop_reason", msg.StopReason, "calls", len(calls))
		a.append(skipped(calls, fmt.Sprintf("tool call not executed: response ended with %s", msg.StopReason)))
		return stepDone
	case msg.StopReason != toolchat.StopEndTurn && msg.StopReason != toolchat.StopToolUse:
		a.logger.WarnContext(ctx, "turn ended early", "stop_reason", msg.StopReason, "raw", msg.RawStopReason)
	}
	return stepDone
}

func (a *Agent) runTools(ctx context.Context, calls []toolchat.ToolCallBlock) toolchat.ToolResultMessage {
	results := make([]toolchat.ToolResultBlock, 0, len(calls))
	for _, c := range calls {
		a.logger.DebugContext(ctx, "dispatch", "tool", c.Name, "id", c.ID)
		out := a.tools.Dispatch(ctx, c.Name, c.Arguments)
		results = append(results, toolchat.ToolResultBlock{
			ToolCallID: c.ID,
			ToolName:   c.Name,
			Content:    out,
			IsError:    toolchat.IsErrorPayload(out),
		})
	}
	return toolchat.ToolResultMessage{Results: results, Timestamp: time.Now()}
}

func skipped(calls []toolchat.ToolCallBlock, reason string) toolchat.ToolResultMessage {
	results := make([]toolchat.ToolResultBlock, 0, len(calls))
	for _, c := range calls {
		results = append(results, toolchat.ToolResultBlock{
			ToolCallID: c.ID,
			ToolName:   c.Name,
			Content:    toolchat.ErrorPayload(reason),
			IsError:    true,
		})
	}
	return toolchat.ToolResultMessage{Results: results, Timestamp: time.Now()}
}

func (a *Agent) request() toolchat.Request {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return toolchat.Request{
		Model:        a.model,
		SystemPrompt: a.session.SystemPrompt,
		Messages:     append([]toolchat.Message(nil), a.session.Messages...),
		Tools:        a.tools.Capabilities(),
		MaxTokens:    a.maxTokens,
	}
}

func (a *Agent) append(msg toolchat.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Messages = append(a.session.Messages, msg)
	a.session.UpdatedAt = time.Now()
}

// ID returns the conversation's session ID.
func (a *Agent) ID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.ID
}

// History returns a copy of the transcript.
func (a *Agent) History() []toolchat.Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]toolchat.Message(nil), a.session.Messages...)
}

// Session returns a copy of the conversation session.
func (a *Agent) Session() toolchat.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.session
	s.Messages = append([]toolchat.Message(nil), s.Messages...)
	return s
}

// ClearHistory empties the transcript. It fails with toolchat.ErrBusy while a
// turn is in flight.
func (a *Agent) ClearHistory() error {
	if !a.busy.TryLock() {
		return toolchat.ErrBusy
	}
	defer a.busy.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Messages = nil
	a.session.UpdatedAt = time.Now()
	return nil
}

// Tools returns the names of the tools offered to the model.
func (a *Agent) Tools() []string {
	return a.tools.Names()
}
