// Package registry holds the set of tools available to a conversation and
// routes tool invocations to them by name.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/tracing"
	"go.opentelemetry.io/otel/attribute"
)

var _ toolchat.ToolDispatcher = (*Registry)(nil)

// DuplicatePolicy decides what Register does with a name that is already
// registered.
type DuplicatePolicy int

const (
	// DuplicateOverwrite replaces the earlier tool. The name keeps its
	// original position in the capability list.
	DuplicateOverwrite DuplicatePolicy = iota
	// DuplicateReject makes Register fail with toolchat.ErrDuplicateTool.
	DuplicateReject
)

// ParseDuplicatePolicy maps "overwrite" and "reject" to a policy. The empty
// string means DuplicateOverwrite.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "overwrite":
		return DuplicateOverwrite, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q: %w", s, toolchat.ErrValidation)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithDuplicatePolicy sets how duplicate names are handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithLogger sets the logger for dispatch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry is a name-keyed, insertion-ordered collection of tools.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	tools  map[string]toolchat.Tool
	policy DuplicatePolicy
	logger *slog.Logger
}

// New returns an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		tools:  make(map[string]toolchat.Tool),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds t under t.Name().
func (r *Registry) Register(t toolchat.Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("registry: tool name must not be empty: %w", toolchat.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; ok {
		if r.policy == DuplicateReject {
			return fmt.Errorf("registry: %q: %w", name, toolchat.ErrDuplicateTool)
		}
		r.logger.Warn("tool replaced", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
	return nil
}

// MustRegister is like Register but panics on error. It returns r so calls
// can be chained.
func (r *Registry) MustRegister(t toolchat.Tool) *Registry {
	if err := r.Register(t); err != nil {
		panic(err)
	}
	return r
}

// Capabilities returns the advertisement of every registered tool in
// registration order. The slice is built fresh on every call.
func (r *Registry) Capabilities() []toolchat.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps := make([]toolchat.Capability, 0, len(r.order))
	for _, name := range r.order {
		caps = append(caps, toolchat.CapabilityOf(r.tools[name]))
	}
	return caps
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (toolchat.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Dispatch runs the named tool with args and returns its result text.
// It never fails: an unknown name or a panicking tool produces an error
// payload the model can read.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (out string) {
	ctx, span := tracing.Start(ctx, "registry.Dispatch", attribute.String("tool.name", name))
	defer span.End()

	r.logger.DebugContext(ctx, "tool call", "tool", name, "input", string(args))

	t, ok := r.Lookup(name)
	if !ok {
		err := fmt.Errorf("tool %q: %w", name, toolchat.ErrToolNotFound)
		tracing.RecordErrorAndStatus(span, err)
		r.logger.WarnContext(ctx, "unknown tool", "tool", name)
		return toolchat.ErrorPayload(err.Error())
	}

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("tool %q panicked: %v", name, p)
			tracing.RecordErrorAndStatus(span, err)
			r.logger.ErrorContext(ctx, "tool panicked", "tool", name, "panic", p)
			out = toolchat.ErrorPayload(err.Error())
		}
	}()

	out = t.Execute(ctx, args)
	tracing.RecordErrorAndStatus(span, nil)
	r.logger.DebugContext(ctx, "tool result", "tool", name, "result", truncate(out, 200))
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
