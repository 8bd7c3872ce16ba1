// Package mock provides test doubles for toolchat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/toolchat"
)

// Interface compliance check.
var _ toolchat.Gateway = (*Gateway)(nil)

// Gateway is a test double for toolchat.Gateway.
// Set CompleteFn or StreamFn for the mode under test.
type Gateway struct {
	CompleteFn func(ctx context.Context, req toolchat.Request) (toolchat.AssistantMessage, error)
	StreamFn   func(ctx context.Context, req toolchat.Request) (toolchat.Stream, error)
}

// Complete delegates to CompleteFn.
func (g *Gateway) Complete(ctx context.Context, req toolchat.Request) (toolchat.AssistantMessage, error) {
	return g.CompleteFn(ctx, req)
}

// Stream delegates to StreamFn.
func (g *Gateway) Stream(ctx context.Context, req toolchat.Request) (toolchat.Stream, error) {
	return g.StreamFn(ctx, req)
}
