package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/toolchat/anthropic"
	"github.com/fwojciec/toolchat/config"
	"github.com/fwojciec/toolchat/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGateway_ExplicitAnthropic(t *testing.T) {
	t.Parallel()
	gw, err := newGateway(context.Background(), config.Config{Provider: "anthropic", APIKey: "sk-test"}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Client{}, gw)
}

func TestNewGateway_ExplicitGemini(t *testing.T) {
	t.Parallel()
	gw, err := newGateway(context.Background(), config.Config{Provider: "gemini", APIKey: "gk-test", Model: "gemini-2.5-pro"}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, gw)
}

func TestNewGateway_AutoDetect(t *testing.T) {
	t.Parallel()
	gw, err := newGateway(context.Background(), config.Config{AnthropicAPIKey: "sk-ant"}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Client{}, gw)
}

func TestNewGateway_NoKeys(t *testing.T) {
	t.Parallel()
	_, err := newGateway(context.Background(), config.Config{}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key found")
}

func TestNewGateway_BothKeys(t *testing.T) {
	t.Parallel()
	_, err := newGateway(context.Background(), config.Config{AnthropicAPIKey: "sk-ant", GeminiAPIKey: "gk-gem"}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple API keys")
}
