package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/anthropic"
	"github.com/fwojciec/toolchat/config"
	"github.com/fwojciec/toolchat/gemini"
	"github.com/fwojciec/toolchat/httpclient"
)

// newGateway selects and constructs the gateway. Gateways share a retrying,
// traced HTTP client without an overall timeout so streams are not cut off.
func newGateway(ctx context.Context, cfg config.Config, logger *slog.Logger) (toolchat.Gateway, error) {
	provider, key, err := cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}
	hc := httpclient.New(httpclient.WithLogger(logger))
	switch provider {
	case config.ProviderAnthropic:
		return anthropic.New(key, anthropic.WithHTTPClient(hc)), nil
	case config.ProviderGemini:
		opts := []gemini.Option{gemini.WithHTTPClient(hc)}
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
