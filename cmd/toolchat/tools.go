package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/builtin"
	"github.com/fwojciec/toolchat/config"
	"github.com/fwojciec/toolchat/httpclient"
	tcjson "github.com/fwojciec/toolchat/json"
	tcredis "github.com/fwojciec/toolchat/redis"
	"github.com/fwojciec/toolchat/registry"
)

// openNotes opens the configured note store. The returned func releases it.
func openNotes(ctx context.Context, cfg config.Config) (toolchat.NoteStore, func() error, error) {
	switch cfg.Notes.Backend {
	case config.NotesRedis:
		store, err := tcredis.Dial(ctx, cfg.Notes.RedisAddr, tcredis.WithKey(cfg.Notes.RedisKey))
		if err != nil {
			return nil, nil, fmt.Errorf("notes: %w", err)
		}
		return store, store.Close, nil
	default:
		return tcjson.NewNoteStore(cfg.Notes.Path), func() error { return nil }, nil
	}
}

// newRegistry registers the default tools, and the extra ones when enabled,
// under the configured duplicate policy.
func newRegistry(cfg config.Config, notes toolchat.NoteStore, logger *slog.Logger) (*registry.Registry, error) {
	policy, err := registry.ParseDuplicatePolicy(cfg.DuplicateTools)
	if err != nil {
		return nil, err
	}
	reg := registry.New(registry.WithDuplicatePolicy(policy), registry.WithLogger(logger))

	deps := builtin.Deps{
		HTTPClient:     httpclient.New(httpclient.WithLogger(logger), httpclient.WithTimeout(15*time.Second)),
		Notes:          notes,
		WeatherAPIKey:  cfg.Weather.APIKey,
		WeatherBaseURL: cfg.Weather.BaseURL,
	}
	tools := builtin.Defaults(deps)
	if cfg.ExtraTools {
		tools = append(tools, builtin.Extras(deps)...)
	}
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
