package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/agent"
	"github.com/fwojciec/toolchat/config"
	"github.com/fwojciec/toolchat/registry"
	"github.com/fwojciec/toolchat/tracing"
	"github.com/spf13/cobra"
)

// GatewayFactory builds the model gateway from resolved settings.
type GatewayFactory func(ctx context.Context, cfg config.Config, logger *slog.Logger) (toolchat.Gateway, error)

// app carries the I/O, environment and settings shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	newGateway GatewayFactory

	configPath string
	provider   string
	model      string
	apiKey     string

	cfg      config.Config
	logger   *slog.Logger
	shutdown tracing.Shutdown
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) *app {
	return &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		getenv:     getenv,
		newGateway: newGateway,
	}
}

// setup loads settings for every command. Env is only read through getenv.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath, cmd.Flags().Changed("config"), a.getenv)
	if err != nil {
		return err
	}
	if a.provider != "" {
		cfg.Provider = a.provider
	}
	if a.model != "" {
		cfg.Model = a.model
	}
	if a.apiKey != "" {
		cfg.APIKey = a.apiKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logger(a.stderr)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(cmd.Context(), "toolchat")
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		a.shutdown = shutdown
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(context.WithoutCancel(cmd.Context()))
}

// agentOptions turns settings into agent options. extra options come last
// so they win.
func (a *app) agentOptions(extra ...agent.Option) []agent.Option {
	opts := []agent.Option{
		agent.WithModel(a.cfg.Model),
		agent.WithMaxTokens(a.cfg.MaxTokens),
		agent.WithMaxRounds(a.cfg.MaxRounds),
		agent.WithSystemPrompt(a.cfg.SystemPrompt),
		agent.WithLogger(a.logger),
	}
	return append(opts, extra...)
}

// runtime is what a conversation command needs: a gateway, the tools and a
// release func for the note store.
type runtime struct {
	gateway toolchat.Gateway
	tools   *registry.Registry
	close   func() error
}

func (a *app) runtime(ctx context.Context) (*runtime, error) {
	gw, err := a.newGateway(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	notes, closeNotes, err := openNotes(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	tools, err := newRegistry(a.cfg, notes, a.logger)
	if err != nil {
		closeNotes()
		return nil, err
	}
	return &runtime{gateway: gw, tools: tools, close: closeNotes}, nil
}
