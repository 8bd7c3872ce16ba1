package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/agent"
	tcjson "github.com/fwojciec/toolchat/json"
	"github.com/fwojciec/toolchat/repl"
	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		sessionPath string
		noStream    bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in an interactive REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			var extra []agent.Option
			if sessionPath != "" {
				s, err := loadSession(sessionPath)
				if err != nil {
					return err
				}
				if s != nil {
					extra = append(extra, agent.WithSession(*s))
				}
			}
			ag := agent.New(rt.gateway, rt.tools, a.agentOptions(extra...)...)

			opts := []repl.Option{repl.WithStreaming(a.cfg.Stream && !noStream)}
			if sessionPath != "" {
				opts = append(opts, repl.WithSavePath(sessionPath))
			}
			if err := repl.New(ag, a.stdin, a.stdout, opts...).Run(ctx); err != nil {
				return err
			}

			if sessionPath != "" && len(ag.History()) > 0 {
				if err := tcjson.Save(sessionPath, ag.Session()); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
				fmt.Fprintf(a.stderr, "Session saved to %s\n", sessionPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionPath, "session", "", "session file to resume and save on exit")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "print whole answers instead of streaming")
	return cmd
}

// loadSession reads a saved session. A missing file means a new session and
// yields nil.
func loadSession(path string) (*toolchat.Session, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	s, err := tcjson.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &s, nil
}
