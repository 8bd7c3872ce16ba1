// Command toolchat is a terminal chat assistant that can use tools.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... toolchat [command] [flags]
//	GEMINI_API_KEY=gk-...   toolchat [command] [flags]
//
// Commands:
//
//	chat    interactive REPL (default)
//	demo    run the scripted demo questions
//	tools   list the registered tools
//	serve   start the HTTP API
//
// Settings come from toolchat.yaml, a .env file and the environment; the
// persistent flags --config, --provider, --model and --api-key override them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "toolchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr, os.Getenv))
	return cmd.ExecuteContext(ctx)
}
