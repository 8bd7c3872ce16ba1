package main

import (
	"github.com/fwojciec/toolchat/config"
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:                "toolchat",
		Short:              "toolchat - a chat assistant that can use tools",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath, "path to the YAML config file")
	pf.StringVar(&a.provider, "provider", "", "provider: anthropic, gemini (auto-detected from env vars if omitted)")
	pf.StringVar(&a.model, "model", "", "model ID (default: provider default)")
	pf.StringVar(&a.apiKey, "api-key", "", "API key (overrides the provider's env var)")

	chat := newChatCmd(a)
	root.AddCommand(chat, newDemoCmd(a), newToolsCmd(a), newServeCmd(a))
	// Without a subcommand toolchat behaves like "toolchat chat".
	root.RunE = chat.RunE
	root.Flags().AddFlagSet(chat.Flags())
	return root
}
