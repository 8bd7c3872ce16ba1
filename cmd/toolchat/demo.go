package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/toolchat/agent"
	"github.com/spf13/cobra"
)

var demoQuestions = []string{
	"How much is (25 * 4) + (100 / 5) - 7?",
	"What's the weather like in Rome?",
	"What's today's date and what day of the week is it?",
	"Save a note titled 'test' with the content 'This is a test note!'",
	"Show me all the saved notes.",
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted conversation exercising the default tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			ag := agent.New(rt.gateway, rt.tools, a.agentOptions()...)
			rule := strings.Repeat("=", 60)
			fmt.Fprintln(a.stdout, rule)
			fmt.Fprintln(a.stdout, "toolchat demo")
			fmt.Fprintln(a.stdout, rule)
			for i, q := range demoQuestions {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(a.stdout, "\nQuestion %d: %s\n", i+1, q)
				fmt.Fprintln(a.stdout, strings.Repeat("-", 40))
				reply, err := ag.Chat(ctx, q)
				if err != nil {
					fmt.Fprintf(a.stdout, "Error: %v\n", err)
					continue
				}
				fmt.Fprintf(a.stdout, "Answer: %s\n", reply)
			}
			fmt.Fprintln(a.stdout, "\n"+rule)
			fmt.Fprintln(a.stdout, "Demo complete.")
			return nil
		},
	}
}
