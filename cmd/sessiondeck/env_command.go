package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/sessiondeck/internal/api"
)

func newEnvCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List configured environments and their endpoint URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			current := cfg.Environment
			if override := ctx.environment(); override != "" {
				current = override
			}

			out := cmd.OutOrStdout()
			for _, name := range cfg.EnvironmentNames() {
				env, err := cfg.ResolveEnvironment(name)
				if err != nil {
					return err
				}
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  %s\n", marker, name, env.BaseURL())
				for _, ep := range api.Endpoints() {
					u, err := env.URL(ep)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "    %-9s %s\n", ep, u)
				}
			}
			if cfg.SyncEnabled() {
				fmt.Fprintf(out, "ledger: %s (events %v, stagger %s)\n", cfg.Ledger.URL, cfg.Ledger.Events, cfg.Ledger.Stagger)
			} else {
				fmt.Fprintln(out, "ledger: disabled")
			}
			return nil
		},
	}
}
