package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/app"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	names := make([]string, 0, len(api.Endpoints()))
	for _, ep := range api.Endpoints() {
		names = append(names, ep.String())
	}

	return &cobra.Command{
		Use:       "fetch <endpoint>",
		Short:     "Fetch one endpoint and print the decoded payload as JSON",
		Long:      "Fetch one endpoint and print the decoded payload as JSON.\n\nEndpoints: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ep, err := api.ParseEndpoint(args[0])
			if err != nil {
				return err
			}
			value, err := app.FetchOnce(cmd.Context(), cfg, ctx.environment(), ep)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", ep, err)
			}
			return writeJSON(cmd, value)
		},
	}
}
