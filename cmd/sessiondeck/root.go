package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/sessiondeck/internal/app"
	"github.com/five82/sessiondeck/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var prefsFlag string
	var envFlag string
	var pollSeconds int

	ctx := newCommandContext(&configFlag, &envFlag)

	rootCmd := &cobra.Command{
		Use:           "sessiondeck",
		Short:         "Conference schedule dashboard and ledger sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The dashboard logs to a file; one-shot commands log to stderr.
			if cmd != cmd.Root() {
				logging.Configure(logging.Config{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath:  configFlag,
				PrefsPath:   prefsFlag,
				PollEvery:   pollSeconds,
				Environment: envFlag,
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "", "Environment to use instead of the configured one")
	rootCmd.Flags().StringVar(&prefsFlag, "prefs", "", "Preferences file path")
	rootCmd.Flags().IntVar(&pollSeconds, "poll", 0, "Refresh interval in seconds (defaults to poll_seconds)")

	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newEnvCommand(ctx))

	return rootCmd
}
