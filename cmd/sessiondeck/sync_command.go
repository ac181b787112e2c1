package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/sessiondeck/internal/app"
	"github.com/five82/sessiondeck/internal/ledger"
)

type syncSummary struct {
	RunID      string   `json:"run_id"`
	Stage      string   `json:"stage"`
	Ledger     int      `json:"ledger"`
	Candidates int      `json:"candidates"`
	Scheduled  int      `json:"scheduled"`
	Uploaded   int      `json:"uploaded"`
	Failed     int      `json:"failed"`
	Cancelled  int      `json:"cancelled"`
	Pending    []string `json:"pending,omitempty"`
}

func summarize(r ledger.Report) syncSummary {
	return syncSummary{
		RunID:      r.RunID,
		Stage:      r.Stage.String(),
		Ledger:     r.Ledger,
		Candidates: r.Candidates,
		Scheduled:  r.Scheduled,
		Uploaded:   r.Uploaded,
		Failed:     r.Failed,
		Cancelled:  r.Cancelled,
		Pending:    r.Pending,
	}
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch contents once and upload sessions missing from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report, err := app.SyncOnce(cmd.Context(), cfg, ctx.environment())
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, summarize(report))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:        %s\n", report.RunID)
			fmt.Fprintf(out, "Stage:      %s\n", report.Stage)
			fmt.Fprintf(out, "Ledger:     %d rows\n", report.Ledger)
			fmt.Fprintf(out, "Candidates: %d\n", report.Candidates)
			fmt.Fprintf(out, "Uploaded:   %d of %d\n", report.Uploaded, report.Scheduled)
			if report.Failed > 0 || report.Cancelled > 0 {
				fmt.Fprintf(out, "Failed:     %d\nCancelled:  %d\n", report.Failed, report.Cancelled)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}
