package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the run journal",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list [name]",
		Short: "List recent routine runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			hist, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			if hist == nil {
				return errors.New("run history is disabled in the configuration")
			}
			defer hist.Close()

			runs, err := hist.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				if filter != "" && run.RoutineName != filter {
					continue
				}
				outcome := fmt.Sprintf("%d ok", run.Executed)
				if run.Failed > 0 {
					outcome += fmt.Sprintf(", %d failed", run.Failed)
				}
				if run.Skipped > 0 {
					outcome += fmt.Sprintf(", %d skipped", run.Skipped)
				}
				if run.Cancelled {
					outcome = "cancelled (" + outcome + ")"
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format(time.DateTime),
					run.RoutineName,
					run.Trigger,
					outcome,
				})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Started", "Routine", "Trigger", "Outcome"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}
