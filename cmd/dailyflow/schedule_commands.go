package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dailyflow/internal/routine"
	"dailyflow/internal/schedule"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage OS-level routine triggers",
	}

	scheduleCmd.AddCommand(newScheduleSetCommand(ctx))
	scheduleCmd.AddCommand(newScheduleClearCommand(ctx))
	scheduleCmd.AddCommand(newScheduleListCommand(ctx))

	return scheduleCmd
}

func newScheduleSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <HH:MM>",
		Short: "Schedule a routine at a daily time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			r, err := store.GetByName(args[0])
			if err != nil {
				return err
			}
			if _, _, err := routine.ParseScheduledTime(args[1]); err != nil {
				return err
			}

			r.ScheduledTime = args[1]
			if err := store.Update(r); err != nil {
				return err
			}

			sched := schedule.New(cfg, ctx.quietLogger(cfg))
			if err := sched.Register(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s at %s daily\n", r.Name, r.ScheduledTime)
			return nil
		},
	}
}

func newScheduleClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <name>",
		Short: "Remove a routine's trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			r, err := store.GetByName(args[0])
			if err != nil {
				return err
			}

			r.ScheduledTime = ""
			if err := store.Update(r); err != nil {
				return err
			}

			sched := schedule.New(cfg, ctx.quietLogger(cfg))
			if err := sched.Unregister(cmd.Context(), r.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unscheduled %s\n", r.Name)
			return nil
		},
	}
}

func newScheduleListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered triggers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sched := schedule.New(cfg, ctx.quietLogger(cfg))
			entries, err := sched.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.RoutineName, entry.Time, entry.RoutineID})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Name", "Time", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)
			return nil
		},
	}
}
