package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dailyflow/internal/desktop"
	"dailyflow/internal/executor"
	"dailyflow/internal/history"
	"dailyflow/internal/routine"
	"dailyflow/internal/schedule"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRoutines(cmd, ctx)
		},
	}
}

func listRoutines(cmd *cobra.Command, ctx *commandContext) error {
	_, store, err := ctx.openStore()
	if err != nil {
		return err
	}

	rows := make([][]string, 0)
	for _, r := range store.List() {
		rows = append(rows, []string{
			r.Name,
			scheduleLabel(r),
			yesNo(r.Enabled),
			fmt.Sprintf("%d", len(r.Actions)),
		})
	}
	writeTable(cmd.OutOrStdout(),
		[]string{"Name", "Scheduled", "Enabled", "Actions"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
	return nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a routine's actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			r, err := store.GetByName(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", r.Name)
			if r.Description != "" {
				fmt.Fprintf(out, "  %s\n", r.Description)
			}
			fmt.Fprintf(out, "  enabled: %s  scheduled: %s\n", yesNo(r.Enabled), scheduleLabel(r))
			for i, action := range r.Actions {
				marker := ""
				if !action.Enabled {
					marker = " (disabled)"
				}
				fmt.Fprintf(out, "  %s%s\n", stepLabel(i, action), marker)
			}
			return nil
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run a routine now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutineByName(cmd, ctx, args[0])
		},
	}
}

// runRoutineByName executes one routine synchronously. Step failures are
// reported but leave the exit code zero; only a missing routine or a broken
// store fails the command.
func runRoutineByName(cmd *cobra.Command, ctx *commandContext, name string) error {
	cfg, store, err := ctx.openStore()
	if err != nil {
		return err
	}
	r, err := store.GetByName(name)
	if err != nil {
		return err
	}
	if !r.Enabled {
		return fmt.Errorf("routine %q is disabled", r.Name)
	}

	logger := ctx.quietLogger(cfg)
	system := desktop.NewSystem(cfg.Tools, logger)
	exec := executor.New(cfg, system, logger)

	out := cmd.OutOrStdout()
	listener := executor.Listener(&progressListener{out: out})

	hist, err := ctx.openHistory(cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: run journal unavailable: %v\n", err)
	}
	var recorder *history.Recorder
	if hist != nil {
		defer hist.Close()
		recorder, err = hist.BeginRun(cmd.Context(), r, history.TriggerManual, logger)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warn: run journal unavailable: %v\n", err)
		} else {
			listener = executor.CombineListeners(listener, recorder)
		}
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Running %s (%d actions)\n", r.Name, len(r.Actions))
	result := exec.RunSync(runCtx, r, listener)
	if recorder != nil {
		recorder.Finish(result)
	}

	switch {
	case result.Cancelled:
		fmt.Fprintf(out, "Cancelled after %d actions\n", result.Executed)
	case result.Failed > 0:
		fmt.Fprintf(out, "Finished: %d ok, %d failed, %d skipped\n",
			result.Executed, result.Failed, result.Skipped)
	default:
		fmt.Fprintf(out, "Finished: %d actions\n", result.Executed)
	}
	return nil
}

// progressListener prints one line per step as the executor works through
// the routine.
type progressListener struct {
	executor.NopListener
	out io.Writer
}

func (p *progressListener) OnStepStart(index int, action routine.Action) {
	fmt.Fprintf(p.out, "  %s\n", stepLabel(index, action))
}

func (p *progressListener) OnStepError(index int, action routine.Action, err error) {
	fmt.Fprintf(p.out, "  %d. failed: %v\n", index+1, err)
}

func (p *progressListener) OnStepSkipped(index int, action routine.Action) {
	fmt.Fprintf(p.out, "  %d. skipped (disabled)\n", index+1)
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a routine",
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
			if err := store.Remove(r.ID); err != nil {
				return err
			}
			// A deleted routine must not keep firing from the crontab.
			sched := schedule.New(cfg, ctx.quietLogger(cfg))
			if err := sched.Unregister(cmd.Context(), r.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: could not remove schedule for %s: %v\n", r.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", r.Name)
			return nil
		},
	}
}

func newEnableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRoutineEnabled(cmd, ctx, args[0], true)
		},
	}
}

func newDisableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a routine without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRoutineEnabled(cmd, ctx, args[0], false)
		},
	}
}

func setRoutineEnabled(cmd *cobra.Command, ctx *commandContext, name string, enabled bool) error {
	_, store, err := ctx.openStore()
	if err != nil {
		return err
	}
	r, err := store.GetByName(name)
	if err != nil {
		return err
	}
	r.Enabled = enabled
	if err := store.Update(r); err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Name, state)
	return nil
}
