package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dailyflow/internal/daemon"
	"dailyflow/internal/desktop"
	"dailyflow/internal/executor"
	"dailyflow/internal/logging"
	"dailyflow/internal/preflight"
	"dailyflow/internal/routine"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Resident schedule runner",
	}

	daemonCmd.AddCommand(newDaemonRunCommand(ctx))

	return daemonCmd
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler in the foreground until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd, ctx)
		},
	}
}

// runDaemonProcess hosts the resident scheduler for environments without a
// usable crontab. SIGHUP reloads the routines file; SIGINT and SIGTERM shut
// down cleanly.
func runDaemonProcess(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	for _, result := range preflight.RunAll(cfg) {
		if !result.Passed {
			logger.Warn("preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
		}
	}

	store, err := routine.Open(cfg)
	if err != nil {
		logger.Error("open routine store", logging.Error(err))
		return err
	}

	system := desktop.NewSystem(cfg.Tools, logger)
	exec := executor.New(cfg, system, logger)

	hist, err := ctx.openHistory(cfg)
	if err != nil {
		logger.Warn("run journal unavailable", logging.Error(err))
	}

	d, err := daemon.New(cfg, store, exec, hist, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	for {
		select {
		case <-signalCtx.Done():
			logger.Info("daemon shutting down")
			return nil
		case <-reload:
			if err := d.Reload(); err != nil {
				logger.Warn("schedule reload failed", logging.Error(err))
			}
		}
	}
}
