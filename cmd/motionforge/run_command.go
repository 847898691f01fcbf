package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"motionforge/internal/daemon"
	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipelineProcess(cmd.Context(), ctx)
		},
	}
}

func runPipelineProcess(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}

	mgr, err := workflow.NewManager(cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("build workflow: %w", err)
	}

	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("motionforge shutting down")
	d.Stop()
	return nil
}
