package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/textutil"
	"motionforge/internal/workflow"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze one source video and write its mission document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.FindBySourcePath(cmd.Context(), absPath)
				if errors.Is(err, queue.ErrNotFound) {
					name := filepath.Base(absPath)
					title := textutil.SanitizeFileName(strings.TrimSuffix(name, filepath.Ext(name)))
					item, err = store.NewVideo(cmd.Context(), absPath, title)
				}
				if err != nil {
					return err
				}
				return runSingleStage(cmd, ctx, store, item.ID, queue.StatusPending)
			})
		},
	}
}

func newCompileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <item-id>",
		Short: "Compile retarget and render inputs for an analyzed item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				return runSingleStage(cmd, ctx, store, id, queue.StatusAnalyzed)
			})
		},
	}
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <item-id>",
		Short: "Render all output variants for a compiled item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				return runSingleStage(cmd, ctx, store, id, queue.StatusCompiled)
			})
		},
	}
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}

// runSingleStage advances one item through exactly one pipeline stage. The
// item must already sit at the status the stage consumes.
func runSingleStage(cmd *cobra.Command, ctx *commandContext, store *queue.Store, id int64, expected queue.Status) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	item, err := store.GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if item.Status != expected {
		return fmt.Errorf("item %d is %s, expected %s", id, item.Status, expected)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	mgr, err := workflow.NewManager(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("build workflow: %w", err)
	}

	updated, err := mgr.ProcessItem(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Item #%d: %s\n", updated.ID, updated.Status)
	if updated.ErrorMessage != "" {
		return errors.New(updated.ErrorMessage)
	}
	return nil
}
