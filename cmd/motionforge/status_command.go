package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"motionforge/internal/deps"
	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stage readiness and queue totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
				if err != nil {
					return fmt.Errorf("build workflow: %w", err)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				rows := make([][]string, 0, 3)
				for _, check := range mgr.Health(cmd.Context()) {
					rows = append(rows, []string{
						check.Name,
						readyLabel(check.Ready, colorize),
						check.Detail,
					})
				}
				table := renderTable(
					[]string{"Stage", "Ready", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(out, table)
				fmt.Fprintln(out)

				toolRows := make([][]string, 0, 6)
				for _, tool := range deps.CheckBinaries(deps.Default(cfg)) {
					detail := tool.Detail
					if !tool.Available && tool.Optional {
						detail += " (optional)"
					}
					toolRows = append(toolRows, []string{
						tool.Name,
						readyLabel(tool.Available, colorize),
						detail,
					})
				}
				toolTable := renderTable(
					[]string{"Tool", "Found", "Detail"},
					toolRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(out, toolTable)
				fmt.Fprintln(out)

				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Queue: %d total, %d pending, %d processing, %d failed, %d review, %d completed\n",
					health.Total,
					health.Pending,
					health.Processing,
					health.Failed,
					health.Review,
					health.Completed,
				)
				return nil
			})
		},
	}
}
