package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"motionforge/internal/mission"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate <mission.json>",
		Short:       "Validate a mission document",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mission.Read(args[0])
			if err != nil {
				return fmt.Errorf("read mission: %w", err)
			}

			out := cmd.OutOrStdout()
			report := mission.Validate(m)
			for _, warning := range report.Warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			if !report.OK() {
				for _, failure := range report.Errors {
					fmt.Fprintf(out, "error: %s\n", failure)
				}
				return fmt.Errorf("mission failed validation with %d errors", len(report.Errors))
			}

			fmt.Fprintf(out, "Mission %s valid\n", m.Metadata.MissionID)
			fmt.Fprintf(out, "Mode: %s\n", m.Metadata.Mode)
			fmt.Fprintf(out, "Frames: %d @ %.2f fps\n", m.Metadata.FrameCount, m.Metadata.FPS)
			fmt.Fprintf(out, "Actors: %d\n", len(m.Actors))
			return nil
		},
	}
}
