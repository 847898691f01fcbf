package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"motionforge/internal/queue"
	"motionforge/internal/textutil"
)

var manualFileExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
}

func newAddFileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-file <path>",
		Short: "Add a source video to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := manualFileExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			return ctx.withStore(func(store *queue.Store) error {
				title := textutil.SanitizeFileName(strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())))
				item, err := store.NewVideo(cmd.Context(), absPath, title)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item #%d\n", filepath.Base(absPath), item.ID)
				return nil
			})
		},
	}
}
