package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/textutil"
)

// videoExtensions lists the container formats the intake scan enqueues.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
}

// IngestInput scans the input directory and enqueues source videos that are
// not yet tracked. Already-known paths are skipped, so the scan is safe to
// run on every poll.
func (m *Manager) IngestInput(ctx context.Context) error {
	inputDir := strings.TrimSpace(m.cfg.InputDir)
	if inputDir == "" {
		return nil
	}
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("scan input dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		sourcePath := filepath.Join(inputDir, name)

		if _, err := m.store.FindBySourcePath(ctx, sourcePath); err == nil {
			continue
		} else if !errors.Is(err, queue.ErrNotFound) {
			return fmt.Errorf("check source path: %w", err)
		}

		title := textutil.SanitizeFileName(strings.TrimSuffix(name, filepath.Ext(name)))
		item, err := m.store.NewVideo(ctx, sourcePath, title)
		if err != nil {
			return fmt.Errorf("enqueue %s: %w", name, err)
		}
		m.logger.Info("video enqueued",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String("source", sourcePath),
		)
	}
	return nil
}
