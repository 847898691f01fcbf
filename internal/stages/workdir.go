package stages

import (
	"fmt"
	"path/filepath"

	"motionforge/internal/config"
	"motionforge/internal/queue"
)

// itemWorkDir names the per-item scratch directory. Every intermediate
// artifact for one source video lives under it, so a retried item starts
// from a known place and cleanup is a single directory removal.
func itemWorkDir(cfg *config.Config, item *queue.Item) string {
	return filepath.Join(cfg.WorkDir, fmt.Sprintf("item-%d", item.ID))
}
