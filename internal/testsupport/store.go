package testsupport

import (
	"context"
	"testing"

	"motionforge/internal/config"
	"motionforge/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewVideo creates a new pending item for tests using the provided store.
func NewVideo(t testing.TB, store *queue.Store, sourcePath string) *queue.Item {
	t.Helper()

	item, err := store.NewVideo(context.Background(), sourcePath, "")
	if err != nil {
		t.Fatalf("store.NewVideo: %v", err)
	}
	return item
}
