package main

import (
	"context"
	"testing"
)

func TestStatusCommandReportsStagesAndQueue(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := env.store.NewVideo(context.Background(), "/videos/alpha.mp4", "Alpha"); err != nil {
		t.Fatalf("alpha: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "analyzer")
	requireContains(t, out, "compiler")
	requireContains(t, out, "renderer")
	requireContains(t, out, "Queue: 1 total, 1 pending")
}
