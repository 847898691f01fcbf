package queue_test

import (
	"context"
	"testing"

	"motionforge/internal/queue"
	"motionforge/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewVideo(ctx, "/videos/sample.mp4", "sample")
	if err != nil {
		t.Fatalf("NewVideo failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.SourcePath != "/videos/sample.mp4" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}

	found, err := store.FindBySourcePath(ctx, "/videos/sample.mp4")
	if err != nil {
		t.Fatalf("FindBySourcePath failed: %v", err)
	}
	if found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestNewVideoRequiresSourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewVideo(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error when source path missing")
	}
}

func TestUpdateRoundTripsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewVideo(t, store, "/videos/a.mp4")
	item.Status = queue.StatusAnalyzed
	item.Mode = "DRAMA"
	item.RawAnalysisPath = "/work/a_raw.json"
	item.VariantCount = 3
	item.RenderedFiles = []string{"/out/a_000.mp4", "/out/a_001.mp4"}
	item.ProgressStage = "Analyzing"
	item.ProgressPercent = 42.5

	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusAnalyzed || fetched.Mode != "DRAMA" {
		t.Fatalf("unexpected status/mode: %s/%s", fetched.Status, fetched.Mode)
	}
	if len(fetched.RenderedFiles) != 2 || fetched.RenderedFiles[1] != "/out/a_001.mp4" {
		t.Fatalf("rendered files not persisted: %#v", fetched.RenderedFiles)
	}
	if fetched.ProgressPercent != 42.5 {
		t.Fatalf("progress percent not persisted: %v", fetched.ProgressPercent)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewVideo(t, store, "/videos/b.mp4")
	item.Status = queue.Status("exploded")
	if err := store.Update(context.Background(), item); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"analyzing", queue.StatusAnalyzing, queue.StatusPending},
		{"compiling", queue.StatusCompiling, queue.StatusAnalyzed},
		{"rendering", queue.StatusRendering, queue.StatusCompiled},
	}
	var ids []int64
	for i, tc := range cases {
		item := testsupport.NewVideo(t, store, "/videos/stuck"+tc.name+".mp4")
		item.Status = tc.initialStatus
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("seed case %d: %v", i, err)
		}
		ids = append(ids, item.ID)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if reset != int64(len(cases)) {
		t.Fatalf("expected %d resets, got %d", len(cases), reset)
	}
	for i, tc := range cases {
		fetched, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if fetched.Status != tc.expected {
			t.Fatalf("case %s: expected %s, got %s", tc.name, tc.expected, fetched.Status)
		}
	}
}

func TestNextForStatusOrdersOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewVideo(t, store, "/videos/first.mp4")
	testsupport.NewVideo(t, store, "/videos/second.mp4")

	next, err := store.NextForStatus(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatus failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected first item, got %#v", next)
	}

	none, err := store.NextForStatus(ctx, queue.StatusRendering)
	if err != nil {
		t.Fatalf("NextForStatus failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for empty status, got %#v", none)
	}
}

func TestHealthCountsByState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pending := testsupport.NewVideo(t, store, "/videos/p.mp4")
	_ = pending

	failed := testsupport.NewVideo(t, store, "/videos/f.mp4")
	failed.Status = queue.StatusFailed
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	working := testsupport.NewVideo(t, store, "/videos/w.mp4")
	working.Status = queue.StatusRendering
	if err := store.Update(ctx, working); err != nil {
		t.Fatalf("Update: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Failed != 1 || health.Processing != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestRetryFailedRequeues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewVideo(t, store, "/videos/r.mp4")
	item.Status = queue.StatusFailed
	item.ErrorMessage = "detector crashed"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	n, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 retried item, got %d", n)
	}
	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("retry did not reset item: %#v", fetched)
	}
}
