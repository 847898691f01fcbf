package daemon_test

import (
	"context"
	"strings"
	"testing"

	"motionforge/internal/config"
	"motionforge/internal/daemon"
	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/stage"
	"motionforge/internal/testsupport"
	"motionforge/internal/workflow"
)

type noopStage struct{ name string }

func (s noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (s noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (s noopStage) HealthCheck(context.Context) stage.Health   { return stage.Healthy(s.name) }

func newTestDaemon(t *testing.T, cfg *config.Config, store *queue.Store) *daemon.Daemon {
	t.Helper()
	mgr := workflow.NewManagerWithHandlers(cfg, store, nil,
		noopStage{name: "analyze"}, noopStage{name: "compile"}, noopStage{name: "render"})
	d, err := daemon.New(cfg, store, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := newTestDaemon(t, cfg, store)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer first.Stop()

	secondStore := testsupport.MustOpenStore(t, cfg)
	second := newTestDaemon(t, cfg, secondStore)
	err := second.Start(context.Background())
	if err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStopReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d := newTestDaemon(t, cfg, store)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	d.Stop()

	replacementStore := testsupport.MustOpenStore(t, cfg)
	replacement := newTestDaemon(t, cfg, replacementStore)
	if err := replacement.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	replacement.Stop()
}

func TestStatusReportsStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d := newTestDaemon(t, cfg, store)
	status := d.Status(context.Background())
	if status.Running {
		t.Fatal("daemon should not report running before Start")
	}
	if len(status.Stages) != 3 {
		t.Fatalf("expected 3 stage checks, got %d", len(status.Stages))
	}
	if status.QueueDBPath == "" || status.LockFilePath == "" {
		t.Fatalf("paths not populated: %+v", status)
	}
}
