package stages_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"motionforge/internal/mission"
	"motionforge/internal/queue"
	"motionforge/internal/render"
	"motionforge/internal/services"
	"motionforge/internal/services/ffmpeg"
	"motionforge/internal/stages"
	"motionforge/internal/testsupport"
)

type stubRenderEngine struct {
	mu   sync.Mutex
	jobs []string
	err  error
}

func (e *stubRenderEngine) Render(ctx context.Context, jobPath, outputPath string) error {
	e.mu.Lock()
	e.jobs = append(e.jobs, jobPath)
	e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	return os.WriteFile(outputPath, []byte("raw render"), 0o644)
}

type stubCompositor struct {
	mu   sync.Mutex
	jobs []ffmpeg.CompositeJob
	err  error
}

func (c *stubCompositor) Composite(ctx context.Context, job ffmpeg.CompositeJob) error {
	c.mu.Lock()
	c.jobs = append(c.jobs, job)
	c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(job.OutputPath, []byte("final render"), 0o644)
}

func renderableMission() *mission.Mission {
	return &mission.Mission{
		Metadata: mission.Metadata{
			MissionID:  "mission-render",
			Mode:       mission.ModeSilent,
			SourcePath: "/videos/clip.mp4",
			FPS:        60,
			Width:      1080,
			Height:     1920,
			FrameCount: 2,
		},
		CameraMotion: []mission.CameraMotionSample{
			{Frame: 0, Motion: "static"},
			{Frame: 1, VX: 1, Magnitude: 1, Motion: "pan"},
		},
		Actors: map[string]mission.Actor{
			"0": {},
		},
	}
}

func TestRendererRendersAllVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVariantCount(3))
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mp4")

	if err := os.MkdirAll(cfg.AssetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.AssetsDir, "default.glb"), []byte("glb"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	missionPath := filepath.Join(cfg.WorkDir, "item", "mission.json")
	if err := mission.Write(missionPath, renderableMission()); err != nil {
		t.Fatalf("write mission: %v", err)
	}
	item.MissionPath = missionPath
	item.VariantCount = 3
	item.VideoTitle = "Street Dance 01"
	item.Status = queue.StatusCompiled

	engine := &stubRenderEngine{}
	compositor := &stubCompositor{}
	renderer := stages.NewRendererWithDependencies(cfg, store, nil, engine, compositor)

	if err := renderer.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.Status != queue.StatusCompleted {
		t.Fatalf("status = %s, want completed", item.Status)
	}
	if len(item.RenderedFiles) != 3 {
		t.Fatalf("expected 3 rendered files, got %v", item.RenderedFiles)
	}
	for _, path := range item.RenderedFiles {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("rendered file missing: %v", err)
		}
		if !strings.Contains(filepath.Base(path), "street_dance_01") {
			t.Fatalf("output name %q missing sanitized title token", filepath.Base(path))
		}
	}
	if len(engine.jobs) != 3 {
		t.Fatalf("expected 3 engine invocations, got %d", len(engine.jobs))
	}
	// Every committed job document must be readable and variant-distinct.
	seeds := map[int64]bool{}
	for _, jobPath := range engine.jobs {
		job, err := render.ReadJob(jobPath)
		if err != nil {
			t.Fatalf("read job %s: %v", jobPath, err)
		}
		if seeds[job.Variant.NoiseSeed] {
			t.Fatalf("duplicate noise seed %d", job.Variant.NoiseSeed)
		}
		seeds[job.Variant.NoiseSeed] = true
	}
}

func TestRendererSilentMissionCompositesWithoutAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mp4")

	if err := os.MkdirAll(cfg.AssetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.AssetsDir, "default.glb"), []byte("glb"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	missionPath := filepath.Join(cfg.WorkDir, "item", "mission.json")
	if err := mission.Write(missionPath, renderableMission()); err != nil {
		t.Fatalf("write mission: %v", err)
	}
	item.MissionPath = missionPath

	compositor := &stubCompositor{}
	renderer := stages.NewRendererWithDependencies(cfg, store, nil, &stubRenderEngine{}, compositor)

	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(compositor.jobs) != 1 {
		t.Fatalf("expected 1 composite, got %d", len(compositor.jobs))
	}
	if compositor.jobs[0].AudioPath != "" {
		t.Fatalf("silent mission should composite without audio, got %q", compositor.jobs[0].AudioPath)
	}
}

func TestRendererMissingDefaultAssetIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mp4")

	missionPath := filepath.Join(cfg.WorkDir, "item", "mission.json")
	if err := mission.Write(missionPath, renderableMission()); err != nil {
		t.Fatalf("write mission: %v", err)
	}
	item.MissionPath = missionPath

	renderer := stages.NewRendererWithDependencies(cfg, store, nil, &stubRenderEngine{}, &stubCompositor{})

	err := renderer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRendererEngineFailureIsExternalToolError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mp4")

	if err := os.MkdirAll(cfg.AssetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.AssetsDir, "default.glb"), []byte("glb"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	missionPath := filepath.Join(cfg.WorkDir, "item", "mission.json")
	if err := mission.Write(missionPath, renderableMission()); err != nil {
		t.Fatalf("write mission: %v", err)
	}
	item.MissionPath = missionPath

	renderer := stages.NewRendererWithDependencies(cfg, store, nil,
		&stubRenderEngine{err: errors.New("scene crashed")}, &stubCompositor{})

	err := renderer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestRendererRequiresCommittedMission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mp4")

	renderer := stages.NewRendererWithDependencies(cfg, store, nil, &stubRenderEngine{}, &stubCompositor{})

	err := renderer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
