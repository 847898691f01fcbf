package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"motionforge/internal/config"
	"motionforge/internal/logging"
	"motionforge/internal/mission"
	"motionforge/internal/queue"
	"motionforge/internal/render"
	"motionforge/internal/retarget"
	"motionforge/internal/services"
	"motionforge/internal/services/blender"
	"motionforge/internal/services/ffmpeg"
	"motionforge/internal/stage"
	"motionforge/internal/textutil"
	"motionforge/internal/variant"
)

// Compositor muxes a variant's raw render with its audio and noise treatment.
type Compositor interface {
	Composite(ctx context.Context, job ffmpeg.CompositeJob) error
}

// Renderer runs the final stage: retarget the mission onto skeleton assets,
// derive the deterministic variants, and render each to finished footage.
// Variants are independent and render concurrently; no variant's outcome
// depends on another having completed.
type Renderer struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	retargeter *retarget.Engine
	composer   *render.Composer
	engine     render.Engine
	compositor Compositor
}

// NewRenderer constructs the render stage handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Renderer, error) {
	engine, err := blender.NewService(cfg.Tools.BlenderBinary, cfg.Tools.BlenderScript, cfg.Tools.TimeoutSeconds)
	if err != nil {
		return nil, err
	}
	compositor := ffmpeg.NewService(cfg.Tools.FFmpegBinary, cfg.Tools.TimeoutSeconds)
	return NewRendererWithDependencies(cfg, store, logger, engine, compositor), nil
}

// NewRendererWithDependencies allows injecting collaborators (used in tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine render.Engine, compositor Compositor) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "renderer"))
	}
	return &Renderer{
		store:      store,
		cfg:        cfg,
		logger:     stageLogger,
		retargeter: retarget.NewEngine(cfg.Retarget, stageLogger),
		composer:   render.NewComposer(cfg.Render, stageLogger),
		engine:     engine,
		compositor: compositor,
	}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Rendering"
	}
	item.ProgressMessage = "Preparing variant rendering"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("starting rendering", logging.String("mission_path", item.MissionPath))

	m, err := stage.LoadMission(item.MissionPath)
	if err != nil {
		return err
	}

	r.updateProgress(ctx, item, "Retargeting actors", 10)
	tracks, err := r.retargeter.RetargetAll(m, r.cfg.AssetsDir)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return err
		}
		return services.Wrap(services.ErrValidation, "render", "retarget",
			"Retargeting failed", err)
	}

	count := item.VariantCount
	if count < 1 {
		count = r.cfg.Variants.Count
	}
	if count < 1 {
		count = 1
	}
	variants, err := variant.Generate(m, count, r.cfg.Variants)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "derive variants",
			"Variant derivation failed", err)
	}

	workDir := itemWorkDir(r.cfg, item)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "ensure work dir",
			"Failed to create item work directory", err)
	}
	audioPath := r.resolveAudio(m, workDir, logger)
	nameToken := textutil.SanitizeToken(item.VideoTitle)

	r.updateProgress(ctx, item, fmt.Sprintf("Rendering %d variants", len(variants)), 30)

	type outcome struct {
		index int
		path  string
		err   error
	}
	results := make([]outcome, len(variants))
	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(i int, v variant.RenderVariant) {
			defer wg.Done()
			path, err := r.renderVariant(ctx, m, tracks, v, workDir, audioPath, nameToken)
			results[i] = outcome{index: v.Index, path: path, err: err}
		}(i, v)
	}
	wg.Wait()

	var rendered []string
	var firstErr error
	for _, res := range results {
		if res.err != nil {
			logger.Error("variant render failed",
				logging.Int(logging.FieldVariant, res.index),
				logging.Error(res.err),
			)
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		rendered = append(rendered, res.path)
	}
	sort.Strings(rendered)
	item.RenderedFiles = rendered
	if firstErr != nil {
		return firstErr
	}

	item.Status = queue.StatusCompleted
	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Rendered %d variants", len(rendered))
	logger.Info("rendering completed",
		logging.String("mission_id", m.Metadata.MissionID),
		logging.Int("variants", len(rendered)),
	)
	return nil
}

// renderVariant takes one variant from job document to finished file. It
// touches only variant-indexed paths, so concurrent variants never collide.
func (r *Renderer) renderVariant(ctx context.Context, m *mission.Mission, tracks map[string]*retarget.ArmatureTrack, v variant.RenderVariant, workDir, audioPath, nameToken string) (string, error) {
	logger := logging.WithContext(ctx, r.logger)
	job, err := r.composer.Compose(m, tracks, v)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "render", "compose job",
			"Render job assembly failed", err)
	}
	jobPath := render.JobPath(workDir, m.Metadata.MissionID, v.Index)
	if err := render.WriteJob(job, jobPath); err != nil {
		return "", services.Wrap(services.ErrTransient, "render", "write job",
			"Failed to commit render job document", err)
	}

	rawPath := filepath.Join(workDir, fmt.Sprintf("%s_variant_%02d_raw.mp4", m.Metadata.MissionID, v.Index))
	if err := r.engine.Render(ctx, jobPath, rawPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "render scene",
			"Rendering engine failed", err)
	}

	finalPath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("%s_%s_variant_%02d.mp4", nameToken, m.Metadata.MissionID, v.Index))
	composite := ffmpeg.CompositeJob{
		VideoPath:          rawPath,
		AudioPath:          audioPath,
		OverlayPath:        r.cfg.Variants.OverlayAsset,
		OutputPath:         finalPath,
		NoiseSeed:          v.NoiseSeed,
		NoiseStrength:      v.NoiseStrength,
		AudioOffsetSeconds: v.AudioOffsetSeconds,
	}
	if err := r.compositor.Composite(ctx, composite); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "composite",
			"Final composite failed", err)
	}

	if fingerprint, err := variant.FileFingerprint(finalPath); err != nil {
		logger.Warn("could not fingerprint rendered file",
			logging.Int(logging.FieldVariant, v.Index),
			logging.Error(err),
		)
	} else {
		logger.Info("variant rendered",
			logging.Int(logging.FieldVariant, v.Index),
			logging.String("output", finalPath),
			logging.String("fingerprint", fingerprint),
		)
	}
	return finalPath, nil
}

// resolveAudio locates the normalized audio track compiled for a DRAMA
// mission. A missing track downgrades the composite to video-only rather
// than failing the render.
func (r *Renderer) resolveAudio(m *mission.Mission, workDir string, logger *slog.Logger) string {
	if m.Metadata.Mode != mission.ModeDrama {
		return ""
	}
	audioPath := filepath.Join(workDir, "audio.wav")
	if _, err := os.Stat(audioPath); err != nil {
		logger.Warn("drama mission has no compiled audio track, compositing silent",
			logging.String("audio_path", audioPath),
		)
		return ""
	}
	return audioPath
}

// HealthCheck verifies renderer prerequisites.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "renderer"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(r.cfg.AssetsDir) == "" {
		return stage.Unhealthy(name, "assets directory not configured")
	}
	if strings.TrimSpace(r.cfg.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	if r.engine == nil {
		return stage.Unhealthy(name, "rendering engine unavailable")
	}
	if r.compositor == nil {
		return stage.Unhealthy(name, "compositor unavailable")
	}
	return stage.Healthy(name)
}

func (r *Renderer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, r.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := r.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist renderer progress", logging.Error(err))
		return
	}
	*item = copy
}
