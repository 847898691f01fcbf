package stages

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"motionforge/internal/analysis"
	"motionforge/internal/compile"
	"motionforge/internal/config"
	"motionforge/internal/logging"
	"motionforge/internal/mission"
	"motionforge/internal/queue"
	"motionforge/internal/services"
	"motionforge/internal/services/ffmpeg"
	"motionforge/internal/services/rhubarb"
	"motionforge/internal/services/whisper"
	"motionforge/internal/stage"
)

// MissionBuilder merges an analysis document with the speech collaborators'
// contributions into a committed mission.
type MissionBuilder interface {
	Build(ctx context.Context, doc *analysis.Document, workDir string) (*mission.Mission, error)
}

// Compiler runs the mission compilation pass for one analyzed item.
type Compiler struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	builder MissionBuilder
}

// NewCompiler constructs the compile stage handler using default dependencies.
func NewCompiler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Compiler {
	audio := ffmpeg.NewService(cfg.Tools.FFmpegBinary, cfg.Tools.TimeoutSeconds)
	speech := whisper.NewService(cfg.Tools.WhisperBinary, cfg.Tools.WhisperModel, cfg.Tools.TimeoutSeconds)
	cues := rhubarb.NewService(cfg.Tools.RhubarbBinary, cfg.Tools.TimeoutSeconds)
	builder := compile.NewBuilder(audio, speech, cues, logger)
	return NewCompilerWithDependencies(cfg, store, logger, builder)
}

// NewCompilerWithDependencies allows injecting the mission builder (used in tests).
func NewCompilerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, builder MissionBuilder) *Compiler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "compiler"))
	}
	return &Compiler{store: store, cfg: cfg, logger: stageLogger, builder: builder}
}

func (c *Compiler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Compiling"
	}
	item.ProgressMessage = "Preparing mission compilation"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (c *Compiler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("starting compilation", logging.String("analysis_path", item.RawAnalysisPath))

	if strings.TrimSpace(item.RawAnalysisPath) == "" {
		return services.Wrap(services.ErrValidation, "compile", "validate inputs",
			"No analysis document present; run analysis before compiling", nil)
	}
	doc, err := analysis.LoadDocument(item.RawAnalysisPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "compile", "load analysis",
			"Analysis document missing or unreadable; rerun analysis", err)
	}

	workDir := itemWorkDir(c.cfg, item)
	c.updateProgress(ctx, item, "Building mission document", 20)
	m, err := c.builder.Build(ctx, doc, workDir)
	if err != nil {
		return err
	}

	if report := mission.Validate(m); !report.OK() {
		return services.Wrap(services.ErrValidation, "compile", "validate mission",
			strings.Join(report.Errors, "; "), nil)
	}

	c.updateProgress(ctx, item, "Committing mission document", 80)
	missionPath := filepath.Join(workDir, "mission.json")
	if err := mission.Write(missionPath, m); err != nil {
		return services.Wrap(services.ErrTransient, "compile", "write mission",
			"Failed to commit mission document", err)
	}

	item.MissionPath = missionPath
	item.Mode = m.Metadata.Mode
	item.Status = queue.StatusCompiled
	item.ProgressPercent = 100
	item.ProgressMessage = "Mission compiled"
	logger.Info("compilation completed",
		logging.String("mission_id", m.Metadata.MissionID),
		logging.String("mission_path", missionPath),
		logging.String("mode", m.Metadata.Mode),
	)
	return nil
}

// HealthCheck verifies compiler prerequisites.
func (c *Compiler) HealthCheck(ctx context.Context) stage.Health {
	const name = "compiler"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if c.builder == nil {
		return stage.Unhealthy(name, "mission builder unavailable")
	}
	return stage.Healthy(name)
}

func (c *Compiler) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, c.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := c.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist compiler progress", logging.Error(err))
		return
	}
	*item = copy
}
