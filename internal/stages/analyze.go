package stages

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"motionforge/internal/analysis"
	"motionforge/internal/config"
	"motionforge/internal/detect"
	"motionforge/internal/logging"
	"motionforge/internal/media/ffprobe"
	"motionforge/internal/mission"
	"motionforge/internal/queue"
	"motionforge/internal/services"
	"motionforge/internal/stage"
)

// MediaProber inspects a source video's container metadata.
type MediaProber interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

type binaryProber struct {
	binary string
}

func (p binaryProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.binary, path)
}

// Analyzer runs the motion extraction pass: probe the source video, run the
// landmark detector, and reduce its sidecar into the raw analysis document.
type Analyzer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	detector detect.Detector
	prober   MediaProber
	scanner  *analysis.Scanner
}

// NewAnalyzer constructs the analysis stage handler using default dependencies.
func NewAnalyzer(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Analyzer, error) {
	detector, err := detect.New(cfg.Tools.DetectorBinary, cfg.Tools.TimeoutSeconds)
	if err != nil {
		return nil, err
	}
	return NewAnalyzerWithDependencies(cfg, store, logger, detector, binaryProber{binary: cfg.Tools.FFprobeBinary}), nil
}

// NewAnalyzerWithDependencies allows injecting collaborators (used in tests).
func NewAnalyzerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, detector detect.Detector, prober MediaProber) *Analyzer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "analyzer"))
	}
	return &Analyzer{
		store:    store,
		cfg:      cfg,
		logger:   stageLogger,
		detector: detector,
		prober:   prober,
		scanner:  analysis.NewScanner(cfg.Analysis, stageLogger),
	}
}

func (a *Analyzer) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Analyzing"
	}
	item.ProgressMessage = "Preparing motion extraction"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)
	logger.Info("starting analysis", logging.String("source", item.SourcePath))

	if _, err := os.Stat(item.SourcePath); err != nil {
		return services.Wrap(services.ErrValidation, "analyze", "stat source",
			"Source video missing or unreadable", err)
	}

	a.updateProgress(ctx, item, "Probing source media", 10)
	probe, err := a.prober.Inspect(ctx, item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "analyze", "probe",
			"ffprobe failed on source video", err)
	}
	video := probe.VideoStream()
	if video == nil {
		return services.Wrap(services.ErrValidation, "analyze", "probe",
			"Source file has no video stream", nil)
	}

	media := analysis.Media{
		SourcePath:      item.SourcePath,
		FPS:             probe.FrameRate(),
		Width:           video.Width,
		Height:          video.Height,
		DurationSeconds: probe.DurationSeconds(),
		FrameCount:      probe.FrameCount(),
		HasAudio:        probe.AudioStreamCount() > 0,
	}

	workDir := itemWorkDir(a.cfg, item)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "analyze", "ensure work dir",
			"Failed to create item work directory", err)
	}

	a.updateProgress(ctx, item, "Running landmark detector", 30)
	frames, err := a.detector.Analyze(ctx, item.SourcePath, workDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "analyze", "detect",
			"Landmark detector failed", err)
	}

	a.updateProgress(ctx, item, "Reducing detections", 80)
	doc, err := a.scanner.Scan(media, frames)
	if err != nil {
		return services.Wrap(services.ErrValidation, "analyze", "scan",
			"Detector output could not be reduced", err)
	}

	analysisPath := filepath.Join(workDir, "analysis.json")
	if err := analysis.SaveDocument(analysisPath, doc); err != nil {
		return services.Wrap(services.ErrTransient, "analyze", "save document",
			"Failed to persist analysis document", err)
	}

	item.RawAnalysisPath = analysisPath
	item.Mode = mission.ModeSilent
	if media.HasAudio {
		item.Mode = mission.ModeDrama
	}
	item.Status = queue.StatusAnalyzed
	item.ProgressPercent = 100
	item.ProgressMessage = "Analysis completed"
	logger.Info("analysis completed",
		logging.String("analysis_path", analysisPath),
		logging.String("mode", item.Mode),
		logging.Int("actors", len(doc.Actors)),
		logging.Int("frames", len(doc.CameraMotion)),
	)
	return nil
}

// HealthCheck verifies analyzer prerequisites.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "analyzer"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(a.cfg.WorkDir) == "" {
		return stage.Unhealthy(name, "work directory not configured")
	}
	if a.detector == nil {
		return stage.Unhealthy(name, "landmark detector unavailable")
	}
	return stage.Healthy(name)
}

func (a *Analyzer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, a.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := a.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist analyzer progress", logging.Error(err))
		return
	}
	*item = copy
}
