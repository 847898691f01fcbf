package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"motionforge/internal/config"
	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/stage"
	"motionforge/internal/stages"
)

// pipelineStage binds one stage handler to the queue statuses it consumes
// and produces.
type pipelineStage struct {
	name             string
	readyStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
	handler          stage.Handler
}

// Manager coordinates queue processing across the analysis, compilation and
// rendering stages. One failing item never halts the batch: failures are
// persisted on the item and the loop moves on.
type Manager struct {
	cfg           *config.Config
	store         *queue.Store
	logger        *slog.Logger
	pollInterval  time.Duration
	retryInterval time.Duration
	stages        []pipelineStage

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager with the default stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Manager, error) {
	analyzer, err := stages.NewAnalyzer(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	renderer, err := stages.NewRenderer(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	compiler := stages.NewCompiler(cfg, store, logger)
	return NewManagerWithHandlers(cfg, store, logger, analyzer, compiler, renderer), nil
}

// NewManagerWithHandlers allows injecting stage handlers (used in tests).
func NewManagerWithHandlers(cfg *config.Config, store *queue.Store, logger *slog.Logger, analyzer, compiler, renderer stage.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		logger:        logger.With(logging.String(logging.FieldComponent, "workflow")),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		stages: []pipelineStage{
			{
				name:             "analyze",
				readyStatus:      queue.StatusPending,
				processingStatus: queue.StatusAnalyzing,
				doneStatus:       queue.StatusAnalyzed,
				handler:          analyzer,
			},
			{
				name:             "compile",
				readyStatus:      queue.StatusAnalyzed,
				processingStatus: queue.StatusCompiling,
				doneStatus:       queue.StatusCompiled,
				handler:          compiler,
			},
			{
				name:             "render",
				readyStatus:      queue.StatusCompiled,
				processingStatus: queue.StatusRendering,
				doneStatus:       queue.StatusCompleted,
				handler:          renderer,
			},
		},
	}
}

// LastError reports the most recent loop-level error (not per-item stage
// failures, which are persisted on the items themselves).
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
