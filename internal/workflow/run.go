package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"motionforge/internal/logging"
	"motionforge/internal/queue"
	"motionforge/internal/services"
)

// Start begins background processing. Items interrupted mid-stage by a
// previous shutdown are rolled back to the status that re-runs the stage.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("failed to reset stuck items", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset interrupted items", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.IngestInput(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.setLastError(err)
			m.logger.Warn("input scan failed", logging.Error(err))
		}

		processed, err := m.ProcessNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("queue processing error", logging.Error(err))
			m.sleep(ctx, m.retryInterval)
			continue
		}
		if !processed {
			m.sleep(ctx, m.pollInterval)
		}
	}
}

// ProcessNext runs at most one stage on the oldest eligible item. It reports
// whether any work was done. Stage failures are absorbed into the item's
// persisted state and still count as work done.
func (m *Manager) ProcessNext(ctx context.Context) (bool, error) {
	for _, st := range m.stages {
		item, err := m.store.NextForStatus(ctx, st.readyStatus)
		if err != nil {
			return false, fmt.Errorf("fetch next %s item: %w", st.readyStatus, err)
		}
		if item == nil {
			continue
		}
		m.processItem(ctx, st, item)
		return true, nil
	}
	return false, nil
}

// ProcessItem runs the stage matching one item's current status, regardless
// of queue order. Used by the one-shot CLI commands; the background loop uses
// ProcessNext. The refreshed item is returned so callers can inspect the
// outcome.
func (m *Manager) ProcessItem(ctx context.Context, id int64) (*queue.Item, error) {
	item, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, st := range m.stages {
		if st.readyStatus != item.Status {
			continue
		}
		m.processItem(ctx, st, item)
		return m.store.GetByID(ctx, id)
	}
	return nil, fmt.Errorf("item %d is %s; no stage consumes that status", id, item.Status)
}

func (m *Manager) processItem(ctx context.Context, st pipelineStage, item *queue.Item) {
	stageCtx := services.WithItemID(ctx, item.ID)
	stageCtx = services.WithStage(stageCtx, st.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	logger := logging.WithContext(stageCtx, m.logger)

	item.Status = st.processingStatus
	item.ProgressStage = stageLabel(st.processingStatus)
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to transition item to processing", logging.Error(err))
		return
	}

	start := time.Now()
	logger.Info("stage started", logging.String("source", item.SourcePath))

	if err := st.handler.Prepare(stageCtx, item); err != nil {
		m.failItem(stageCtx, st, item, err)
		return
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist stage preparation", logging.Error(err))
		return
	}

	if err := st.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return
		}
		m.failItem(stageCtx, st, item, err)
		return
	}

	if item.Status == st.processingStatus || item.Status == "" {
		item.Status = st.doneStatus
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist stage result", logging.Error(err))
		return
	}
	logger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(start)),
	)
}

// failItem persists a stage failure on the item. Validation and
// configuration failures route to review for operator attention; everything
// else is a plain failure eligible for retry.
func (m *Manager) failItem(ctx context.Context, st pipelineStage, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)
	status := services.FailureStatus(stageErr)

	item.Status = status
	item.ErrorMessage = strings.TrimSpace(stageErr.Error())
	if status == queue.StatusReview {
		item.NeedsReview = true
		item.ReviewReason = item.ErrorMessage
	}
	logger.Error("stage failed",
		logging.String("resolved_status", string(status)),
		logging.Error(stageErr),
	)
	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown during failure persistence")
			return
		}
		m.setLastError(err)
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func stageLabel(status queue.Status) string {
	switch status {
	case queue.StatusAnalyzing:
		return "Analyzing"
	case queue.StatusCompiling:
		return "Compiling"
	case queue.StatusRendering:
		return "Rendering"
	default:
		s := string(status)
		if s == "" {
			return "Queued"
		}
		return strings.ToUpper(s[:1]) + s[1:]
	}
}
