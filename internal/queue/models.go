package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusCompiling Status = "compiling"
	StatusCompiled  Status = "compiled"
	StatusRendering Status = "rendering"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusReview    Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusCompiling,
	StatusCompiled,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusAnalyzing: {},
	StatusCompiling: {},
	StatusRendering: {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions return items interrupted mid-stage to the status
// that re-runs the stage from scratch; partial stage output is never treated
// as complete.
var stageRollbackTransitions = []statusTransition{
	{from: StatusAnalyzing, to: StatusPending},
	{from: StatusCompiling, to: StatusAnalyzed},
	{from: StatusRendering, to: StatusCompiled},
}

// IsValidStatus reports whether the given string names a known status.
func IsValidStatus(value string) bool {
	_, ok := statusSet[Status(strings.TrimSpace(value))]
	return ok
}

// IsProcessing reports whether the status marks an in-flight stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether no further stage will pick the item up.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusReview
}

// Item represents a queued source video persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	VideoTitle      string
	Status          Status
	Mode            string
	RawAnalysisPath string
	MissionPath     string
	VariantCount    int
	RenderedFiles   []string
	ErrorMessage    string
	NeedsReview     bool
	ReviewReason    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}
