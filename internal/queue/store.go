package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"motionforge/internal/config"
)

// ErrNotFound is returned when an item lookup matches nothing.
var ErrNotFound = errors.New("queue item not found")

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.LogDir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewVideo inserts a new pending item for a source video.
func (s *Store) NewVideo(ctx context.Context, sourcePath, title string) (*Item, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("source path required")
	}
	if title == "" {
		title = filepath.Base(sourcePath)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO queue_items (source_path, video_title, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		sourcePath, title, StatusPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert queue item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolve inserted id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a single item.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// FindBySourcePath returns the item for a source video, or ErrNotFound.
func (s *Store) FindBySourcePath(ctx context.Context, sourcePath string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE source_path = ?", strings.TrimSpace(sourcePath))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// NextForStatus returns the oldest item in the given status, or nil.
func (s *Store) NextForStatus(ctx context.Context, status Status) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT 1", status)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// List returns items filtered by the provided statuses, or all items when none
// are given, ordered oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := selectColumns
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update persists the item's mutable fields.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("nil item")
	}
	if _, ok := statusSet[item.Status]; !ok {
		return fmt.Errorf("unknown status %q", item.Status)
	}
	rendered, err := json.Marshal(item.RenderedFiles)
	if err != nil {
		return fmt.Errorf("encode rendered files: %w", err)
	}
	item.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET
            video_title = ?, status = ?, mode = ?, raw_analysis_path = ?,
            mission_path = ?, variant_count = ?, rendered_files = ?,
            error_message = ?, needs_review = ?, review_reason = ?,
            progress_stage = ?, progress_percent = ?, progress_message = ?,
            updated_at = ?
         WHERE id = ?`,
		item.VideoTitle, item.Status, item.Mode, item.RawAnalysisPath,
		item.MissionPath, item.VariantCount, string(rendered),
		item.ErrorMessage, boolToInt(item.NeedsReview), item.ReviewReason,
		item.ProgressStage, item.ProgressPercent, item.ProgressMessage,
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update queue item %d: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update queue item %d: %w", item.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetStuckProcessing rolls items stranded in a processing status back to the
// status that re-runs the stage. Used on startup after an unclean shutdown.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var total int64
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, transition := range stageRollbackTransitions {
		res, err := s.db.ExecContext(
			ctx,
			"UPDATE queue_items SET status = ?, updated_at = ? WHERE status = ?",
			transition.to, now, transition.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += affected
	}
	return total, nil
}

// RetryFailed moves failed and review items back to pending.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET status = ?, error_message = '', needs_review = 0,
            review_reason = '', updated_at = ? WHERE status IN (?, ?)`,
		StatusPending, now, StatusFailed, StatusReview,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every queue item.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM queue_items"); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

// Health aggregates queue counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM queue_items GROUP BY status")
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, err
		}
		summary.Total += count
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status.IsProcessing():
			summary.Processing += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusReview:
			summary.Review += count
		case status == StatusCompleted:
			summary.Completed += count
		}
	}
	return summary, rows.Err()
}

const selectColumns = `SELECT id, source_path, video_title, status, mode,
    raw_analysis_path, mission_path, variant_count, rendered_files,
    error_message, needs_review, review_reason,
    progress_stage, progress_percent, progress_message,
    created_at, updated_at FROM queue_items`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var status string
	var rendered string
	var needsReview int
	var createdAt, updatedAt string

	err := row.Scan(
		&item.ID, &item.SourcePath, &item.VideoTitle, &status, &item.Mode,
		&item.RawAnalysisPath, &item.MissionPath, &item.VariantCount, &rendered,
		&item.ErrorMessage, &needsReview, &item.ReviewReason,
		&item.ProgressStage, &item.ProgressPercent, &item.ProgressMessage,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Status = Status(status)
	item.NeedsReview = needsReview != 0
	if rendered != "" {
		if err := json.Unmarshal([]byte(rendered), &item.RenderedFiles); err != nil {
			return nil, fmt.Errorf("decode rendered files for item %d: %w", item.ID, err)
		}
	}
	if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for item %d: %w", item.ID, err)
	}
	if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for item %d: %w", item.ID, err)
	}
	return &item, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
