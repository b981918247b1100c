package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/CarrotView/carrotview-server/internal/worker/domain"
)

// Storage handles all database operations for the worker.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance.
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// GetJob retrieves a job row by id. Returns domain.ErrJobNotFound when
// the row does not exist.
func (s *Storage) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
		SELECT id, url, status, progress, prompt_a, prompt_b, summary_json,
		       video_a_url, video_b_url, error, created_at, updated_at
		FROM product_marketing_jobs
		WHERE id = $1
	`

	var job domain.Job
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// Update applies a partial update to a job row in one atomic statement.
// Only non-nil fields are written; updated_at is always stamped. An
// update with no fields is rejected.
func (s *Storage) Update(ctx context.Context, jobID string, upd *domain.JobUpdate) error {
	if upd == nil || upd.IsEmpty() {
		return domain.ErrEmptyUpdate
	}

	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.Progress != nil {
		set("progress", *upd.Progress)
	}
	if upd.PromptA != nil {
		set("prompt_a", *upd.PromptA)
	}
	if upd.PromptB != nil {
		set("prompt_b", *upd.PromptB)
	}
	if upd.Summary != nil {
		raw, err := json.Marshal(upd.Summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		set("summary_json", raw)
	}
	if upd.VideoAURL != nil {
		set("video_a_url", *upd.VideoAURL)
	}
	if upd.VideoBURL != nil {
		set("video_b_url", *upd.VideoBURL)
	}
	if upd.Error != nil {
		// An empty error string clears the column.
		args = append(args, *upd.Error)
		sets = append(sets, fmt.Sprintf("error = NULLIF($%d, '')", len(args)))
	}

	sets = append(sets, "updated_at = NOW()")

	args = append(args, jobID)
	query := fmt.Sprintf(
		"UPDATE product_marketing_jobs SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.Warn("Job update affected no rows",
			slog.String("job_id", jobID),
		)
	}

	return nil
}
