package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/CarrotView/carrotview-server/internal/api/domain"
	"github.com/CarrotView/carrotview-server/internal/api/model"
	"github.com/CarrotView/carrotview-server/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO product_marketing_jobs (
			id, url, status, progress, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.URL,
		job.Status,
		job.Progress,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `
		SELECT
			id, url, status, progress, prompt_a, prompt_b,
			summary_json, video_a_url, video_b_url, error,
			created_at, updated_at
		FROM product_marketing_jobs
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// JobUpdate is a partial update of a job row. Nil fields are left
// untouched. Error set to the empty string clears the column.
type JobUpdate struct {
	Status   *string
	Progress *string
	PromptA  *string
	PromptB  *string
	Error    *string
}

func (s *Storage) UpdateJob(ctx context.Context, jobID string, upd JobUpdate) error {
	sets := []string{}
	args := []interface{}{jobID}
	argIdx := 2

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
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
	if upd.Error != nil {
		sets = append(sets, fmt.Sprintf("error = NULLIF($%d, '')", argIdx))
		args = append(args, *upd.Error)
		argIdx++
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE product_marketing_jobs SET %s WHERE id = $1",
		strings.Join(sets, ", "),
	)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}
