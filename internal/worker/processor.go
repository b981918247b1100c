package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CarrotView/carrotview-server/internal/worker/domain"
)

// processTask runs one pipeline stage for one job. Stage failures are
// recorded on the job row and reported as success to the caller so the
// message is acked; the returned error is reserved for the case where
// the failure itself could not be persisted.
func (w *Worker) processTask(ctx context.Context, msg *domain.TaskMessage) error {
	logger := w.logger.With(
		slog.String("job_id", msg.JobID),
		slog.String("stage", msg.Stage),
	)

	if !domain.KnownStage(msg.Stage) {
		// The dispatcher drops these before they reach the pool; this
		// guards direct callers. Nothing to record against the job.
		logger.Error("Dropping task", slog.Any("error", domain.ErrUnknownStage))
		return nil
	}

	job, err := w.store.GetJob(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			// The row was deleted after the task was enqueued. Nothing
			// to do and nothing to record.
			logger.Warn("Job no longer exists, dropping task")
			return nil
		}
		return fmt.Errorf("failed to load job %s: %w", msg.JobID, err)
	}

	if !domain.StageAdmits(msg.Stage, job.Status) {
		// Redelivered task for a stage that already ran. Skipping keeps
		// at-least-once delivery from repeating completed work.
		logger.Info("Job status does not admit stage, skipping",
			slog.String("status", job.Status),
		)
		return nil
	}

	var stageErr error
	switch msg.Stage {
	case domain.StagePrompt:
		stageErr = w.runPromptStage(ctx, logger, job)
	case domain.StageVideo:
		stageErr = w.runVideoStage(ctx, logger, job)
	case domain.StageImage:
		stageErr = w.runImageStage(ctx, logger, job, msg)
	}

	if stageErr == nil {
		logger.Info("Stage completed")
		return nil
	}

	logger.Error("Stage failed", slog.Any("error", stageErr))

	update := &domain.JobUpdate{
		Status:   domain.String(domain.StatusFailed),
		Progress: domain.String("Failed"),
		Error:    domain.String(stageErr.Error()),
	}
	if err := w.store.Update(ctx, msg.JobID, update); err != nil {
		return fmt.Errorf("failed to record stage failure for job %s: %w", msg.JobID, err)
	}
	return nil
}
