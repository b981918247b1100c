package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CarrotView/carrotview-server/internal/strategist"
	"github.com/CarrotView/carrotview-server/internal/worker/domain"
)

// runVideoStage generates both video variants from the reviewed prompts
// and uploads them. Videos render sequentially; one upstream failure
// fails the whole stage.
func (w *Worker) runVideoStage(ctx context.Context, logger *slog.Logger, job *domain.Job) error {
	promptA := strings.TrimSpace(job.PromptAText())
	if promptA == "" {
		return domain.ErrMissingPrompt
	}
	promptB := strings.TrimSpace(job.PromptBText())
	if promptB == "" {
		promptB = strategist.HookVariant(promptA)
	}

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusGenerating),
		Progress: domain.String("Creating video A"),
		Error:    domain.String(""),
	}); err != nil {
		return fmt.Errorf("failed to mark job generating: %w", err)
	}

	videoA, err := w.video.Generate(ctx, promptA)
	if err != nil {
		return fmt.Errorf("video A: %w", err)
	}
	logger.Info("Video A generated", slog.Int("bytes", len(videoA)))

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Progress: domain.String("Creating video B"),
	}); err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}

	videoB, err := w.video.Generate(ctx, promptB)
	if err != nil {
		return fmt.Errorf("video B: %w", err)
	}
	logger.Info("Video B generated", slog.Int("bytes", len(videoB)))

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusUploading),
		Progress: domain.String("Uploading videos"),
	}); err != nil {
		return fmt.Errorf("failed to mark job uploading: %w", err)
	}

	urlA, err := w.objects.Put(ctx, assetKey(job.ID, "video-a.mp4"), videoA, "video/mp4")
	if err != nil {
		return fmt.Errorf("upload video A: %w", err)
	}
	urlB, err := w.objects.Put(ctx, assetKey(job.ID, "video-b.mp4"), videoB, "video/mp4")
	if err != nil {
		return fmt.Errorf("upload video B: %w", err)
	}

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:    domain.String(domain.StatusCompleted),
		Progress:  domain.String("Ready"),
		VideoAURL: domain.String(urlA),
		VideoBURL: domain.String(urlB),
	}); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	return nil
}

// assetKey builds the object key for one generated asset of one job.
func assetKey(jobID, filename string) string {
	return "product-marketing/" + jobID + "/" + filename
}
