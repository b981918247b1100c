package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CarrotView/carrotview-server/internal/strategist"
	"github.com/CarrotView/carrotview-server/internal/worker/domain"
)

// runImageStage renders one static image for the job and records it
// under the plan's generated_assets. The stage only ever adds asset
// entries, so it can run after the video branch has completed without
// disturbing its results.
func (w *Worker) runImageStage(ctx context.Context, logger *slog.Logger, job *domain.Job, msg *domain.TaskMessage) error {
	var stored domain.Plan
	if len(job.SummaryJSON) > 0 {
		if err := json.Unmarshal(job.SummaryJSON, &stored); err != nil {
			return fmt.Errorf("stored summary is not valid JSON: %w", err)
		}
	}

	// A plan carried on the task overrides the stored one for prompt
	// compilation, e.g. when the operator edited the strategy in the UI.
	source := &stored
	if msg.Plan != nil {
		source = msg.Plan
	}
	normalized := domain.NormalizePlan(source)

	prompt := strings.TrimSpace(msg.ImagePrompt)
	if prompt == "" {
		prompt = strategist.CompileFromStrategy(normalized)
	}

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusGenerating),
		Progress: domain.String("Rendering image"),
		Error:    domain.String(""),
	}); err != nil {
		return fmt.Errorf("failed to mark job generating: %w", err)
	}

	data, contentType, err := w.image.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("image generation: %w", err)
	}
	logger.Info("Image generated",
		slog.Int("bytes", len(data)),
		slog.String("content_type", contentType),
	)

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusUploading),
		Progress: domain.String("Uploading image"),
	}); err != nil {
		return fmt.Errorf("failed to mark job uploading: %w", err)
	}

	key := assetKey(job.ID, "image.png")
	imageURL, err := w.objects.Put(ctx, key, data, contentType)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	// Write back on top of the stored summary so prior asset entries
	// survive. When the job had no summary yet, adopt the normalized
	// task plan so the row ends up self-describing.
	summary := stored
	if len(job.SummaryJSON) == 0 && msg.Plan != nil {
		summary = *normalized
	}
	summary.MergeAssets(map[string]string{
		domain.AssetImageURL:    imageURL,
		domain.AssetImageKey:    key,
		domain.AssetImagePrompt: prompt,
	})

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusCompleted),
		Progress: domain.String("Ready"),
		Summary:  &summary,
	}); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	return nil
}
