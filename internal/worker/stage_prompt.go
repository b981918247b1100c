package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CarrotView/carrotview-server/internal/strategist"
	"github.com/CarrotView/carrotview-server/internal/worker/domain"
)

// runPromptStage crawls the submitted site, synthesizes a marketing
// plan, and parks the job at prompt_ready for human review. Generation
// does not start until an operator re-enqueues the job.
func (w *Worker) runPromptStage(ctx context.Context, logger *slog.Logger, job *domain.Job) error {
	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusCrawling),
		Progress: domain.String("Reading website content"),
		Error:    domain.String(""),
	}); err != nil {
		return fmt.Errorf("failed to mark job crawling: %w", err)
	}

	result, err := w.crawler.Crawl(ctx, job.URL, w.crawlMaxPages)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	logger.Info("Crawl finished",
		slog.Int("pages", len(result.Pages)),
		slog.Int("combined_text_len", len(result.CombinedText)),
	)

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusStrategizing),
		Progress: domain.String("Generating prompts"),
	}); err != nil {
		return fmt.Errorf("failed to mark job strategizing: %w", err)
	}

	plan, err := w.strategist.Synthesize(ctx, job.URL, result.CombinedText)
	if err != nil {
		return fmt.Errorf("strategy synthesis failed: %w", err)
	}

	promptA := strings.TrimSpace(plan.PromptA)
	if promptA == "" {
		promptA = strategist.CompileFromStrategy(plan)
		plan.PromptA = promptA
	}
	promptB := strings.TrimSpace(plan.PromptB)
	if promptB == "" {
		promptB = strategist.HookVariant(promptA)
		plan.PromptB = promptB
	}

	if err := w.store.Update(ctx, job.ID, &domain.JobUpdate{
		Status:   domain.String(domain.StatusPromptReady),
		Progress: domain.String("Prompts ready for review"),
		Summary:  plan,
		PromptA:  domain.String(promptA),
		PromptB:  domain.String(promptB),
	}); err != nil {
		return fmt.Errorf("failed to store prompts: %w", err)
	}

	return nil
}
