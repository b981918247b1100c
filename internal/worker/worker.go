package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/CarrotView/carrotview-server/internal/crawler"
	"github.com/CarrotView/carrotview-server/internal/worker/domain"
	"github.com/CarrotView/carrotview-server/shared/rabbitmq"
)

// JobStore is the worker's view of the durable job record.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	Update(ctx context.Context, jobID string, upd *domain.JobUpdate) error
}

// SiteCrawler produces the combined text of a target site.
type SiteCrawler interface {
	Crawl(ctx context.Context, startURL string, maxPages int) (*crawler.Result, error)
}

// Strategist turns crawled text into a structured marketing plan.
type Strategist interface {
	Synthesize(ctx context.Context, siteURL, combinedText string) (*domain.Plan, error)
}

// VideoGenerator runs one full long-running video generation.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ImageGenerator produces one image's bytes and content type.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, string, error)
}

// ObjectStore uploads generated assets and returns their public URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Config holds worker configuration and injected collaborators. All
// clients are constructed by the caller; the worker holds no process-wide
// singletons.
type Config struct {
	Logger        *slog.Logger
	Store         JobStore
	RabbitClient  *rabbitmq.Client
	Crawler       SiteCrawler
	Strategist    Strategist
	Video         VideoGenerator
	Image         ImageGenerator
	Objects       ObjectStore
	Concurrency   int
	PrefetchCount int
	CrawlMaxPages int
}

// Worker consumes stage tasks from the queue and drives each job through
// the generation pipeline.
type Worker struct {
	logger        *slog.Logger
	store         JobStore
	rabbitClient  *rabbitmq.Client
	crawler       SiteCrawler
	strategist    Strategist
	video         VideoGenerator
	image         ImageGenerator
	objects       ObjectStore
	concurrency   int
	prefetchCount int
	crawlMaxPages int
	workerID      string
	jobsChan      chan *domain.TaskMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance.
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		store:         cfg.Store,
		rabbitClient:  cfg.RabbitClient,
		crawler:       cfg.Crawler,
		strategist:    cfg.Strategist,
		video:         cfg.Video,
		image:         cfg.Image,
		objects:       cfg.Objects,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		crawlMaxPages: cfg.CrawlMaxPages,
		workerID:      "worker-" + uuid.New().String(),
		jobsChan:      make(chan *domain.TaskMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming tasks. It blocks until ctx is canceled or the
// delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker, waiting for in-flight tasks.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
