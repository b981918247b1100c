package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CarrotView/carrotview-server/internal/api/domain"
	"github.com/CarrotView/carrotview-server/internal/api/dto"
	"github.com/CarrotView/carrotview-server/internal/api/model"
	"github.com/CarrotView/carrotview-server/internal/api/storage"
)

// CreateJob handles POST /api/v1/jobs
// Creates a new generation job and enqueues the prompt stage
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url is required and must be a valid URL",
		})
		return
	}

	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url must use http or https",
		})
		return
	}

	now := time.Now()
	job := model.Job{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Status:    domain.JobStatusQueued,
		Progress:  stringPtr("Queued"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.storage.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job",
		})
		return
	}

	if err := h.publishTask(c, dto.TaskMessage{JobID: job.ID, Stage: domain.StagePrompt}); err != nil {
		// The row exists but no task will arrive. Record the failure so
		// the job does not sit in "queued" forever.
		h.logger.Error("Failed to publish prompt task",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		_ = h.storage.UpdateJob(c.Request.Context(), job.ID, storage.JobUpdate{
			Status:   stringPtr(domain.JobStatusFailed),
			Progress: stringPtr("Failed"),
			Error:    stringPtr("failed to enqueue job"),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job",
		})
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.String("url", job.URL),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// GetJob handles GET /api/v1/jobs/:job_id
// Retrieves the current state of a job, including prompts once the
// strategy stage has finished
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	c.JSON(http.StatusOK, jobToDTO(job))
}

// GenerateVideo handles POST /api/v1/jobs/:job_id/video
// Approves the reviewed prompts, optionally with edits, and enqueues
// video generation
func (h *JobHandler) GenerateVideo(c *gin.Context) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return
	}

	var req dto.GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, ok := h.loadForEnqueue(c, jobID, domain.JobStatusPromptReady, domain.JobStatusFailed)
	if !ok {
		return
	}

	promptA := job.PromptA
	if req.PromptA != nil {
		promptA = req.PromptA
	}
	if promptA == nil || strings.TrimSpace(*promptA) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "prompt_a is required before video generation",
		})
		return
	}

	upd := storage.JobUpdate{
		Status:   stringPtr(domain.JobStatusQueuedVideo),
		Progress: stringPtr("Queued for video generation"),
		PromptA:  req.PromptA,
		PromptB:  req.PromptB,
		Error:    stringPtr(""),
	}
	if err := h.storage.UpdateJob(c.Request.Context(), jobID, upd); err != nil {
		h.logger.Error("Failed to update job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update job",
		})
		return
	}

	if err := h.publishTask(c, dto.TaskMessage{JobID: jobID, Stage: domain.StageVideo}); err != nil {
		h.logger.Error("Failed to publish video task",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue video generation",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": domain.JobStatusQueuedVideo,
	})
}

// GenerateImage handles POST /api/v1/jobs/:job_id/image
// Enqueues static image generation. Allowed even on completed jobs, so
// an image can be added after the video branch finished.
func (h *JobHandler) GenerateImage(c *gin.Context) {
	jobID, ok := h.jobIDParam(c)
	if !ok {
		return
	}

	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	_, ok = h.loadForEnqueue(c, jobID,
		domain.JobStatusPromptReady, domain.JobStatusFailed, domain.JobStatusCompleted)
	if !ok {
		return
	}

	upd := storage.JobUpdate{
		Status:   stringPtr(domain.JobStatusQueuedImage),
		Progress: stringPtr("Queued for image generation"),
		Error:    stringPtr(""),
	}
	if err := h.storage.UpdateJob(c.Request.Context(), jobID, upd); err != nil {
		h.logger.Error("Failed to update job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update job",
		})
		return
	}

	msg := dto.TaskMessage{
		JobID:       jobID,
		Stage:       domain.StageImage,
		Plan:        req.Plan,
		ImagePrompt: req.ImagePrompt,
	}
	if err := h.publishTask(c, msg); err != nil {
		h.logger.Error("Failed to publish image task",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue image generation",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": domain.JobStatusQueuedImage,
	})
}

// jobIDParam extracts and validates the job_id path parameter. It writes
// the error response itself when validation fails.
func (h *JobHandler) jobIDParam(c *gin.Context) (string, bool) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return "", false
	}
	return jobID, true
}

// loadForEnqueue fetches the job and checks that its status admits a new
// stage task. It writes the error response itself on failure.
func (h *JobHandler) loadForEnqueue(c *gin.Context, jobID string, allowed ...string) (*model.Job, bool) {
	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "job not found",
			})
			return nil, false
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return nil, false
	}

	for _, status := range allowed {
		if job.Status == status {
			return job, true
		}
	}

	c.JSON(http.StatusConflict, gin.H{
		"error":  "job status does not allow this operation",
		"status": job.Status,
	})
	return nil, false
}

func (h *JobHandler) publishTask(c *gin.Context, msg dto.TaskMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.rabbitClient.PublishWithRetry(c.Request.Context(), body, "application/json")
}

func jobToDTO(job *model.Job) dto.JobDTO {
	out := dto.JobDTO{
		JobID:     job.ID,
		URL:       job.URL,
		Status:    job.Status,
		Progress:  stringValue(job.Progress),
		PromptA:   stringValue(job.PromptA),
		PromptB:   stringValue(job.PromptB),
		VideoAURL: stringValue(job.VideoAURL),
		VideoBURL: stringValue(job.VideoBURL),
		Error:     stringValue(job.Error),
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
	if len(job.SummaryJSON) > 0 {
		out.Summary = json.RawMessage(job.SummaryJSON)
	}
	return out
}

func stringPtr(s string) *string {
	return &s
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
