package dto

import "encoding/json"

type CreateJobRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// GenerateVideoRequest carries optional prompt edits made during review.
// Omitted fields keep whatever the strategist produced.
type GenerateVideoRequest struct {
	PromptA *string `json:"prompt_a"`
	PromptB *string `json:"prompt_b"`
}

// GenerateImageRequest optionally overrides the stored plan and the
// compiled image prompt. The plan passes through to the worker untouched.
type GenerateImageRequest struct {
	Plan        json.RawMessage `json:"plan,omitempty"`
	ImagePrompt string          `json:"image_prompt,omitempty"`
}

// TaskMessage is the queue payload the API publishes for one pipeline
// stage of one job.
type TaskMessage struct {
	JobID       string          `json:"job_id"`
	Stage       string          `json:"stage"`
	Plan        json.RawMessage `json:"plan,omitempty"`
	ImagePrompt string          `json:"image_prompt,omitempty"`
}

type JobDTO struct {
	JobID     string          `json:"job_id"`
	URL       string          `json:"url"`
	Status    string          `json:"status"`
	Progress  string          `json:"progress,omitempty"`
	PromptA   string          `json:"prompt_a,omitempty"`
	PromptB   string          `json:"prompt_b,omitempty"`
	Summary   json.RawMessage `json:"summary,omitempty"`
	VideoAURL string          `json:"video_a_url,omitempty"`
	VideoBURL string          `json:"video_b_url,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}
