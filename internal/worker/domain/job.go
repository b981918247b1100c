package domain

import "time"

// Job is one row of product_marketing_jobs as the worker sees it.
// Nullable columns are pointers; they stay nil until the owning stage
// fills them in.
type Job struct {
	ID          string    `db:"id"`
	URL         string    `db:"url"`
	Status      string    `db:"status"`
	Progress    *string   `db:"progress"`
	PromptA     *string   `db:"prompt_a"`
	PromptB     *string   `db:"prompt_b"`
	SummaryJSON []byte    `db:"summary_json"`
	VideoAURL   *string   `db:"video_a_url"`
	VideoBURL   *string   `db:"video_b_url"`
	Error       *string   `db:"error"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// PromptAText returns prompt_a or "" when unset.
func (j *Job) PromptAText() string {
	if j.PromptA == nil {
		return ""
	}
	return *j.PromptA
}

// PromptBText returns prompt_b or "" when unset.
func (j *Job) PromptBText() string {
	if j.PromptB == nil {
		return ""
	}
	return *j.PromptB
}

// JobUpdate is a partial update of a job row. Nil fields are left
// untouched; the store turns the rest into a single SET clause so every
// mutation is one atomic row write. Summary replaces summary_json whole,
// which is why stages merge assets in memory before writing it back.
type JobUpdate struct {
	Status    *string
	Progress  *string
	PromptA   *string
	PromptB   *string
	Summary   *Plan
	VideoAURL *string
	VideoBURL *string
	// Error set to the empty string clears the column to NULL.
	Error *string
}

// IsEmpty reports whether the update would touch no columns.
func (u *JobUpdate) IsEmpty() bool {
	return u.Status == nil && u.Progress == nil && u.PromptA == nil &&
		u.PromptB == nil && u.Summary == nil && u.VideoAURL == nil &&
		u.VideoBURL == nil && u.Error == nil
}

// TaskMessage is the queue payload for one pipeline stage of one job.
// Image tasks may carry a caller-supplied plan and prompt; the other
// stages only need the job id.
type TaskMessage struct {
	JobID       string `json:"job_id"`
	Stage       string `json:"stage"`
	Plan        *Plan  `json:"plan,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`

	DeliveryTag uint64 `json:"-"`
}

// String returns a pointer to s, for building JobUpdate literals.
func String(s string) *string {
	return &s
}
