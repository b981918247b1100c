package model

import "time"

// Job is one row of product_marketing_jobs as the API sees it. Nullable
// columns are pointers.
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
