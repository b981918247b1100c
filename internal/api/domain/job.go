package domain

import (
	"errors"
)

// Job statuses the API reads and writes. The worker owns the in-flight
// statuses; the API only ever parks a job in a queued state or reads
// whatever the worker left behind.
const (
	JobStatusQueued      = "queued"
	JobStatusPromptReady = "prompt_ready"
	JobStatusQueuedVideo = "queued_video"
	JobStatusQueuedImage = "queued_image"
	JobStatusCompleted   = "completed"
	JobStatusFailed      = "failed"
)

// Stage types carried in queue task messages.
const (
	StagePrompt = "prompt"
	StageVideo  = "video"
	StageImage  = "image"
)

var (
	ErrJobNotFound = errors.New("job not found")
)
