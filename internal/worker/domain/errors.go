package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job row does not exist. Task
	// handlers treat it as a silent no-op, not a failure.
	ErrJobNotFound = errors.New("job not found")

	// ErrMissingPrompt is returned when a video task runs against a job
	// with no usable prompt_a.
	ErrMissingPrompt = errors.New("job has no approved prompt")

	// ErrUnknownStage is returned for task messages with an unrecognized
	// stage type.
	ErrUnknownStage = errors.New("unknown stage type")

	// ErrEmptyUpdate is returned when a job update would touch no columns.
	ErrEmptyUpdate = errors.New("job update has no fields")
)
