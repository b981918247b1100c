package domain

// Job status constants, in pipeline order
const (
	StatusQueued       = "queued"
	StatusCrawling     = "crawling"
	StatusStrategizing = "strategizing"
	StatusPromptReady  = "prompt_ready"
	StatusQueuedVideo  = "queued_video"
	StatusQueuedImage  = "queued_image"
	StatusGenerating   = "generating"
	StatusUploading    = "uploading"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
)

// Stage types carried in queue task messages
const (
	StagePrompt = "prompt"
	StageVideo  = "video"
	StageImage  = "image"
)

// stageAdmission maps a stage type to the job statuses that admit it.
// The broker delivers at least once, so a redelivered task whose job has
// already moved past the stage must be a no-op. Each stage admits its
// entry status, the intermediate statuses it writes itself (a crash
// mid-stage leaves the job there), and "failed" for explicit manual
// re-enqueue.
var stageAdmission = map[string]map[string]bool{
	StagePrompt: {
		StatusQueued:       true,
		StatusCrawling:     true,
		StatusStrategizing: true,
		StatusFailed:       true,
	},
	StageVideo: {
		StatusPromptReady: true,
		StatusQueuedVideo: true,
		StatusGenerating:  true,
		StatusUploading:   true,
		StatusFailed:      true,
	},
	StageImage: {
		StatusPromptReady: true,
		StatusQueuedImage: true,
		StatusGenerating:  true,
		StatusUploading:   true,
		// Image assets are additive, so a job that already completed the
		// video branch still admits an image task.
		StatusCompleted: true,
		StatusFailed:    true,
	},
}

// StageAdmits reports whether a job in the given status may run the given
// stage type. Unknown stages admit nothing.
func StageAdmits(stage, status string) bool {
	return stageAdmission[stage][status]
}

// KnownStage reports whether the stage type is one the worker handles.
func KnownStage(stage string) bool {
	_, ok := stageAdmission[stage]
	return ok
}
