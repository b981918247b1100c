package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageAdmits(t *testing.T) {
	tests := []struct {
		name   string
		stage  string
		status string
		want   bool
	}{
		{"prompt admits queued", StagePrompt, StatusQueued, true},
		{"prompt admits crawling after crash", StagePrompt, StatusCrawling, true},
		{"prompt admits failed for re-run", StagePrompt, StatusFailed, true},
		{"prompt rejects prompt_ready", StagePrompt, StatusPromptReady, false},
		{"prompt rejects completed", StagePrompt, StatusCompleted, false},

		{"video admits prompt_ready", StageVideo, StatusPromptReady, true},
		{"video admits queued_video", StageVideo, StatusQueuedVideo, true},
		{"video admits uploading after crash", StageVideo, StatusUploading, true},
		{"video rejects queued", StageVideo, StatusQueued, false},
		{"video rejects completed", StageVideo, StatusCompleted, false},

		{"image admits prompt_ready", StageImage, StatusPromptReady, true},
		{"image admits completed", StageImage, StatusCompleted, true},
		{"image rejects crawling", StageImage, StatusCrawling, false},

		{"unknown stage admits nothing", "transcode", StatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StageAdmits(tt.stage, tt.status))
		})
	}
}

func TestKnownStage(t *testing.T) {
	assert.True(t, KnownStage(StagePrompt))
	assert.True(t, KnownStage(StageVideo))
	assert.True(t, KnownStage(StageImage))
	assert.False(t, KnownStage(""))
	assert.False(t, KnownStage("transcode"))
}

func TestPlan_MergeAssets(t *testing.T) {
	t.Run("initializes nil map", func(t *testing.T) {
		p := &Plan{}
		p.MergeAssets(map[string]string{AssetImageURL: "https://cdn.example.com/a.png"})

		require.NotNil(t, p.GeneratedAssets)
		assert.Equal(t, "https://cdn.example.com/a.png", p.GeneratedAssets[AssetImageURL])
	})

	t.Run("keeps existing keys", func(t *testing.T) {
		p := &Plan{
			GeneratedAssets: map[string]string{
				AssetImageURL: "https://cdn.example.com/old.png",
				"video_a_url": "https://cdn.example.com/a.mp4",
			},
		}
		p.MergeAssets(map[string]string{AssetImagePrompt: "a bold product shot"})

		assert.Len(t, p.GeneratedAssets, 3)
		assert.Equal(t, "https://cdn.example.com/a.mp4", p.GeneratedAssets["video_a_url"])
		assert.Equal(t, "https://cdn.example.com/old.png", p.GeneratedAssets[AssetImageURL])
	})

	t.Run("nil additions are a no-op", func(t *testing.T) {
		p := &Plan{}
		p.MergeAssets(nil)
		assert.Nil(t, p.GeneratedAssets)
	})
}

func TestNormalizePlan(t *testing.T) {
	t.Run("nil plan gets all defaults", func(t *testing.T) {
		out := NormalizePlan(nil)

		require.NotNil(t, out)
		assert.Equal(t, "vertical_social_video", out.Platform)
		assert.NotEmpty(t, out.Audience)
		require.NotNil(t, out.MessageFramework)
		assert.NotEmpty(t, out.MessageFramework.Hook)
		require.NotNil(t, out.StyleControls)
		assert.NotEmpty(t, out.StyleControls.Pacing)
	})

	t.Run("existing fields survive", func(t *testing.T) {
		in := &Plan{
			Product:  "Acme Dashboards",
			Platform: "youtube_shorts",
			MessageFramework: &MessageFramework{
				Hook: "Stop guessing your metrics",
			},
		}
		out := NormalizePlan(in)

		assert.Equal(t, "Acme Dashboards", out.Product)
		assert.Equal(t, "youtube_shorts", out.Platform)
		assert.Equal(t, "Stop guessing your metrics", out.MessageFramework.Hook)
		require.NotNil(t, out.StyleControls)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		in := &Plan{Product: "Acme"}
		_ = NormalizePlan(in)

		assert.Nil(t, in.MessageFramework)
		assert.Empty(t, in.Platform)
	})
}

func TestJobUpdate_IsEmpty(t *testing.T) {
	assert.True(t, (&JobUpdate{}).IsEmpty())
	assert.False(t, (&JobUpdate{Status: String(StatusFailed)}).IsEmpty())
	assert.False(t, (&JobUpdate{Error: String("")}).IsEmpty())
	assert.False(t, (&JobUpdate{Summary: &Plan{}}).IsEmpty())
}

func TestJob_PromptText(t *testing.T) {
	job := &Job{}
	assert.Empty(t, job.PromptAText())
	assert.Empty(t, job.PromptBText())

	job.PromptA = String("a vertical product video")
	job.PromptB = String("variant with a bolder hook")
	assert.Equal(t, "a vertical product video", job.PromptAText())
	assert.Equal(t, "variant with a bolder hook", job.PromptBText())
}
