package genai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarrotView/carrotview-server/shared/poll"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeVideoAPI emulates the upstream create/status/content endpoints.
type fakeVideoAPI struct {
	mu          sync.Mutex
	statusCalls int
	// statuses is returned one per status call; the last repeats.
	statuses []string
	content  []byte

	lastAuth    string
	lastModel   string
	lastPrompt  string
	lastSeconds string
	lastSize    string
}

func (f *fakeVideoAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /videos", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.lastModel = r.FormValue("model")
		f.lastPrompt = r.FormValue("prompt")
		f.lastSeconds = r.FormValue("seconds")
		f.lastSize = r.FormValue("size")
		f.mu.Unlock()
		fmt.Fprint(w, `{"id": "video_123", "status": "queued"}`)
	})

	mux.HandleFunc("GET /videos/video_123", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.statusCalls
		if idx >= len(f.statuses) {
			idx = len(f.statuses) - 1
		}
		status := f.statuses[idx]
		f.statusCalls++
		f.mu.Unlock()

		if status == "failed" {
			fmt.Fprint(w, `{"id": "video_123", "status": "failed", "error": {"message": "content policy"}}`)
			return
		}
		fmt.Fprintf(w, `{"id": "video_123", "status": %q}`, status)
	})

	mux.HandleFunc("GET /videos/video_123/content", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(f.content)
	})

	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server, timeout time.Duration) *VideoClient {
	return NewVideoClient(VideoConfig{
		BaseURL:      srv.URL,
		APIKey:       "sk-test",
		Model:        "sora-2",
		Seconds:      8,
		Size:         "1280x720",
		PollInterval: time.Millisecond,
		PollTimeout:  timeout,
	}, srv.Client(), testLogger())
}

func TestVideoGenerate(t *testing.T) {
	fake := &fakeVideoAPI{
		statuses: []string{"queued", "in_progress", "completed"},
		content:  []byte("mp4-bytes"),
	}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv, time.Second)

	data, err := c.Generate(context.Background(), "a vertical product video")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp4-bytes"), data)

	assert.Equal(t, "Bearer sk-test", fake.lastAuth)
	assert.Equal(t, "sora-2", fake.lastModel)
	assert.Equal(t, "a vertical product video", fake.lastPrompt)
	assert.Equal(t, "8", fake.lastSeconds)
	assert.Equal(t, "1280x720", fake.lastSize)
	assert.GreaterOrEqual(t, fake.statusCalls, 3)
}

func TestVideoGenerate_UpstreamFailure(t *testing.T) {
	fake := &fakeVideoAPI{statuses: []string{"queued", "failed"}}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv, time.Second)

	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content policy")
	assert.NotErrorIs(t, err, poll.ErrTimeout)
}

func TestVideoGenerate_Timeout(t *testing.T) {
	fake := &fakeVideoAPI{statuses: []string{"in_progress"}}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv, 25*time.Millisecond)

	_, err := c.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, poll.ErrTimeout)
}

func TestVideoSubmit_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)

	_, err := c.Submit(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestNewVideoClient_Normalization(t *testing.T) {
	c := NewVideoClient(VideoConfig{
		Seconds: 7,         // not in the allow-list
		Size:    "640x480", // not in the allow-list
	}, nil, testLogger())

	assert.Equal(t, defaultVideoSeconds, c.config.Seconds)
	assert.Equal(t, defaultVideoSize, c.config.Size)
	assert.Equal(t, defaultVideoBaseURL, c.config.BaseURL)
	assert.Equal(t, defaultPollInterval, c.config.PollInterval)
	assert.Equal(t, defaultPollTimeout, c.config.PollTimeout)

	kept := NewVideoClient(VideoConfig{Seconds: 4, Size: "1792x1024"}, nil, testLogger())
	assert.Equal(t, 4, kept.config.Seconds)
	assert.Equal(t, "1792x1024", kept.config.Size)
}
