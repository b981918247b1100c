// Package genai holds the clients for the upstream generation services:
// the long-running video operation and the single-round-trip image call.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/CarrotView/carrotview-server/shared/poll"
)

const (
	defaultVideoBaseURL = "https://api.openai.com/v1"
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 8 * time.Minute

	defaultVideoSeconds = 12
	defaultVideoSize    = "720x1280"

	videoStatusCompleted = "completed"
	videoStatusFailed    = "failed"
)

var (
	allowedVideoSeconds = map[int]bool{4: true, 8: true, 12: true}
	allowedVideoSizes = map[string]bool{
		"720x1280":  true,
		"1024x1792": true,
		"1280x720":  true,
		"1792x1024": true,
	}
)

// VideoConfig configures the video generation client. Seconds and Size
// outside the upstream allow-lists are replaced by the defaults.
type VideoConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	Seconds      int
	Size         string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// VideoClient drives the submit/poll/fetch cycle of the upstream video
// generation operation.
type VideoClient struct {
	config VideoConfig
	client *http.Client
	logger *slog.Logger
}

// NewVideoClient creates a VideoClient, normalizing the config against
// defaults and allow-lists.
func NewVideoClient(config VideoConfig, client *http.Client, logger *slog.Logger) *VideoClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultVideoBaseURL
	}
	if !allowedVideoSeconds[config.Seconds] {
		config.Seconds = defaultVideoSeconds
	}
	if !allowedVideoSizes[config.Size] {
		config.Size = defaultVideoSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = defaultPollTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &VideoClient{
		config: config,
		client: client,
		logger: logger,
	}
}

// VideoStatus is the upstream operation state.
type VideoStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *VideoStatus) errorMessage() string {
	if s.Error != nil && s.Error.Message != "" {
		return s.Error.Message
	}
	return "unknown error"
}

// Submit creates the video operation and returns its id.
func (c *VideoClient) Submit(ctx context.Context, prompt string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"model":   c.config.Model,
		"prompt":  prompt,
		"seconds": strconv.Itoa(c.config.Seconds),
		"size":    c.config.Size,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to build video request: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build video request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/videos", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("video create failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("video create failed: status %d: %s", resp.StatusCode, text)
	}

	var created VideoStatus
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode video create response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("video create response carried no operation id")
	}

	c.logger.Debug("Video operation submitted",
		slog.String("operation_id", created.ID),
		slog.String("model", c.config.Model),
	)

	return created.ID, nil
}

// Status fetches the operation state once.
func (c *VideoClient) Status(ctx context.Context, operationID string) (*VideoStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/videos/"+operationID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("video status failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video status failed: status %d: %s", resp.StatusCode, text)
	}

	var status VideoStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode video status response: %w", err)
	}
	return &status, nil
}

// Content downloads the finished video bytes.
func (c *VideoClient) Content(ctx context.Context, operationID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/videos/"+operationID+"/content", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("video content failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video content failed: status %d: %s", resp.StatusCode, text)
	}

	return io.ReadAll(resp.Body)
}

// Generate runs the full submit/poll/fetch cycle for one prompt. A poll
// deadline overrun surfaces as poll.ErrTimeout, distinct from an
// explicit upstream failure status.
func (c *VideoClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	operationID, err := c.Submit(ctx, prompt)
	if err != nil {
		return nil, err
	}

	err = poll.Until(ctx, c.config.PollInterval, c.config.PollTimeout, func(ctx context.Context) (bool, error) {
		status, err := c.Status(ctx, operationID)
		if err != nil {
			return false, err
		}
		switch status.Status {
		case videoStatusCompleted:
			return true, nil
		case videoStatusFailed:
			return false, fmt.Errorf("video job failed: %s", status.errorMessage())
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("video generation: %w", err)
	}

	return c.Content(ctx, operationID)
}
