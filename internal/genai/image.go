package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultImageSize        = "1024x1024"
	defaultImageContentType = "image/png"
)

var allowedImageSizes = map[string]bool{
	"1024x1024": true,
	"1024x1536": true,
	"1536x1024": true,
}

// ImageCreator is the slice of the OpenAI client the image generator
// needs.
type ImageCreator interface {
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

// ImageConfig configures the image generation client. A Size outside the
// allow-list is replaced by the default.
type ImageConfig struct {
	Model string
	Size  string
}

// ImageClient produces one image per call. The upstream may answer with
// inline base64 bytes or with a URL; both forms resolve to raw bytes
// before returning.
type ImageClient struct {
	client     ImageCreator
	downloader *http.Client
	config     ImageConfig
	logger     *slog.Logger
}

// NewImageClient creates an ImageClient. A nil downloader gets a default
// with a timeout.
func NewImageClient(client ImageCreator, downloader *http.Client, config ImageConfig, logger *slog.Logger) *ImageClient {
	if !allowedImageSizes[config.Size] {
		config.Size = defaultImageSize
	}
	if downloader == nil {
		downloader = &http.Client{Timeout: 2 * time.Minute}
	}
	return &ImageClient{
		client:     client,
		downloader: downloader,
		config:     config,
		logger:     logger,
	}
}

// Generate requests one image and returns its bytes and content type.
// Missing payload in both the inline and URL forms is a hard failure.
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Size:   c.config.Size,
		N:      1,
	})
	if err != nil {
		return nil, "", fmt.Errorf("image create failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, "", fmt.Errorf("image generation returned no data")
	}

	item := resp.Data[0]

	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode inline image payload: %w", err)
		}
		return data, defaultImageContentType, nil
	}

	if item.URL != "" {
		return c.download(ctx, item.URL)
	}

	return nil, "", fmt.Errorf("image generation returned neither inline data nor a URL")
}

func (c *ImageClient) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.downloader.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download generated image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download generated image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read generated image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageContentType
	}

	c.logger.Debug("Generated image downloaded",
		slog.Int("size", len(data)),
		slog.String("content_type", contentType),
	)

	return data, contentType, nil
}
