package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageCreator struct {
	response openai.ImageResponse
	err      error
	lastReq  openai.ImageRequest
}

func (f *fakeImageCreator) CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
	f.lastReq = req
	return f.response, f.err
}

func TestImageGenerate_InlinePayload(t *testing.T) {
	raw := []byte("png-bytes")
	fake := &fakeImageCreator{
		response: openai.ImageResponse{
			Data: []openai.ImageResponseDataInner{
				{B64JSON: base64.StdEncoding.EncodeToString(raw)},
			},
		},
	}

	c := NewImageClient(fake, nil, ImageConfig{Model: "gpt-image-1", Size: "1024x1024"}, testLogger())

	data, contentType, err := c.Generate(context.Background(), "a product shot")
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Equal(t, "image/png", contentType)

	assert.Equal(t, "gpt-image-1", fake.lastReq.Model)
	assert.Equal(t, "a product shot", fake.lastReq.Prompt)
	assert.Equal(t, "1024x1024", fake.lastReq.Size)
	assert.Equal(t, 1, fake.lastReq.N)
}

func TestImageGenerate_URLPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp-bytes"))
	}))
	defer srv.Close()

	fake := &fakeImageCreator{
		response: openai.ImageResponse{
			Data: []openai.ImageResponseDataInner{{URL: srv.URL + "/img"}},
		},
	}

	c := NewImageClient(fake, srv.Client(), ImageConfig{Model: "gpt-image-1"}, testLogger())

	data, contentType, err := c.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, []byte("webp-bytes"), data)
	assert.Equal(t, "image/webp", contentType)
}

func TestImageGenerate_NoPayload(t *testing.T) {
	fake := &fakeImageCreator{
		response: openai.ImageResponse{
			Data: []openai.ImageResponseDataInner{{}},
		},
	}

	c := NewImageClient(fake, nil, ImageConfig{}, testLogger())

	_, _, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither inline data nor a URL")
}

func TestImageGenerate_EmptyData(t *testing.T) {
	fake := &fakeImageCreator{response: openai.ImageResponse{}}

	c := NewImageClient(fake, nil, ImageConfig{}, testLogger())

	_, _, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestImageGenerate_UpstreamError(t *testing.T) {
	fake := &fakeImageCreator{err: errors.New("quota exceeded")}

	c := NewImageClient(fake, nil, ImageConfig{}, testLogger())

	_, _, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewImageClient_SizeNormalization(t *testing.T) {
	c := NewImageClient(&fakeImageCreator{}, nil, ImageConfig{Size: "800x600"}, testLogger())
	assert.Equal(t, defaultImageSize, c.config.Size)

	kept := NewImageClient(&fakeImageCreator{}, nil, ImageConfig{Size: "1536x1024"}, testLogger())
	assert.Equal(t, "1536x1024", kept.config.Size)
}
