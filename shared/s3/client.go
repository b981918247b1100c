package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3 connection and bucket configuration
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	// (MinIO, R2). Empty means real AWS.
	Endpoint string
	// PublicBaseURL is prepended to object keys to form public URLs
	// (CDN or bucket website endpoint).
	PublicBaseURL string
}

// Client wraps the AWS S3 client for object uploads and signed reads
type Client struct {
	client        *awss3.Client
	presignClient *awss3.PresignClient
	config        *Config
	logger        *slog.Logger
}

// NewClient creates a new S3 client with static credentials
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = &config.Endpoint
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 client initialized",
		slog.String("region", config.Region),
		slog.String("bucket", config.Bucket),
	)

	return &Client{
		client:        client,
		presignClient: awss3.NewPresignClient(client),
		config:        config,
		logger:        logger,
	}, nil
}

// Put uploads an object and returns its public URL
func (c *Client) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      &c.config.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	c.logger.Debug("Object uploaded",
		slog.String("key", key),
		slog.Int("size", len(body)),
		slog.String("content_type", contentType),
	)

	return c.PublicURL(key), nil
}

// SignedURL returns a presigned GET URL for an object whose canonical
// reference is a private key
func (c *Client) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := c.presignClient.PresignGetObject(ctx,
		&awss3.GetObjectInput{
			Bucket: &c.config.Bucket,
			Key:    &key,
		},
		awss3.WithPresignExpires(ttl),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}

	return req.URL, nil
}

// PublicURL joins the configured public base URL with a key
func (c *Client) PublicURL(key string) string {
	return strings.TrimRight(c.config.PublicBaseURL, "/") + "/" + key
}
