package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the Supabase Storage REST API with the service-role key.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewClient(baseURL, serviceKey string, logger *zap.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(60 * time.Second).
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey)

	return &Client{
		http:    httpClient,
		baseURL: base,
		logger:  logger,
	}
}

// Upload stores data at bucket/path (upserting) and returns the public URL.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "max-age=3600").
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", bucket, path))
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s/%s: storage returned %s: %s", bucket, path, resp.Status(), resp.String())
	}

	c.logger.Debug("object uploaded",
		zap.String("bucket", bucket),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return c.PublicURL(bucket, path), nil
}

func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}

func (c *Client) Delete(ctx context.Context, bucket, path string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/storage/v1/object/%s/%s", bucket, path))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s/%s: storage returned %s: %s", bucket, path, resp.Status(), resp.String())
	}
	return nil
}
