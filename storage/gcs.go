package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS uploads to a public Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket missing")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, now: time.Now}, nil
}

func (g *GCS) Upload(ctx context.Context, dir, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := ObjectKey(dir, filename, contentType, g.now())
	if err != nil {
		return "", err
	}

	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		slog.Error("failed to copy upload to GCS", "key", key, "error", err)
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		slog.Error("failed to close GCS writer", "key", key, "error", err)
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	return g.PublicURL(key), nil
}

func (g *GCS) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}

func (g *GCS) Backend() string { return "gcs" }

func (g *GCS) Close() error {
	return g.client.Close()
}
