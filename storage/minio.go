package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	Region     string
	PublicBase string // defaults to the endpoint URL
}

// MinIO uploads to an S3 compatible bucket with anonymous read access.
type MinIO struct {
	client     *minio.Client
	bucket     string
	publicBase string
	now        func() time.Time
}

// NewMinIO creates the client and makes sure the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	base := cfg.PublicBase
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}

	m := &MinIO{client: mc, bucket: cfg.Bucket, publicBase: strings.TrimSuffix(base, "/"), now: time.Now}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		exist, xerr := mc.BucketExists(ctx, m.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return m, nil
}

func (m *MinIO) Upload(ctx context.Context, dir, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := ObjectKey(dir, filename, contentType, m.now())
	if err != nil {
		return "", err
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return m.PublicURL(key), nil
}

func (m *MinIO) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.publicBase, m.bucket, key)
}

func (m *MinIO) Backend() string { return "minio" }
