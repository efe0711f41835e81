// internal/app/system/storage/minio.go

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig carries the connection settings for an S3-compatible store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIO stores objects in an S3-compatible bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	public string
}

// NewMinIO connects to the store and ensures the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	public := fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	return &MinIO{client: client, bucket: cfg.Bucket, public: public}, nil
}

func (m *MinIO) Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (Object, error) {
	id := uuid.NewString() + "_" + filepath.Base(filename)

	info, err := m.client.PutObject(ctx, m.bucket, id, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object: %w", err)
	}

	return Object{ID: id, URL: m.public + "/" + url.PathEscape(id), Size: info.Size}, nil
}

func (m *MinIO) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrObjectNotFound
	}
	// RemoveObject does not report missing keys, which already matches
	// the idempotent contract.
	if err := m.client.RemoveObject(ctx, m.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
