package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps attachments in a MinIO (or any S3-compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    *slog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

// NewMinioStore builds the client and tries to ensure the bucket exists.
// Bucket bootstrap is best effort: if MinIO is not up yet the store keeps
// running and retries on the first Put.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, log *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinioStore{client: client, bucket: bucket, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.ensureBucket(ctx); err != nil {
		log.Error("MinIO not ready during startup; will retry on demand",
			"endpoint", endpoint, "bucket", bucket, "error", err)
	}
	return s, nil
}

var _ ObjectStore = (*MinioStore)(nil)

func (s *MinioStore) Put(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := uuid.NewString() + filepath.Ext(filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return key, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.bucketEnsured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.log.Info("created attachment bucket", "bucket", s.bucket)
	}
	s.bucketEnsured = true
	return nil
}
