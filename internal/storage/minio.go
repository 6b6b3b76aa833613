package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/heritage-nest/server/internal/config"
	"github.com/heritage-nest/server/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore keeps listing photos in a MinIO bucket.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

// NewPhotoStore connects to MinIO and makes sure the photo bucket exists.
func NewPhotoStore(cfg config.Config) (*PhotoStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		logger.Warn("failed to check bucket existence", map[string]any{"bucket": cfg.MinioBucket, "error": err.Error()})
	} else if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			logger.Warn("failed to create bucket", map[string]any{"bucket": cfg.MinioBucket, "error": err.Error()})
		} else {
			logger.Info("created bucket", map[string]any{"bucket": cfg.MinioBucket})
		}
	}

	fmt.Println("✅ Connected to MinIO")
	return &PhotoStore{client: client, bucket: cfg.MinioBucket}, nil
}

func (s *PhotoStore) Put(ctx context.Context, object string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, object, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", object, err)
	}
	return nil
}

func (s *PhotoStore) PresignedURL(ctx context.Context, object string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, object, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", object, err)
	}
	return url.String(), nil
}
