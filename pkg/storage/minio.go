package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"kuchikomi/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	secure := cfg.S3UseSSL != "false"
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.AWSEndpoint, "http://"), "https://")
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("AWS_ENDPOINT is required for the minio storage driver")
	}

	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		Secure: secure,
		Region: cfg.AWSRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	protocol := "http"
	if secure {
		protocol = "https"
	}
	s := &MinioStore{
		client:  cl,
		bucket:  cfg.S3BucketName,
		baseURL: fmt.Sprintf("%s://%s/%s/", protocol, endpoint, cfg.S3BucketName),
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %s: %w", cfg.S3BucketName, err)
	}
	return s, nil
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to minio: %w", err)
	}
	return s.baseURL + key, nil
}

func (s *MinioStore) Delete(ctx context.Context, ref string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, keyFromRef(s.baseURL, ref), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file from minio: %w", err)
	}
	return nil
}
