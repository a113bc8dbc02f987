// Package storage holds the blob stores that keep uploaded post images.
package storage

import (
	"context"
	"fmt"
	"strings"

	"kuchikomi/pkg/config"
)

// BlobStore persists image payloads and hands back the public reference
// that is saved on the post row. Delete accepts that same reference.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageDriver {
	case "s3", "":
		return NewS3Client(cfg)
	case "minio":
		return NewMinioStore(ctx, cfg)
	case "local":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// keyFromRef strips a store base URL from a reference. A reference
// without the prefix is taken to be the key itself.
func keyFromRef(baseURL, ref string) string {
	return strings.TrimPrefix(strings.TrimPrefix(ref, baseURL), "/")
}
