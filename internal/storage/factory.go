package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/symphony/internal/common"
)

// Backend type constants.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// NewBlobStore creates a blob store based on the configuration.
// Supported backends: "s3" (default), "file".
func NewBlobStore(ctx context.Context, logger *common.Logger, config common.StorageConfig) (BlobStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendS3
	}

	switch backend {
	case BackendFile:
		return NewFileBlobStore(logger, &FileBlobConfig{BasePath: config.File.BasePath})

	case BackendS3:
		return NewS3BlobStore(ctx, logger, &S3BlobConfig{
			Bucket:    config.S3.Bucket,
			Region:    config.S3.Region,
			Endpoint:  config.S3.Endpoint,
			AccessKey: config.S3.AccessKey,
			SecretKey: config.S3.SecretKey,
		})

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, s3)", backend)
	}
}
