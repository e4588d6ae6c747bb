// Package storage provides read access to insight documents in blob storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// Common errors for blob storage operations.
var (
	ErrBlobNotFound = errors.New("blob not found")
)

// BlobMetadata contains metadata about a stored blob.
type BlobMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
}

// ListOptions configures blob listing behavior.
type ListOptions struct {
	Prefix    string // Only return keys with this prefix
	Delimiter string // Group keys by delimiter (e.g., "/" for directories)
	MaxKeys   int    // Maximum number of entries to return (0 = backend default)
	Cursor    string // Pagination cursor from previous ListResult
}

// ListResult contains the results of a list operation.
// With a Delimiter set, keys that contain the delimiter after Prefix are
// rolled up into CommonPrefixes (each ending in the delimiter) instead of Blobs.
type ListResult struct {
	Blobs          []BlobMetadata `json:"blobs"`
	CommonPrefixes []string       `json:"common_prefixes,omitempty"`
	NextCursor     string         `json:"next_cursor,omitempty"` // Empty if no more results
	Truncated      bool           `json:"truncated"`             // True if more results available
}

// BlobStore is a read-only, provider-agnostic view of blob storage.
// Implementations: FileBlobStore (local), S3BlobStore (AWS and S3-compatible).
type BlobStore interface {
	// Get retrieves a blob by key. Returns ErrBlobNotFound if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns one page of blobs matching the given options.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Close releases any resources held by the store.
	Close() error
}

// FileBlobConfig holds file-based blob store configuration.
type FileBlobConfig struct {
	BasePath string `toml:"base_path"`
}

// S3BlobConfig holds AWS S3 configuration.
type S3BlobConfig struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"` // Custom endpoint for S3-compatible stores (MinIO, R2)
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}
