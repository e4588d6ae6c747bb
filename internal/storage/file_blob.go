package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/symphony/internal/common"
)

const defaultMaxKeys = 1000

// FileBlobStore implements BlobStore using the local filesystem.
// Keys are mapped to file paths under the base directory.
// Key format: "outputs/2024-06-30/investment.json" -> "{basePath}/outputs/2024-06-30/investment.json"
type FileBlobStore struct {
	basePath string
	logger   *common.Logger
}

// NewFileBlobStore creates a new file-based blob store over an existing directory.
func NewFileBlobStore(logger *common.Logger, config *FileBlobConfig) (*FileBlobStore, error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("file blob store base_path is required")
	}

	info, err := os.Stat(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open base directory %s: %w", config.BasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", config.BasePath)
	}

	fb := &FileBlobStore{
		basePath: config.BasePath,
		logger:   logger,
	}

	logger.Debug().Str("path", config.BasePath).Msg("FileBlobStore initialized")
	return fb, nil
}

// sanitizeKey converts a key to a safe relative filesystem path.
func (fb *FileBlobStore) sanitizeKey(key string) string {
	clean := filepath.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	if strings.Contains(clean, "..") {
		clean = strings.ReplaceAll(clean, "..", "__")
	}
	return clean
}

func (fb *FileBlobStore) keyToPath(key string) string {
	return filepath.Join(fb.basePath, fb.sanitizeKey(key))
}

// Get retrieves a blob by key.
func (fb *FileBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	path := fb.keyToPath(key)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to stat blob %s: %w", key, err)
	}
	if info.IsDir() {
		return nil, ErrBlobNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// listEntry is either a blob or a rolled-up common prefix.
type listEntry struct {
	key      string
	isPrefix bool
	meta     BlobMetadata
}

// List returns blobs matching the given options, in key order.
// The cursor is the last key (or common prefix) of the previous page.
func (fb *FileBlobStore) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	searchDir := fb.basePath
	prefix := opts.Prefix

	if prefix != "" {
		prefixDir := filepath.Dir(filepath.FromSlash(prefix))
		if strings.HasSuffix(prefix, "/") {
			prefixDir = filepath.FromSlash(strings.TrimSuffix(prefix, "/"))
		}
		if prefixDir != "." {
			searchDir = filepath.Join(fb.basePath, fb.sanitizeKey(filepath.ToSlash(prefixDir)))
		}
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}

	var entries []listEntry
	seen := make(map[string]bool)

	err := filepath.Walk(searchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".tmp-") {
			return nil
		}

		relPath, err := filepath.Rel(fb.basePath, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(relPath)

		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		if opts.Delimiter != "" {
			rest := key[len(prefix):]
			if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
				cp := prefix + rest[:idx+len(opts.Delimiter)]
				if !seen[cp] {
					seen[cp] = true
					entries = append(entries, listEntry{key: cp, isPrefix: true})
				}
				return nil
			}
		}

		entries = append(entries, listEntry{
			key: key,
			meta: BlobMetadata{
				Key:          key,
				Size:         info.Size(),
				LastModified: info.ModTime(),
			},
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	result := &ListResult{}
	count := 0
	for _, e := range entries {
		if opts.Cursor != "" && e.key <= opts.Cursor {
			continue
		}
		if count == maxKeys {
			result.Truncated = true
			break
		}
		if e.isPrefix {
			result.CommonPrefixes = append(result.CommonPrefixes, e.key)
		} else {
			result.Blobs = append(result.Blobs, e.meta)
		}
		result.NextCursor = e.key
		count++
	}
	if !result.Truncated {
		result.NextCursor = ""
	}

	return result, nil
}

// Close releases resources (no-op for file storage).
func (fb *FileBlobStore) Close() error {
	return nil
}
