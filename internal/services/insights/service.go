// Package insights loads research output documents from blob storage.
//
// Outputs are written by an external research pipeline as one folder per run
// under a common prefix, e.g. outputs/2024-06-30/investment.json. The newest
// run is the folder whose name sorts last as a plain string, so the producer
// must name folders in a lexicographically ordered scheme (ISO dates or
// zero-padded timestamps).
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/storage"
)

const (
	InvestmentFile = "investment.json"
	ThesisFile     = "thesis.json"
)

var (
	// ErrNoFolders is returned when the prefix holds no output folders.
	ErrNoFolders = errors.New("no output folders found")

	// ErrDocumentNotFound is returned when the latest folder lacks the requested file.
	ErrDocumentNotFound = errors.New("document not found in latest folder")
)

// ParseError is returned when a document exists but is not valid JSON.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Service implements interfaces.InsightsService
type Service struct {
	store  storage.BlobStore
	prefix string
	logger *common.Logger
}

// NewService creates an insights service reading folders under prefix.
func NewService(store storage.BlobStore, prefix string, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// listPrefix is the key prefix folders are listed under, with trailing delimiter.
func (s *Service) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

// LatestFolder lists every common prefix one level under the output prefix
// and returns the greatest folder name.
func (s *Service) LatestFolder(ctx context.Context) (string, error) {
	listPrefix := s.listPrefix()

	var latest string
	found := 0
	cursor := ""
	for {
		page, err := s.store.List(ctx, storage.ListOptions{
			Prefix:    listPrefix,
			Delimiter: "/",
			Cursor:    cursor,
		})
		if err != nil {
			return "", fmt.Errorf("failed to list output folders: %w", err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(cp, listPrefix), "/")
			if name == "" {
				continue
			}
			found++
			if name > latest {
				latest = name
			}
		}

		if !page.Truncated || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if found == 0 {
		return "", ErrNoFolders
	}

	s.logger.Debug().Str("folder", latest).Int("folders", found).Msg("Resolved latest output folder")
	return latest, nil
}

// GetInvestments loads investment.json from the latest folder.
func (s *Service) GetInvestments(ctx context.Context) (*interfaces.InsightsDocument, error) {
	return s.load(ctx, InvestmentFile)
}

// GetTheses loads thesis.json from the latest folder.
func (s *Service) GetTheses(ctx context.Context) (*interfaces.InsightsDocument, error) {
	return s.load(ctx, ThesisFile)
}

func (s *Service) load(ctx context.Context, file string) (*interfaces.InsightsDocument, error) {
	start := time.Now()

	folder, err := s.LatestFolder(ctx)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.prefix, folder, file)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if !json.Valid(data) {
		var probe any
		return nil, &ParseError{Key: key, Err: json.Unmarshal(data, &probe)}
	}

	s.logger.Info().
		Str("key", key).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded insights document")

	return &interfaces.InsightsDocument{
		Folder: folder,
		Key:    key,
		Raw:    json.RawMessage(data),
	}, nil
}

// Ensure Service implements InsightsService
var _ interfaces.InsightsService = (*Service)(nil)
