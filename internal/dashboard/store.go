// Package dashboard holds the client-side state behind the dashboard views:
// the company and thesis stores and a typed client for the quote proxy.
//
// Stores are plain values built once by New and handed to whatever renders
// them. Each Fetch is tagged with a request token and only the most recently
// issued request may write results, so an overlapping refresh can never be
// overwritten by a slower, older response.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bobmcallan/symphony/internal/common"
)

// MsgInvalidFormat is the store error when the payload lacks its records key.
const MsgInvalidFormat = "Invalid data format received from API."

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// HTTPDoer is the HTTP capability the stores need. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// State is a point-in-time copy of a store.
type State[T any] struct {
	Records   []T
	Loading   bool
	Error     *string
	UpdatedAt time.Time
}

// Store holds one collection fetched from a same-origin endpoint.
type Store[T any] struct {
	client HTTPDoer
	url    string
	key    string
	kind   string
	logger *common.Logger

	mu        sync.Mutex
	records   []T
	loading   bool
	err       *string
	updatedAt time.Time
	issued    uint64
}

// NewStore creates a store reading payload[key] from baseURL+path.
// kind names the data in failure messages ("investment", "thesis").
func NewStore[T any](client HTTPDoer, baseURL, path, key, kind string, logger *common.Logger) *Store[T] {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store[T]{
		client:  client,
		url:     baseURL + path,
		key:     key,
		kind:    kind,
		logger:  logger,
		records: []T{},
	}
}

// Fetch issues one GET and applies the outcome if no newer Fetch has started
// in the meantime. It always proceeds, even while another fetch is in flight.
func (s *Store[T]) Fetch(ctx context.Context) {
	s.mu.Lock()
	token := s.begin()
	s.mu.Unlock()

	s.run(ctx, token)
}

// NeedsFetch reports whether the store is empty, idle and error-free.
func (s *Store[T]) NeedsFetch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsFetch()
}

// EnsureLoaded fetches only when NeedsFetch holds. The check and the start of
// the fetch happen under one lock, so concurrent callers trigger one request.
// It reports whether a fetch was issued.
func (s *Store[T]) EnsureLoaded(ctx context.Context) bool {
	s.mu.Lock()
	if !s.needsFetch() {
		s.mu.Unlock()
		return false
	}
	token := s.begin()
	s.mu.Unlock()

	s.run(ctx, token)
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]T, len(s.records))
	copy(records, s.records)

	var errCopy *string
	if s.err != nil {
		e := *s.err
		errCopy = &e
	}

	return State[T]{
		Records:   records,
		Loading:   s.loading,
		Error:     errCopy,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Store[T]) needsFetch() bool {
	return len(s.records) == 0 && !s.loading && s.err == nil
}

// begin must be called with mu held.
func (s *Store[T]) begin() uint64 {
	s.issued++
	s.loading = true
	s.err = nil
	return s.issued
}

func (s *Store[T]) run(ctx context.Context, token uint64) {
	records, errMsg, cause := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.issued {
		s.logger.Debug().
			Str("url", s.url).
			Int("token", int(token)).
			Int("latest", int(s.issued)).
			Msg("Discarding stale response")
		return
	}

	s.loading = false
	if errMsg != "" {
		s.err = &errMsg
		s.logger.Warn().Err(cause).Str("url", s.url).Str("error", errMsg).Msg("Store fetch failed")
		return
	}

	s.records = records
	s.err = nil
	s.updatedAt = time.Now()
	s.logger.Debug().Str("url", s.url).Int("records", len(records)).Msg("Store updated")
}

// load performs the request without touching store state. On failure it
// returns the user-facing message and the underlying cause.
func (s *Store[T]) load(ctx context.Context) ([]T, string, error) {
	failed := fmt.Sprintf("Failed to fetch %s data.", s.kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, failed, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, failed, fmt.Errorf("failed to reach %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		msg := fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		return nil, msg, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, failed, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, failed, fmt.Errorf("response is not valid JSON")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, MsgInvalidFormat, fmt.Errorf("response is not a JSON object: %w", err)
	}

	raw, ok := payload[s.key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, MsgInvalidFormat, fmt.Errorf("response has no %q key", s.key)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, MsgInvalidFormat, fmt.Errorf("failed to decode %q: %w", s.key, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, "", nil
}
