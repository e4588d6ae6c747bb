package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/models"
)

// doerFunc adapts a function to HTTPDoer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStore_InitialState(t *testing.T) {
	store := NewCompanyStore(http.DefaultClient, "http://unused", common.NewSilentLogger())

	state := store.Snapshot()
	assert.NotNil(t, state.Records)
	assert.Empty(t, state.Records)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Error)
	assert.True(t, store.NeedsFetch())
}

func TestStore_FetchSuccess(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"companies":[{"ticker":"ACME","name":"Acme Corp"},{"ticker":"XYZ","name":"XYZ Ltd"}]}`))
	}))
	defer srv.Close()

	store := NewCompanyStore(srv.Client(), srv.URL, common.NewSilentLogger())
	store.Fetch(t.Context())

	state := store.Snapshot()
	assert.Equal(t, "/api/insights/investment", gotPath)
	require.Len(t, state.Records, 2)
	assert.Equal(t, "ACME", state.Records[0].Ticker)
	assert.Equal(t, "XYZ Ltd", state.Records[1].Name)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Error)
	assert.False(t, state.UpdatedAt.IsZero())
	assert.False(t, store.NeedsFetch())
}

func TestStore_FetchThesis(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"investments":[{"ticker":"ACME","thesis":"Moat widening."}]}`)

	store := NewThesisStore(srv.Client(), srv.URL, common.NewSilentLogger())
	store.Fetch(t.Context())

	state := store.Snapshot()
	require.Len(t, state.Records, 1)
	assert.Equal(t, "Moat widening.", state.Records[0].Thesis)
}

func TestStore_FetchErrorsKeepRecords(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http 500", http.StatusInternalServerError, `{"error":"Internal Server Error"}`, "HTTP error! status: 500"},
		{"http 404", http.StatusNotFound, `{"message":"No output folders found"}`, "HTTP error! status: 404"},
		{"missing key", http.StatusOK, `{}`, MsgInvalidFormat},
		{"null key", http.StatusOK, `{"companies":null}`, MsgInvalidFormat},
		{"wrong key", http.StatusOK, `{"investments":[]}`, MsgInvalidFormat},
		{"not an object", http.StatusOK, `[1,2,3]`, MsgInvalidFormat},
		{"records not an array", http.StatusOK, `{"companies":"nope"}`, MsgInvalidFormat},
		{"invalid json", http.StatusOK, `{"companies":[`, "Failed to fetch investment data."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			doer := doerFunc(func(req *http.Request) (*http.Response, error) {
				if calls.Add(1) == 1 {
					return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"OLD"}]}`), nil
				}
				return jsonResponse(tt.status, tt.body), nil
			})

			store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())
			store.Fetch(t.Context())
			store.Fetch(t.Context())

			state := store.Snapshot()
			require.NotNil(t, state.Error)
			assert.Equal(t, tt.wantErr, *state.Error)
			assert.False(t, state.Loading)
			require.Len(t, state.Records, 1, "records must be retained")
			assert.Equal(t, "OLD", state.Records[0].Ticker)
		})
	}
}

func TestStore_TransportFailure(t *testing.T) {
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	companies := NewCompanyStore(doer, "http://api", common.NewSilentLogger())
	companies.Fetch(t.Context())
	theses := NewThesisStore(doer, "http://api", common.NewSilentLogger())
	theses.Fetch(t.Context())

	require.NotNil(t, companies.Snapshot().Error)
	assert.Equal(t, "Failed to fetch investment data.", *companies.Snapshot().Error)
	require.NotNil(t, theses.Snapshot().Error)
	assert.Equal(t, "Failed to fetch thesis data.", *theses.Snapshot().Error)
	assert.False(t, companies.Snapshot().Loading)
}

func TestStore_ErrorClearedOnNextSuccess(t *testing.T) {
	var calls atomic.Int32
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return jsonResponse(http.StatusBadGateway, ``), nil
		}
		return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"ACME"}]}`), nil
	})

	store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())
	store.Fetch(t.Context())
	require.NotNil(t, store.Snapshot().Error)
	assert.False(t, store.NeedsFetch(), "an error blocks automatic refetch")

	store.Fetch(t.Context())
	state := store.Snapshot()
	assert.Nil(t, state.Error)
	assert.Len(t, state.Records, 1)
}

func TestStore_FetchIdempotent(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"companies":[{"ticker":"ACME"}]}`)

	once := NewCompanyStore(srv.Client(), srv.URL, common.NewSilentLogger())
	once.Fetch(t.Context())

	twice := NewCompanyStore(srv.Client(), srv.URL, common.NewSilentLogger())
	twice.Fetch(t.Context())
	twice.Fetch(t.Context())

	a, b := once.Snapshot(), twice.Snapshot()
	assert.Equal(t, a.Records, b.Records)
	assert.Equal(t, a.Loading, b.Loading)
	assert.Equal(t, a.Error, b.Error)
}

// An older request that resolves after a newer one must not overwrite it.
func TestStore_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	var calls atomic.Int32

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-release
			return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"STALE"}]}`), nil
		}
		return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"FRESH"}]}`), nil
	})

	store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Fetch(context.Background())
	}()
	<-firstStarted

	store.Fetch(t.Context())
	state := store.Snapshot()
	require.Len(t, state.Records, 1)
	assert.Equal(t, "FRESH", state.Records[0].Ticker)
	assert.False(t, state.Loading)

	close(release)
	wg.Wait()

	state = store.Snapshot()
	require.Len(t, state.Records, 1)
	assert.Equal(t, "FRESH", state.Records[0].Ticker, "stale response must be discarded")
	assert.Nil(t, state.Error)
}

// A stale failure must not set an error over a fresher success either.
func TestStore_StaleErrorDiscarded(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	var calls atomic.Int32

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-release
			return jsonResponse(http.StatusInternalServerError, ``), nil
		}
		return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"FRESH"}]}`), nil
	})

	store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())

	done := make(chan struct{})
	go func() {
		store.Fetch(context.Background())
		close(done)
	}()
	<-firstStarted
	store.Fetch(t.Context())
	close(release)
	<-done

	assert.Nil(t, store.Snapshot().Error)
}

func TestStore_LoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		close(started)
		<-release
		return jsonResponse(http.StatusOK, `{"companies":[]}`), nil
	})

	store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())
	done := make(chan struct{})
	go func() {
		store.Fetch(context.Background())
		close(done)
	}()
	<-started

	assert.True(t, store.Snapshot().Loading)
	assert.False(t, store.NeedsFetch())

	close(release)
	<-done
	assert.False(t, store.Snapshot().Loading)
}

func TestStore_EnsureLoadedOnce(t *testing.T) {
	var calls atomic.Int32
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"ACME"}]}`), nil
	})

	store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())
	assert.True(t, store.EnsureLoaded(t.Context()))
	assert.False(t, store.EnsureLoaded(t.Context()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_EnsureLoadedConcurrent(t *testing.T) {
	var calls atomic.Int32
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return jsonResponse(http.StatusOK, `{"companies":[{"ticker":"ACME"}]}`), nil
	})

	store := NewCompanyStore(doer, "http://api", common.NewSilentLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.EnsureLoaded(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, store.Snapshot().Records, 1)
}

func TestStore_CancelledContext(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"companies":[]}`)
	store := NewCompanyStore(srv.Client(), srv.URL, common.NewSilentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store.Fetch(ctx)

	state := store.Snapshot()
	require.NotNil(t, state.Error)
	assert.Equal(t, "Failed to fetch investment data.", *state.Error)
	assert.False(t, state.Loading)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"companies":[{"ticker":"ACME"}]}`)
	store := NewCompanyStore(srv.Client(), srv.URL, common.NewSilentLogger())
	store.Fetch(t.Context())

	snap := store.Snapshot()
	snap.Records[0] = models.Company{Ticker: "MUTATED"}

	assert.Equal(t, "ACME", store.Snapshot().Records[0].Ticker)
}
