package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/symphony/internal/common"
)

func TestHandleHealth(t *testing.T) {
	rec := doGet(t, newTestServer(nil, nil), "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleVersion(t *testing.T) {
	rec := doGet(t, newTestServer(nil, nil), "/api/version")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.GetVersion(), body["version"])
	assert.Contains(t, body, "build")
	assert.Contains(t, body, "commit")
}

func TestUnknownAPIRoute(t *testing.T) {
	rec := doGet(t, newTestServer(nil, nil), "/api/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestMCPRouteAbsentWithoutServer(t *testing.T) {
	srv := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
