package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/symphony/internal/app"
	"github.com/bobmcallan/symphony/internal/server"
)

const chartFixture = `{"chart":{"result":[{"meta":{"symbol":"ACME","regularMarketPrice":110,"previousClose":100,"regularMarketDayHigh":111},"timestamp":[1717200000,1717286400],"indicators":{"quote":[{"close":[100,110],"high":[101,111],"low":[99,105],"open":[100,106],"volume":[1000,1200]}]}}],"error":null}}`

// testServer creates an httptest.Server with the full symphony-server handler,
// reading insights from a temp directory and quotes from a fake chart API.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartFixture))
	}))
	t.Cleanup(upstream.Close)

	t.Setenv("SYMPHONY_STORAGE_BACKEND", "")
	t.Setenv("SYMPHONY_STORAGE_PATH", "")

	configPath := writeTestConfig(t, upstream.URL)
	a, err := app.NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(a.Close)

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, dest interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

// TestHealthEndpoint verifies GET /api/health returns 200 with {"status":"ok"}.
func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	var body map[string]string
	if status := getJSON(t, ts.URL+"/api/health", &body); status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status=ok, got %q", body["status"])
	}
}

// TestHealthEndpoint_MethodNotAllowed verifies POST to health returns 405.
func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST /api/health, got %d", resp.StatusCode)
	}
}

// TestQuoteEndpoint verifies the quote is reshaped with derived change fields.
func TestQuoteEndpoint(t *testing.T) {
	ts := testServer(t)

	var body map[string]float64
	if status := getJSON(t, ts.URL+"/api/stock/quote?symbol=ACME", &body); status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if body["regularMarketChange"] != 10 {
		t.Errorf("Expected change 10, got %v", body["regularMarketChange"])
	}
	if body["regularMarketChangePercent"] != 10 {
		t.Errorf("Expected change percent 10, got %v", body["regularMarketChangePercent"])
	}
}

// TestHistoryEndpoint verifies history arrays are index-aligned.
func TestHistoryEndpoint(t *testing.T) {
	ts := testServer(t)

	var body map[string][]interface{}
	if status := getJSON(t, ts.URL+"/api/stock/history?symbol=ACME", &body); status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	n := len(body["timestamp"])
	for _, key := range []string{"close", "high", "low", "open", "volume"} {
		if len(body[key]) != n {
			t.Errorf("Expected %s to have %d entries, got %d", key, n, len(body[key]))
		}
	}
}

// TestInvestmentEndpoint verifies the newest folder's document is served.
func TestInvestmentEndpoint(t *testing.T) {
	ts := testServer(t)

	var body struct {
		Companies []struct {
			Ticker string `json:"ticker"`
		} `json:"companies"`
	}
	if status := getJSON(t, ts.URL+"/api/insights/investment", &body); status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if len(body.Companies) != 1 || body.Companies[0].Ticker != "NEW" {
		t.Errorf("Expected companies from 2024-02-01, got %+v", body.Companies)
	}
}

// TestThesisEndpoint_Missing verifies a folder without thesis.json yields 404.
func TestThesisEndpoint_Missing(t *testing.T) {
	ts := testServer(t)

	var body map[string]string
	if status := getJSON(t, ts.URL+"/api/insights/thesis", &body); status != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", status)
	}
	if body["error"] != "thesis.json not found in latest folder" {
		t.Errorf("Unexpected error body: %v", body)
	}
}

// TestMCPEndpoint verifies the tool list is served over streamable HTTP.
func TestMCPEndpoint(t *testing.T) {
	ts := testServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /mcp failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "get_stock_quote") {
		t.Errorf("Expected get_stock_quote in tool list, got: %s", data)
	}
}

// --- test helpers ---

func writeTestConfig(t *testing.T, chartURL string) string {
	t.Helper()
	dir := t.TempDir()

	dataDir := filepath.Join(dir, "data")
	for folder, doc := range map[string]string{
		"2023-12-31": `{"companies":[{"ticker":"OLDEST"}]}`,
		"2024-01-15": `{"companies":[{"ticker":"OLD"}]}`,
		"2024-02-01": `{"companies":[{"ticker":"NEW"}]}`,
	} {
		folderPath := filepath.Join(dataDir, "outputs", folder)
		if err := os.MkdirAll(folderPath, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", folderPath, err)
		}
		if err := os.WriteFile(filepath.Join(folderPath, "investment.json"), []byte(doc), 0644); err != nil {
			t.Fatalf("Failed to write investment.json: %v", err)
		}
	}

	config := `
[storage]
backend = "file"
prefix = "outputs"

[storage.file]
base_path = "` + filepath.ToSlash(dataDir) + `"

[clients.yahoo]
base_url = "` + chartURL + `"
timeout = "5s"

[logging]
level = "error"
outputs = ["console"]
file_path = "` + filepath.ToSlash(filepath.Join(dir, "logs", "symphony.log")) + `"
`
	configPath := filepath.Join(dir, "symphony.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
