package mcp

import (
	"encoding/json"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/models"
)

// listTools calls tools/list on the MCPServer and returns the tools.
func listTools(t *testing.T, s *mcpserver.MCPServer) []mcpgo.Tool {
	t.Helper()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var toolsResult mcpgo.ListToolsResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolsResult))
	return toolsResult.Tools
}

// callTool calls a tool on the MCPServer and returns the result.
func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcpgo.CallToolResult {
	t.Helper()

	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(params) + `}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var toolResult mcpgo.CallToolResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolResult))
	return &toolResult
}

// extractText extracts the text field from an MCP content block.
func extractText(t *testing.T, content mcpgo.Content) string {
	t.Helper()
	contentJSON, _ := json.Marshal(content)
	var tc struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(contentJSON, &tc))
	return tc.Text
}

func TestNewServer_RegistersTools(t *testing.T) {
	s := NewServer(&mockStockService{}, &mockInsightsService{}, common.NewSilentLogger())

	names := map[string]bool{}
	for _, tool := range listTools(t, s) {
		names[tool.Name] = true
	}
	for _, want := range []string{"get_version", "get_stock_quote", "get_stock_history", "get_investment_insights", "get_company"} {
		assert.True(t, names[want], "tool %s not registered", want)
	}
}

func TestNewServer_CallQuoteTool(t *testing.T) {
	stock := &mockStockService{quote: &models.StockQuote{RegularMarketPrice: 42, RegularMarketPreviousClose: 40, RegularMarketChange: 2, RegularMarketChangePercent: 5}}
	s := NewServer(stock, &mockInsightsService{}, common.NewSilentLogger())

	result := callTool(t, s, "get_stock_quote", map[string]interface{}{"symbol": "XYZ"})

	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	assert.Contains(t, extractText(t, result.Content[0]), "**Price:** 42.00")
}
