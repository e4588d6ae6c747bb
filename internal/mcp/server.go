// Package mcp exposes stock and insights services as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
)

// NewServer builds an MCP server with every Symphony tool registered.
func NewServer(stockService interfaces.StockService, insightsService interfaces.InsightsService, logger *common.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"symphony",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetStockQuoteTool(), handleGetStockQuote(stockService, logger))
	s.AddTool(createGetStockHistoryTool(), handleGetStockHistory(stockService, logger))
	s.AddTool(createGetInvestmentInsightsTool(), handleGetInvestmentInsights(insightsService, logger))
	s.AddTool(createGetCompanyTool(), handleGetCompany(insightsService, logger))

	return s
}
