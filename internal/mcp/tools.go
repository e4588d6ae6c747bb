package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Symphony server version and status. Use this to verify connectivity."),
	)
}

// createGetStockQuoteTool returns the get_stock_quote tool definition
func createGetStockQuoteTool() mcp.Tool {
	return mcp.NewTool("get_stock_quote",
		mcp.WithDescription("Get the latest price, day range and change versus previous close for a stock symbol."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol as listed on Yahoo Finance (e.g., 'AAPL', 'BHP.AX', '^GSPC')"),
		),
	)
}

// createGetStockHistoryTool returns the get_stock_history tool definition
func createGetStockHistoryTool() mcp.Tool {
	return mcp.NewTool("get_stock_history",
		mcp.WithDescription("Get OHLCV price history for a stock symbol with a summary of the period."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol as listed on Yahoo Finance"),
		),
		mcp.WithString("range",
			mcp.Description("History range: 1d, 5d, 7d, 1mo, 3mo, 6mo, 1y, 5y, max (default: 3mo)"),
		),
		mcp.WithString("interval",
			mcp.Description("Bar interval: 1m, 5m, 1h, 1d, 1wk, 1mo (default: 1d)"),
		),
		mcp.WithNumber("bars",
			mcp.Description("Number of most recent bars to list (default: 10, max: 60)"),
		),
	)
}

// createGetInvestmentInsightsTool returns the get_investment_insights tool definition
func createGetInvestmentInsightsTool() mcp.Tool {
	return mcp.NewTool("get_investment_insights",
		mcp.WithDescription("List every covered company from the latest research run with its recommendation, conviction and expected return."),
	)
}

// createGetCompanyTool returns the get_company tool definition
func createGetCompanyTool() mcp.Tool {
	return mcp.NewTool("get_company",
		mcp.WithDescription("Get the full research view for one company: thesis drivers, risks, monitoring triggers, metrics and the narrative thesis if one exists."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker of the covered company (e.g., 'AAPL')"),
		),
	)
}
