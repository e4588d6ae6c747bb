package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/models"
	"github.com/bobmcallan/symphony/internal/services/insights"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Symphony MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetStockQuote implements the get_stock_quote tool
func handleGetStockQuote(stockService interfaces.StockService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		symbol = strings.ToUpper(strings.TrimSpace(symbol))

		quote, err := stockService.GetQuote(ctx, symbol)
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("Quote tool failed")
			return errorResult(fmt.Sprintf("Quote error: %v", err)), nil
		}

		return textResult(formatQuote(symbol, quote)), nil
	}
}

// handleGetStockHistory implements the get_stock_history tool
func handleGetStockHistory(stockService interfaces.StockService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || strings.TrimSpace(symbol) == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		symbol = strings.ToUpper(strings.TrimSpace(symbol))

		rng := request.GetString("range", "")
		interval := request.GetString("interval", "")
		bars := request.GetInt("bars", 10)
		if bars <= 0 {
			bars = 10
		}
		if bars > 60 {
			bars = 60
		}

		candles, err := stockService.GetHistory(ctx, symbol, rng, interval)
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("History tool failed")
			return errorResult(fmt.Sprintf("History error: %v", err)), nil
		}

		return textResult(formatHistory(symbol, candles, bars)), nil
	}
}

// handleGetInvestmentInsights implements the get_investment_insights tool
func handleGetInvestmentInsights(insightsService interfaces.InsightsService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc, companies, err := loadCompanies(ctx, insightsService)
		if err != nil {
			logger.Error().Err(err).Msg("Insights tool failed")
			return errorResult(insightsErrorMessage(err)), nil
		}

		return textResult(formatInsights(doc.Folder, companies)), nil
	}
}

// handleGetCompany implements the get_company tool
func handleGetCompany(insightsService interfaces.InsightsService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		_, companies, err := loadCompanies(ctx, insightsService)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Company tool failed")
			return errorResult(insightsErrorMessage(err)), nil
		}

		var company *models.Company
		for i := range companies {
			if models.SameTicker(companies[i].Ticker, ticker) {
				company = &companies[i]
				break
			}
		}
		if company == nil {
			return errorResult(fmt.Sprintf("Company %s is not covered in the latest research run", strings.ToUpper(ticker))), nil
		}

		// The narrative thesis is optional; a missing thesis.json is not an error here.
		var thesis *models.Thesis
		if doc, err := insightsService.GetTheses(ctx); err == nil {
			var theses models.ThesisDocument
			if err := json.Unmarshal(doc.Raw, &theses); err == nil {
				for i := range theses.Investments {
					if models.SameTicker(theses.Investments[i].Ticker, company.Ticker) {
						thesis = &theses.Investments[i]
						break
					}
				}
			}
		} else if !errors.Is(err, insights.ErrDocumentNotFound) {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("Thesis lookup failed")
		}

		return textResult(formatCompany(company, thesis)), nil
	}
}

func loadCompanies(ctx context.Context, insightsService interfaces.InsightsService) (*interfaces.InsightsDocument, []models.Company, error) {
	doc, err := insightsService.GetInvestments(ctx)
	if err != nil {
		return nil, nil, err
	}
	var parsed models.InvestmentDocument
	if err := json.Unmarshal(doc.Raw, &parsed); err != nil {
		return nil, nil, &insights.ParseError{Key: doc.Key, Err: err}
	}
	return doc, parsed.Companies, nil
}

func insightsErrorMessage(err error) string {
	var parseErr *insights.ParseError
	switch {
	case errors.Is(err, insights.ErrNoFolders):
		return "No research output folders found"
	case errors.Is(err, insights.ErrDocumentNotFound):
		return "investment.json not found in latest folder"
	case errors.As(err, &parseErr):
		return "Error parsing investment.json"
	default:
		return fmt.Sprintf("Insights error: %v", err)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
