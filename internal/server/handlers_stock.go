package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/symphony/internal/services/stock"
)

const (
	modeQuote   = "quote"
	modeHistory = "history"

	msgSymbolRequired = "Symbol is required"
	msgUpstreamFailed = "Failed to fetch data from Yahoo Finance"
)

// handleStock serves GET /api/stock/{quote|history}?symbol=...
// The symbol is checked before the mode.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, msgSymbolRequired)
		return
	}

	mode := PathParam(r, "/api/stock/", "")
	if r.URL.Path != "/api/stock/"+mode {
		mode = ""
	}

	switch mode {
	case modeQuote:
		quote, err := s.app.StockService.GetQuote(r.Context(), symbol)
		if err != nil {
			s.upstreamError(w, err, symbol, mode)
			return
		}
		WriteJSON(w, http.StatusOK, quote)

	case modeHistory:
		q := r.URL.Query()
		candles, err := s.app.StockService.GetHistory(r.Context(), symbol, q.Get("range"), q.Get("interval"))
		if err != nil {
			s.upstreamError(w, err, symbol, mode)
			return
		}
		WriteJSON(w, http.StatusOK, candles)

	default:
		WriteError(w, http.StatusBadRequest, "Invalid endpoint")
	}
}

// handleHistoryChart serves GET /api/charts/history as a PNG line chart.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	symbol := strings.TrimSpace(q.Get("symbol"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, msgSymbolRequired)
		return
	}

	candles, err := s.app.StockService.GetHistory(r.Context(), symbol, q.Get("range"), q.Get("interval"))
	if err != nil {
		s.upstreamError(w, err, symbol, "chart")
		return
	}

	png, err := stock.RenderHistoryChart(symbol, candles)
	if err != nil {
		if errors.Is(err, stock.ErrInsufficientHistory) {
			WriteError(w, http.StatusNotFound, "Not enough price history to chart")
			return
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Chart render failed")
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// upstreamError logs the cause and writes the generic upstream failure body.
func (s *Server) upstreamError(w http.ResponseWriter, err error, symbol, mode string) {
	s.logger.Error().
		Err(err).
		Str("symbol", symbol).
		Str("mode", mode).
		Msg("Error fetching data from Yahoo Finance")
	WriteError(w, http.StatusInternalServerError, msgUpstreamFailed)
}
