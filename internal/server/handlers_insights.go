package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/services/insights"
)

// handleInsightsInvestment serves investment.json from the latest output folder.
func (s *Server) handleInsightsInvestment(w http.ResponseWriter, r *http.Request) {
	s.serveInsights(w, r, insights.InvestmentFile, s.app.InsightsService.GetInvestments)
}

// handleInsightsThesis serves thesis.json from the latest output folder.
func (s *Server) handleInsightsThesis(w http.ResponseWriter, r *http.Request) {
	s.serveInsights(w, r, insights.ThesisFile, s.app.InsightsService.GetTheses)
}

func (s *Server) serveInsights(w http.ResponseWriter, r *http.Request, file string,
	load func(context.Context) (*interfaces.InsightsDocument, error)) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	doc, err := load(r.Context())
	if err != nil {
		var parseErr *insights.ParseError
		switch {
		case errors.Is(err, insights.ErrNoFolders):
			WriteMessage(w, http.StatusNotFound, "No output folders found")
		case errors.Is(err, insights.ErrDocumentNotFound):
			WriteError(w, http.StatusNotFound, file+" not found in latest folder")
		case errors.As(err, &parseErr):
			s.logger.Error().Err(err).Str("key", parseErr.Key).Msg("Stored insights document is not valid JSON")
			WriteError(w, http.StatusInternalServerError, "Error parsing "+file)
		default:
			s.logger.Error().Err(err).Str("file", file).Msg("Failed to load insights document")
			WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	s.logger.Debug().
		Str("folder", doc.Folder).
		Str("key", doc.Key).
		Int("bytes", len(doc.Raw)).
		Msg("Serving insights document")
	WriteRawJSON(w, http.StatusOK, doc.Raw)
}
