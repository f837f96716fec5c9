package handler

import (
	"log/slog"
	"net/http"

	"medchain/internal/domain/services"
	"medchain/internal/httputil"
)

// AnalysisHandler exposes the text-analysis collaborator so the record
// builder can preview a suggestion before submitting
type AnalysisHandler struct {
	analyzer services.Analyzer
	logger   *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer services.Analyzer, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// AnalyzeRequest carries the free-text observations to analyze
type AnalyzeRequest struct {
	Symptoms string `json:"symptoms"`
	Notes    string `json:"notes"`
}

// Analyze returns a structured suggestion
// POST /api/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "text analysis is not configured")
		return
	}

	var req AnalyzeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.Symptoms, req.Notes)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, analysis)
}
