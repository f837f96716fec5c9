package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medchain/internal/config"
	"medchain/internal/domain/models"
	"medchain/internal/domain/services"
	"medchain/internal/httputil"
)

// RecordHandler handles HTTP requests for clinical records
type RecordHandler struct {
	recordService services.RecordService
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(recordService services.RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		logger:        logger,
	}
}

// SubmitRecord commits a record and anchors its fingerprint
// POST /api/records
// Returns 201 once the private commit succeeded. The status field says whether
// the anchor went through (Anchored) or must be retried (AnchorDegraded).
func (h *RecordHandler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitRecordRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recordService.Submit(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("record submitted",
		"record_id", result.RecordID,
		"status", result.Status,
		"user_id", httputil.GetUserID(r),
	)
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// GetRecord returns a committed record
// GET /api/records/{id}?decrypt=true
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")

	decrypt, err := httputil.QueryBool(r, "decrypt")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.recordService.GetRecord(r.Context(), recordID, decrypt)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, record)
}

// VerifyRecord compares the committed record with its public anchor
// GET /api/records/{id}/verify
func (h *RecordHandler) VerifyRecord(w http.ResponseWriter, r *http.Request) {
	v, err := h.recordService.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, v)
}

// AnchorRecord re-anchors the committed record's current fingerprint
// POST /api/records/{id}/anchor
func (h *RecordHandler) AnchorRecord(w http.ResponseWriter, r *http.Request) {
	result, err := h.recordService.Reanchor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Status != models.StateAnchored {
		status = http.StatusAccepted
	}
	httputil.RespondJSON(w, status, result)
}

// ReconcileAnchors retries degraded anchors
// POST /api/anchors/reconcile?limit=N
func (h *RecordHandler) ReconcileAnchors(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", config.DefaultReconcileBatch)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit < 1 || limit > config.MaxReconcileBatch {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "limit out of range", map[string]interface{}{
			"max_limit": config.MaxReconcileBatch,
		})
		return
	}

	report, err := h.recordService.ReconcilePending(r.Context(), limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}
