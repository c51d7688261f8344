package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/moderation"
)

// SubmissionHandler serves the admin review queue.
type SubmissionHandler struct {
	engine *moderation.Engine
	logger zerolog.Logger
}

func NewSubmissionHandler(engine *moderation.Engine, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		engine: engine,
		logger: logger.With().Str("handler", "submission").Logger(),
	}
}

// List returns the review queue with status/category/date filters and
// pagination.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.engine.ListForReview(r.Context(), reviewFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch submissions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": page.Tools,
		"totalCount":  page.Total,
		"currentPage": page.Page,
		"totalPages":  page.TotalPages,
	})
}

// BulkAction handles PUT /api/admin/submissions: bulk approve or reject.
func (h *SubmissionHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBulkRequest(w, r)
	if !ok {
		return
	}

	var (
		report moderation.Report
		verb   string
	)
	switch req.Action {
	case "approve":
		report = h.engine.Approve(r.Context(), req.ToolIDs)
		verb = "approved"
	case "reject":
		report = h.engine.Reject(r.Context(), req.ToolIDs, req.RejectionReason)
		verb = "rejected"
	default:
		writeError(w, http.StatusBadRequest, `Invalid action. Use "approve" or "reject"`)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d tool(s) %s successfully", report.Succeeded, verb),
		"report":  report,
	})
}
