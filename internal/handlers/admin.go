package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/moderation"
)

// AdminToolHandler serves the admin back-office tool endpoints.
type AdminToolHandler struct {
	engine *moderation.Engine
	logger zerolog.Logger
}

func NewAdminToolHandler(engine *moderation.Engine, logger zerolog.Logger) *AdminToolHandler {
	return &AdminToolHandler{
		engine: engine,
		logger: logger.With().Str("handler", "admin_tool").Logger(),
	}
}

// List returns all tools, paginated and filterable like the review queue.
func (h *AdminToolHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.engine.ListForReview(r.Context(), reviewFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch tools")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools":       page.Tools,
		"totalCount":  page.Total,
		"currentPage": page.Page,
		"totalPages":  page.TotalPages,
	})
}

type bulkToolRequest struct {
	Action          string   `json:"action"`
	ToolIDs         []string `json:"toolIds"`
	RejectionReason string   `json:"rejectionReason"`
}

// BulkUpdate handles PUT /api/admin/tools: the toggle bulk action.
func (h *AdminToolHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBulkRequest(w, r)
	if !ok {
		return
	}
	if req.Action != "toggle" && req.Action != "toggleStatus" {
		writeError(w, http.StatusBadRequest, `Invalid action. Use "toggle"`)
		return
	}

	report := h.engine.ToggleStatus(r.Context(), req.ToolIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d tool(s) updated", report.Succeeded),
		"report":  report,
	})
}

type bulkDeleteRequest struct {
	ToolIDs []string `json:"toolIds"`
}

// BulkDelete handles DELETE /api/admin/tools. Hard delete, no recovery.
func (h *AdminToolHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ToolIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required field: toolIds array")
		return
	}

	report := h.engine.Delete(r.Context(), req.ToolIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d tool(s) deleted successfully", report.Succeeded),
		"report":  report,
	})
}

// Approve handles PUT /api/admin/tools/{id}/approve. Approving an
// already-approved tool is a no-op success.
func (h *AdminToolHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "Tool ID is required")
		return
	}

	tool, err := h.engine.ApproveOne(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to approve tool")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tool approved successfully",
		"tool":    tool,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles PUT /api/admin/tools/{id}/reject.
func (h *AdminToolHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "Tool ID is required")
		return
	}

	var req rejectRequest
	if r.Body != nil {
		// A missing or empty body falls back to the default reason.
		json.NewDecoder(r.Body).Decode(&req)
	}

	tool, err := h.engine.RejectOne(r.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to reject tool")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tool rejected successfully",
		"tool":    tool,
	})
}

// Delete handles DELETE /api/admin/tools/{id}.
func (h *AdminToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "Tool ID is required")
		return
	}

	if err := h.engine.DeleteOne(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete tool")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tool deleted successfully",
	})
}

func decodeBulkRequest(w http.ResponseWriter, r *http.Request) (bulkToolRequest, bool) {
	var req bulkToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Action == "" || len(req.ToolIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: action and toolIds array")
		return req, false
	}
	return req, true
}

func reviewFilterFromQuery(r *http.Request) moderation.ReviewFilter {
	query := r.URL.Query()

	filter := moderation.ReviewFilter{
		Status:    query.Get("status"),
		Category:  query.Get("category"),
		DateRange: query.Get("dateFilter"),
		SortField: query.Get("sortBy"),
		SortOrder: query.Get("order"),
	}
	if raw := query.Get("dateRange"); filter.DateRange == "" && raw != "" {
		filter.DateRange = raw
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.PageSize = pageSize
	}
	return filter
}
