package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/catalog"
	"github.com/toolindex/toolindex-api/internal/intake"
	"github.com/toolindex/toolindex-api/internal/models"
	"github.com/toolindex/toolindex-api/internal/repository"
)

// ToolHandler serves the public catalog and submission endpoints.
type ToolHandler struct {
	catalog *catalog.View
	intake  *intake.Service
	reels   repository.ReelRepository
	logger  zerolog.Logger
}

func NewToolHandler(view *catalog.View, intakeSvc *intake.Service, reels repository.ReelRepository, logger zerolog.Logger) *ToolHandler {
	return &ToolHandler{
		catalog: view,
		intake:  intakeSvc,
		reels:   reels,
		logger:  logger.With().Str("handler", "tool").Logger(),
	}
}

// List returns approved tools only, regardless of the filters applied.
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := catalog.Filter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		Pricing:  query.Get("pricing"),
		Sort:     query.Get("sort"),
	}
	if features := strings.TrimSpace(query.Get("features")); features != "" {
		filter.Features = strings.Split(features, ",")
	}

	tools, err := h.catalog.ListApproved(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch tools")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools,
	})
}

// Submit accepts a tool submission in any of the historical client form
// shapes and queues it for review.
func (h *ToolHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.intake.Submit(r.Context(), intake.Normalize(fields))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to submit tool")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tool submitted successfully and pending review",
		"toolId":  tool.ID,
	})
}

// Reels lists the short-form video links attached to submissions.
func (h *ToolHandler) Reels(w http.ResponseWriter, r *http.Request) {
	reels, err := h.reels.ListRecent(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch reels")
		return
	}
	if reels == nil {
		reels = []models.Reel{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reels": reels,
	})
}
