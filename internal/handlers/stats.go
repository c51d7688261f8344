package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/moderation"
)

// StatsHandler serves the admin dashboard aggregates and category list.
type StatsHandler struct {
	engine *moderation.Engine
	logger zerolog.Logger
}

func NewStatsHandler(engine *moderation.Engine, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		engine: engine,
		logger: logger.With().Str("handler", "stats").Logger(),
	}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
	})
}

func (h *StatsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.engine.Categories(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}
