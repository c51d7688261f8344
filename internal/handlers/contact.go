package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/notification"
	"github.com/toolindex/toolindex-api/internal/repository"
)

type ContactHandler struct {
	contacts repository.ContactRepository
	mailer   notification.Mailer
	logger   zerolog.Logger
}

func NewContactHandler(contacts repository.ContactRepository, mailer notification.Mailer, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		mailer:   mailer,
		logger:   logger.With().Str("handler", "contact").Logger(),
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit stores the contact message and relays it by email. The email is
// best-effort; a relay failure never fails the stored message.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Please fill in all fields.")
		return
	}

	if _, err := h.contacts.Create(r.Context(), req.Name, req.Email, req.Message); err != nil {
		writeServiceError(w, h.logger, err, "Failed to send message")
		return
	}

	if h.mailer != nil {
		if err := h.mailer.SendContactMessage(req.Name, req.Email, req.Message); err != nil {
			h.logger.Warn().Err(err).Msg("contact email not delivered")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Thank you for your message! We will get back to you soon.",
	})
}
