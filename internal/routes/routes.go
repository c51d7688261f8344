package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/toolindex/toolindex-api/internal/handlers"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	tool *handlers.ToolHandler,
	adminTool *handlers.AdminToolHandler,
	submission *handlers.SubmissionHandler,
	notification *handlers.NotificationHandler,
	stats *handlers.StatsHandler,
	contact *handlers.ContactHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public endpoints
	router.HandleFunc("/api/tools", tool.List).Methods(http.MethodGet)
	router.HandleFunc("/api/tools", tool.Submit).Methods(http.MethodPost)
	router.HandleFunc("/api/reels", tool.Reels).Methods(http.MethodGet)
	router.HandleFunc("/api/contact", contact.Submit).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/login", auth.Login).Methods(http.MethodPost)

	// Admin endpoints behind JWT auth
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.JWTMiddleware)

	admin.HandleFunc("/tools", adminTool.List).Methods(http.MethodGet)
	admin.HandleFunc("/tools", adminTool.BulkUpdate).Methods(http.MethodPut)
	admin.HandleFunc("/tools", adminTool.BulkDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/tools/{id}/approve", adminTool.Approve).Methods(http.MethodPut)
	admin.HandleFunc("/tools/{id}/reject", adminTool.Reject).Methods(http.MethodPut)
	admin.HandleFunc("/tools/{id}", adminTool.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/submissions", submission.List).Methods(http.MethodGet)
	admin.HandleFunc("/submissions", submission.BulkAction).Methods(http.MethodPut)

	admin.HandleFunc("/notifications", notification.List).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/mark-all-read", notification.MarkAllRead).Methods(http.MethodPut)
	admin.HandleFunc("/notifications/{id}/read", notification.MarkRead).Methods(http.MethodPut)

	admin.HandleFunc("/categories", stats.Categories).Methods(http.MethodGet)
	admin.HandleFunc("/stats", stats.Stats).Methods(http.MethodGet)

	return router
}
