package authz

import (
	"context"
	"net/http"
)

type contextKey string

const (
	adminIDKey    contextKey = "admin_id"
	adminEmailKey contextKey = "admin_email"
)

// WithAdmin stores the authenticated admin identity on the context.
func WithAdmin(ctx context.Context, adminID, email string) context.Context {
	if adminID != "" {
		ctx = context.WithValue(ctx, adminIDKey, adminID)
	}
	if email != "" {
		ctx = context.WithValue(ctx, adminEmailKey, email)
	}
	return ctx
}

func AdminIDFromRequest(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(adminIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func AdminEmailFromRequest(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(adminEmailKey).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
