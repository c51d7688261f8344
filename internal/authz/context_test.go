package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithAdminRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAdmin(req.Context(), "admin-1", "admin@example.com"))

	id, ok := AdminIDFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "admin-1", id)

	email, ok := AdminEmailFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "admin@example.com", email)
}

func TestMissingAdminIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := AdminIDFromRequest(req)
	assert.False(t, ok)
	_, ok = AdminEmailFromRequest(req)
	assert.False(t, ok)
}

func TestWithAdminSkipsBlankValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAdmin(req.Context(), "", ""))

	_, ok := AdminIDFromRequest(req)
	assert.False(t, ok)
}
