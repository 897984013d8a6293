package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/shock-tracker/internal/auth"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *auth.Service) {
	t.Helper()
	service, err := auth.NewService()
	require.NoError(t, err)
	return NewAuthHandler(service), service
}

func TestLogin_Success(t *testing.T) {
	t.Setenv("RIDER_PASSCODE", "trail-secret")
	handler, service := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"passcode":"trail-secret"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NoError(t, service.ValidateToken(resp.Token))
}

func TestLogin_WrongPasscode(t *testing.T) {
	t.Setenv("RIDER_PASSCODE", "trail-secret")
	handler, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"passcode":"wrong"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_BadRequests(t *testing.T) {
	handler, _ := newAuthHandler(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty passcode", `{"passcode":""}`, http.StatusBadRequest},
		{"invalid json", `{passcode}`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	handler, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
