package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetSecretMemoPassword_Unauthenticated(t *testing.T) {
	h := &UserHandler{}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/secret-memo-password", nil)
	rec := httptest.NewRecorder()
	h.SetSecretMemoPassword(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetSecretMemoPassword_BadRequests(t *testing.T) {
	h := &UserHandler{}

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"password":`},
		{"missing password", `{}`},
		{"blank password", `{"password":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodPut, "/api/v1/users/secret-memo-password", tt.body, 1)
			rec := httptest.NewRecorder()
			h.SetSecretMemoPassword(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	h := &UserHandler{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
