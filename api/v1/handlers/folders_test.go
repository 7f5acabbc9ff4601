package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/undertheriver/sgsg/api/v1/middleware"
	"github.com/undertheriver/sgsg/api/v1/models"
)

// authedRequest builds a request whose context carries the claims that
// RequireAuth would have stored.
func authedRequest(method, target string, body string, userID int64) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	claims := &middleware.Claims{UserID: userID, Role: models.RoleUser}
	ctx := context.WithValue(req.Context(), middleware.ClaimsContextKey, claims)
	return req.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestValidateFolderTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"valid title", "Work notes", false},
		{"trims whitespace", "  spaced  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"at length limit", strings.Repeat("a", 100), false},
		{"over length limit", strings.Repeat("a", 101), true},
		{"multibyte at limit", strings.Repeat("메", 100), false},
		{"multibyte over limit", strings.Repeat("메", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := tt.title
			err := validateFolderTitle(&title)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, strings.TrimSpace(tt.title), title)
			}
		})
	}
}

func TestCreateFolder_Unauthenticated(t *testing.T) {
	h := &FolderHandler{FolderLimit: 20, DefaultPageSize: 20}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/folders", strings.NewReader(`{"title":"a","color":"RED"}`))
	rec := httptest.NewRecorder()
	h.CreateFolder(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateFolder_BadRequests(t *testing.T) {
	h := &FolderHandler{FolderLimit: 20, DefaultPageSize: 20}

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"title":`},
		{"missing title", `{"color":"RED"}`},
		{"blank title", `{"title":"   ","color":"RED"}`},
		{"invalid color", `{"title":"Work","color":"MAUVE"}`},
		{"missing color", `{"title":"Work"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodPost, "/api/v1/folders", tt.body, 1)
			rec := httptest.NewRecorder()
			h.CreateFolder(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateFolderTitle_InvalidID(t *testing.T) {
	h := &FolderHandler{FolderLimit: 20, DefaultPageSize: 20}

	for _, id := range []string{"abc", "0", "-5"} {
		req := authedRequest(http.MethodPut, "/api/v1/folders/"+id+"/title", `{"title":"New"}`, 1)
		req = withURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		h.UpdateFolderTitle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "id %q", id)
	}
}

func TestDeleteFolder_InvalidID(t *testing.T) {
	h := &FolderHandler{FolderLimit: 20, DefaultPageSize: 20}

	req := authedRequest(http.MethodDelete, "/api/v1/folders/abc", "", 1)
	req = withURLParam(req, "id", "abc")
	rec := httptest.NewRecorder()
	h.DeleteFolder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFolders_Unauthenticated(t *testing.T) {
	h := &FolderHandler{FolderLimit: 20, DefaultPageSize: 20}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
	rec := httptest.NewRecorder()
	h.GetFolders(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Guards against the claims context key leaking between the middleware
// and handler packages.
func TestAuthedRequestRoundTrip(t *testing.T) {
	am := middleware.NewAuthMiddleware("secret", 30*time.Minute)
	token, err := am.GenerateToken(9, models.RoleUser)
	assert.NoError(t, err)

	var got int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = middleware.GetUserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	am.RequireAuth(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, int64(9), got)
}
