package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undertheriver/sgsg/api/v1/models"
)

func testAuth() *AuthMiddleware {
	return NewAuthMiddleware("test-secret", 30*time.Minute)
}

func TestGenerateAndValidateToken(t *testing.T) {
	am := testAuth()

	token, err := am.GenerateToken(42, models.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := am.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestGenerateToken_InvalidInput(t *testing.T) {
	am := testAuth()

	_, err := am.GenerateToken(0, models.RoleUser)
	assert.Error(t, err)

	_, err = am.GenerateToken(1, models.UserRole("ROOT"))
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := testAuth().GenerateToken(1, models.RoleUser)
	require.NoError(t, err)

	other := NewAuthMiddleware("different-secret", 30*time.Minute)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	// Negative expiry puts the token beyond the parser's clock-skew
	// leeway.
	am := NewAuthMiddleware("test-secret", -10*time.Minute)

	token, err := am.GenerateToken(1, models.RoleUser)
	require.NoError(t, err)

	_, err = am.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Empty(t *testing.T) {
	_, err := testAuth().ValidateToken("")
	assert.Error(t, err)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	am := testAuth()
	token, err := am.GenerateToken(7, models.RoleUser)
	require.NoError(t, err)

	var gotClaims *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	am.RequireAuth(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, int64(7), gotClaims.UserID)
	assert.Equal(t, models.RoleUser, gotClaims.Role)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
	w := httptest.NewRecorder()
	testAuth().RequireAuth(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	am := testAuth()

	for _, header := range []string{"Bearer", "Basic abc", "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/folders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	testAuth().RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
