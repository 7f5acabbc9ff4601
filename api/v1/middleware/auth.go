package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/undertheriver/sgsg/api/v1/models"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// AuthMiddleware issues and validates the application's bearer tokens.
// The signing secret and expiry are process-wide configuration, loaded
// once at startup and never mutated.
type AuthMiddleware struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64           `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(jwtSecret string, tokenExpiry time.Duration) *AuthMiddleware {
	return &AuthMiddleware{
		JWTSecret:   jwtSecret,
		TokenExpiry: tokenExpiry,
	}
}

// GenerateToken creates a signed token embedding the user id and role.
// A verifier recovers both without any external lookup.
func (am *AuthMiddleware) GenerateToken(userID int64, role models.UserRole) (string, error) {
	if userID <= 0 {
		return "", errors.New("user ID must be positive")
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role: %s", role)
	}

	expirationTime := time.Now().Add(am.TokenExpiry)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "sgsg-api",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(am.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates and parses a JWT token string
func (am *AuthMiddleware) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token string cannot be empty")
	}

	claims := &Claims{}

	// Add leeway for clock skew (5 minutes)
	parser := jwt.NewParser(jwt.WithLeeway(5 * time.Minute))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(am.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	if claims.UserID <= 0 {
		return nil, errors.New("invalid user ID in token")
	}

	if !claims.Role.Valid() {
		return nil, errors.New("invalid role in token")
	}

	return claims, nil
}

// RequireAuth validates the bearer token and stores its claims in the
// request context. Verification is stateless: no user lookup happens
// per request.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			am.sendError(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		bearerToken := strings.Fields(authHeader)
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			am.sendError(w, "Invalid authorization header format. Expected 'Bearer <token>'", http.StatusUnauthorized)
			return
		}

		claims, err := am.ValidateToken(bearerToken[1])
		if err != nil {
			am.sendError(w, fmt.Sprintf("Invalid token: %s", err.Error()), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaimsFromContext retrieves the token claims from the request context
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// GetUserIDFromContext is a helper to quickly get just the user ID
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	if claims, ok := GetClaimsFromContext(ctx); ok {
		return claims.UserID, true
	}
	return 0, false
}

// sendError sends a JSON error response
func (am *AuthMiddleware) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, `{"error": "Internal Server Error"}`, http.StatusInternalServerError)
	}
}
