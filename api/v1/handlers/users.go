package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/undertheriver/sgsg/api/v1/database"
	"github.com/undertheriver/sgsg/api/v1/middleware"
	"github.com/undertheriver/sgsg/api/v1/models"
)

type UserHandler struct {
	DB *pgxpool.Pool
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := database.GetUser(r.Context(), h.DB, userID)
	if err != nil {
		if errors.Is(err, database.ErrNoUserError) {
			SendError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("get user failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	SendData(w, models.UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       user.CreatedAt,
	}, http.StatusOK)
}

// SetSecretMemoPassword stores the bcrypt hash of the password that
// locks the user's secret memos.
func (h *UserHandler) SetSecretMemoPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req models.SecretMemoPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Password) == "" {
		SendError(w, "Password is required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		SendError(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	if err := database.SetSecretMemoPassword(r.Context(), h.DB, userID, string(hash)); err != nil {
		if errors.Is(err, database.ErrNoUserError) {
			SendError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("set secret memo password failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
