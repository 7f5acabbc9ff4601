package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/undertheriver/sgsg/api/v1/database"
	"github.com/undertheriver/sgsg/api/v1/middleware"
	"github.com/undertheriver/sgsg/api/v1/models"
)

type MemoHandler struct {
	DB          *pgxpool.Pool
	FolderLimit int
}

func (h *MemoHandler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req models.CreateMemoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateCreateMemo(&req); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	memo, err := database.CreateMemo(r.Context(), h.DB, userID, &req, h.FolderLimit)
	if err != nil {
		var limitErr *database.FolderLimitError
		switch {
		case errors.Is(err, database.ErrNoFolderError):
			SendError(w, "Folder not found", http.StatusNotFound)
		case errors.Is(err, database.ErrNoUserError):
			SendError(w, "User not found", http.StatusNotFound)
		case errors.As(err, &limitErr):
			SendError(w, limitErr.Error(), http.StatusBadRequest)
		default:
			log.Error().Err(err).Int64("user_id", userID).Msg("create memo failed")
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/memos/%d", memo.ID))
	SendData(w, memo, http.StatusCreated)
}

func (h *MemoHandler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	memoIDStr := chi.URLParam(r, "id")
	memoID, err := strconv.ParseInt(memoIDStr, 10, 64)
	if err != nil || memoID <= 0 {
		SendError(w, "Invalid memo ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateMemoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		SendError(w, "Memo content is required", http.StatusBadRequest)
		return
	}
	if req.FolderID <= 0 {
		SendError(w, "Valid folder ID is required", http.StatusBadRequest)
		return
	}

	err = database.UpdateMemo(r.Context(), h.DB, memoID, &req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNoMemoError):
			SendError(w, "Memo not found", http.StatusNotFound)
		case errors.Is(err, database.ErrNoFolderError):
			SendError(w, "Folder not found", http.StatusNotFound)
		default:
			log.Error().Err(err).Int64("memo_id", memoID).Msg("update memo failed")
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateCreateMemo(req *models.CreateMemoReq) error {
	req.MemoContent = strings.TrimSpace(req.MemoContent)
	if req.MemoContent == "" {
		return errors.New("memo content is required")
	}

	// Without a folder id the folder is created implicitly, so the
	// folder fields become mandatory.
	if !req.HasFolderID() {
		req.FolderTitle = strings.TrimSpace(req.FolderTitle)
		if req.FolderTitle == "" {
			return errors.New("folder title is required")
		}
		if !req.FolderColor.Valid() {
			return errors.New("invalid folder color")
		}
	} else if *req.FolderID <= 0 {
		return errors.New("folder ID must be positive if provided")
	}

	return nil
}
