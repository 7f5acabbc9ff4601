package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/undertheriver/sgsg/api/v1/database"
	"github.com/undertheriver/sgsg/api/v1/middleware"
	"github.com/undertheriver/sgsg/api/v1/models"
)

const MaxFolderTitleLength = 100

type FolderHandler struct {
	DB              *pgxpool.Pool
	FolderLimit     int
	DefaultPageSize int
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req models.CreateFolderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateFolderTitle(&req.Title); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.Color.Valid() {
		SendError(w, "Invalid folder color", http.StatusBadRequest)
		return
	}

	folder := &models.Folder{
		UserID: userID,
		Title:  req.Title,
		Color:  req.Color,
	}

	err := database.CreateFolder(r.Context(), h.DB, folder, h.FolderLimit)
	if err != nil {
		var limitErr *database.FolderLimitError
		switch {
		case errors.As(err, &limitErr):
			SendError(w, limitErr.Error(), http.StatusBadRequest)
		case errors.Is(err, database.ErrNoUserError):
			SendError(w, "User not found", http.StatusNotFound)
		default:
			log.Error().Err(err).Int64("user_id", userID).Msg("create folder failed")
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/folders/%d", folder.ID))
	SendData(w, folder, http.StatusCreated)
}

func (h *FolderHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()

	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	limit := h.DefaultPageSize
	if limitStr := query.Get("size"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	folders, total, err := database.GetFolders(r.Context(), h.DB, page, limit, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("list folders failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	SendPaginatedData(w, folders, &PaginationInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, http.StatusOK)
}

func (h *FolderHandler) UpdateFolderTitle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := folderIDParam(r)
	if err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req models.UpdateFolderTitleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateFolderTitle(&req.Title); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := database.GetFolder(r.Context(), h.DB, folderID)
	if err != nil {
		if errors.Is(err, database.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("folder_id", folderID).Msg("get folder failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	// Don't reveal existence of other users' folders
	if existing.UserID != userID {
		SendError(w, "Folder not found", http.StatusNotFound)
		return
	}

	updated, err := database.UpdateFolderTitle(r.Context(), h.DB, folderID, req.Title)
	if err != nil {
		if errors.Is(err, database.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("folder_id", folderID).Msg("update folder title failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	SendData(w, updated, http.StatusOK)
}

func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := folderIDParam(r)
	if err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := database.GetFolder(r.Context(), h.DB, folderID)
	if err != nil {
		if errors.Is(err, database.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("folder_id", folderID).Msg("get folder failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	if existing.UserID != userID {
		SendError(w, "Folder not found", http.StatusNotFound)
		return
	}

	if err := database.SoftDeleteFolder(r.Context(), h.DB, folderID); err != nil {
		if errors.Is(err, database.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("folder_id", folderID).Msg("delete folder failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FolderHandler) GetNextFolderColor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	count, err := database.CountAllFolders(r.Context(), h.DB, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("count folders failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	SendData(w, map[string]models.FolderColor{
		"next_color": models.NextFolderColor(count),
	}, http.StatusOK)
}

func (h *FolderHandler) GetFolderMemos(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := folderIDParam(r)
	if err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	folder, err := database.GetFolder(r.Context(), h.DB, folderID)
	if err != nil {
		if errors.Is(err, database.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("folder_id", folderID).Msg("get folder failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	if folder.UserID != userID {
		SendError(w, "Folder not found", http.StatusNotFound)
		return
	}

	memos, err := database.GetMemosByFolder(r.Context(), h.DB, folderID)
	if err != nil {
		log.Error().Err(err).Int64("folder_id", folderID).Msg("list memos failed")
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	SendData(w, memos, http.StatusOK)
}

func folderIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		return 0, errors.New("folder ID is required")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid folder ID")
	}
	return id, nil
}

func validateFolderTitle(title *string) error {
	*title = strings.TrimSpace(*title)
	if *title == "" {
		return errors.New("folder title is required")
	}
	if utf8.RuneCountInString(*title) > MaxFolderTitleLength {
		return errors.New("folder title must be less than 100 characters")
	}
	return nil
}
