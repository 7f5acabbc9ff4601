package models

import "time"

type Memo struct {
	ID           int64     `json:"id"`
	FolderID     int64     `json:"folder_id"`
	Content      string    `json:"content"`
	Favorite     *bool     `json:"favorite,omitempty"`      // could be empty
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"` // could be empty
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateMemoReq creates a memo in an existing folder when FolderID is
// set, otherwise a new folder is created from FolderTitle/FolderColor
// and the memo is attached to it.
type CreateMemoReq struct {
	FolderID    *int64      `json:"folder_id,omitempty"`
	FolderTitle string      `json:"folder_title"`
	FolderColor FolderColor `json:"folder_color"`
	MemoContent string      `json:"memo_content"`
}

// HasFolderID reports whether the request references an existing folder.
func (r *CreateMemoReq) HasFolderID() bool {
	return r.FolderID != nil
}

// UpdateMemoReq is the request body for updating a memo in place.
// FolderID may differ from the memo's current folder; the memo moves.
type UpdateMemoReq struct {
	Content      string  `json:"content"`
	Favorite     *bool   `json:"favorite,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	FolderID     int64   `json:"folder_id"`
}
