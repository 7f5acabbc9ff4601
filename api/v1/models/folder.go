package models

import "time"

// FolderColor is one of the fixed palette values a folder can take.
type FolderColor string

const (
	ColorRed    FolderColor = "RED"
	ColorOrange FolderColor = "ORANGE"
	ColorYellow FolderColor = "YELLOW"
	ColorGreen  FolderColor = "GREEN"
	ColorBlue   FolderColor = "BLUE"
	ColorNavy   FolderColor = "NAVY"
	ColorPurple FolderColor = "PURPLE"
)

// palette is the rotation order used when suggesting the next color.
var palette = []FolderColor{
	ColorRed,
	ColorOrange,
	ColorYellow,
	ColorGreen,
	ColorBlue,
	ColorNavy,
	ColorPurple,
}

// NextFolderColor returns the suggested color for a user's next folder
// based on how many folders they already have. The assignment is cyclic:
// the n-th folder gets palette[n mod len(palette)].
func NextFolderColor(folderCount int) FolderColor {
	return palette[folderCount%len(palette)]
}

// Valid reports whether the color is part of the palette.
func (c FolderColor) Valid() bool {
	for _, p := range palette {
		if c == p {
			return true
		}
	}
	return false
}

type Folder struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Title     string      `json:"title"`
	Color     FolderColor `json:"color"`
	Deleted   bool        `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateFolderReq is the request body for creating a folder.
type CreateFolderReq struct {
	Title string      `json:"title"`
	Color FolderColor `json:"color"`
}

// UpdateFolderTitleReq is the request body for renaming a folder.
type UpdateFolderTitleReq struct {
	Title string `json:"title"`
}
