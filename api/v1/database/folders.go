package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/undertheriver/sgsg/api/v1/models"
)

var ErrNoFolderError = errors.New("folder does not exist")

// FolderLimitError is returned when creating a folder would exceed the
// per-user cap. It carries the configured limit for the client message.
type FolderLimitError struct {
	Limit int
}

func (e *FolderLimitError) Error() string {
	return fmt.Sprintf("cannot create more than %d folders", e.Limit)
}

func CreateFolder(ctx context.Context, pool *pgxpool.Pool, folder *models.Folder, limit int) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := createFolderTx(ctx, tx, folder, limit); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// createFolderTx runs the limit check and insert inside the caller's
// transaction. The owner row is locked first so two concurrent
// creations for the same user cannot both pass the limit check.
func createFolderTx(ctx context.Context, tx pgx.Tx, folder *models.Folder, limit int) error {
	var ownerID int64
	err := tx.QueryRow(ctx, "SELECT id FROM users WHERE id = $1 FOR UPDATE", folder.UserID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoUserError
		}
		return fmt.Errorf("%w: failed to lock user row", ErrDatabaseError)
	}

	var count int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM folders WHERE user_id = $1 AND NOT deleted",
		folder.UserID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w: failed to count folders", ErrDatabaseError)
	}

	if count >= limit {
		return &FolderLimitError{Limit: limit}
	}

	now := time.Now()

	query := `
	INSERT INTO folders(user_id, title, color, deleted, created_at, updated_at)
	VALUES ($1, $2, $3, FALSE, $4, $5)
	RETURNING id`

	var generatedID int64
	err = tx.QueryRow(ctx, query, folder.UserID, folder.Title, folder.Color, now, now).Scan(&generatedID)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}

	folder.ID = generatedID
	folder.CreatedAt = now
	folder.UpdatedAt = now

	return nil
}

func GetFolder(ctx context.Context, pool *pgxpool.Pool, folderID int64) (*models.Folder, error) {
	query := `
		SELECT id, user_id, title, color, deleted, created_at, updated_at
		FROM folders
		WHERE id = $1`

	var folder models.Folder

	err := pool.QueryRow(ctx, query, folderID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Title,
		&folder.Color,
		&folder.Deleted,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoFolderError
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetFolders returns the user's active folders ordered by creation time
// ascending, plus the total active count for pagination.
func GetFolders(ctx context.Context, pool *pgxpool.Pool, page, limit int, userID int64) ([]models.Folder, int, error) {
	offset := (page - 1) * limit

	var total int
	err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM folders WHERE user_id = $1 AND NOT deleted",
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get folder count", ErrDatabaseError)
	}

	query := `
		SELECT id, user_id, title, color, deleted, created_at, updated_at
		FROM folders
		WHERE user_id = $1 AND NOT deleted
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get folders", ErrDatabaseError)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.Title,
			&folder.Color,
			&folder.Deleted,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan folder data", ErrDatabaseError)
		}
		folders = append(folders, folder)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to iterate folders", ErrDatabaseError)
	}

	return folders, total, nil
}

func UpdateFolderTitle(ctx context.Context, pool *pgxpool.Pool, folderID int64, title string) (*models.Folder, error) {
	query := `
		UPDATE folders
		SET title = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, user_id, title, color, deleted, created_at, updated_at`

	var folder models.Folder
	err := pool.QueryRow(ctx, query, title, time.Now(), folderID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Title,
		&folder.Color,
		&folder.Deleted,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoFolderError
		}
		return nil, fmt.Errorf("%w: failed to update folder", ErrDatabaseError)
	}

	return &folder, nil
}

// SoftDeleteFolder flips the deleted flag; the row is kept so the color
// rotation for the user stays stable.
func SoftDeleteFolder(ctx context.Context, pool *pgxpool.Pool, folderID int64) error {
	result, err := pool.Exec(ctx,
		"UPDATE folders SET deleted = TRUE, updated_at = $1 WHERE id = $2",
		time.Now(), folderID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to delete folder", ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return ErrNoFolderError
	}

	return nil
}

// CountAllFolders counts every folder the user ever created, including
// soft-deleted ones. The color suggestion rotates over the lifetime
// count, not the active count.
func CountAllFolders(ctx context.Context, pool *pgxpool.Pool, userID int64) (int, error) {
	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM folders WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count folders", ErrDatabaseError)
	}
	return count, nil
}
