package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/undertheriver/sgsg/api/v1/models"
)

var ErrNoMemoError = errors.New("memo does not exist")

// CreateMemo persists a memo. When req carries a folder id the memo is
// attached to that folder; otherwise a new folder is created from the
// request's title and color, subject to the same per-user folder limit
// as explicit folder creation. Both paths run in one transaction.
func CreateMemo(ctx context.Context, pool *pgxpool.Pool, userID int64, req *models.CreateMemoReq, folderLimit int) (*models.Memo, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var folderID int64
	if req.HasFolderID() {
		err := tx.QueryRow(ctx, "SELECT id FROM folders WHERE id = $1", *req.FolderID).Scan(&folderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNoFolderError
			}
			return nil, fmt.Errorf("%w: failed to check folder existence", ErrDatabaseError)
		}
	} else {
		folder := &models.Folder{
			UserID: userID,
			Title:  req.FolderTitle,
			Color:  req.FolderColor,
		}
		if err := createFolderTx(ctx, tx, folder, folderLimit); err != nil {
			return nil, err
		}
		folderID = folder.ID
	}

	now := time.Now()

	query := `
	INSERT INTO memos(folder_id, content, created_at, updated_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id`

	var generatedID int64
	err = tx.QueryRow(ctx, query, folderID, req.MemoContent, now, now).Scan(&generatedID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNoFolderError
		}
		return nil, fmt.Errorf("failed to insert memo: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Memo{
		ID:        generatedID,
		FolderID:  folderID,
		Content:   req.MemoContent,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func GetMemo(ctx context.Context, pool *pgxpool.Pool, memoID int64) (*models.Memo, error) {
	query := `
		SELECT id, folder_id, content, favorite, thumbnail_url, created_at, updated_at
		FROM memos
		WHERE id = $1`

	var memo models.Memo
	var favorite *bool
	var thumbnailURL *string

	err := pool.QueryRow(ctx, query, memoID).Scan(
		&memo.ID,
		&memo.FolderID,
		&memo.Content,
		&favorite,
		&thumbnailURL,
		&memo.CreatedAt,
		&memo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMemoError
		}
		return nil, fmt.Errorf("failed to get memo: %w", err)
	}

	memo.Favorite = favorite
	memo.ThumbnailURL = thumbnailURL

	return &memo, nil
}

// UpdateMemo mutates content, favorite, thumbnail and folder reference
// in place. Reassigning the folder id moves the memo between folders.
func UpdateMemo(ctx context.Context, pool *pgxpool.Pool, memoID int64, req *models.UpdateMemoReq) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentID int64
	err = tx.QueryRow(ctx, "SELECT id FROM memos WHERE id = $1", memoID).Scan(&currentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoMemoError
		}
		return fmt.Errorf("%w: failed to check memo existence", ErrDatabaseError)
	}

	var folderID int64
	err = tx.QueryRow(ctx, "SELECT id FROM folders WHERE id = $1", req.FolderID).Scan(&folderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoFolderError
		}
		return fmt.Errorf("%w: failed to check folder existence", ErrDatabaseError)
	}

	var favorite interface{}
	if req.Favorite != nil {
		favorite = *req.Favorite
	}

	var thumbnailURL interface{}
	if req.ThumbnailURL != nil {
		thumbnailURL = *req.ThumbnailURL
	}

	query := `
		UPDATE memos
		SET content = $1, favorite = $2, thumbnail_url = $3, folder_id = $4, updated_at = $5
		WHERE id = $6`

	result, err := tx.Exec(ctx, query, req.Content, favorite, thumbnailURL, req.FolderID, time.Now(), memoID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNoFolderError
		}
		return fmt.Errorf("%w: failed to update memo", ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return ErrNoMemoError
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetMemosByFolder returns the folder's memos ordered by creation time.
func GetMemosByFolder(ctx context.Context, pool *pgxpool.Pool, folderID int64) ([]models.Memo, error) {
	query := `
		SELECT id, folder_id, content, favorite, thumbnail_url, created_at, updated_at
		FROM memos
		WHERE folder_id = $1
		ORDER BY created_at ASC`

	rows, err := pool.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get memos", ErrDatabaseError)
	}
	defer rows.Close()

	var memos []models.Memo
	for rows.Next() {
		var memo models.Memo
		var favorite *bool
		var thumbnailURL *string

		err := rows.Scan(
			&memo.ID,
			&memo.FolderID,
			&memo.Content,
			&favorite,
			&thumbnailURL,
			&memo.CreatedAt,
			&memo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan memo data", ErrDatabaseError)
		}

		memo.Favorite = favorite
		memo.ThumbnailURL = thumbnailURL

		memos = append(memos, memo)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate memos", ErrDatabaseError)
	}

	return memos, nil
}

// isForeignKeyViolation reports whether err is a Postgres foreign key
// violation, which surfaces when a referenced folder vanished between
// the existence check and the write.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
