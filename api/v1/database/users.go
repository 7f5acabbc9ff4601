package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/undertheriver/sgsg/api/v1/models"
)

var (
	ErrNoUserError   = errors.New("user does not exist")
	ErrDatabaseError = errors.New("database error occurred")
)

// UpsertUser inserts a user on first login or refreshes name and
// profile image on subsequent logins. The stored role is never
// overwritten by a login.
func UpsertUser(ctx context.Context, pool *pgxpool.Pool, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `
	INSERT INTO users (name, email, role, profile_image_url)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (email) DO UPDATE
	SET name = EXCLUDED.name, profile_image_url = EXCLUDED.profile_image_url, updated_at = now()
	RETURNING id, role, created_at, updated_at`

	var profileImageURL interface{}
	if user.ProfileImageURL != nil {
		profileImageURL = *user.ProfileImageURL
	}

	err := pool.QueryRow(ctx, query, user.Name, user.Email, user.Role, profileImageURL).Scan(
		&user.ID,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert user", ErrDatabaseError)
	}

	return nil
}

func GetUser(ctx context.Context, pool *pgxpool.Pool, userID int64) (*models.User, error) {
	query := `
		SELECT id, name, email, role, profile_image_url, secret_memo_password, created_at, updated_at
		FROM users
		WHERE id = $1`

	var user models.User
	var profileImageURL *string
	var secretMemoPassword *string

	err := pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&profileImageURL,
		&secretMemoPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoUserError
		}
		return nil, fmt.Errorf("%w: failed to get user", ErrDatabaseError)
	}

	user.ProfileImageURL = profileImageURL
	user.SecretMemoPassword = secretMemoPassword

	return &user, nil
}

// SetSecretMemoPassword stores the bcrypt hash protecting the user's
// secret memos.
func SetSecretMemoPassword(ctx context.Context, pool *pgxpool.Pool, userID int64, hash string) error {
	result, err := pool.Exec(ctx,
		"UPDATE users SET secret_memo_password = $1, updated_at = now() WHERE id = $2",
		hash, userID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to set secret memo password", ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return ErrNoUserError
	}

	return nil
}
