package services

import (
	"context"
	"database/sql"

	"github.com/viewtube-app/viewtube-be/internal/models"
)

const userColumns = "id, username, email, full_name, password_hash, avatar_url, cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at"

const publicUserColumns = "id, username, email, full_name, avatar_url, cover_image_url, created_at, updated_at"

// findUser loads a full user record, credential fields included.
func findUser(ctx context.Context, db *sql.DB, where string, args ...interface{}) (models.User, error) {
	var user models.User
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.AvatarURL, &user.CoverImageURL, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// findPublicUser loads a user record with the credential fields excluded
// from the projection.
func findPublicUser(ctx context.Context, db *sql.DB, where string, args ...interface{}) (models.User, error) {
	var user models.User
	row := db.QueryRowContext(ctx, "SELECT "+publicUserColumns+" FROM users WHERE "+where, args...)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.AvatarURL, &user.CoverImageURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
