package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/viewtube-app/viewtube-be/internal/apierror"
	"github.com/viewtube-app/viewtube-be/internal/media"
	"github.com/viewtube-app/viewtube-be/internal/models"
)

// RegisterRequest carries the account fields for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileServiceProvider defines the interface for profile services.
type ProfileServiceProvider interface {
	Register(ctx context.Context, req RegisterRequest, avatar, coverImage *media.FileUpload) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id string, file *media.FileUpload) (models.User, error)
	UpdateCoverImage(ctx context.Context, id string, file *media.FileUpload) (models.User, error)
}

// ProfileService provides business logic for account records and their
// media references. Binary uploads are delegated to the media host.
type ProfileService struct {
	db       *sql.DB
	uploader media.Uploader
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *sql.DB, uploader media.Uploader) *ProfileService {
	return &ProfileService{
		db:       db,
		uploader: uploader,
		validate: validator.New(),
	}
}

// Register creates a new user: field validation, uniqueness check, avatar
// upload, insert, and a credential-stripped re-read of the created record.
// The uniqueness check runs before any upload so a conflicting registration
// never touches the media host.
func (s *ProfileService) Register(ctx context.Context, req RegisterRequest, avatar, coverImage *media.FileUpload) (models.User, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := s.validate.Struct(req); err != nil {
		return models.User{}, apierror.Validation("all fields are required")
	}

	var existingID string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ? OR email = ?",
		req.Username, req.Email).Scan(&existingID)
	if err == nil {
		return models.User{}, apierror.Conflict("user with this username or email already exists")
	}
	if err != sql.ErrNoRows {
		return models.User{}, fmt.Errorf("failed to check user uniqueness: %w", err)
	}

	if avatar == nil {
		return models.User{}, apierror.Validation("avatar file is required")
	}

	avatarURL, err := s.uploader.Upload(ctx, avatar)
	if err != nil || avatarURL == "" {
		log.Error().Err(err).Str("username", req.Username).Msg("Avatar upload failed")
		return models.User{}, apierror.Upload("avatar upload failed")
	}

	// A broken cover image is not worth failing the whole registration over.
	coverImageURL := ""
	if coverImage != nil {
		coverImageURL, err = s.uploader.Upload(ctx, coverImage)
		if err != nil {
			log.Warn().Err(err).Str("username", req.Username).Msg("Cover image upload failed, continuing without it")
			coverImageURL = ""
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, req.Username, req.Email, req.FullName, string(passwordHash), avatarURL, coverImageURL)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	created, err := findPublicUser(ctx, s.db, "id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apierror.Internal("something went wrong while registering the user")
		}
		return models.User{}, fmt.Errorf("failed to read created user: %w", err)
	}
	return created, nil
}

// GetByID retrieves a single user by their ID, credential fields excluded.
func (s *ProfileService) GetByID(ctx context.Context, id string) (models.User, error) {
	user, err := findPublicUser(ctx, s.db, "id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apierror.NotFound("user does not exist")
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateDetails updates the non-credential account fields in place.
func (s *ProfileService) UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return models.User{}, apierror.Validation("full name and email are required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return models.User{}, apierror.Validation("a valid email is required")
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET full_name = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		fullName, email, id)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update account details: %w", err)
	}

	return s.GetByID(ctx, id)
}

// UpdateAvatar uploads a new avatar and persists its URL.
func (s *ProfileService) UpdateAvatar(ctx context.Context, id string, file *media.FileUpload) (models.User, error) {
	return s.updateImage(ctx, id, file, "avatar_url", "avatar")
}

// UpdateCoverImage uploads a new cover image and persists its URL.
func (s *ProfileService) UpdateCoverImage(ctx context.Context, id string, file *media.FileUpload) (models.User, error) {
	return s.updateImage(ctx, id, file, "cover_image_url", "cover image")
}

func (s *ProfileService) updateImage(ctx context.Context, id string, file *media.FileUpload, column, label string) (models.User, error) {
	if file == nil {
		return models.User{}, apierror.Validation(label + " file is required")
	}

	url, err := s.uploader.Upload(ctx, file)
	if err != nil || url == "" {
		log.Error().Err(err).Str("user_id", id).Msgf("Failed to upload %s", label)
		return models.User{}, apierror.Upload(label + " upload failed")
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", url, id)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update %s: %w", label, err)
	}

	return s.GetByID(ctx, id)
}
