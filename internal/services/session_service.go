package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/viewtube-app/viewtube-be/internal/apierror"
	"github.com/viewtube-app/viewtube-be/internal/auth"
	"github.com/viewtube-app/viewtube-be/internal/models"
)

// LoginRequest carries the credentials presented at login. Either Username
// or Email identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful login: the credential-stripped user plus the
// freshly issued token pair.
type LoginResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// TokenPair is a freshly rotated access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionServiceProvider defines the interface for session management.
type SessionServiceProvider interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, presentedToken string) (TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// SessionService orchestrates the authentication lifecycle: credential
// verification, token issuance, rotation and revocation. One refresh token
// is live per user at a time; issuing a new one invalidates the previous
// session (last writer wins).
type SessionService struct {
	db     *sql.DB
	issuer *auth.TokenIssuer
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *sql.DB, issuer *auth.TokenIssuer) *SessionService {
	return &SessionService{db: db, issuer: issuer}
}

// Login verifies credentials, issues a token pair and persists the refresh
// token on the user record.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	if username == "" && email == "" {
		return LoginResult{}, apierror.Validation("username or email is required")
	}
	if req.Password == "" {
		return LoginResult{}, apierror.Validation("password is required")
	}

	user, err := findUser(ctx, s.db, "username = ? OR email = ?", username, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return LoginResult{}, apierror.NotFound("user does not exist")
		}
		return LoginResult{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, apierror.Auth("invalid user credentials")
	}

	accessToken, refreshToken, err := s.issueAndStore(ctx, user)
	if err != nil {
		return LoginResult{}, err
	}

	user.Sanitize()
	return LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout clears the stored refresh token for a user. Calling it for a user
// with no live session is not an error.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		userID)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// Refresh validates a presented refresh token against the stored value and
// rotates the pair. Refresh tokens are single use: a token replayed after a
// successful rotation no longer matches the stored value and is rejected.
func (s *SessionService) Refresh(ctx context.Context, presentedToken string) (TokenPair, error) {
	if presentedToken == "" {
		return TokenPair{}, apierror.Auth("refresh token is required")
	}

	claims, err := s.issuer.VerifyRefreshToken(presentedToken)
	if err != nil {
		return TokenPair{}, apierror.Auth("invalid refresh token")
	}

	user, err := findUser(ctx, s.db, "id = ?", claims.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return TokenPair{}, apierror.Auth("invalid refresh token")
		}
		return TokenPair{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != presentedToken {
		log.Warn().Str("user_id", user.ID).Msg("Refresh token mismatch, possible replay of a rotated token")
		return TokenPair{}, apierror.Auth("refresh token expired or already used")
	}

	accessToken, refreshToken, err := s.issueAndStore(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ChangePassword verifies the old password, then stores a new hash. Only the
// password column is touched.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apierror.Validation("new password is required")
	}

	var currentHash string
	err := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE id = ?", userID).Scan(&currentHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierror.NotFound("user does not exist")
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(oldPassword)); err != nil {
		return apierror.Auth("old password is incorrect")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(newHash), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// issueAndStore mints a token pair and persists the refresh token on the
// user record, overwriting whatever session was live before.
func (s *SessionService) issueAndStore(ctx context.Context, user models.User) (string, string, error) {
	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, expiresAt, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue refresh token: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET refresh_token = ?, refresh_token_expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		refreshToken, expiresAt.UTC(), user.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
