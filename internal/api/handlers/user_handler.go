package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viewtube-app/viewtube-be/internal/apierror"
	"github.com/viewtube-app/viewtube-be/internal/auth"
	"github.com/viewtube-app/viewtube-be/internal/media"
	"github.com/viewtube-app/viewtube-be/internal/models"
	"github.com/viewtube-app/viewtube-be/internal/services"
)

const maxUploadMemory = 32 << 20

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	sessions      services.SessionServiceProvider
	profiles      services.ProfileServiceProvider
	refreshExpiry time.Duration
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(sessions services.SessionServiceProvider, profiles services.ProfileServiceProvider, refreshExpiry time.Duration) *UserHandler {
	return &UserHandler{
		sessions:      sessions,
		profiles:      profiles,
		refreshExpiry: refreshExpiry,
	}
}

// Register handles new user registration with avatar and optional cover
// image (multipart form).
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, r, apierror.Validation("invalid multipart form"))
		return
	}

	req := services.RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
	}

	avatar, avatarClose, err := fileFromForm(r, "avatar")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if avatarClose != nil {
		defer avatarClose.Close()
	}

	coverImage, coverClose, err := fileFromForm(r, "coverImage")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if coverClose != nil {
		defer coverClose.Close()
	}

	user, err := h.profiles.Register(r.Context(), req, avatar, coverImage)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	respond(w, http.StatusCreated, user, "user registered successfully")
}

// Login handles credential verification and token issuance. The issued pair
// is returned in the body and set as cookies.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apierror.Validation("invalid request body"))
		return
	}

	result, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("Failed login attempt")
		respondError(w, r, err)
		return
	}

	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	respond(w, http.StatusOK, result, "user logged in successfully")
}

// Logout invalidates the current session and clears the auth cookies.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	if err := h.sessions.Logout(r.Context(), claims.UserID); err != nil {
		respondError(w, r, err)
		return
	}

	h.clearAuthCookies(w)
	respond(w, http.StatusOK, nil, "user logged out successfully")
}

// RefreshToken rotates the token pair. The presented refresh token comes
// from the refreshToken cookie or, failing that, the request body. The
// cookies are set with the freshly issued pair.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			presented = body.RefreshToken
		}
	}

	pair, err := h.sessions.Refresh(r.Context(), presented)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	respond(w, http.StatusOK, pair, "access token refreshed")
}

// ChangePassword verifies the old password and stores a new one.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, apierror.Validation("invalid request body"))
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), claims.UserID, body.OldPassword, body.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, nil, "password changed successfully")
}

// GetCurrentUser returns the authenticated user's record.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	user, err := h.profiles.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccountDetails updates the non-credential account fields.
func (h *UserHandler) UpdateAccountDetails(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	var body struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, apierror.Validation("invalid request body"))
		return
	}

	user, err := h.profiles.UpdateDetails(r.Context(), claims.UserID, body.FullName, body.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, user, "account details updated successfully")
}

// UpdateAvatar replaces the user's avatar (multipart, single file).
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.profiles.UpdateAvatar)
}

// UpdateCoverImage replaces the user's cover image (multipart, single file).
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.profiles.UpdateCoverImage)
}

func (h *UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string,
	update func(ctx context.Context, id string, file *media.FileUpload) (models.User, error)) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, r, apierror.Validation("invalid multipart form"))
		return
	}

	file, closer, err := fileFromForm(r, field)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	user, err := update(r.Context(), claims.UserID, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, user, field+" updated successfully")
}

func (h *UserHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(h.refreshExpiry),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// fileFromForm extracts a single uploaded file from a parsed multipart form.
// A missing file is not an error; the caller decides whether it is required.
func fileFromForm(r *http.Request, field string) (*media.FileUpload, io.Closer, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, apierror.Validation("invalid " + field + " file")
	}

	return &media.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}, file, nil
}
