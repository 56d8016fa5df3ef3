package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewtube-app/viewtube-be/internal/config"
	"github.com/viewtube-app/viewtube-be/internal/models"
)

func newTestIssuer(t *testing.T, accessExpiry, refreshExpiry time.Duration) *TokenIssuer {
	t.Helper()
	return NewTokenIssuer(&config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: refreshExpiry,
	})
}

func testUser() models.User {
	return models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 240*time.Hour)

	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	claims, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Example", claims.FullName)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 240*time.Hour)

	token, expiresAt, err := issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(240*time.Hour), expiresAt, time.Minute)

	claims, err := issuer.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 240*time.Hour)

	accessToken, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)
	refreshToken, _, err := issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)

	// An access token must never verify as a refresh token and vice versa.
	_, err = issuer.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = issuer.VerifyAccessToken(refreshToken)
	assert.Error(t, err)
}

func TestExpiredTokensAreRejected(t *testing.T) {
	issuer := newTestIssuer(t, -1*time.Minute, -1*time.Minute)

	accessToken, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)
	refreshToken, _, err := issuer.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(accessToken)
	assert.Error(t, err)
	_, err = issuer.VerifyRefreshToken(refreshToken)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 240*time.Hour)
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	var gotClaims *AccessClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := issuer.Middleware()(next)

	t.Run("bearer header", func(t *testing.T) {
		gotClaims = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "user-1", gotClaims.UserID)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		gotClaims = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "user-1", gotClaims.UserID)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
