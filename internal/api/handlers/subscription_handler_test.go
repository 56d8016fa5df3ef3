package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewtube-app/viewtube-be/internal/models"
)

type fakeSubscriptions struct {
	toggleFn  func(ctx context.Context, subscriberID, channelID string) (bool, error)
	profileFn func(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

func (f *fakeSubscriptions) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	return f.toggleFn(ctx, subscriberID, channelID)
}
func (f *fakeSubscriptions) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	return f.profileFn(ctx, username, viewerID)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestToggleSubscriptionHandler(t *testing.T) {
	subs := &fakeSubscriptions{
		toggleFn: func(_ context.Context, subscriberID, channelID string) (bool, error) {
			assert.Equal(t, "user-1", subscriberID)
			assert.Equal(t, "channel-1", channelID)
			return true, nil
		},
	}
	h := NewSubscriptionHandler(subs)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/users/subscriptions/channel-1", nil), "user-1")
	req = withURLParam(req, "channelId", "channel-1")
	rec := httptest.NewRecorder()
	h.Toggle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["subscribed"])
}

func TestChannelProfileHandler(t *testing.T) {
	subs := &fakeSubscriptions{
		profileFn: func(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "viewer-1", viewerID)
			return models.ChannelProfile{User: publicUser(), SubscriberCount: 3}, nil
		},
	}
	h := NewSubscriptionHandler(subs)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/alice", nil), "viewer-1")
	req = withURLParam(req, "username", "alice")
	rec := httptest.NewRecorder()
	h.ChannelProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["subscriberCount"])
}

func TestSubscriptionHandlersRequireClaims(t *testing.T) {
	h := NewSubscriptionHandler(&fakeSubscriptions{})

	rec := httptest.NewRecorder()
	h.Toggle(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ChannelProfile(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
