package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viewtube-app/viewtube-be/internal/apierror"
	"github.com/viewtube-app/viewtube-be/internal/auth"
	"github.com/viewtube-app/viewtube-be/internal/services"
)

// SubscriptionHandler handles HTTP requests for channel subscriptions.
type SubscriptionHandler struct {
	service services.SubscriptionServiceProvider
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(service services.SubscriptionServiceProvider) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Toggle subscribes the authenticated user to a channel, or unsubscribes
// them if already subscribed.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	channelID := chi.URLParam(r, "channelId")
	subscribed, err := h.service.Toggle(r.Context(), claims.UserID, channelID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	message := "unsubscribed from channel"
	if subscribed {
		message = "subscribed to channel"
	}
	respond(w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// ChannelProfile returns a channel's public page by username.
func (h *SubscriptionHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, apierror.Auth("unauthorized request"))
		return
	}

	username := chi.URLParam(r, "username")
	profile, err := h.service.ChannelProfile(r.Context(), username, claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, profile, "channel profile fetched successfully")
}
