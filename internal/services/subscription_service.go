package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/viewtube-app/viewtube-be/internal/apierror"
	"github.com/viewtube-app/viewtube-be/internal/models"
)

// SubscriptionServiceProvider defines the interface for channel subscriptions.
type SubscriptionServiceProvider interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ChannelProfile(ctx context.Context, channelUsername, viewerID string) (models.ChannelProfile, error)
}

// SubscriptionService manages subscriber/channel relations between users.
type SubscriptionService struct {
	db *sql.DB
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *sql.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Toggle subscribes the user to the channel, or unsubscribes if a
// subscription already exists. Returns whether the user is subscribed after
// the call.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, apierror.Validation("cannot subscribe to your own channel")
	}

	var exists string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ?", channelID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, apierror.NotFound("channel does not exist")
		}
		return false, fmt.Errorf("failed to look up channel: %w", err)
	}

	var subID string
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?",
		subscriberID, channelID).Scan(&subID)
	switch {
	case err == nil:
		if _, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", subID); err != nil {
			return false, fmt.Errorf("failed to unsubscribe: %w", err)
		}
		return false, nil
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO subscriptions (id, subscriber_id, channel_id) VALUES (?, ?, ?)",
			uuid.New().String(), subscriberID, channelID)
		if err != nil {
			return false, fmt.Errorf("failed to subscribe: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("failed to look up subscription: %w", err)
	}
}

// ChannelProfile loads a channel's public page by username, with
// subscription counters relative to the viewing user.
func (s *SubscriptionService) ChannelProfile(ctx context.Context, channelUsername, viewerID string) (models.ChannelProfile, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))
	if channelUsername == "" {
		return models.ChannelProfile{}, apierror.Validation("channel username is required")
	}

	user, err := findPublicUser(ctx, s.db, "username = ?", channelUsername)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ChannelProfile{}, apierror.NotFound("channel does not exist")
		}
		return models.ChannelProfile{}, fmt.Errorf("failed to look up channel: %w", err)
	}

	profile := models.ChannelProfile{User: user}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE channel_id = ?", user.ID).Scan(&profile.SubscriberCount)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("failed to count subscribers: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ?", user.ID).Scan(&profile.SubscribedToCount)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("failed to count subscribed channels: %w", err)
	}

	if viewerID != "" {
		var n int
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?",
			viewerID, user.ID).Scan(&n)
		if err != nil {
			return models.ChannelProfile{}, fmt.Errorf("failed to check subscription: %w", err)
		}
		profile.IsSubscribed = n > 0
	}

	return profile, nil
}
