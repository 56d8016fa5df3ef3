package models

import "time"

// Subscription links a subscriber to the channel (another user) they follow.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelProfile is a channel's public page: the owning user plus
// subscription counters relative to the viewing user.
type ChannelProfile struct {
	User
	SubscriberCount   int  `json:"subscriberCount"`
	SubscribedToCount int  `json:"subscribedToCount"`
	IsSubscribed      bool `json:"isSubscribed"`
}
