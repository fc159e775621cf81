package pubsub

import (
	"fmt"
	"path"
	"strings"
)

// Channel naming conventions for marketplace notifications.
const (
	// ChannelUserNotify carries every realtime notification addressed to one user.
	ChannelUserNotify = "user:%s:notify"

	// PatternUserNotify matches the notify channel of every user.
	PatternUserNotify = "user:*:notify"
)

// Event types published on user notify channels.
const (
	EventChatMessage         = "chat.message"
	EventChatRead            = "chat.read"
	EventBookingCreated      = "booking.created"
	EventBookingUpdated      = "booking.updated"
	EventBookingStatus       = "booking.status_changed"
	EventReviewCreated       = "review.created"
	EventSupportTicketUpdate = "support.ticket_updated"
	EventSubscriptionChanged = "subscription.changed"
)

// UserNotifyChannel returns the notify channel for a user.
func UserNotifyChannel(userID string) string {
	return fmt.Sprintf(ChannelUserNotify, userID)
}

// KeyFromChannel extracts the middle segment of a "{prefix}:{key}:{suffix}" channel.
func KeyFromChannel(channel string) (string, error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 || parts[1] == "" {
		return "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[1], nil
}

// matchChannel reports whether channel belongs to a subscription on key.
// Pattern keys use Redis PSUBSCRIBE glob syntax.
func matchChannel(key string, pattern bool, channel string) bool {
	if !pattern {
		return key == channel
	}
	ok, _ := path.Match(key, channel)
	return ok
}

// ChatMessagePayload is sent to the recipient of a chat message.
type ChatMessagePayload struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ChatReadPayload is sent to a sender when the recipient reads the chat.
type ChatReadPayload struct {
	ChatID   string `json:"chatId"`
	ReaderID string `json:"readerId"`
	Count    int64  `json:"count"`
}

// BookingPayload is sent to both parties when a booking changes.
type BookingPayload struct {
	BookingID  string `json:"bookingId"`
	Status     string `json:"status"`
	PrevStatus string `json:"prevStatus,omitempty"`
	ChangedBy  string `json:"changedBy"`
	Reason     string `json:"reason,omitempty"`
}

// ReviewPayload is sent to a cleaner when they receive a review.
type ReviewPayload struct {
	ReviewID  string `json:"reviewId"`
	BookingID string `json:"bookingId"`
	Rating    int    `json:"rating"`
}

// TicketPayload is sent to a ticket owner when support updates it.
type TicketPayload struct {
	TicketID  string `json:"ticketId"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// SubscriptionPayload is sent to a client when their subscription changes.
type SubscriptionPayload struct {
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
}
