package domain

import "time"

const (
	MaxMessageLength    = 2000
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
)

// Chat is the conversation between one client and one cleaner.
type Chat struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"clientId"`
	CleanerID     string     `json:"cleanerId"`
	BookingID     *string    `json:"bookingId,omitempty"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// IsParticipant reports whether userID belongs to the chat.
func (c *Chat) IsParticipant(userID string) bool {
	return c.ClientID == userID || c.CleanerID == userID
}

// OtherParticipant returns the ID of the participant that is not userID.
func (c *Chat) OtherParticipant(userID string) string {
	if c.ClientID == userID {
		return c.CleanerID
	}
	return c.ClientID
}

// Message is a single chat message.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatSummary is a chat as listed for one participant.
type ChatSummary struct {
	Chat
	Participant *Summary `json:"participant,omitempty"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int64    `json:"unreadCount"`
}

// CreateChatRequest opens (or returns) the chat with another user.
type CreateChatRequest struct {
	ParticipantID string  `json:"participantId" binding:"required"`
	BookingID     *string `json:"bookingId"`
}

// SendMessageRequest represents a new chat message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// MessageQuery pages backwards through a chat's history.
type MessageQuery struct {
	Before string `form:"before"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// BeforeTime parses Before as RFC3339. A blank value yields nil.
func (q MessageQuery) BeforeTime() (*time.Time, error) {
	if q.Before == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, q.Before)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
