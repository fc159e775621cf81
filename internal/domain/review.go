package domain

import "time"

// Review is a client's rating of a completed booking.
type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	ClientID  string    `json:"clientId"`
	CleanerID string    `json:"cleanerId"`
	Client    *Summary  `json:"client,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateReviewRequest represents a review submission.
type CreateReviewRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}
