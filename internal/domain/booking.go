package domain

import (
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingRejected   BookingStatus = "rejected"
	BookingExpired    BookingStatus = "expired"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted,
		BookingCancelled, BookingRejected, BookingExpired:
		return true
	}
	return false
}

// PaymentStatus of a booking.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	MinBookingHours = 1
	MaxBookingHours = 12
)

var (
	cleanerTransitions = map[BookingStatus][]BookingStatus{
		BookingPending:    {BookingConfirmed, BookingRejected},
		BookingConfirmed:  {BookingInProgress},
		BookingInProgress: {BookingCompleted},
	}
	clientTransitions = map[BookingStatus][]BookingStatus{
		BookingPending:   {BookingCancelled},
		BookingConfirmed: {BookingCancelled},
	}
)

// CanCleanerTransition reports whether the booked cleaner may move from -> to.
func CanCleanerTransition(from, to BookingStatus) bool {
	return contains(cleanerTransitions[from], to)
}

// CanClientTransition reports whether the booking client may move from -> to.
func CanClientTransition(from, to BookingStatus) bool {
	return contains(clientTransitions[from], to)
}

func contains(list []BookingStatus, s BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// BookingPrice returns hourlyRate x hours rounded to cents.
func BookingPrice(hourlyRate float64, hours int) float64 {
	return math.Round(hourlyRate*float64(hours)*100) / 100
}

// Booking represents a client's booking of a cleaner.
type Booking struct {
	ID            string        `json:"id"`
	ClientID      string        `json:"clientId"`
	CleanerID     string        `json:"cleanerId"`
	Client        *Summary      `json:"client,omitempty"`
	Cleaner       *Summary      `json:"cleaner,omitempty"`
	ServiceType   string        `json:"serviceType"`
	ScheduledDate string        `json:"scheduledDate"`
	ScheduledTime string        `json:"scheduledTime"`
	DurationHours int           `json:"durationHours"`
	Address       string        `json:"address"`
	Notes         string        `json:"notes,omitempty"`
	HourlyRate    float64       `json:"hourlyRate"`
	TotalPrice    float64       `json:"totalPrice"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CancelReason  string        `json:"cancelReason,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsParticipant reports whether userID is the booking's client or cleaner.
func (b *Booking) IsParticipant(userID string) bool {
	return b.ClientID == userID || b.CleanerID == userID
}

// CreateBookingRequest represents a booking request from a client.
type CreateBookingRequest struct {
	CleanerID     string `json:"cleanerId" binding:"required"`
	ServiceType   string `json:"serviceType" binding:"required,max=100"`
	ScheduledDate string `json:"scheduledDate" binding:"required,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduledTime" binding:"required,datetime=15:04"`
	DurationHours int    `json:"durationHours" binding:"required,min=1,max=12"`
	Address       string `json:"address" binding:"required,max=255"`
	Notes         string `json:"notes" binding:"max=2000"`
}

// UpdateBookingRequest is a partial update of a pending booking.
type UpdateBookingRequest struct {
	ScheduledDate *string `json:"scheduledDate" binding:"omitempty,datetime=2006-01-02"`
	ScheduledTime *string `json:"scheduledTime" binding:"omitempty,datetime=15:04"`
	DurationHours *int    `json:"durationHours" binding:"omitempty,min=1,max=12"`
	Address       *string `json:"address" binding:"omitempty,min=1,max=255"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateBookingStatusRequest moves a booking to a new status.
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
	Reason string        `json:"reason" binding:"max=500"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status BookingStatus `form:"status"`
	// UserID restricts results to bookings the user takes part in. Empty means all.
	UserID string `form:"-"`
	Pagination
}
