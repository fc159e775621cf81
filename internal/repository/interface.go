package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned when a conditional update finds the row already changed.
	ErrStale = errors.New("record was modified concurrently")

	ErrUserNotFound         = fmt.Errorf("user: %w", ErrNotFound)
	ErrEmailExists          = fmt.Errorf("email already exists: %w", ErrDuplicate)
	ErrBookingNotFound      = fmt.Errorf("booking: %w", ErrNotFound)
	ErrReviewNotFound       = fmt.Errorf("review: %w", ErrNotFound)
	ErrReviewExists         = fmt.Errorf("booking already reviewed: %w", ErrDuplicate)
	ErrChatNotFound         = fmt.Errorf("chat: %w", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("subscription: %w", ErrNotFound)
	ErrSubscriptionExists   = fmt.Errorf("client already has a subscription: %w", ErrDuplicate)
	ErrTicketNotFound       = fmt.Errorf("ticket: %w", ErrNotFound)
)

// UserRepository defines the interface for user and cleaner profile persistence.
type UserRepository interface {
	// Create inserts the user and, when set, its cleaner profile.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update persists every mutable account column of user.
	Update(ctx context.Context, user *domain.User) error
	// UpdateProfile persists the editable cleaner profile columns. Ratings are left alone.
	UpdateProfile(ctx context.Context, profile *domain.CleanerProfile) error
	// Delete soft-deletes a user and frees the email for re-registration.
	Delete(ctx context.Context, id string) error
	ListCleaners(ctx context.Context, filter domain.CleanerFilter) ([]domain.User, int64, error)
	List(ctx context.Context, filter domain.AdminUserFilter) ([]domain.User, int64, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

// BookingRepository defines the interface for booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error)
	// Update persists the schedule, address, notes and price of a pending booking.
	Update(ctx context.Context, booking *domain.Booking) error
	// UpdateStatus moves a booking from one status to another. ErrStale means
	// the booking was no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, reason string) error
	// ExpirePending marks pending bookings created before cutoff as expired and
	// returns the affected bookings.
	ExpirePending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error)
	CompletedRevenue(ctx context.Context) (float64, error)
}

// ReviewRepository defines the interface for review persistence.
// Writes recompute the cleaner's rating in the same transaction.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByCleaner(ctx context.Context, cleanerID string, page domain.Pagination) ([]domain.Review, int64, error)
	// Delete removes a review and returns it.
	Delete(ctx context.Context, id string) (*domain.Review, error)
}

// ChatRepository defines the interface for chat and message persistence.
type ChatRepository interface {
	// GetOrCreate returns the chat for the client/cleaner pair of chat,
	// creating it when missing. created reports whether a row was inserted.
	GetOrCreate(ctx context.Context, chat *domain.Chat) (result *domain.Chat, created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]domain.ChatSummary, error)
	// CreateMessage inserts the message and bumps the chat's last_message_at.
	CreateMessage(ctx context.Context, msg *domain.Message) error
	// ListMessages returns up to limit messages older than before, newest first.
	ListMessages(ctx context.Context, chatID string, before *time.Time, limit int) ([]domain.Message, error)
	// MarkRead marks messages not sent by readerID as read.
	MarkRead(ctx context.Context, chatID, readerID string) (int64, error)
}

// SubscriptionRepository defines the interface for subscription persistence.
type SubscriptionRepository interface {
	// Create fails with ErrSubscriptionExists when the client already holds an
	// active or paused subscription.
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Subscription, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.SubscriptionStatus) error
	// ListDue returns active subscriptions whose period ended at or before now.
	ListDue(ctx context.Context, now time.Time) ([]domain.Subscription, error)
	// Renew starts a new period for an active subscription.
	Renew(ctx context.Context, id string, start, end time.Time) error
	CountByStatus(ctx context.Context, status domain.SubscriptionStatus) (int64, error)
}

// TicketRepository defines the interface for support ticket persistence.
type TicketRepository interface {
	// Create inserts a ticket. ErrDuplicate means the reference is taken.
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, int64, error)
	// Update persists status, admin response, assignee and resolved time.
	Update(ctx context.Context, ticket *domain.SupportTicket) error
	CountByStatus(ctx context.Context, statuses ...domain.TicketStatus) (int64, error)
}
