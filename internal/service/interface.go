package service

import (
	"context"
	"io"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
)

// TokenManager issues, validates and revokes session tokens.
type TokenManager interface {
	GenerateTokenPair(ctx context.Context, id jwt.Identity) (*jwt.TokenPair, error)
	ValidateToken(ctx context.Context, token, tokenType string) (*jwt.Claims, error)
	RevokeUserTokens(ctx context.Context, userID string) error
}

// UserService defines account and session operations.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetMe(ctx context.Context, userID string) (*domain.UserResponse, error)
	// GetUser returns the full view to the user themself and admins, the public view otherwise.
	GetUser(ctx context.Context, viewer Actor, userID string) (*domain.UserResponse, error)
	UpdateMe(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error
	UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (*domain.AvatarResponse, error)
	DeleteMe(ctx context.Context, userID string) error
}

// CleanerService defines the cleaner directory operations.
type CleanerService interface {
	List(ctx context.Context, filter domain.CleanerFilter) ([]domain.UserResponse, int64, error)
	Get(ctx context.Context, cleanerID string) (*domain.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateCleanerProfileRequest) (*domain.UserResponse, error)
	ListReviews(ctx context.Context, cleanerID string, page domain.Pagination) ([]domain.Review, int64, error)
	// Invalidate drops cached views of the given cleaners.
	Invalidate(ctx context.Context, cleanerIDs ...string)
}

// BookingService defines booking operations.
type BookingService interface {
	Create(ctx context.Context, actor Actor, req *domain.CreateBookingRequest) (*domain.Booking, error)
	List(ctx context.Context, actor Actor, filter domain.BookingFilter) ([]domain.Booking, int64, error)
	Get(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error)
	Update(ctx context.Context, actor Actor, bookingID string, req *domain.UpdateBookingRequest) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, actor Actor, bookingID string, req *domain.UpdateBookingStatusRequest) (*domain.Booking, error)
	// ExpireStale expires pending bookings older than ttl and returns how many.
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

// ReviewService defines review operations.
type ReviewService interface {
	Create(ctx context.Context, actor Actor, req *domain.CreateReviewRequest) (*domain.Review, error)
	Get(ctx context.Context, reviewID string) (*domain.Review, error)
	Delete(ctx context.Context, actor Actor, reviewID string) error
}

// SubscriptionService defines subscription operations.
type SubscriptionService interface {
	Create(ctx context.Context, actor Actor, req *domain.CreateSubscriptionRequest) (*domain.Subscription, error)
	List(ctx context.Context, actor Actor) ([]domain.Subscription, error)
	Get(ctx context.Context, actor Actor, subscriptionID string) (*domain.Subscription, error)
	Update(ctx context.Context, actor Actor, subscriptionID string, req *domain.UpdateSubscriptionRequest) (*domain.Subscription, error)
	// ProcessRenewals renews or expires subscriptions whose period ended by now.
	ProcessRenewals(ctx context.Context, now time.Time) (renewed, expired int, err error)
}

// SupportService defines support ticket operations.
type SupportService interface {
	Create(ctx context.Context, actor Actor, req *domain.CreateTicketRequest) (*domain.SupportTicket, error)
	ListMine(ctx context.Context, actor Actor, page domain.Pagination) ([]domain.SupportTicket, int64, error)
	Get(ctx context.Context, actor Actor, ticketID string) (*domain.SupportTicket, error)
	AdminList(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, int64, error)
	AdminUpdate(ctx context.Context, actor Actor, ticketID string, req *domain.UpdateTicketRequest) (*domain.SupportTicket, error)
}

// ChatService defines chat operations.
type ChatService interface {
	// Open returns the chat between the actor and the participant, creating it when needed.
	Open(ctx context.Context, actor Actor, req *domain.CreateChatRequest) (chat *domain.Chat, created bool, err error)
	List(ctx context.Context, actor Actor) ([]domain.ChatSummary, error)
	Messages(ctx context.Context, actor Actor, chatID string, before *time.Time, limit int) ([]domain.Message, error)
	Send(ctx context.Context, actor Actor, chatID string, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, actor Actor, chatID string) (int64, error)
}

// AdminService defines the admin console operations.
type AdminService interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	ListUsers(ctx context.Context, filter domain.AdminUserFilter) ([]domain.UserResponse, int64, error)
	UpdateUser(ctx context.Context, actor Actor, userID string, req *domain.AdminUpdateUserRequest) (*domain.UserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, userID string) error
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error)
	CreateAdmin(ctx context.Context, actor Actor, req *domain.CreateAdminRequest) (*domain.UserResponse, error)
}
