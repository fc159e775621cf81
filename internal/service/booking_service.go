package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

// bookingServiceImpl implements BookingService interface.
type bookingServiceImpl struct {
	bookings repository.BookingRepository
	users    repository.UserRepository
	notifier *Notifier
	now      func() time.Time
}

// NewBookingService creates a new booking service.
func NewBookingService(bookings repository.BookingRepository, users repository.UserRepository, notifier *Notifier) BookingService {
	return &bookingServiceImpl{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create books an active cleaner for the calling client.
func (s *bookingServiceImpl) Create(ctx context.Context, actor Actor, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	l := log.Ctx(ctx)

	if actor.Role != domain.RoleClient {
		return nil, ErrForbidden
	}

	cleaner, err := s.users.GetByID(ctx, req.CleanerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrCleanerNotFound
		}
		return nil, err
	}
	if !isBookableCleaner(cleaner) {
		return nil, ErrCleanerNotFound
	}

	booking := &domain.Booking{
		ClientID:      actor.ID,
		CleanerID:     cleaner.ID,
		ServiceType:   strings.TrimSpace(req.ServiceType),
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		DurationHours: req.DurationHours,
		Address:       strings.TrimSpace(req.Address),
		Notes:         req.Notes,
		HourlyRate:    cleaner.Profile.HourlyRate,
		TotalPrice:    domain.BookingPrice(cleaner.Profile.HourlyRate, req.DurationHours),
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentUnpaid,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		l.Error().Err(err).Msg("failed to create booking")
		return nil, err
	}
	booking.Cleaner = &domain.Summary{ID: cleaner.ID, Name: cleaner.Name, Role: cleaner.Role}

	metrics.RecordBookingStatus(string(booking.Status))
	audit.LogTarget(ctx, audit.ActionCreateBooking, actor.ID, booking.ID, cleaner.ID, "booking created")
	s.notifier.Notify(ctx, pubsub.EventBookingCreated, pubsub.BookingPayload{
		BookingID: booking.ID,
		Status:    string(booking.Status),
		ChangedBy: actor.ID,
	}, booking.CleanerID)

	return booking, nil
}

// List returns the actor's bookings; admins see every booking.
func (s *bookingServiceImpl) List(ctx context.Context, actor Actor, filter domain.BookingFilter) ([]domain.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	filter.UserID = ""
	if !actor.IsAdmin {
		filter.UserID = actor.ID
	}
	return s.bookings.List(ctx, filter)
}

func (s *bookingServiceImpl) Get(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !booking.IsParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// Update edits a pending booking. The agreed hourly rate is kept when the duration changes.
func (s *bookingServiceImpl) Update(ctx context.Context, actor Actor, bookingID string, req *domain.UpdateBookingRequest) (*domain.Booking, error) {
	l := log.Ctx(ctx)

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actor.ID {
		return nil, ErrForbidden
	}
	if booking.Status != domain.BookingPending {
		return nil, ErrBookingNotEditable
	}

	if req.ScheduledDate != nil {
		booking.ScheduledDate = *req.ScheduledDate
	}
	if req.ScheduledTime != nil {
		booking.ScheduledTime = *req.ScheduledTime
	}
	if req.Address != nil {
		booking.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}
	if req.DurationHours != nil && *req.DurationHours != booking.DurationHours {
		booking.DurationHours = *req.DurationHours
		booking.TotalPrice = domain.BookingPrice(booking.HourlyRate, booking.DurationHours)
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrBookingNotEditable
		}
		l.Error().Err(err).Str(log.FieldBookingID, bookingID).Msg("failed to update booking")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionUpdateBooking, actor.ID, booking.ID, "", "booking updated")
	s.notifier.Notify(ctx, pubsub.EventBookingUpdated, pubsub.BookingPayload{
		BookingID: booking.ID,
		Status:    string(booking.Status),
		ChangedBy: actor.ID,
	}, booking.CleanerID)

	return s.bookings.GetByID(ctx, bookingID)
}

// UpdateStatus applies a status change allowed for the actor's side of the booking.
func (s *bookingServiceImpl) UpdateStatus(ctx context.Context, actor Actor, bookingID string, req *domain.UpdateBookingStatusRequest) (*domain.Booking, error) {
	l := log.Ctx(ctx)

	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from, to := booking.Status, req.Status
	var allowed bool
	switch {
	case actor.IsSuperAdmin():
		allowed = from != to
	case actor.ID == booking.CleanerID:
		allowed = domain.CanCleanerTransition(from, to)
	case actor.ID == booking.ClientID:
		allowed = domain.CanClientTransition(from, to)
	default:
		return nil, ErrForbidden
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	reason := strings.TrimSpace(req.Reason)
	if err := s.bookings.UpdateStatus(ctx, bookingID, from, to, reason); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrInvalidTransition
		}
		l.Error().Err(err).Str(log.FieldBookingID, bookingID).Msg("failed to update booking status")
		return nil, err
	}

	metrics.RecordBookingStatus(string(to))
	audit.LogTarget(ctx, audit.ActionBookingStatus, actor.ID, bookingID, string(from)+"->"+string(to), "booking status changed")
	s.notifier.Notify(ctx, pubsub.EventBookingStatus, pubsub.BookingPayload{
		BookingID:  bookingID,
		Status:     string(to),
		PrevStatus: string(from),
		ChangedBy:  actor.ID,
		Reason:     reason,
	}, booking.ClientID, booking.CleanerID)

	return s.bookings.GetByID(ctx, bookingID)
}

func (s *bookingServiceImpl) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	expired, err := s.bookings.ExpirePending(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	for _, b := range expired {
		metrics.RecordBookingStatus(string(domain.BookingExpired))
		audit.LogTarget(ctx, audit.ActionExpireBooking, "", b.ID, "", "pending booking expired")
		s.notifier.Notify(ctx, pubsub.EventBookingStatus, pubsub.BookingPayload{
			BookingID:  b.ID,
			Status:     string(domain.BookingExpired),
			PrevStatus: string(domain.BookingPending),
			ChangedBy:  "system",
		}, b.ClientID, b.CleanerID)
	}
	return len(expired), nil
}
