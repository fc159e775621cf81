package service

import (
	"context"
	"errors"
	"strings"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

// reviewServiceImpl implements ReviewService interface.
type reviewServiceImpl struct {
	reviews  repository.ReviewRepository
	bookings repository.BookingRepository
	cleaners CleanerService
	notifier *Notifier
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, bookings repository.BookingRepository, cleaners CleanerService, notifier *Notifier) ReviewService {
	return &reviewServiceImpl{
		reviews:  reviews,
		bookings: bookings,
		cleaners: cleaners,
		notifier: notifier,
	}
}

// Create reviews one of the actor's completed bookings.
func (s *reviewServiceImpl) Create(ctx context.Context, actor Actor, req *domain.CreateReviewRequest) (*domain.Review, error) {
	l := log.Ctx(ctx)

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actor.ID {
		return nil, ErrForbidden
	}
	if booking.Status != domain.BookingCompleted {
		return nil, ErrBookingNotCompleted
	}

	review := &domain.Review{
		BookingID: booking.ID,
		ClientID:  actor.ID,
		CleanerID: booking.CleanerID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if !errors.Is(err, repository.ErrReviewExists) {
			l.Error().Err(err).Str(log.FieldBookingID, booking.ID).Msg("failed to create review")
		}
		return nil, err
	}
	review.Client = booking.Client

	s.cleaners.Invalidate(ctx, booking.CleanerID)
	metrics.RecordReview()
	audit.LogTarget(ctx, audit.ActionCreateReview, actor.ID, review.ID, booking.ID, "review created")
	s.notifier.Notify(ctx, pubsub.EventReviewCreated, pubsub.ReviewPayload{
		ReviewID:  review.ID,
		BookingID: booking.ID,
		Rating:    review.Rating,
	}, booking.CleanerID)

	return review, nil
}

func (s *reviewServiceImpl) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, reviewID)
}

// Delete removes a review. Access is checked by the admin route.
func (s *reviewServiceImpl) Delete(ctx context.Context, actor Actor, reviewID string) error {
	review, err := s.reviews.Delete(ctx, reviewID)
	if err != nil {
		return err
	}

	s.cleaners.Invalidate(ctx, review.CleanerID)
	audit.LogTarget(ctx, audit.ActionDeleteReview, actor.ID, reviewID, review.CleanerID, "review deleted")
	return nil
}
