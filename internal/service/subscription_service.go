package service

import (
	"context"
	"errors"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

// subscriptionServiceImpl implements SubscriptionService interface.
type subscriptionServiceImpl struct {
	subs     repository.SubscriptionRepository
	users    repository.UserRepository
	notifier *Notifier
	now      func() time.Time
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(subs repository.SubscriptionRepository, users repository.UserRepository, notifier *Notifier) SubscriptionService {
	return &subscriptionServiceImpl{
		subs:     subs,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create starts a subscription for the calling client.
func (s *subscriptionServiceImpl) Create(ctx context.Context, actor Actor, req *domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	l := log.Ctx(ctx)

	if actor.Role != domain.RoleClient {
		return nil, ErrForbidden
	}

	price, ok := domain.SubscriptionPrice(req.Plan, req.Frequency)
	if !ok {
		return nil, ErrInvalidPlan
	}

	var cleanerID *string
	if req.CleanerID != nil && *req.CleanerID != "" {
		cleaner, err := s.users.GetByID(ctx, *req.CleanerID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrCleanerNotFound
			}
			return nil, err
		}
		if !isBookableCleaner(cleaner) {
			return nil, ErrCleanerNotFound
		}
		cleanerID = &cleaner.ID
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	start := s.now().UTC()
	sub := &domain.Subscription{
		ClientID:           actor.ID,
		CleanerID:          cleanerID,
		Plan:               req.Plan,
		Frequency:          req.Frequency,
		Price:              price,
		Status:             domain.SubscriptionActive,
		AutoRenew:          autoRenew,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.Add(domain.SubscriptionPeriod),
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		if !errors.Is(err, repository.ErrSubscriptionExists) {
			l.Error().Err(err).Msg("failed to create subscription")
		}
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionCreateSubscription, actor.ID, sub.ID, string(sub.Plan), "subscription created")
	return sub, nil
}

func (s *subscriptionServiceImpl) List(ctx context.Context, actor Actor) ([]domain.Subscription, error) {
	return s.subs.ListByClient(ctx, actor.ID)
}

func (s *subscriptionServiceImpl) Get(ctx context.Context, actor Actor, subscriptionID string) (*domain.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.ClientID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return sub, nil
}

// Update pauses, resumes or cancels the owner's subscription.
func (s *subscriptionServiceImpl) Update(ctx context.Context, actor Actor, subscriptionID string, req *domain.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	l := log.Ctx(ctx)

	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.ClientID != actor.ID {
		return nil, ErrForbidden
	}

	next, ok := domain.NextSubscriptionStatus(sub.Status, req.Action)
	if !ok {
		return nil, ErrInvalidTransition
	}

	if err := s.subs.UpdateStatus(ctx, subscriptionID, sub.Status, next); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrInvalidTransition
		}
		l.Error().Err(err).Str(log.FieldSubscriptionID, subscriptionID).Msg("failed to update subscription")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionSubscriptionStatus, actor.ID, subscriptionID, string(req.Action), "subscription status changed")
	s.notifier.Notify(ctx, pubsub.EventSubscriptionChanged, pubsub.SubscriptionPayload{
		SubscriptionID: subscriptionID,
		Status:         string(next),
	}, sub.ClientID)

	return s.subs.GetByID(ctx, subscriptionID)
}

// ProcessRenewals rolls auto-renewing subscriptions into their next period and
// expires the rest.
func (s *subscriptionServiceImpl) ProcessRenewals(ctx context.Context, now time.Time) (renewed, expired int, err error) {
	l := log.Ctx(ctx)
	now = now.UTC()

	due, err := s.subs.ListDue(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	for _, sub := range due {
		if sub.AutoRenew {
			start, end := sub.CurrentPeriodEnd, sub.CurrentPeriodEnd.Add(domain.SubscriptionPeriod)
			for !end.After(now) {
				start, end = end, end.Add(domain.SubscriptionPeriod)
			}
			if err := s.subs.Renew(ctx, sub.ID, start, end); err != nil {
				if !errors.Is(err, repository.ErrStale) {
					l.Error().Err(err).Str(log.FieldSubscriptionID, sub.ID).Msg("failed to renew subscription")
				}
				continue
			}
			renewed++
			audit.LogTarget(ctx, audit.ActionRenewSubscription, "", sub.ID, end.Format(time.RFC3339), "subscription renewed")
			s.notifier.Notify(ctx, pubsub.EventSubscriptionChanged, pubsub.SubscriptionPayload{
				SubscriptionID: sub.ID,
				Status:         string(domain.SubscriptionActive),
			}, sub.ClientID)
			continue
		}

		if err := s.subs.UpdateStatus(ctx, sub.ID, domain.SubscriptionActive, domain.SubscriptionExpired); err != nil {
			if !errors.Is(err, repository.ErrStale) {
				l.Error().Err(err).Str(log.FieldSubscriptionID, sub.ID).Msg("failed to expire subscription")
			}
			continue
		}
		expired++
		audit.LogTarget(ctx, audit.ActionExpireSubscription, "", sub.ID, "", "subscription expired")
		s.notifier.Notify(ctx, pubsub.EventSubscriptionChanged, pubsub.SubscriptionPayload{
			SubscriptionID: sub.ID,
			Status:         string(domain.SubscriptionExpired),
		}, sub.ClientID)
	}

	return renewed, expired, nil
}
