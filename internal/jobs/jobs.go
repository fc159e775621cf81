package jobs

import (
	"context"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/config"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

const (
	JobSubscriptionRenewal = "subscription_renewal"
	JobBookingExpiry       = "booking_expiry"
	JobRateLimitCleanup    = "rate_limit_cleanup"
)

// SubscriptionRenewer renews or expires subscriptions whose period ended.
type SubscriptionRenewer interface {
	ProcessRenewals(ctx context.Context, now time.Time) (renewed, expired int, err error)
}

// BookingExpirer expires pending bookings older than a TTL.
type BookingExpirer interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

// LimiterCleaner drops idle rate limiter entries.
type LimiterCleaner interface {
	Cleanup() int
}

// Deps are the components the background jobs act on. Nil members disable their job.
type Deps struct {
	Subscriptions SubscriptionRenewer
	Bookings      BookingExpirer
	RateLimiter   LimiterCleaner
}

// Register schedules every configured job on s.
func Register(s *Scheduler, cfg config.JobsConfig, deps Deps) error {
	if deps.Subscriptions != nil {
		if err := s.Add(JobSubscriptionRenewal, cfg.SubscriptionRenewal, RenewSubscriptions(deps.Subscriptions)); err != nil {
			return err
		}
	}
	if deps.Bookings != nil {
		if err := s.Add(JobBookingExpiry, cfg.BookingExpiry, ExpireBookings(deps.Bookings, cfg.PendingBookingTTL)); err != nil {
			return err
		}
	}
	if deps.RateLimiter != nil {
		if err := s.Add(JobRateLimitCleanup, cfg.RateLimitCleanup, CleanupRateLimiter(deps.RateLimiter)); err != nil {
			return err
		}
	}
	return nil
}

func RenewSubscriptions(svc SubscriptionRenewer) Func {
	return func(ctx context.Context) error {
		renewed, expired, err := svc.ProcessRenewals(ctx, time.Now())
		if err != nil {
			return err
		}
		if renewed > 0 || expired > 0 {
			l := log.Ctx(ctx)
			l.Info().Int("renewed", renewed).Int("expired", expired).Msg("subscriptions processed")
		}
		return nil
	}
}

func ExpireBookings(svc BookingExpirer, ttl time.Duration) Func {
	return func(ctx context.Context) error {
		if ttl <= 0 {
			return nil
		}
		n, err := svc.ExpireStale(ctx, ttl)
		if err != nil {
			return err
		}
		if n > 0 {
			l := log.Ctx(ctx)
			l.Info().Int("expired", n).Msg("stale bookings expired")
		}
		return nil
	}
}

func CleanupRateLimiter(rl LimiterCleaner) Func {
	return func(ctx context.Context) error {
		if n := rl.Cleanup(); n > 0 {
			l := log.Ctx(ctx)
			l.Debug().Int("removed", n).Msg("idle rate limiter entries removed")
		}
		return nil
	}
}
