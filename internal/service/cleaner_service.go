package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/cache"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/storage"
)

// cleanerServiceImpl implements CleanerService with a read-through cache.
type cleanerServiceImpl struct {
	users    repository.UserRepository
	reviews  repository.ReviewRepository
	cache    cache.CleanerCache
	cacheTTL time.Duration
	avatars  avatarResolver
	sfGroup  singleflight.Group
}

// NewCleanerService creates a new cleaner service.
func NewCleanerService(users repository.UserRepository, reviews repository.ReviewRepository, c cache.CleanerCache, cacheTTL time.Duration, store storage.Storage, avatarURLTTL time.Duration) CleanerService {
	if c == nil {
		c = cache.NoopCleanerCache{}
	}
	return &cleanerServiceImpl{
		users:    users,
		reviews:  reviews,
		cache:    c,
		cacheTTL: cacheTTL,
		avatars:  avatarResolver{store: store, expiry: avatarURLTTL},
	}
}

func (s *cleanerServiceImpl) List(ctx context.Context, filter domain.CleanerFilter) ([]domain.UserResponse, int64, error) {
	users, total, err := s.users.ListCleaners(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.UserResponse, len(users))
	for i := range users {
		result[i] = s.avatars.response(ctx, &users[i]).PublicView()
	}
	return result, total, nil
}

// Get returns the public view of an active cleaner.
func (s *cleanerServiceImpl) Get(ctx context.Context, cleanerID string) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	cached, err := s.cache.Get(ctx, cleanerID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(log.FieldUserID, cleanerID).Msg("cleaner cache get failed")
	}

	v, err, _ := s.sfGroup.Do(cleanerID, func() (interface{}, error) {
		user, err := s.users.GetByID(ctx, cleanerID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrCleanerNotFound
			}
			return nil, err
		}
		if !isBookableCleaner(user) {
			return nil, ErrCleanerNotFound
		}

		resp := s.avatars.response(ctx, user).PublicView()
		if err := s.cache.Set(ctx, cleanerID, &resp, s.cacheTTL); err != nil {
			l.Warn().Err(err).Str(log.FieldUserID, cleanerID).Msg("cleaner cache set failed")
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.UserResponse), nil
}

// UpdateProfile applies a partial update to the caller's cleaner profile.
func (s *cleanerServiceImpl) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateCleanerProfileRequest) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleCleaner {
		return nil, ErrForbidden
	}

	profile := user.Profile
	if profile == nil {
		profile = &domain.CleanerProfile{UserID: userID, Services: []string{}, Availability: []string{}}
	}
	profile.UserID = userID

	if req.Services != nil {
		profile.Services = cleanList(req.Services)
	}
	if req.HourlyRate != nil {
		profile.HourlyRate = *req.HourlyRate
	}
	if req.YearsExperience != nil {
		profile.YearsExperience = *req.YearsExperience
	}
	if req.Availability != nil {
		profile.Availability = cleanList(req.Availability)
	}
	if req.ServiceRadiusKm != nil {
		profile.ServiceRadiusKm = *req.ServiceRadiusKm
	}

	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update cleaner profile")
		return nil, err
	}

	if req.Bio != nil || req.City != nil {
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.City != nil {
			user.City = strings.TrimSpace(*req.City)
		}
		if err := s.users.Update(ctx, user); err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update cleaner account")
			return nil, err
		}
	}
	user.Profile = profile

	s.Invalidate(ctx, userID)
	audit.Log(ctx, audit.ActionUpdateCleanerProfile, userID, "cleaner profile updated")

	resp := s.avatars.response(ctx, user)
	return &resp, nil
}

func (s *cleanerServiceImpl) ListReviews(ctx context.Context, cleanerID string, page domain.Pagination) ([]domain.Review, int64, error) {
	if _, err := s.Get(ctx, cleanerID); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListByCleaner(ctx, cleanerID, page)
}

func (s *cleanerServiceImpl) Invalidate(ctx context.Context, cleanerIDs ...string) {
	if err := s.cache.Delete(ctx, cleanerIDs...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Strs("cleaner_ids", cleanerIDs).Msg("cleaner cache invalidation failed")
	}
}

func isBookableCleaner(user *domain.User) bool {
	return user.Role == domain.RoleCleaner && user.Status == domain.UserStatusActive && user.Profile != nil
}

// cleanList trims entries and drops blanks and case-insensitive duplicates.
func cleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
