package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/storage"
)

// AdminRepositories groups the stores the admin console reads from.
type AdminRepositories struct {
	Users         repository.UserRepository
	Bookings      repository.BookingRepository
	Tickets       repository.TicketRepository
	Subscriptions repository.SubscriptionRepository
}

// adminServiceImpl implements AdminService interface.
type adminServiceImpl struct {
	repos      AdminRepositories
	tokens     TokenManager
	cleaners   CleanerService
	avatars    avatarResolver
	bcryptCost int
}

// NewAdminService creates a new admin service. cleaners may be nil.
func NewAdminService(repos AdminRepositories, tokens TokenManager, cleaners CleanerService, store storage.Storage, avatarURLTTL time.Duration, bcryptCost int) AdminService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &adminServiceImpl{
		repos:      repos,
		tokens:     tokens,
		cleaners:   cleaners,
		avatars:    avatarResolver{store: store, expiry: avatarURLTTL},
		bcryptCost: bcryptCost,
	}
}

// Stats gathers the dashboard counters concurrently.
func (s *adminServiceImpl) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		byRole, err := s.repos.Users.CountByRole(gctx)
		if err != nil {
			return err
		}
		stats.UsersByRole = byRole
		for _, n := range byRole {
			stats.TotalUsers += n
		}
		return nil
	})
	g.Go(func() error {
		byStatus, err := s.repos.Bookings.CountByStatus(gctx)
		if err != nil {
			return err
		}
		stats.BookingsByStatus = byStatus
		for _, n := range byStatus {
			stats.TotalBookings += n
		}
		return nil
	})
	g.Go(func() error {
		revenue, err := s.repos.Bookings.CompletedRevenue(gctx)
		stats.CompletedRevenue = revenue
		return err
	})
	g.Go(func() error {
		open, err := s.repos.Tickets.CountByStatus(gctx, domain.TicketOpen, domain.TicketInProgress)
		stats.OpenTickets = open
		return err
	})
	g.Go(func() error {
		active, err := s.repos.Subscriptions.CountByStatus(gctx, domain.SubscriptionActive)
		stats.ActiveSubscriptions = active
		return err
	})

	if err := g.Wait(); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to gather admin stats")
		return nil, err
	}
	return stats, nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, filter domain.AdminUserFilter) ([]domain.UserResponse, int64, error) {
	users, total, err := s.repos.Users.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, s.avatars.response(ctx, &users[i]))
	}
	return out, total, nil
}

// UpdateUser changes an account's status or verification flag.
func (s *adminServiceImpl) UpdateUser(ctx context.Context, actor Actor, userID string, req *domain.AdminUpdateUserRequest) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin && !actor.IsSuperAdmin() {
		return nil, ErrForbidden
	}

	suspending := false
	if req.Status != nil && *req.Status != user.Status {
		if user.ID == actor.ID {
			return nil, ErrCannotModifySelf
		}
		suspending = *req.Status == domain.UserStatusSuspended
		user.Status = *req.Status
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update user")
		return nil, err
	}

	if suspending {
		if err := s.tokens.RevokeUserTokens(ctx, user.ID); err != nil {
			l.Warn().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to revoke tokens of suspended user")
		}
	}
	if s.cleaners != nil && user.Role == domain.RoleCleaner {
		s.cleaners.Invalidate(ctx, user.ID)
	}

	audit.LogTarget(ctx, audit.ActionAdminUpdateUser, actor.ID, user.ID, string(user.Status), "user updated by admin")
	resp := s.avatars.response(ctx, user)
	return &resp, nil
}

// DeleteUser soft-deletes another account.
func (s *adminServiceImpl) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	l := log.Ctx(ctx)

	if !actor.IsSuperAdmin() {
		return ErrForbidden
	}
	if userID == actor.ID {
		return ErrCannotModifySelf
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repos.Users.Delete(ctx, userID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to delete user")
		return err
	}
	if err := s.tokens.RevokeUserTokens(ctx, userID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to revoke tokens of deleted user")
	}
	if s.cleaners != nil && user.Role == domain.RoleCleaner {
		s.cleaners.Invalidate(ctx, user.ID)
	}

	audit.LogTarget(ctx, audit.ActionAdminDeleteUser, actor.ID, userID, "", "user deleted by admin")
	return nil
}

func (s *adminServiceImpl) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	filter.UserID = ""
	return s.repos.Bookings.List(ctx, filter)
}

// CreateAdmin creates an admin account. Only super admins may do this.
func (s *adminServiceImpl) CreateAdmin(ctx context.Context, actor Actor, req *domain.CreateAdminRequest) (*domain.UserResponse, error) {
	if !actor.IsSuperAdmin() {
		return nil, ErrForbidden
	}

	user, err := CreateAdminAccount(ctx, s.repos.Users, req, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionAdminCreate, actor.ID, user.ID, string(user.AdminRole), "admin created")
	resp := s.avatars.response(ctx, user)
	return &resp, nil
}

// CreateAdminAccount inserts an admin user. It is shared with the bootstrap CLI.
func CreateAdminAccount(ctx context.Context, users repository.UserRepository, req *domain.CreateAdminRequest, bcryptCost int) (*domain.User, error) {
	if !req.AdminRole.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := HashPassword(req.Password, bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsAdmin:      true,
		AdminRole:    req.AdminRole,
		Status:       domain.UserStatusActive,
		IsVerified:   true,
	}
	if err := users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrEmailExists) {
			l := log.Ctx(ctx)
			l.Error().Err(err).Msg("failed to create admin")
		}
		return nil, err
	}
	return user, nil
}
