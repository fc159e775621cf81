package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/database"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

// recordingPublisher captures published events per channel.
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]*pubsub.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][]*pubsub.Event)}
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[channel] = append(p.events[channel], event)
	return nil
}

// typesFor returns the event types delivered to userID in order.
func (p *recordingPublisher) typesFor(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events[pubsub.UserNotifyChannel(userID)] {
		types = append(types, e.Type)
	}
	return types
}

// testEnv wires every service against an in-memory database.
type testEnv struct {
	users        *repository.GormUserRepository
	bookingsRepo *repository.GormBookingRepository
	reviewsRepo  *repository.GormReviewRepository
	chatsRepo    *repository.GormChatRepository
	subsRepo     *repository.GormSubscriptionRepository
	ticketsRepo  *repository.GormTicketRepository
	tokens       *jwt.Manager
	pub          *recordingPublisher
	userSvc      UserService
	cleanerSvc   CleanerService
	bookingSvc   BookingService
	reviewSvc    ReviewService
	subSvc       SubscriptionService
	supportSvc   SupportService
	chatSvc      ChatService
	adminSvc     AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(&database.Config{Driver: "sqlite", FilePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	tokens, err := jwt.NewManager(testSecret, time.Hour, 24*time.Hour, "skillskonnect-test", jwt.NewMemoryVersionStore())
	require.NoError(t, err)

	env := &testEnv{
		users:        repository.NewGormUserRepository(db),
		bookingsRepo: repository.NewGormBookingRepository(db),
		reviewsRepo:  repository.NewGormReviewRepository(db),
		chatsRepo:    repository.NewGormChatRepository(db),
		subsRepo:     repository.NewGormSubscriptionRepository(db),
		ticketsRepo:  repository.NewGormTicketRepository(db),
		tokens:       tokens,
		pub:          newRecordingPublisher(),
	}
	notifier := NewNotifier(env.pub)

	env.cleanerSvc = NewCleanerService(env.users, env.reviewsRepo, nil, time.Minute, nil, 0)
	env.userSvc = NewUserService(env.users, tokens, nil, env.cleanerSvc, UserServiceConfig{BcryptCost: bcrypt.MinCost})
	env.bookingSvc = NewBookingService(env.bookingsRepo, env.users, notifier)
	env.reviewSvc = NewReviewService(env.reviewsRepo, env.bookingsRepo, env.cleanerSvc, notifier)
	env.subSvc = NewSubscriptionService(env.subsRepo, env.users, notifier)
	env.supportSvc = NewSupportService(env.ticketsRepo, env.users, notifier)
	env.chatSvc = NewChatService(env.chatsRepo, env.users, env.bookingsRepo, notifier)
	env.adminSvc = NewAdminService(AdminRepositories{
		Users:         env.users,
		Bookings:      env.bookingsRepo,
		Tickets:       env.ticketsRepo,
		Subscriptions: env.subsRepo,
	}, tokens, env.cleanerSvc, nil, 0, bcrypt.MinCost)

	return env
}

// register creates an account through the user service and returns its actor.
func (e *testEnv) register(t *testing.T, name, email string, role domain.Role) Actor {
	t.Helper()
	resp, err := e.userSvc.Register(context.Background(), &domain.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return Actor{ID: resp.User.ID, Role: role}
}

// cleaner registers a cleaner with an hourly rate.
func (e *testEnv) cleaner(t *testing.T, name, email string, rate float64) Actor {
	t.Helper()
	actor := e.register(t, name, email, domain.RoleCleaner)
	_, err := e.cleanerSvc.UpdateProfile(context.Background(), actor.ID, &domain.UpdateCleanerProfileRequest{HourlyRate: &rate})
	require.NoError(t, err)
	return actor
}

// admin creates an admin account directly.
func (e *testEnv) admin(t *testing.T, email string, role domain.AdminRole) Actor {
	t.Helper()
	user, err := CreateAdminAccount(context.Background(), e.users, &domain.CreateAdminRequest{
		Name:      "Admin",
		Email:     email,
		Password:  "adminpass",
		AdminRole: role,
	}, bcrypt.MinCost)
	require.NoError(t, err)
	return Actor{ID: user.ID, Role: domain.RoleAdmin, IsAdmin: true, AdminRole: role}
}

// book creates a pending booking of cleaner by client.
func (e *testEnv) book(t *testing.T, client, cleaner Actor, hours int) *domain.Booking {
	t.Helper()
	b, err := e.bookingSvc.Create(context.Background(), client, &domain.CreateBookingRequest{
		CleanerID:     cleaner.ID,
		ServiceType:   "Deep Cleaning",
		ScheduledDate: "2026-11-02",
		ScheduledTime: "09:30",
		DurationHours: hours,
		Address:       "12 Marina Road",
	})
	require.NoError(t, err)
	return b
}

// complete walks a booking through to completed as its cleaner.
func (e *testEnv) complete(t *testing.T, cleaner Actor, bookingID string) {
	t.Helper()
	for _, status := range []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted} {
		_, err := e.bookingSvc.UpdateStatus(context.Background(), cleaner, bookingID, &domain.UpdateBookingStatusRequest{Status: status})
		require.NoError(t, err)
	}
}
