package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

func TestBookingService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 25)

	b := env.book(t, client, cleaner, 3)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, domain.PaymentUnpaid, b.PaymentStatus)
	assert.InDelta(t, 75.0, b.TotalPrice, 0.001)
	assert.Equal(t, []string{pubsub.EventBookingCreated}, env.pub.typesFor(cleaner.ID))

	_, err := env.bookingSvc.Create(ctx, cleaner, &domain.CreateBookingRequest{CleanerID: cleaner.ID, DurationHours: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.bookingSvc.Create(ctx, client, &domain.CreateBookingRequest{CleanerID: client.ID, DurationHours: 1})
	assert.ErrorIs(t, err, ErrCleanerNotFound)

	_, err = env.bookingSvc.Create(ctx, client, &domain.CreateBookingRequest{CleanerID: "missing", DurationHours: 1})
	assert.ErrorIs(t, err, ErrCleanerNotFound)
}

func TestBookingService_ListAndGetScopedToParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	ben := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	admin := env.admin(t, "root@example.com", domain.AdminRoleSupport)

	b := env.book(t, ada, cleaner, 2)
	env.book(t, ben, cleaner, 2)

	list, total, err := env.bookingSvc.List(ctx, ada, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	_, total, err = env.bookingSvc.List(ctx, cleaner, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = env.bookingSvc.List(ctx, admin, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = env.bookingSvc.List(ctx, ada, domain.BookingFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.bookingSvc.Get(ctx, ben, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := env.bookingSvc.Get(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestBookingService_UpdateOnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	b := env.book(t, client, cleaner, 2)

	hours := 4
	notes := "Bring ladder"
	updated, err := env.bookingSvc.Update(ctx, client, b.ID, &domain.UpdateBookingRequest{DurationHours: &hours, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.DurationHours)
	assert.InDelta(t, 80.0, updated.TotalPrice, 0.001)
	assert.Equal(t, "Bring ladder", updated.Notes)
	assert.Equal(t, "12 Marina Road", updated.Address)

	// A rate change after booking does not reprice the booking.
	newRate := 50.0
	_, err = env.cleanerSvc.UpdateProfile(ctx, cleaner.ID, &domain.UpdateCleanerProfileRequest{HourlyRate: &newRate})
	require.NoError(t, err)
	hours = 1
	updated, err = env.bookingSvc.Update(ctx, client, b.ID, &domain.UpdateBookingRequest{DurationHours: &hours})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, updated.TotalPrice, 0.001)

	_, err = env.bookingSvc.Update(ctx, cleaner, b.ID, &domain.UpdateBookingRequest{Notes: &notes})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.bookingSvc.UpdateStatus(ctx, cleaner, b.ID, &domain.UpdateBookingStatusRequest{Status: domain.BookingConfirmed})
	require.NoError(t, err)

	_, err = env.bookingSvc.Update(ctx, client, b.ID, &domain.UpdateBookingRequest{Notes: &notes})
	assert.ErrorIs(t, err, ErrBookingNotEditable)
}

func TestBookingService_RepriceFromAgreedRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 12.345)

	b := env.book(t, client, cleaner, 3)
	assert.Equal(t, 12.345, b.HourlyRate)
	assert.Equal(t, domain.BookingPrice(12.345, 3), b.TotalPrice)

	for _, hours := range []int{7, 11, 12} {
		h := hours
		updated, err := env.bookingSvc.Update(ctx, client, b.ID, &domain.UpdateBookingRequest{DurationHours: &h})
		require.NoError(t, err)
		assert.Equal(t, 12.345, updated.HourlyRate)
		assert.Equal(t, domain.BookingPrice(12.345, h), updated.TotalPrice, "hours=%d", h)
	}
}

func TestBookingService_UpdateStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	stranger := env.register(t, "Eve", "eve@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	admin := env.admin(t, "root@example.com", domain.AdminRoleSuper)
	support := env.admin(t, "help@example.com", domain.AdminRoleSupport)
	moderator := env.admin(t, "mod@example.com", domain.AdminRoleModerator)

	tests := []struct {
		name    string
		actor   Actor
		setup   []domain.BookingStatus
		to      domain.BookingStatus
		wantErr error
	}{
		{"cleaner confirms", cleaner, nil, domain.BookingConfirmed, nil},
		{"cleaner rejects", cleaner, nil, domain.BookingRejected, nil},
		{"cleaner cannot complete pending", cleaner, nil, domain.BookingCompleted, ErrInvalidTransition},
		{"client cancels pending", client, nil, domain.BookingCancelled, nil},
		{"client cancels confirmed", client, []domain.BookingStatus{domain.BookingConfirmed}, domain.BookingCancelled, nil},
		{"client cannot confirm", client, nil, domain.BookingConfirmed, ErrInvalidTransition},
		{"client cannot cancel in progress", client, []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress}, domain.BookingCancelled, ErrInvalidTransition},
		{"stranger forbidden", stranger, nil, domain.BookingCancelled, ErrForbidden},
		{"admin completes pending", admin, nil, domain.BookingCompleted, nil},
		{"admin same status", admin, nil, domain.BookingPending, ErrInvalidTransition},
		{"support admin read only", support, nil, domain.BookingCompleted, ErrForbidden},
		{"moderator read only", moderator, []domain.BookingStatus{domain.BookingConfirmed}, domain.BookingCancelled, ErrForbidden},
		{"unknown status", cleaner, nil, "archived", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := env.book(t, client, cleaner, 1)
			for _, s := range tt.setup {
				_, err := env.bookingSvc.UpdateStatus(ctx, cleaner, b.ID, &domain.UpdateBookingStatusRequest{Status: s})
				require.NoError(t, err)
			}

			got, err := env.bookingSvc.UpdateStatus(ctx, tt.actor, b.ID, &domain.UpdateBookingStatusRequest{Status: tt.to, Reason: "test"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}
}

func TestBookingService_StatusChangeNotifiesBothParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	b := env.book(t, client, cleaner, 1)

	_, err := env.bookingSvc.UpdateStatus(ctx, cleaner, b.ID, &domain.UpdateBookingStatusRequest{Status: domain.BookingConfirmed})
	require.NoError(t, err)

	assert.Equal(t, []string{pubsub.EventBookingStatus}, env.pub.typesFor(client.ID))
	assert.Equal(t, []string{pubsub.EventBookingCreated, pubsub.EventBookingStatus}, env.pub.typesFor(cleaner.ID))

	var payload pubsub.BookingPayload
	require.NoError(t, env.pub.events[pubsub.UserNotifyChannel(client.ID)][0].UnmarshalPayload(&payload))
	assert.Equal(t, "confirmed", payload.Status)
	assert.Equal(t, "pending", payload.PrevStatus)
	assert.Equal(t, cleaner.ID, payload.ChangedBy)
}

func TestBookingService_ExpireStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	b := env.book(t, client, cleaner, 1)

	n, err := env.bookingSvc.ExpireStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc := env.bookingSvc.(*bookingServiceImpl)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	n, err = env.bookingSvc.ExpireStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.bookingSvc.Get(ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingExpired, got.Status)
	assert.Contains(t, env.pub.typesFor(client.ID), pubsub.EventBookingStatus)
}
