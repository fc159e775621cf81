package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

func TestReviewService_CreateRequiresCompletedOwnBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	other := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	b := env.book(t, client, cleaner, 2)

	req := &domain.CreateReviewRequest{BookingID: b.ID, Rating: 5, Comment: " Spotless "}

	_, err := env.reviewSvc.Create(ctx, client, req)
	assert.ErrorIs(t, err, ErrBookingNotCompleted)

	env.complete(t, cleaner, b.ID)

	_, err = env.reviewSvc.Create(ctx, other, req)
	assert.ErrorIs(t, err, ErrForbidden)

	review, err := env.reviewSvc.Create(ctx, client, req)
	require.NoError(t, err)
	assert.Equal(t, "Spotless", review.Comment)
	assert.Equal(t, cleaner.ID, review.CleanerID)
	assert.Contains(t, env.pub.typesFor(cleaner.ID), pubsub.EventReviewCreated)

	_, err = env.reviewSvc.Create(ctx, client, req)
	assert.ErrorIs(t, err, repository.ErrReviewExists)

	_, err = env.reviewSvc.Create(ctx, client, &domain.CreateReviewRequest{BookingID: "missing", Rating: 3})
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestReviewService_RatingRecomputed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	admin := env.admin(t, "mod@example.com", domain.AdminRoleModerator)

	var reviews []*domain.Review
	for _, rating := range []int{5, 4} {
		b := env.book(t, client, cleaner, 1)
		env.complete(t, cleaner, b.ID)
		r, err := env.reviewSvc.Create(ctx, client, &domain.CreateReviewRequest{BookingID: b.ID, Rating: rating})
		require.NoError(t, err)
		reviews = append(reviews, r)
	}

	got, err := env.cleanerSvc.Get(ctx, cleaner.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.InDelta(t, 4.5, got.Profile.RatingAvg, 0.001)
	assert.Equal(t, 2, got.Profile.ReviewCount)

	require.NoError(t, env.reviewSvc.Delete(ctx, admin, reviews[1].ID))

	got, err = env.cleanerSvc.Get(ctx, cleaner.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got.Profile.RatingAvg, 0.001)
	assert.Equal(t, 1, got.Profile.ReviewCount)

	_, err = env.reviewSvc.Get(ctx, reviews[1].ID)
	assert.ErrorIs(t, err, repository.ErrReviewNotFound)
}
