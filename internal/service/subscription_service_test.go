package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
)

func TestSubscriptionService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)

	sub, err := env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{
		Plan:      domain.PlanStandard,
		Frequency: domain.FrequencyBiweekly,
		CleanerID: &cleaner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.InDelta(t, 179.98, sub.Price, 0.001)
	assert.True(t, sub.AutoRenew)
	assert.Equal(t, domain.SubscriptionPeriod, sub.CurrentPeriodEnd.Sub(sub.CurrentPeriodStart))
	require.NotNil(t, sub.CleanerID)
	assert.Equal(t, cleaner.ID, *sub.CleanerID)

	_, err = env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyMonthly})
	assert.ErrorIs(t, err, repository.ErrSubscriptionExists)

	_, err = env.subSvc.Create(ctx, cleaner, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyMonthly})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubscriptionService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	_, err := env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{Plan: "gold", Frequency: domain.FrequencyWeekly})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	missing := "missing"
	_, err = env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyWeekly, CleanerID: &missing})
	assert.ErrorIs(t, err, ErrCleanerNotFound)

	off := false
	sub, err := env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyWeekly, AutoRenew: &off})
	require.NoError(t, err)
	assert.False(t, sub.AutoRenew)
	assert.InDelta(t, 199.96, sub.Price, 0.001)
}

func TestSubscriptionService_UpdateActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	other := env.register(t, "Ben", "ben@example.com", domain.RoleClient)

	sub, err := env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyMonthly})
	require.NoError(t, err)

	_, err = env.subSvc.Update(ctx, other, sub.ID, &domain.UpdateSubscriptionRequest{Action: domain.ActionPause})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.subSvc.Update(ctx, client, sub.ID, &domain.UpdateSubscriptionRequest{Action: domain.ActionResume})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := env.subSvc.Update(ctx, client, sub.ID, &domain.UpdateSubscriptionRequest{Action: domain.ActionPause})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionPaused, got.Status)

	got, err = env.subSvc.Update(ctx, client, sub.ID, &domain.UpdateSubscriptionRequest{Action: domain.ActionCancel})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, got.Status)

	_, err = env.subSvc.Update(ctx, client, sub.ID, &domain.UpdateSubscriptionRequest{Action: domain.ActionResume})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.subSvc.Create(ctx, client, &domain.CreateSubscriptionRequest{Plan: domain.PlanPremium, Frequency: domain.FrequencyMonthly})
	assert.NoError(t, err, "a cancelled subscription does not block a new one")

	list, err := env.subSvc.List(ctx, client)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSubscriptionService_ProcessRenewals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	renewing := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	lapsing := env.register(t, "Ben", "ben@example.com", domain.RoleClient)

	on, off := true, false
	a, err := env.subSvc.Create(ctx, renewing, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyMonthly, AutoRenew: &on})
	require.NoError(t, err)
	b, err := env.subSvc.Create(ctx, lapsing, &domain.CreateSubscriptionRequest{Plan: domain.PlanBasic, Frequency: domain.FrequencyMonthly, AutoRenew: &off})
	require.NoError(t, err)

	renewed, expired, err := env.subSvc.ProcessRenewals(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, renewed)
	assert.Zero(t, expired)

	// Two and a half periods later the renewing subscription skips ahead to the current period.
	now := a.CurrentPeriodStart.Add(2*domain.SubscriptionPeriod + domain.SubscriptionPeriod/2)
	renewed, expired, err = env.subSvc.ProcessRenewals(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed)
	assert.Equal(t, 1, expired)

	gotA, err := env.subSvc.Get(ctx, renewing, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, gotA.Status)
	assert.True(t, gotA.CurrentPeriodEnd.After(now))
	assert.False(t, gotA.CurrentPeriodStart.After(now))

	gotB, err := env.subSvc.Get(ctx, lapsing, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, gotB.Status)
}
