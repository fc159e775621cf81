package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

func TestSupportService_CreateAssignsReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	ticket, err := env.supportSvc.Create(ctx, user, &domain.CreateTicketRequest{
		Subject:  "Refund",
		Message:  "Cleaner did not show up",
		Category: domain.TicketBooking,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.Reference, "SK-"))
	assert.Len(t, ticket.Reference, 11)
	assert.Equal(t, domain.PriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketOpen, ticket.Status)

	list, total, err := env.supportSvc.ListMine(ctx, user, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, ticket.ID, list[0].ID)
}

func TestSupportService_GetOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	other := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	admin := env.admin(t, "help@example.com", domain.AdminRoleSupport)

	ticket, err := env.supportSvc.Create(ctx, owner, &domain.CreateTicketRequest{Subject: "Login", Message: "Cannot log in", Category: domain.TicketAccount})
	require.NoError(t, err)

	_, err = env.supportSvc.Get(ctx, other, ticket.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.supportSvc.Get(ctx, admin, ticket.ID)
	assert.NoError(t, err)
}

func TestSupportService_AdminUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	admin := env.admin(t, "help@example.com", domain.AdminRoleSupport)

	ticket, err := env.supportSvc.Create(ctx, owner, &domain.CreateTicketRequest{
		Subject: "Payment", Message: "Charged twice", Category: domain.TicketPayment, Priority: domain.PriorityHigh,
	})
	require.NoError(t, err)

	_, err = env.supportSvc.AdminUpdate(ctx, admin, ticket.ID, &domain.UpdateTicketRequest{AssignedTo: &owner.ID})
	assert.ErrorIs(t, err, ErrInvalidAssignee)

	resolved := domain.TicketResolved
	response := "Refund issued"
	got, err := env.supportSvc.AdminUpdate(ctx, admin, ticket.ID, &domain.UpdateTicketRequest{
		Status:        &resolved,
		AdminResponse: &response,
		AssignedTo:    &admin.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketResolved, got.Status)
	assert.Equal(t, "Refund issued", got.AdminResponse)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, admin.ID, *got.AssignedTo)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, []string{pubsub.EventSupportTicketUpdate}, env.pub.typesFor(owner.ID))

	reopened := domain.TicketOpen
	got, err = env.supportSvc.AdminUpdate(ctx, admin, ticket.ID, &domain.UpdateTicketRequest{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)
	assert.Equal(t, "Refund issued", got.AdminResponse)

	stored, err := env.supportSvc.Get(ctx, admin, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResolvedAt)

	list, total, err := env.supportSvc.AdminList(ctx, domain.TicketFilter{Priority: domain.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
