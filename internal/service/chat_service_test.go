package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

func TestChatService_OpenValidatesParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	otherClient := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)

	chat, created, err := env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: cleaner.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, client.ID, chat.ClientID)
	assert.Equal(t, cleaner.ID, chat.CleanerID)

	again, created, err := env.chatSvc.Open(ctx, cleaner, &domain.CreateChatRequest{ParticipantID: client.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)

	_, _, err = env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: otherClient.ID})
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, _, err = env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: client.ID})
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, _, err = env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: "missing"})
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}

func TestChatService_OpenWithBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	otherClient := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	b := env.book(t, otherClient, cleaner, 1)

	_, _, err := env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: cleaner.ID, BookingID: &b.ID})
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	chat, _, err := env.chatSvc.Open(ctx, otherClient, &domain.CreateChatRequest{ParticipantID: cleaner.ID, BookingID: &b.ID})
	require.NoError(t, err)
	require.NotNil(t, chat.BookingID)
	assert.Equal(t, b.ID, *chat.BookingID)
}

func TestChatService_SendAndRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	stranger := env.register(t, "Eve", "eve@example.com", domain.RoleClient)

	chat, _, err := env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: cleaner.ID})
	require.NoError(t, err)

	msg, err := env.chatSvc.Send(ctx, client, chat.ID, "  Hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", msg.Content)
	assert.Equal(t, []string{pubsub.EventChatMessage}, env.pub.typesFor(cleaner.ID))

	_, err = env.chatSvc.Send(ctx, stranger, chat.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.chatSvc.Send(ctx, client, chat.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = env.chatSvc.Send(ctx, client, chat.ID, strings.Repeat("é", domain.MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = env.chatSvc.Send(ctx, client, chat.ID, strings.Repeat("é", domain.MaxMessageLength))
	assert.NoError(t, err)

	summaries, err := env.chatSvc.List(ctx, cleaner)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].Participant)
	assert.Equal(t, client.ID, summaries[0].Participant.ID)

	n, err := env.chatSvc.MarkRead(ctx, client, chat.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "own messages are not marked read")

	n, err = env.chatSvc.MarkRead(ctx, cleaner, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{pubsub.EventChatRead}, env.pub.typesFor(client.ID))

	summaries, err = env.chatSvc.List(ctx, cleaner)
	require.NoError(t, err)
	assert.Zero(t, summaries[0].UnreadCount)
}

func TestChatService_MessagesPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	cleaner := env.cleaner(t, "Bola", "bola@example.com", 20)
	stranger := env.register(t, "Eve", "eve@example.com", domain.RoleClient)

	chat, _, err := env.chatSvc.Open(ctx, client, &domain.CreateChatRequest{ParticipantID: cleaner.ID})
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := env.chatSvc.Send(ctx, client, chat.ID, text)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	msgs, err := env.chatSvc.Messages(ctx, cleaner, chat.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "three", msgs[0].Content)

	msgs, err = env.chatSvc.Messages(ctx, cleaner, chat.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	older, err := env.chatSvc.Messages(ctx, cleaner, chat.ID, &msgs[1].CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "one", older[0].Content)

	_, err = env.chatSvc.Messages(ctx, stranger, chat.ID, nil, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}
