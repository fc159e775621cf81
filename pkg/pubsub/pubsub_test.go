package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchChannel(t *testing.T) {
	tests := []struct {
		key     string
		pattern bool
		channel string
		want    bool
	}{
		{UserNotifyChannel("u1"), false, "user:u1:notify", true},
		{UserNotifyChannel("u1"), false, "user:u2:notify", false},
		{PatternUserNotify, true, "user:u2:notify", true},
		{PatternUserNotify, false, "user:u2:notify", false},
		{PatternUserNotify, true, "room:r1:events", false},
		{PatternUserNotify, true, "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchChannel(tt.key, tt.pattern, tt.channel), "%s %v %s", tt.key, tt.pattern, tt.channel)
	}
}

func TestKeyFromChannel(t *testing.T) {
	key, err := KeyFromChannel("user:abc:notify")
	require.NoError(t, err)
	assert.Equal(t, "abc", key)

	_, err = KeyFromChannel("user::notify")
	assert.Error(t, err)
}

func TestMemoryPubSub_PatternDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewMemoryPubSub()
	ch, err := bus.SubscribePattern(ctx, PatternUserNotify)
	require.NoError(t, err)

	evt, err := NewEvent(EventBookingStatus, "u1", BookingPayload{BookingID: "b1", Status: "confirmed"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, UserNotifyChannel("u1"), evt))
	require.NoError(t, bus.Publish(ctx, "room:r1:events", evt))

	select {
	case got := <-ch:
		assert.Equal(t, EventBookingStatus, got.Type)
		var p BookingPayload
		require.NoError(t, got.UnmarshalPayload(&p))
		assert.Equal(t, "confirmed", p.Status)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected event on non-matching channel: %+v", got)
	default:
	}
}

func TestMemoryPubSub_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewMemoryPubSub()
	ch, err := bus.Subscribe(context.Background(), UserNotifyChannel("u1"))
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(context.Background(), UserNotifyChannel("u1")))

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestNewPubSub_UnknownDriver(t *testing.T) {
	_, err := NewPubSub(Config{Driver: "nats"})
	assert.Error(t, err)

	bus, err := NewPubSub(Config{Driver: "memory"})
	require.NoError(t, err)
	assert.NoError(t, bus.Close())
}
