package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/internal/config"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

var testConfig = config.WebSocketConfig{
	PingInterval:   time.Second,
	PongWait:       2 * time.Second,
	WriteWait:      time.Second,
	MaxMessageSize: 1024,
	SendBuffer:     8,
}

// serve upgrades every request and registers the connection for the user in the "user" query parameter.
func serve(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(r.URL.Query().Get("user"), h, conn, testConfig)
		if !h.Register(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, userID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount(userID) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DeliversToAddressee(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(testConfig)
	events := make(chan *pubsub.Event, 4)
	go h.Run(ctx, events)
	srv := serve(t, h)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, h, "alice", 1)
	waitForClients(t, h, "bob", 1)

	event, err := pubsub.NewEvent(pubsub.EventChatMessage, "alice", pubsub.ChatMessagePayload{ChatID: "c1", Content: "hi"})
	require.NoError(t, err)
	events <- event

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := alice.ReadMessage()
	require.NoError(t, err)

	var got pubsub.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, pubsub.EventChatMessage, got.Type)
	var payload pubsub.ChatMessagePayload
	require.NoError(t, got.UnmarshalPayload(&payload))
	assert.Equal(t, "hi", payload.Content)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err, "bob should not receive alice's notification")
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(testConfig)
	events := make(chan *pubsub.Event, 4)
	go h.Run(ctx, events)
	srv := serve(t, h)

	first := dial(t, srv, "alice")
	second := dial(t, srv, "alice")
	waitForClients(t, h, "alice", 2)

	event, err := pubsub.NewEvent(pubsub.EventBookingStatus, "alice", pubsub.BookingPayload{BookingID: "b1", Status: "confirmed"})
	require.NoError(t, err)
	events <- event

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(data), pubsub.EventBookingStatus)
	}

	require.NoError(t, first.Close())
	waitForClients(t, h, "alice", 1)
}

func TestHub_StartWithMemoryPubSub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := pubsub.NewMemoryPubSub()
	h := NewHub(testConfig)
	require.NoError(t, h.Start(ctx, bus))
	srv := serve(t, h)

	conn := dial(t, srv, "carol")
	waitForClients(t, h, "carol", 1)

	event, err := pubsub.NewEvent(pubsub.EventSupportTicketUpdate, "carol", pubsub.TicketPayload{TicketID: "t1", Status: "resolved"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, pubsub.UserNotifyChannel("carol"), event))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "resolved")
}

func TestHub_StopClosesConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := NewHub(testConfig)
	go h.Run(ctx, make(chan *pubsub.Event))
	srv := serve(t, h)

	conn := dial(t, srv, "dave")
	waitForClients(t, h, "dave", 1)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, h.ClientCount("dave"))
}
