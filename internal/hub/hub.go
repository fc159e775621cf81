package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/blackicons2020/skillskonnect-sub001/internal/config"
	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

// Hub fans notify-channel events out to the websocket connections of their
// addressee. A user may hold several connections at once.
type Hub struct {
	clients    map[string]map[*Client]struct{} // userID -> connections
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// Start subscribes to every user's notify channel and runs the hub until ctx is done.
func (h *Hub) Start(ctx context.Context, sub pubsub.Subscriber) error {
	events, err := sub.SubscribePattern(ctx, pubsub.PatternUserNotify)
	if err != nil {
		return err
	}
	go h.Run(ctx, events)
	return nil
}

// Run processes registrations and delivers events until ctx is done or events closes.
func (h *Hub) Run(ctx context.Context, events <-chan *pubsub.Event) {
	l := log.L()
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]struct{})
			}
			h.clients[client.UserID][client] = struct{}{}
			h.mu.Unlock()
			metrics.WSConnected(1)
			l.Debug().Str(log.FieldUserID, client.UserID).Msg("websocket client registered")

		case client := <-h.unregister:
			if h.remove(client) {
				metrics.WSConnected(-1)
				l.Debug().Str(log.FieldUserID, client.UserID).Msg("websocket client unregistered")
			}

		case event, ok := <-events:
			if !ok {
				l.Warn().Msg("notification subscription closed")
				h.closeAll()
				return
			}
			h.deliver(event)
		}
	}
}

// Register adds client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of open connections of userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) deliver(event *pubsub.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Str("event_type", event.Type).Msg("failed to encode notification")
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.clients[event.Key] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// A client that cannot keep up is disconnected.
	for _, client := range slow {
		if h.remove(client) {
			metrics.WSConnected(-1)
		}
	}
}

// remove drops client and closes its send queue. It reports whether the client was registered.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return false
	}
	if _, ok := conns[client]; !ok {
		return false
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.clients {
		for client := range conns {
			close(client.Send)
			metrics.WSConnected(-1)
		}
		delete(h.clients, userID)
	}
}
