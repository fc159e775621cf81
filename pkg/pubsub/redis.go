package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// RedisPubSub fans notifications out over Redis PUBLISH/PSUBSCRIBE.
type RedisPubSub struct {
	client     *redis.Client
	ownsClient bool

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisPubSub dials a dedicated Redis connection pool for the bus.
func NewRedisPubSub(cfg RedisConfig) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	r := NewRedisPubSubFromClient(client)
	r.ownsClient = true
	return r, nil
}

// NewRedisPubSubFromClient shares an existing client. Close leaves the client open.
func NewRedisPubSubFromClient(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client, subs: make(map[string]*redis.PubSub)}
}

func (r *RedisPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (r *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return r.track(ctx, channel, r.client.Subscribe(ctx, channel))
}

func (r *RedisPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return r.track(ctx, pattern, r.client.PSubscribe(ctx, pattern))
}

// track waits for Redis to confirm the subscription, so nothing published
// after it returns is missed, then starts forwarding.
func (r *RedisPubSub) track(ctx context.Context, key string, ps *redis.PubSub) (<-chan *Event, error) {
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	r.mu.Lock()
	old := r.subs[key]
	r.subs[key] = ps
	r.mu.Unlock()
	if old != nil {
		old.Close()
	}

	events := make(chan *Event, 100)
	go r.forward(ctx, key, ps, events)
	return events, nil
}

func (r *RedisPubSub) forward(ctx context.Context, key string, ps *redis.PubSub, events chan<- *Event) {
	defer close(events)
	l := log.L()
	msgs := ps.Channel(redis.WithChannelSize(100))

	for {
		var msg *redis.Message
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			msg = m
		}

		event := new(Event)
		if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
			l.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed event")
			continue
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return
		default:
			l.Warn().Str("subscription", key).Str("type", event.Type).Msg("subscriber full, event dropped")
		}
	}
}

func (r *RedisPubSub) Unsubscribe(_ context.Context, channel string) error {
	r.mu.Lock()
	ps, ok := r.subs[channel]
	delete(r.subs, channel)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return ps.Close()
}

// Close ends every subscription and, when the bus dialed its own pool, closes it.
func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*redis.PubSub)
	r.mu.Unlock()

	for _, ps := range subs {
		ps.Close()
	}
	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}
