package pubsub

import (
	"context"
	"sync"
)

type memorySubscription struct {
	pattern bool
	ch      chan *Event
	cancel  context.CancelFunc
}

// MemoryPubSub is an in-process PubSub for single-instance deployments and tests.
// Channel patterns use the same glob syntax as Redis PSUBSCRIBE.
type MemoryPubSub struct {
	mu   sync.RWMutex
	subs map[string]*memorySubscription
}

// NewMemoryPubSub creates an in-process bus.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string]*memorySubscription)}
}

// Publish delivers the event to every matching subscription without blocking.
func (m *MemoryPubSub) Publish(_ context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, sub := range m.subs {
		if !matchChannel(key, sub.pattern, channel) {
			continue
		}

		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe subscribes to a specific channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.subscribe(ctx, channel, false), nil
}

// SubscribePattern subscribes to channels matching a glob pattern.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return m.subscribe(ctx, pattern, true), nil
}

func (m *MemoryPubSub) subscribe(ctx context.Context, key string, pattern bool) <-chan *Event {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{pattern: pattern, ch: make(chan *Event, 100), cancel: cancel}

	m.mu.Lock()
	if existing, ok := m.subs[key]; ok {
		existing.cancel()
	}
	m.subs[key] = sub
	m.mu.Unlock()

	go func() {
		<-subCtx.Done()
		m.mu.Lock()
		if m.subs[key] == sub {
			delete(m.subs, key)
		}
		close(sub.ch)
		m.mu.Unlock()
	}()

	return sub.ch
}

// Unsubscribe unsubscribes from a channel or pattern.
func (m *MemoryPubSub) Unsubscribe(_ context.Context, channel string) error {
	m.mu.RLock()
	sub, ok := m.subs[channel]
	m.mu.RUnlock()
	if ok {
		sub.cancel()
	}
	return nil
}

// Close cancels every subscription.
func (m *MemoryPubSub) Close() error {
	m.mu.RLock()
	subs := make([]*memorySubscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	for _, sub := range subs {
		sub.cancel()
	}
	return nil
}
