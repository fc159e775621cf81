package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"

	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// headerChannel carries the logical channel of a record so consumers can
// filter with the same channel and pattern semantics as Redis.
const headerChannel = "channel"

// KafkaPubSub implements PubSub on a single Kafka topic. Records are keyed by
// the channel's addressee, so one user's notifications stay ordered within a partition.
type KafkaPubSub struct {
	producer   *kafka.Producer
	config     KafkaConfig
	instanceID string

	mu     sync.Mutex
	subs   map[string]*kafkaSubscription
	doneCh chan struct{}
}

type kafkaSubscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
	stopped  chan struct{}
}

// NewKafkaPubSub connects a producer and makes sure the notify topic exists.
func NewKafkaPubSub(cfg KafkaConfig) (*KafkaPubSub, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultKafkaTopic
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "skillskonnect-notify"
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	k := &KafkaPubSub{
		producer:   p,
		config:     cfg,
		instanceID: uuid.New().String()[:8],
		subs:       make(map[string]*kafkaSubscription),
		doneCh:     make(chan struct{}),
	}
	go k.watchDeliveries()

	if err := k.ensureTopic(); err != nil {
		l := log.L()
		l.Warn().Err(err).Str("topic", cfg.Topic).Msg("could not ensure kafka topic")
	}

	return k, nil
}

func (k *KafkaPubSub) ensureTopic() error {
	admin, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	partitions := k.config.Partitions
	if partitions <= 0 {
		partitions = 4
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             k.config.Topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	for _, r := range results {
		if code := r.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("create topic %s: %s", r.Topic, r.Error.String())
		}
	}
	return nil
}

func (k *KafkaPubSub) watchDeliveries() {
	defer close(k.doneCh)
	l := log.L()
	for e := range k.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			l.Error().Err(m.TopicPartition.Error).Msg("kafka notification delivery failed")
		}
	}
}

// Publish produces event on the notify topic, keyed by the channel's addressee.
func (k *KafkaPubSub) Publish(_ context.Context, channel string, event *Event) error {
	key, err := KeyFromChannel(channel)
	if err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.config.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
		Headers:        []kafka.Header{{Key: headerChannel, Value: []byte(channel)}},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

func (k *KafkaPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return k.subscribe(ctx, channel, false)
}

func (k *KafkaPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return k.subscribe(ctx, pattern, true)
}

// subscribe starts a consumer in a group private to this instance and
// subscription, so every API replica sees every notification.
func (k *KafkaPubSub) subscribe(ctx context.Context, key string, pattern bool) (<-chan *Event, error) {
	groupID := fmt.Sprintf("%s-%s-%s", k.config.GroupID, k.instanceID, groupIDUnsafe.ReplaceAllString(key, "-"))

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  k.config.Brokers,
		"group.id":           groupID,
		"auto.offset.reset":  "latest",
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	if err := c.Subscribe(k.config.Topic, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", k.config.Topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &kafkaSubscription{consumer: c, cancel: cancel, stopped: make(chan struct{})}

	k.mu.Lock()
	old := k.subs[key]
	k.subs[key] = sub
	k.mu.Unlock()
	if old != nil {
		old.stop()
	}

	events := make(chan *Event, 100)
	go k.consume(subCtx, sub, key, pattern, events)

	return events, nil
}

func (k *KafkaPubSub) consume(ctx context.Context, sub *kafkaSubscription, key string, pattern bool, events chan<- *Event) {
	defer close(sub.stopped)
	defer close(events)
	l := log.L()

	for ctx.Err() == nil {
		msg, err := sub.consumer.ReadMessage(500 * time.Millisecond)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) {
				if kerr.IsTimeout() {
					continue
				}
				if kerr.IsFatal() {
					l.Error().Err(err).Str("subscription", key).Msg("kafka consumer failed")
					return
				}
			}
			l.Warn().Err(err).Str("subscription", key).Msg("kafka read error")
			continue
		}

		if !matchChannel(key, pattern, channelHeader(msg)) {
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.Warn().Err(err).Msg("dropping malformed kafka event")
			continue
		}

		select {
		case events <- &event:
		case <-ctx.Done():
			return
		default:
			l.Warn().Str("subscription", key).Str("type", event.Type).Msg("subscriber full, event dropped")
		}
	}
}

func channelHeader(msg *kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == headerChannel {
			return string(h.Value)
		}
	}
	return ""
}

// stop cancels the consume loop and closes the consumer once the loop has exited.
func (s *kafkaSubscription) stop() error {
	s.cancel()
	<-s.stopped
	return s.consumer.Close()
}

func (k *KafkaPubSub) Unsubscribe(_ context.Context, channel string) error {
	k.mu.Lock()
	sub, ok := k.subs[channel]
	delete(k.subs, channel)
	k.mu.Unlock()

	if !ok {
		return nil
	}
	if err := sub.stop(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}
	return nil
}

// Close stops every consumer, flushes pending notifications and closes the producer.
func (k *KafkaPubSub) Close() error {
	k.mu.Lock()
	subs := k.subs
	k.subs = make(map[string]*kafkaSubscription)
	k.mu.Unlock()

	for _, sub := range subs {
		_ = sub.stop()
	}

	k.producer.Flush(5000)
	k.producer.Close()
	<-k.doneCh
	return nil
}

var groupIDUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
