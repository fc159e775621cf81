package pubsub

import (
	"fmt"
	"time"
)

// Drivers accepted by NewPubSub.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverKafka  = "kafka"
)

// DefaultKafkaTopic receives every user notification when Kafka is the driver.
const DefaultKafkaTopic = "skillskonnect-notify"

// Config selects the notification bus. The memory driver only reaches
// websocket clients connected to the same process.
type Config struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	Topic      string `mapstructure:"topic"`
	GroupID    string `mapstructure:"group_id"`
	Partitions int    `mapstructure:"partitions"`
}

// NewPubSub creates the bus named by cfg.Driver. An empty driver means memory.
func NewPubSub(cfg Config) (PubSub, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryPubSub(), nil
	case DriverRedis:
		return NewRedisPubSub(cfg.Redis)
	case DriverKafka:
		return NewKafkaPubSub(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}
