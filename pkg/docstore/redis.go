package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each document under one key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects and pings Redis.
func NewRedisBackend(opts ...RedisOption) (*RedisBackend, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		Prefix:       "bizpulse",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBackend{client: client, prefix: cfg.Prefix}, nil
}

func (b *RedisBackend) Document(name string) Store {
	key := name
	if b.prefix != "" {
		key = b.prefix + ":" + name
	}
	return &redisDoc{client: b.client, key: key}
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

type redisDoc struct {
	client *redis.Client
	key    string
}

func (d *redisDoc) Load(ctx context.Context) ([]byte, error) {
	data, err := d.client.Get(ctx, d.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", d.key, err)
	}
	return data, nil
}

func (d *redisDoc) Save(ctx context.Context, data []byte) error {
	if err := d.client.Set(ctx, d.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", d.key, err)
	}
	return nil
}
