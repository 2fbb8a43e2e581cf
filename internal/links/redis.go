// ABOUTME: Redis implementation of the link Store using go-redis
// ABOUTME: Keeps the serialized list under one key for deployments with an external KV

package links

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a single Redis key
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects to Redis using a connection URL in the form
// "redis://:password@host:6379/0" and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger := slog.Default().With("component", "links")
	logger.Info("Redis link store initialized", "addr", opt.Addr)
	return &RedisStore{client: client, logger: logger}, nil
}

// Get returns the stored list, or ErrNotFound when the key is absent.
func (s *RedisStore) Get(ctx context.Context) ([]Link, error) {
	value, err := s.client.Get(ctx, StorageKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading link list: %w", err)
	}

	var list []Link
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return nil, fmt.Errorf("decoding link list: %w", err)
	}
	return list, nil
}

// Put replaces the stored list in a single SET.
func (s *RedisStore) Put(ctx context.Context, list []Link) error {
	value, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding link list: %w", err)
	}

	if err := s.client.Set(ctx, StorageKey, value, 0).Err(); err != nil {
		return fmt.Errorf("writing link list: %w", err)
	}

	s.logger.Debug("saved link list", "count", len(list))
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
