package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Ensure Redis implements Store.
var _ Store = (*Redis)(nil)

// Redis is a Store keeping all keys as fields of a single Redis hash,
// so the subsystem state can be inspected with one HGETALL.
type Redis struct {
	client *redis.Client
	ctx    context.Context
	key    string
}

// NewRedis connects to Redis and uses hashKey as the state hash.
func NewRedis(addr, password string, db int, hashKey string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{
		client: client,
		ctx:    ctx,
		key:    hashKey,
	}, nil
}

func (r *Redis) Get(key string) ([]byte, error) {
	val, err := r.client.HGet(r.ctx, r.key, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return []byte(val), nil
}

func (r *Redis) Put(key string, value []byte) error {
	if err := r.client.HSet(r.ctx, r.key, key, string(value)).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
