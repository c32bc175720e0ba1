package notify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Ensure Redis implements Notifier.
var _ Notifier = (*Redis)(nil)

// Redis publishes notifications on a Redis pub/sub channel and mirrors
// the last payload of each kind into a state hash, so late subscribers
// can still see the most recent alert.
type Redis struct {
	client  *redis.Client
	ctx     context.Context
	channel string
}

// NewRedis connects to Redis and publishes on the given channel. The
// state hash uses the channel name as its key.
func NewRedis(addr, password string, db int, channel string) (*Redis, error) {
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
		client:  client,
		ctx:     ctx,
		channel: channel,
	}, nil
}

func (r *Redis) writeAndPublish(field, value string) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, r.channel, field, value)
	pipe.Publish(r.ctx, r.channel, fmt.Sprintf("%s:%s", field, value))
	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to publish %s: %w", field, err)
	}
	return nil
}

func (r *Redis) Send(kind Kind, payload []byte) error {
	return r.writeAndPublish(kind.String(), hex.EncodeToString(payload))
}

func (r *Redis) SendVibration(v Vibration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal vibration pattern: %w", err)
	}
	return r.writeAndPublish(SetVibration.String(), string(payload))
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
