package realtime

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Relay carries envelopes between hub instances.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
}

// RedisRelay publishes envelopes on one Pub/Sub channel and feeds every
// envelope it receives back into the local hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(ctx context.Context, addr, password string, db int, channel string) (*RedisRelay, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}
	return &RedisRelay{client: rdb, channel: channel}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	return r.client.Publish(ctx, r.channel, body).Err()
}

// Listen blocks until ctx is done, handing every received envelope to deliver.
func (r *RedisRelay) Listen(ctx context.Context, deliver func(Envelope)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe")
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.WithError(err).Warn("⚠️ dropping malformed relay message")
				continue
			}
			deliver(env)
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
