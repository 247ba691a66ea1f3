package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/logger"
)

// Redis relays events through a pub/sub channel so that every API process
// sees posts made through the others. Local delivery goes through Memory.
type Redis struct {
	rdb     *redis.Client
	channel string
	pubsub  *redis.PubSub
	local   *Memory
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewRedis subscribes to channel and starts relaying. rdb stays owned by the caller.
func NewRedis(ctx context.Context, rdb *redis.Client, channel string, bufferSize int) (*Redis, error) {
	pubsub := rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	r := &Redis{
		rdb:     rdb,
		channel: channel,
		pubsub:  pubsub,
		local:   NewMemory(bufferSize),
		done:    make(chan struct{}),
	}
	go r.relay()
	logger.Log.Info("relaying events through redis", "channel", channel)
	return r, nil
}

func (r *Redis) relay() {
	defer close(r.done)
	for msg := range r.pubsub.Channel() {
		var event api.ThreadEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logger.Log.Error("malformed event payload", "component", "events", "error", err)
			continue
		}
		_ = r.local.Publish(context.Background(), event)
	}
}

func (r *Redis) Publish(ctx context.Context, event api.ThreadEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (r *Redis) Subscribe() (<-chan api.ThreadEvent, func()) {
	return r.local.Subscribe()
}

func (r *Redis) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.pubsub.Close()
		<-r.done
		r.local.Close()
	})
	return r.closeErr
}
