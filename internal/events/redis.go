package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	relayBuffer         = 256
	redisPublishTimeout = 2 * time.Second
)

// RedisBridge relays bus events between instances over Redis pub/sub.
// Events are tagged with the instance's node id, and events that come back
// with the same id are ignored.
type RedisBridge struct {
	client  redis.UniversalClient
	channel string
	node    string
	bus     *Bus
	out     chan Event
	logger  *zap.SugaredLogger
}

// NewRedisBridge creates a bridge and registers it as a relay on bus.
func NewRedisBridge(client redis.UniversalClient, channel string, bus *Bus, logger *zap.SugaredLogger) *RedisBridge {
	r := &RedisBridge{
		client:  client,
		channel: channel,
		node:    uuid.NewString(),
		bus:     bus,
		out:     make(chan Event, relayBuffer),
		logger:  logger,
	}
	bus.AddRelay(r.relay)
	return r
}

// Node returns the id this instance stamps on outgoing events.
func (r *RedisBridge) Node() string {
	return r.node
}

// relay queues event for publishing; a full queue drops it.
func (r *RedisBridge) relay(event Event) {
	if event.Origin != "" {
		return
	}
	event.Origin = r.node
	select {
	case r.out <- event:
	default:
		r.logger.Warnw("Redis relay queue full, event dropped", "circle_id", event.CircleID, "kind", event.Kind)
	}
}

// Run subscribes to the channel and pumps events both ways until ctx is done.
func (r *RedisBridge) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		if err := sub.Close(); err != nil {
			r.logger.Warnw("Redis subscription close failed", "error", err)
		}
	}()

	// wait for the subscription to be confirmed before relaying
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.logger.Infow("Redis bridge started", "channel", r.channel, "node", r.node)

	incoming := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("Redis bridge stopped", "channel", r.channel)
			return nil
		case event := <-r.out:
			r.publish(ctx, event)
		case msg, ok := <-incoming:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisBridge) publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Errorw("Redis relay encode failed", "error", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, redisPublishTimeout)
	defer cancel()
	if err := r.client.Publish(pubCtx, r.channel, payload).Err(); err != nil {
		r.logger.Warnw("Redis relay publish failed", "circle_id", event.CircleID, "error", err)
	}
}

// handle delivers a remote event to local subscribers.
func (r *RedisBridge) handle(payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warnw("Redis relay decode failed", "error", err)
		return
	}
	if event.Origin == r.node || event.CircleID == "" {
		return
	}
	r.bus.Deliver(event)
}
