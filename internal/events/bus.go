// Package events fans circle count changes out to live observers.
//
// Delivery is advisory. Publish never blocks and drops events that do not
// fit a subscriber's buffer. Observers recover by requesting a fresh snapshot.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind names the count an event carries.
type Kind string

// Count kinds.
const (
	KindJoinRequestCount Kind = "join_request_count"
	KindMemberCount      Kind = "member_count"
	KindUnreadCount      Kind = "unread_count"
)

// Delivery outcomes reported to the observer hook.
const (
	ResultDelivered    = "delivered"
	ResultDropped      = "dropped"
	ResultNoSubscriber = "no_subscriber"
)

// Event is a new count value for a circle.
type Event struct {
	CircleID string    `json:"circle_id"`
	Kind     Kind      `json:"kind"`
	Value    int64     `json:"value"`
	At       time.Time `json:"at"`
	// Origin identifies the instance that published the event.
	Origin string `json:"origin,omitempty"`
}

// Publisher accepts count events.
type Publisher interface {
	Publish(event Event)
}

// Subscriber hands out per-circle event streams.
type Subscriber interface {
	Subscribe(circleID string) (<-chan Event, func())
}

// Option configures a Bus.
type Option func(*Bus)

// WithObserver registers a hook called once per subscriber delivery attempt,
// or once with ResultNoSubscriber when nobody listens.
func WithObserver(fn func(kind Kind, result string)) Option {
	return func(b *Bus) { b.observe = fn }
}

// Bus is an in-process publish/subscribe hub keyed by circle.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]map[uint64]chan Event
	nextID  uint64
	buffer  int
	relays  []func(Event)
	observe func(Kind, string)
	logger  *zap.SugaredLogger
}

// NewBus creates a bus whose subscribers buffer up to buffer events.
func NewBus(buffer int, logger *zap.SugaredLogger, opts ...Option) *Bus {
	if buffer <= 0 {
		buffer = 1
	}
	b := &Bus{
		subs:    make(map[string]map[uint64]chan Event),
		buffer:  buffer,
		observe: func(Kind, string) {},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddRelay registers fn to receive every locally published event, e.g. to
// forward it to other instances. fn must not block.
func (b *Bus) AddRelay(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relays = append(b.relays, fn)
}

// Subscribe returns a channel of events for circleID and a cancel func.
// Cancel closes the channel and is safe to call more than once.
func (b *Bus) Subscribe(circleID string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[circleID] == nil {
		b.subs[circleID] = make(map[uint64]chan Event)
	}
	b.subs[circleID][id] = ch
	b.mu.Unlock()

	b.logger.Debugw("Subscribe completed", "circle_id", circleID, "subscription_id", id)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[circleID], id)
			if len(b.subs[circleID]) == 0 {
				delete(b.subs, circleID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers event to local subscribers and hands it to relays.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	b.Deliver(event)

	b.mu.RLock()
	relays := b.relays
	b.mu.RUnlock()
	for _, relay := range relays {
		relay(event)
	}
}

// Deliver sends event to local subscribers only.
func (b *Bus) Deliver(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subs[event.CircleID]
	if len(subs) == 0 {
		b.observe(event.Kind, ResultNoSubscriber)
		return
	}

	for id, ch := range subs {
		select {
		case ch <- event:
			b.observe(event.Kind, ResultDelivered)
		default:
			b.observe(event.Kind, ResultDropped)
			b.logger.Debugw("Deliver dropped event",
				"circle_id", event.CircleID,
				"kind", event.Kind,
				"subscription_id", id,
			)
		}
	}
}

// Subscribers returns the number of live subscriptions for circleID.
func (b *Bus) Subscribers(circleID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[circleID])
}
