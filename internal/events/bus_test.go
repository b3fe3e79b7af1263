package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (r *recorder) observe(_ Kind, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = map[string]int{}
	}
	r.results[result]++
}

func (r *recorder) count(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[result]
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBus_PublishToSubscribers(t *testing.T) {
	bus := NewBus(4, zaptest.NewLogger(t).Sugar())

	a, cancelA := bus.Subscribe("c1")
	defer cancelA()
	b, cancelB := bus.Subscribe("c1")
	defer cancelB()
	other, cancelOther := bus.Subscribe("c2")
	defer cancelOther()

	bus.Publish(Event{CircleID: "c1", Kind: KindJoinRequestCount, Value: 3})

	for _, ch := range []<-chan Event{a, b} {
		e := receive(t, ch)
		assert.Equal(t, KindJoinRequestCount, e.Kind)
		assert.Equal(t, int64(3), e.Value)
		assert.False(t, e.At.IsZero(), "publish stamps the time")
	}
	assert.Empty(t, other)
}

func TestBus_NoSubscriberIsDropped(t *testing.T) {
	rec := &recorder{}
	bus := NewBus(1, zaptest.NewLogger(t).Sugar(), WithObserver(rec.observe))

	bus.Publish(Event{CircleID: "c1", Kind: KindMemberCount, Value: 1})

	assert.Equal(t, 1, rec.count(ResultNoSubscriber))
}

func TestBus_FullBufferNeverBlocks(t *testing.T) {
	rec := &recorder{}
	bus := NewBus(1, zaptest.NewLogger(t).Sugar(), WithObserver(rec.observe))
	ch, cancel := bus.Subscribe("c1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Event{CircleID: "c1", Kind: KindMemberCount, Value: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Equal(t, int64(0), receive(t, ch).Value, "first event kept")
	assert.Equal(t, 1, rec.count(ResultDelivered))
	assert.Equal(t, 9, rec.count(ResultDropped))
}

func TestBus_CancelClosesAndUnregisters(t *testing.T) {
	bus := NewBus(1, zaptest.NewLogger(t).Sugar())
	ch, cancel := bus.Subscribe("c1")
	require.Equal(t, 1, bus.Subscribers("c1"))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers("c1"))

	assert.NotPanics(t, func() {
		bus.Publish(Event{CircleID: "c1", Kind: KindMemberCount})
	})
}

func TestBus_RelaysOnlyLocalPublishes(t *testing.T) {
	bus := NewBus(1, zaptest.NewLogger(t).Sugar())
	var relayed []Event
	bus.AddRelay(func(e Event) { relayed = append(relayed, e) })

	bus.Publish(Event{CircleID: "c1", Kind: KindMemberCount, Value: 2})
	bus.Deliver(Event{CircleID: "c1", Kind: KindMemberCount, Value: 5})

	require.Len(t, relayed, 1)
	assert.Equal(t, int64(2), relayed[0].Value)
}

func TestBus_ConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus(8, zaptest.NewLogger(t).Sugar())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancel := bus.Subscribe("c1")
			cancel()
		}()
		go func(v int64) {
			defer wg.Done()
			bus.Publish(Event{CircleID: "c1", Kind: KindUnreadCount, Value: v})
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 0, bus.Subscribers("c1"))
}
