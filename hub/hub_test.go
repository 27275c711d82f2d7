package hub

import (
	"testing"

	"canvas-earth/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string) core.ChangeEvent {
	return core.ChangeEvent{Type: core.EventDelete, ObjectID: id}
}

func TestAllSubscribersReceiveEventsInPublishOrder(t *testing.T) {
	h := New()
	defer h.Close()

	first := h.Subscribe()
	second := h.Subscribe()

	h.Publish(event("a"))
	h.Publish(event("b"))
	h.Publish(event("c"))

	for _, sub := range []*Subscriber{first, second} {
		assert.Equal(t, "a", (<-sub.Events()).ObjectID)
		assert.Equal(t, "b", (<-sub.Events()).ObjectID)
		assert.Equal(t, "c", (<-sub.Events()).ObjectID)
	}
}

func TestLateSubscriberSeesNoHistory(t *testing.T) {
	h := New()
	defer h.Close()

	h.Publish(event("before"))

	sub := h.Subscribe()
	h.Publish(event("after"))

	assert.Equal(t, "after", (<-sub.Events()).ObjectID)
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected replayed event %v", ev)
	default:
	}
}

func TestUnsubscribeClosesStream(t *testing.T) {
	h := New()
	defer h.Close()

	sub := h.Subscribe()
	h.Unsubscribe(sub)

	_, open := <-sub.Events()
	assert.False(t, open)

	// Double unsubscribe is harmless.
	h.Unsubscribe(sub)

	// Publishing after removal only reaches remaining subscribers.
	other := h.Subscribe()
	h.Publish(event("x"))
	assert.Equal(t, "x", (<-other.Events()).ObjectID)
}

func TestSlowSubscriberNeverBlocksPublisher(t *testing.T) {
	h := New()
	defer h.Close()

	slow := h.Subscribe()

	// Far more events than the subscriber buffer holds; Publish must not
	// block even though nobody is reading.
	for i := 0; i < subscriberBuffer*4; i++ {
		h.Publish(event("flood"))
	}

	// The buffer is full; everything beyond it was dropped for this
	// subscriber.
	received := 0
	for {
		select {
		case <-slow.Events():
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestCloseDetachesEverySubscriber(t *testing.T) {
	h := New()

	first := h.Subscribe()
	second := h.Subscribe()
	h.Close()

	_, open := <-first.Events()
	require.False(t, open)
	_, open = <-second.Events()
	require.False(t, open)

	// Publish and a fresh Subscribe after close are no-ops.
	h.Publish(event("x"))
	late := h.Subscribe()
	_, open = <-late.Events()
	assert.False(t, open)
}
