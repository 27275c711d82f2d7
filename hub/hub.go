package hub

import (
	"sync"

	"canvas-earth/core"

	"github.com/sirupsen/logrus"
)

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriberBuffer = 64

type (
	// Subscriber is one attached consumer of the canvas-events channel.
	Subscriber struct {
		id     uint64
		events chan core.ChangeEvent
	}

	// Hub fans every published change event out to all currently attached
	// subscribers. Delivery is fire-and-forget: a publisher never blocks on
	// a slow subscriber, and a full subscriber buffer drops the event for
	// that subscriber only. Subscribers attaching after a publish never see
	// that event.
	Hub struct {
		mu          sync.Mutex
		subscribers map[uint64]*Subscriber
		nextID      uint64
		closed      bool
	}
)

func New() *Hub {
	return &Hub{
		subscribers: make(map[uint64]*Subscriber),
	}
}

// Events is the subscriber's stream. It is closed when the subscriber is
// removed or the hub shuts down.
func (s *Subscriber) Events() <-chan core.ChangeEvent {
	return s.events
}

// Subscribe attaches a new subscriber. The caller must eventually call
// Unsubscribe to stop receiving and release the channel.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{
		id:     h.nextID,
		events: make(chan core.ChangeEvent, subscriberBuffer),
	}
	if h.closed {
		close(sub.events)
		return sub
	}
	h.subscribers[sub.id] = sub
	logrus.WithField("subscriber", sub.id).Debug("Subscriber attached")
	return sub
}

// Unsubscribe detaches the subscriber and closes its event stream. In-flight
// events still buffered for it are discarded along with the channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}
	delete(h.subscribers, sub.id)
	close(sub.events)
	logrus.WithField("subscriber", sub.id).Debug("Subscriber detached")
}

// Publish delivers the event to every subscriber attached right now.
// Publishes are serialized, so all subscribers observe the same order.
func (h *Hub) Publish(event core.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for id, sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			logrus.WithFields(logrus.Fields{
				"subscriber": id,
				"eventType":  event.Type,
			}).Debug("Subscriber buffer full, dropping event")
		}
	}
}

// Close detaches all subscribers and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.events)
	}
}
