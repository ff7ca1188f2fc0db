package events

import "sync"

// subscriberBuffer is the per-subscriber queue depth. A subscriber
// that falls this far behind starts losing events rather than blocking
// the publisher.
const subscriberBuffer = 256

// Hub fans events out to stream subscribers. It implements Publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*Subscriber]struct{})}
}

// Subscriber receives events for its chosen streams on C.
type Subscriber struct {
	hub     *Hub
	streams map[string]struct{}
	ch      chan Event
	once    sync.Once
}

// Subscribe attaches a subscriber to the given streams. No streams
// means all streams.
func (h *Hub) Subscribe(streams ...string) *Subscriber {
	s := &Subscriber{
		hub: h,
		ch:  make(chan Event, subscriberBuffer),
	}
	if len(streams) > 0 {
		s.streams = make(map[string]struct{}, len(streams))
		for _, name := range streams {
			s.streams[name] = struct{}{}
		}
	}

	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish delivers ev to every subscriber of its stream. Slow
// subscribers are skipped, never waited on.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers {
		if s.streams != nil {
			if _, ok := s.streams[ev.Stream()]; !ok {
				continue
			}
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// C returns the subscriber's event channel. It is closed by Close.
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Close detaches the subscriber and closes its channel.
func (s *Subscriber) Close() {
	s.hub.mu.Lock()
	delete(s.hub.subscribers, s)
	s.hub.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}
