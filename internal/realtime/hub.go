// Package realtime fans campaign change notifications out to connected clients.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable is returned while the upstream change feed is down.
	ErrUnavailable = errors.New("realtime: change feed unavailable")
	// ErrClosed is reported once a subscription or the hub has been closed.
	ErrClosed = errors.New("realtime: closed")
)

// Hub distributes events to subscribers. Publishing never blocks: each
// subscriber buffers a single pending event and newer events replace it.
type Hub struct {
	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	available bool
	closed    bool
	logger    zerolog.Logger
}

// NewHub creates a hub. It refuses subscriptions until SetAvailable(true).
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{subs: make(map[*Subscription]struct{}), logger: logger}
}

// Subscription is a live, non-restartable stream of events. Events is closed
// when the subscription ends; Err then reports why.
type Subscription struct {
	hub  *Hub
	ch   chan Event
	stop func() bool
	err  error
}

// Subscribe registers a subscriber. Cancelling ctx unsubscribes.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	h.mu.Lock()
	switch {
	case h.closed:
		h.mu.Unlock()
		return nil, ErrClosed
	case !h.available:
		h.mu.Unlock()
		return nil, ErrUnavailable
	}
	s := &Subscription{hub: h, ch: make(chan Event, 1)}
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	s.stop = context.AfterFunc(ctx, func() { h.remove(s, ctx.Err()) })
	h.logger.Debug().Int("subscribers", n).Msg("realtime: subscribed")
	return s, nil
}

// Publish delivers ev to every subscriber, replacing any undelivered event.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- ev:
			continue
		default:
		}
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// SetAvailable records whether the upstream feed is connected. Going
// unavailable ends every subscription so clients fall back to polling.
func (h *Hub) SetAvailable(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.available == ok {
		return
	}
	h.available = ok
	if !ok {
		h.endAllLocked(ErrUnavailable)
	}
}

// Available reports whether new subscriptions are accepted.
func (h *Hub) Available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.available && !h.closed
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.endAllLocked(ErrClosed)
}

func (h *Hub) endAllLocked(err error) {
	for s := range h.subs {
		h.endLocked(s, err)
	}
}

func (h *Hub) endLocked(s *Subscription, err error) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	s.err = err
	close(s.ch)
}

func (h *Hub) remove(s *Subscription, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.endLocked(s, err)
}

// Events returns the channel events are delivered on.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Err reports why the subscription ended, or nil while it is live.
func (s *Subscription) Err() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.err
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	if s.stop != nil {
		s.stop()
	}
	s.hub.remove(s, ErrClosed)
}
