package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

func newAvailableHub() *Hub {
	h := NewHub(zerolog.Nop())
	h.SetAvailable(true)
	return h
}

func recv(t *testing.T, s *Subscription) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		return ev, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestSubscribeRequiresAvailableFeed(t *testing.T) {
	h := NewHub(zerolog.Nop())
	if _, err := h.Subscribe(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	h := newAvailableHub()
	a, _ := h.Subscribe(context.Background())
	b, _ := h.Subscribe(context.Background())
	defer a.Close()
	defer b.Close()

	h.Publish(ChangeEvent(domain.Stats{TotalCount: 10, ContributionCount: 1}))

	for _, s := range []*Subscription{a, b} {
		ev, ok := recv(t, s)
		if !ok || ev.Type != EventChange || ev.Stats == nil || ev.Stats.TotalCount != 10 {
			t.Fatalf("unexpected event %+v (ok=%v)", ev, ok)
		}
	}
}

func TestPublishKeepsLatestForSlowSubscriber(t *testing.T) {
	h := newAvailableHub()
	s, _ := h.Subscribe(context.Background())
	defer s.Close()

	for i := int64(1); i <= 5; i++ {
		h.Publish(ChangeEvent(domain.Stats{TotalCount: i, ContributionCount: i}))
	}

	ev, _ := recv(t, s)
	if ev.Stats.TotalCount != 5 {
		t.Fatalf("expected latest event, got total %d", ev.Stats.TotalCount)
	}
	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected extra event %+v", ev)
	default:
	}
}

func TestContextCancelUnsubscribes(t *testing.T) {
	h := newAvailableHub()
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := h.Subscribe(ctx)
	cancel()

	if _, ok := recv(t, s); ok {
		t.Fatal("expected events channel to close")
	}
	if !errors.Is(s.Err(), context.Canceled) {
		t.Fatalf("Err() = %v, want context.Canceled", s.Err())
	}
	if n := h.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestFeedLossEndsSubscriptions(t *testing.T) {
	h := newAvailableHub()
	s, _ := h.Subscribe(context.Background())

	h.SetAvailable(false)

	if _, ok := recv(t, s); ok {
		t.Fatal("expected events channel to close")
	}
	if !errors.Is(s.Err(), ErrUnavailable) {
		t.Fatalf("Err() = %v, want ErrUnavailable", s.Err())
	}
	s.Close()
}

func TestHubCloseRejectsNewSubscribers(t *testing.T) {
	h := newAvailableHub()
	s, _ := h.Subscribe(context.Background())
	h.Close()

	if _, ok := recv(t, s); ok {
		t.Fatal("expected events channel to close")
	}
	if _, err := h.Subscribe(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if h.Available() {
		t.Fatal("closed hub reports available")
	}
}
