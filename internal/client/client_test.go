package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/adapter/repo"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/http/handlers"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/http/httpapi"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/realtime"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/salawat"
)

type testBackend struct {
	store *repo.CampaignRepositoryMemory
	hub   *realtime.Hub
	srv   *httptest.Server
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	hub := realtime.NewHub(zerolog.Nop())
	store := repo.NewCampaignRepositoryMemory(func(s domain.Stats) { hub.Publish(realtime.ChangeEvent(s)) })
	app := handlers.NewApp(salawat.NewService(store, zerolog.Nop()), hub, zerolog.Nop())
	srv := httptest.NewServer(httpapi.NewRouter(app, httpapi.Options{Logger: zerolog.Nop(), DefaultLocale: "en"}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &testBackend{store: store, hub: hub, srv: srv}
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: transport})}, opts...)
	return New(baseURL, opts...)
}

func TestClientStatsAndIncrement(t *testing.T) {
	backend := newTestBackend(t)
	backend.store.Seed(domain.Stats{TotalCount: 100, ContributionCount: 5})
	c := newTestClient(t, backend.srv.URL+"/")

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats != (domain.Stats{TotalCount: 100, ContributionCount: 5}) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	res := c.Increment(context.Background(), 25, "Ali")
	if res.Err != nil {
		t.Fatalf("Increment() error = %v", res.Err)
	}
	if res.Stats != (domain.Stats{TotalCount: 125, ContributionCount: 6}) {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
}

func TestClientIncrementClassifiesErrors(t *testing.T) {
	backend := newTestBackend(t)
	c := newTestClient(t, backend.srv.URL, WithLocale("ar"))

	res := c.Increment(context.Background(), 0, "")
	if res.Kind != KindValidation || !errors.Is(res.Err, domain.ErrValidation) {
		t.Fatalf("expected validation result, got %+v", res)
	}
	var apiErr *APIError
	if !errors.As(res.Err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Message != "يرجى إدخال عدد صحيح موجب" {
		t.Fatalf("unexpected api error %#v", res.Err)
	}

	backend.store.FailWith(errors.New("boom"))
	res = c.Increment(context.Background(), 3, "")
	if res.Kind != KindTransient || !errors.Is(res.Err, domain.ErrTransientBackend) {
		t.Fatalf("expected transient result, got %+v", res)
	}
}

func TestClientIncrementNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, WithTimeout(time.Second))
	res := c.Increment(context.Background(), 1, "")
	if res.Kind != KindTransient {
		t.Fatalf("expected transient kind, got %v (%v)", res.Kind, res.Err)
	}
}

func TestClientSubscribe(t *testing.T) {
	backend := newTestBackend(t)
	c := newTestClient(t, backend.srv.URL)

	if _, err := c.Subscribe(context.Background()); !errors.Is(err, domain.ErrTransientBackend) {
		t.Fatalf("expected transient error while feed is down, got %v", err)
	}

	backend.hub.SetAvailable(true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := c.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer stream.Close()

	if res := c.Increment(ctx, 4, ""); res.Err != nil {
		t.Fatalf("Increment() error = %v", res.Err)
	}
	ev, err := stream.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.Type != realtime.EventChange || ev.Stats == nil || ev.Stats.TotalCount != 4 {
		t.Fatalf("unexpected event %+v", ev)
	}
}
