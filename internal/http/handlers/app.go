package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/realtime"
)

// CampaignService is the read accessor plus increment protocol the API exposes.
type CampaignService interface {
	Stats(ctx context.Context) (domain.Stats, error)
	Increment(ctx context.Context, amount int64, name string) (domain.Stats, error)
}

// ChangeFeed hands out change subscriptions for the event stream.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (*realtime.Subscription, error)
	Available() bool
}

type App struct {
	Campaign  CampaignService
	Feed      ChangeFeed
	Logger    zerolog.Logger
	Heartbeat time.Duration
}

func NewApp(campaign CampaignService, feed ChangeFeed, logger zerolog.Logger) *App {
	return &App{Campaign: campaign, Feed: feed, Logger: logger, Heartbeat: 15 * time.Second}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}
