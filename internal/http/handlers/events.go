package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/middleware"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/realtime"
)

// SalawatEvents streams change notifications as Server-Sent Events. A 503
// tells clients that push is down and they should poll instead.
func (a *App) SalawatEvents(w http.ResponseWriter, r *http.Request) {
	if a.Feed == nil {
		a.error(w, http.StatusServiceUnavailable, realtime.ErrUnavailable.Error())
		return
	}
	sub, err := a.Feed.Subscribe(r.Context())
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		a.Logger.Warn().Err(err).Msg("events: clear write deadline")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "ready", []byte(`{}`)); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		a.Logger.Warn().Err(err).Msg("events: streaming unsupported")
		return
	}

	heartbeat := a.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	log := a.Logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				log.Debug().AnErr("reason", sub.Err()).Msg("events: subscription ended")
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Msg("events: encode event")
				continue
			}
			if err := writeEvent(w, ev.Type, data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
