package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

// EventChange signals that the campaign counter or the contribution log changed.
const EventChange = "change"

// Event is a change signal. Stats is set when the source carried the new
// totals; consumers may still re-fetch to stay authoritative.
type Event struct {
	Type  string        `json:"type"`
	Table string        `json:"table,omitempty"`
	Op    string        `json:"op,omitempty"`
	Stats *domain.Stats `json:"stats,omitempty"`
	At    time.Time     `json:"at"`
}

// ChangeEvent builds the event published after a counter update.
func ChangeEvent(stats domain.Stats) Event {
	return Event{
		Type:  EventChange,
		Table: "salawat_campaign",
		Op:    "update",
		Stats: &stats,
		At:    time.Now().UTC(),
	}
}

type notifyPayload struct {
	Table             string `json:"table"`
	Op                string `json:"op"`
	TotalCount        *int64 `json:"totalCount"`
	ContributionCount *int64 `json:"contributionCount"`
}

func decodeNotification(payload string) (Event, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Event{}, fmt.Errorf("decode notification: %w", err)
	}
	ev := Event{Type: EventChange, Table: p.Table, Op: p.Op, At: time.Now().UTC()}
	if p.TotalCount != nil && p.ContributionCount != nil {
		ev.Stats = &domain.Stats{TotalCount: *p.TotalCount, ContributionCount: *p.ContributionCount}
	}
	return ev, nil
}
