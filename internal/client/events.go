package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/realtime"
)

// EventStream reads change events from the API's Server-Sent Events feed.
type EventStream struct {
	body io.ReadCloser
	sc   *bufio.Scanner
}

// Subscribe opens the change feed and waits for the server's ready event.
// The stream lives until ctx is cancelled or Close is called.
func (c *Client) Subscribe(ctx context.Context) (*EventStream, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/salawat/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientBackend, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}

	s := &EventStream{body: resp.Body, sc: bufio.NewScanner(resp.Body)}
	name, _, err := s.next()
	if err != nil {
		s.Close()
		return nil, err
	}
	if name != "ready" {
		s.Close()
		return nil, fmt.Errorf("%w: unexpected first event %q", domain.ErrTransientBackend, name)
	}
	return s, nil
}

// Next blocks until the next change event. It returns io.EOF when the server
// ends the stream.
func (s *EventStream) Next() (realtime.Event, error) {
	for {
		name, data, err := s.next()
		if err != nil {
			return realtime.Event{}, err
		}
		if name != realtime.EventChange {
			continue
		}
		var ev realtime.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return realtime.Event{}, fmt.Errorf("decode event: %w", err)
		}
		return ev, nil
	}
}

func (s *EventStream) Close() error {
	return s.body.Close()
}

// next reads one event block. Comment lines (heartbeats) are skipped.
func (s *EventStream) next() (name, data string, err error) {
	var lines []string
	for s.sc.Scan() {
		line := s.sc.Text()
		switch {
		case line == "":
			if name == "" && len(lines) == 0 {
				continue
			}
			if name == "" {
				name = "message"
			}
			return name, strings.Join(lines, "\n"), nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			lines = append(lines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := s.sc.Err(); err != nil {
		return "", "", err
	}
	return "", "", io.EOF
}
