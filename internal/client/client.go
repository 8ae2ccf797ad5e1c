// Package client talks to the salawat API and keeps a local view of the
// campaign totals consistent with it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

// Kind classifies a failed increment.
type Kind int

const (
	KindNone Kind = iota
	// KindValidation means the server rejected the input; resubmitting the
	// same value will fail again.
	KindValidation
	// KindTransient covers network errors, timeouts and 5xx responses.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	default:
		return "none"
	}
}

// Result is the outcome of one increment call. Err is nil on success, in
// which case Stats holds the authoritative totals.
type Result struct {
	Stats domain.Stats
	Err   error
	Kind  Kind
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("salawat api: status %d", e.Status)
	}
	return fmt.Sprintf("salawat api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status >= 400 && e.Status < 500 {
		return domain.ErrValidation
	}
	return domain.ErrTransientBackend
}

type Client struct {
	baseURL string
	http    *http.Client
	locale  string
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default transport. The client must not set a
// global Timeout since event streams stay open indefinitely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLocale sets the X-Locale header so server errors come back localized.
func WithLocale(locale string) Option {
	return func(c *Client) { c.locale = locale }
}

// WithTimeout bounds each Stats and Increment call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats reads the current totals.
func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/api/salawat", nil)
	if err != nil {
		return domain.Stats{}, err
	}
	var stats domain.Stats
	if err := c.do(req, &stats); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}

type incrementRequest struct {
	Amount int64  `json:"amount"`
	Name   string `json:"name,omitempty"`
}

// Increment submits one contribution. It never retries: a transient failure
// may or may not have been recorded, and increments are not idempotent.
func (c *Client) Increment(ctx context.Context, amount int64, name string) Result {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(incrementRequest{Amount: amount, Name: strings.TrimSpace(name)})
	if err != nil {
		return Result{Err: err, Kind: KindValidation}
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/salawat", bytes.NewReader(body))
	if err != nil {
		return Result{Err: err, Kind: KindTransient}
	}
	req.Header.Set("Content-Type", "application/json")

	var stats domain.Stats
	if err := c.do(req, &stats); err != nil {
		return Result{Err: err, Kind: classify(err)}
	}
	return Result{Stats: stats}
}

func classify(err error) Kind {
	if errors.Is(err, domain.ErrValidation) {
		return KindValidation
	}
	return KindTransient
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.locale != "" {
		req.Header.Set("X-Locale", c.locale)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransientBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrTransientBackend, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Error}
}
