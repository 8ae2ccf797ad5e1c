package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/realtime"
)

// Stream is an open change feed.
type Stream interface {
	Next() (realtime.Event, error)
	Close() error
}

// Source is the read side of the API as seen by a Syncer.
type Source interface {
	Stats(ctx context.Context) (domain.Stats, error)
	OpenStream(ctx context.Context) (Stream, error)
}

// Applier receives authoritative totals. *Tracker implements it.
type Applier interface {
	Apply(stats domain.Stats)
}

// OpenStream adapts Subscribe to Source.
func (c *Client) OpenStream(ctx context.Context) (Stream, error) {
	s, err := c.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Mode reports how a Syncer is currently learning about changes.
type Mode int

const (
	ModeConnecting Mode = iota
	ModePush
	ModePolling
)

func (m Mode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModePolling:
		return "polling"
	default:
		return "connecting"
	}
}

var errConnectTimeout = errors.New("client: change feed connect timeout")

type SyncOptions struct {
	// PollInterval is the read cadence while the change feed is down.
	PollInterval time.Duration
	// Throttle is the minimum spacing between refreshes triggered by events.
	Throttle time.Duration
	// ConnectTimeout bounds opening the change feed.
	ConnectTimeout time.Duration
	// RetryMin and RetryMax bound the backoff between feed reconnects.
	RetryMin time.Duration
	RetryMax time.Duration
	Logger   zerolog.Logger
}

func (o *SyncOptions) withDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.Throttle <= 0 {
		o.Throttle = 1500 * time.Millisecond
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.RetryMin <= 0 {
		o.RetryMin = time.Second
	}
	if o.RetryMax < o.RetryMin {
		o.RetryMax = 30 * time.Second
		if o.RetryMax < o.RetryMin {
			o.RetryMax = o.RetryMin
		}
	}
}

// Syncer keeps an Applier converging to the backend. It listens on the
// change feed and refreshes on every event, throttled. While the feed is
// down it polls and keeps retrying the feed with backoff.
type Syncer struct {
	src    Source
	target Applier
	opts   SyncOptions
	logger zerolog.Logger
	kick   chan struct{}

	mu     sync.Mutex
	mode   Mode
	onMode []func(Mode)
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSyncer(src Source, target Applier, opts SyncOptions) *Syncer {
	opts.withDefaults()
	return &Syncer{
		src:    src,
		target: target,
		opts:   opts,
		logger: opts.Logger,
		kick:   make(chan struct{}, 1),
	}
}

// OnModeChange registers fn to be called whenever the mode changes.
func (s *Syncer) OnModeChange(fn func(Mode)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMode = append(s.onMode, fn)
}

func (s *Syncer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Start runs the syncer until ctx is cancelled or Close is called. An
// initial refresh is issued immediately.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.refresher(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
	s.requestRefresh()
}

// Close stops the feed, the poll timer and the refresher, and waits for
// them to exit.
func (s *Syncer) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Syncer) requestRefresh() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// refresher serializes reads. Requests that arrive inside the throttle
// window collapse into one trailing refresh.
func (s *Syncer) refresher(ctx context.Context) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}
		if !last.IsZero() {
			if wait := s.opts.Throttle - time.Since(last); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
				select {
				case <-s.kick:
				default:
				}
			}
		}
		last = time.Now()
		s.refresh(ctx)
	}
}

func (s *Syncer) refresh(ctx context.Context) {
	stats, err := s.src.Stats(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("sync: refresh failed")
		}
		return
	}
	s.target.Apply(stats)
}

func (s *Syncer) run(ctx context.Context) {
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     s.opts.RetryMin,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         s.opts.RetryMax,
	}
	bo.Reset()

	// Poll whenever the feed is not delivering, including while dialing.
	poll := time.NewTicker(s.opts.PollInterval)
	defer poll.Stop()

	for {
		var (
			stream Stream
			err    error
		)
		dialed := make(chan struct{})
		go func() {
			defer close(dialed)
			stream, err = s.connect(ctx)
		}()
		if !s.pollUntil(ctx, poll, dialed) {
			<-dialed
			if stream != nil {
				_ = stream.Close()
			}
			return
		}

		if err == nil {
			poll.Stop()
			bo.Reset()
			s.setMode(ModePush)
			// Catch up on anything missed while disconnected.
			s.requestRefresh()
			err = s.consume(ctx, stream)
			if ctx.Err() != nil {
				return
			}
			poll.Reset(s.opts.PollInterval)
			s.requestRefresh()
		}
		if ctx.Err() != nil {
			return
		}

		delay := bo.NextBackOff()
		s.logger.Warn().Err(err).Dur("retry_in", delay).Msg("sync: change feed down, polling")
		s.setMode(ModePolling)

		retryDue := make(chan struct{})
		retry := time.AfterFunc(delay, func() { close(retryDue) })
		if !s.pollUntil(ctx, poll, retryDue) {
			retry.Stop()
			return
		}
	}
}

// pollUntil requests a refresh on every poll tick until done fires. It
// reports false if ctx ended first.
func (s *Syncer) pollUntil(ctx context.Context, poll *time.Ticker, done <-chan struct{}) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-poll.C:
			s.requestRefresh()
		case <-done:
			return true
		}
	}
}

func (s *Syncer) connect(ctx context.Context) (Stream, error) {
	sctx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(s.opts.ConnectTimeout, cancel)
	stream, err := s.src.OpenStream(sctx)
	if !timer.Stop() {
		if err == nil {
			_ = stream.Close()
		}
		cancel()
		return nil, errConnectTimeout
	}
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelStream{Stream: stream, cancel: cancel}, nil
}

func (s *Syncer) consume(ctx context.Context, stream Stream) error {
	defer stream.Close()
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()

	for {
		if _, err := stream.Next(); err != nil {
			return err
		}
		s.requestRefresh()
	}
}

func (s *Syncer) setMode(m Mode) {
	s.mu.Lock()
	if s.mode == m {
		s.mu.Unlock()
		return
	}
	s.mode = m
	observers := append([]func(Mode){}, s.onMode...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(m)
	}
}

type cancelStream struct {
	Stream
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancelStream) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		err = c.Stream.Close()
	})
	return err
}
