package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/infra"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/sqlinline"
)

// Conn is the part of *pgx.Conn the listener needs.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Dialer opens a dedicated connection for LISTEN.
type Dialer func(ctx context.Context) (Conn, error)

// PoolDialer dials outside the pool with the pool's connection settings, so
// the session-scoped LISTEN never leaks into pooled connections.
func PoolDialer(pool *pgxpool.Pool) Dialer {
	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.ConnectConfig(ctx, pool.Config().ConnConfig.Copy())
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Listener relays PostgreSQL notifications on the change channel to a Hub
// and keeps the hub's availability in sync with the connection.
type Listener struct {
	dial       Dialer
	hub        *Hub
	channel    string
	logger     zerolog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener creates a listener on sqlinline.ChangeChannel.
func NewListener(dial Dialer, hub *Hub, logger zerolog.Logger) *Listener {
	return &Listener{
		dial:       dial,
		hub:        hub,
		channel:    sqlinline.ChangeChannel,
		logger:     logger,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is cancelled, reconnecting with exponential backoff.
// It always returns a non-nil error, ctx.Err() on a clean stop.
func (l *Listener) Run(ctx context.Context) error {
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     l.minBackoff,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         l.maxBackoff,
	}
	bo.Reset()

	for {
		connected, err := l.listen(ctx)
		l.hub.SetAvailable(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			bo.Reset()
		}
		delay := bo.NextBackOff()
		l.logger.Warn().Err(err).Dur("retry_in", delay).Msg("realtime: listener disconnected")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Listener) listen(ctx context.Context) (bool, error) {
	conn, err := l.dial(ctx)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := infra.ExecMarked(ctx, conn, l.logger, sqlinline.QListenChanges); err != nil {
		return false, fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.hub.SetAvailable(true)
	l.logger.Info().Str("channel", l.channel).Msg("realtime: listening for changes")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}
		ev, err := decodeNotification(n.Payload)
		if err != nil {
			l.logger.Warn().Err(err).Str("payload", n.Payload).Msg("realtime: dropping notification")
			continue
		}
		l.hub.Publish(ev)
	}
}
