package feed

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tOgg1/lightbox/internal/logging"
)

const (
	defaultReconnectInterval = 2 * time.Second
	defaultMaxBackoff        = 30 * time.Second
	dialTimeout              = 10 * time.Second
)

// Client maintains a websocket connection to the chat gateway and applies
// every received event to the store. Dropped connections are retried with
// capped exponential backoff until the context ends.
type Client struct {
	url     string
	applier Applier
	log     zerolog.Logger

	reconnectInterval time.Duration
	maxBackoff        time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBackoff overrides the reconnect timing.
func WithBackoff(initial, max time.Duration) ClientOption {
	return func(c *Client) {
		if initial > 0 {
			c.reconnectInterval = initial
		}
		if max > 0 {
			c.maxBackoff = max
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient builds a feed client for the given websocket URL.
func NewClient(url string, applier Applier, opts ...ClientOption) *Client {
	c := &Client{
		url:               url,
		applier:           applier,
		log:               logging.Component("feed"),
		reconnectInterval: defaultReconnectInterval,
		maxBackoff:        defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and consumes events until ctx is cancelled. It only returns
// the context's error; connection failures are retried, not surfaced.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.reconnectInterval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.connectAndRead(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// Server closed cleanly; reconnect from the initial delay.
			backoff = c.reconnectInterval
		}
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("feed connection lost")
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = nextBackoff(backoff, c.maxBackoff)
	}
}

func (c *Client) connectAndRead(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	c.log.Info().Str("url", logging.Redact(c.url)).Msg("feed connected")

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		c.handleFrame(ctx, data)
	}
}

// handleFrame decodes and applies one frame. Malformed or unknown events are
// logged and skipped; a broken frame must not tear down the connection.
func (c *Client) handleFrame(ctx context.Context, data []byte) {
	ev, err := Decode(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("skipping bad feed event")
		return
	}
	if err := c.applier.Apply(ctx, ev); err != nil {
		c.log.Error().Err(err).Str("type", string(ev.Type)).Msg("failed to apply feed event")
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
