package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/livefeed/internal/posts"
)

// wsURL derives the push endpoint from the base url.
func (c *Client) wsURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.JoinPath("api", "ws").String()
}

// Watch consumes the push channel until ctx is cancelled.
//
// A dropped connection is retried after the configured delay. Watch returns
// [ErrGaveUp] once the configured number of consecutive attempts fail, and
// ctx.Err() when cancelled. The counter resets after every successful
// connection.
//
// Every connection re-seeds the cache from the listing once the push channel
// is open, so posts published before or between connections are not lost.
// Those posts never raise a notification.
func (c *Client) Watch(ctx context.Context) error {
	failures := 0

	for {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var dialErr *dialError
		if errors.As(err, &dialErr) {
			failures++
			c.logger.Warn("push channel connect failed",
				"attempt", failures,
				"max_attempts", c.maxAttempts,
				"error", dialErr.err,
			)
			if failures >= c.maxAttempts {
				return fmt.Errorf("%w after %d attempts: %v", ErrGaveUp, failures, dialErr.err)
			}
		} else {
			failures = 0
			c.logger.Info("push channel closed, reconnecting", "error", err)
		}

		t := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

type dialError struct{ err error }

func (e *dialError) Error() string { return e.err.Error() }

// stream runs one websocket connection to completion.
func (c *Client) stream(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(), nil)
	if err != nil {
		return &dialError{err: err}
	}
	defer conn.Close()

	// the server registered this session before the handshake completed, so
	// seeding now covers everything the push stream will not deliver
	if err := c.Seed(ctx); err != nil {
		return &dialError{err: fmt.Errorf("seed after connect: %w", err)}
	}

	c.logger.Info("push channel connected")

	// unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev posts.Event
		if err := json.Unmarshal(frame, &ev); err != nil {
			c.logger.Warn("skipping undecodable frame", "error", err)
			continue
		}
		c.apply(ev)
	}
}

func (c *Client) apply(ev posts.Event) {
	if !c.rec.Apply(ev) {
		return
	}
	n, ok := c.rec.Notification()
	if !ok {
		return
	}
	if c.onNotify != nil {
		c.onNotify(n)
	}
	c.rec.Acknowledge()
}
