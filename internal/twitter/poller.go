package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/codegangsta/chartbot/internal/types"
)

// Dispatcher answers a batch of messages and returns how many should be retried
type Dispatcher interface {
	DispatchAll(ctx context.Context, msgs []types.InboundMessage) int
}

// Cursors stores the newest fetched mention id
type Cursors interface {
	Cursor(platform types.Platform) (string, error)
	SetCursor(platform types.Platform, id string) error
}

// Poller periodically fetches mentions and hands them to the dispatcher
type Poller struct {
	client     *Client
	dispatcher Dispatcher
	cursors    Cursors
	interval   time.Duration
	lookback   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewPoller creates a poller. Without a stored cursor, mentions from the last lookback are fetched.
func NewPoller(client *Client, dispatcher Dispatcher, cursors Cursors, interval, lookback time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		client:     client,
		dispatcher: dispatcher,
		cursors:    cursors,
		interval:   interval,
		lookback:   lookback,
		now:        time.Now,
		logger:     logger,
	}
}

// Start polls until ctx is cancelled. Poll errors are logged and retried on the next tick.
func (p *Poller) Start(ctx context.Context) error {
	p.logger.Info("x poller started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			p.logger.Error("polling mentions", "error", err)
		}
		select {
		case <-ctx.Done():
			p.logger.Info("x poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll fetches every new mention and answers them oldest first. The cursor
// only moves forward when no message in the batch is left to retry; the
// dispatcher gives a message up after a bounded number of attempts, so one
// failing mention cannot hold the cursor back for good.
func (p *Poller) Poll(ctx context.Context) error {
	cursor, err := p.cursors.Cursor(types.PlatformX)
	if err != nil {
		return err
	}

	q := MentionsQuery{SinceID: cursor}
	if cursor == "" {
		q.StartTime = p.now().Add(-p.lookback)
	}

	msgs, newest, err := p.client.Mentions(ctx, q)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	slices.SortFunc(msgs, func(a, b types.InboundMessage) int {
		return compareIDs(a.ID, b.ID)
	})

	if failed := p.dispatcher.DispatchAll(ctx, msgs); failed > 0 {
		return fmt.Errorf("%d of %d mentions not answered", failed, len(msgs))
	}

	if newest != "" {
		if err := p.cursors.SetCursor(types.PlatformX, newest); err != nil {
			return err
		}
	}
	return nil
}

// compareIDs orders numeric tweet ids without parsing them
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
