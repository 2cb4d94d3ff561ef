package replies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codegangsta/chartbot/internal/types"
)

// MaxAttempts is how many failed posts a message gets before it is given up
const MaxAttempts = 3

// ErrGaveUp is returned once a message has failed MaxAttempts times. The
// message is then recorded as answered and never tried again.
var ErrGaveUp = errors.New("reply given up")

// Dispatcher answers each inbound message at most once
type Dispatcher struct {
	handler *Handler
	poster  types.Poster
	ledger  Ledger
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher posting replies through poster
func NewDispatcher(handler *Handler, poster types.Poster, ledger Ledger, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		poster:  poster,
		ledger:  ledger,
		logger:  logger,
	}
}

// Dispatch handles msg and posts the reply. A message already in the ledger
// is skipped. A failed post is returned and leaves the message unanswered, so
// it is picked up again on the next poll, until it has failed MaxAttempts
// times. A ledger write failing after a successful post is only logged, since
// retrying would post the reply twice.
func (d *Dispatcher) Dispatch(ctx context.Context, msg types.InboundMessage) error {
	seen, err := d.ledger.Seen(msg.Platform, msg.ID)
	if err != nil {
		return fmt.Errorf("checking ledger: %w", err)
	}
	if seen {
		d.logger.Debug("skipping answered message", "platform", msg.Platform, "message_id", msg.ID)
		return nil
	}

	reply := d.handler.Handle(ctx, msg)

	if err := d.poster.PostReply(ctx, msg, reply.Text); err != nil {
		return d.failed(msg, fmt.Errorf("posting reply to %s: %w", msg.ID, err))
	}

	if err := d.ledger.Mark(msg.Platform, msg.ID); err != nil {
		d.logger.Error("reply posted but not recorded",
			"cycle_id", reply.CycleID,
			"platform", msg.Platform,
			"message_id", msg.ID,
			"error", err,
		)
		return nil
	}

	d.logger.Info("reply posted",
		"cycle_id", reply.CycleID,
		"platform", msg.Platform,
		"message_id", msg.ID,
		"command", reply.Command.Kind.String(),
	)
	return nil
}

// failed counts a failed attempt and gives the message up once it reaches MaxAttempts
func (d *Dispatcher) failed(msg types.InboundMessage, cause error) error {
	attempts, err := d.ledger.Fail(msg.Platform, msg.ID)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("counting attempt: %w", err))
	}
	if attempts < MaxAttempts {
		return cause
	}
	if err := d.ledger.Mark(msg.Platform, msg.ID); err != nil {
		return errors.Join(cause, fmt.Errorf("giving up %s: %w", msg.ID, err))
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrGaveUp, attempts, cause)
}

// DispatchAll answers a batch of messages in order. One failure is logged and
// does not stop the rest; the number of messages worth retrying is returned.
// Given up messages are not counted. Messages left unanswered because ctx was
// cancelled count as failures.
func (d *Dispatcher) DispatchAll(ctx context.Context, msgs []types.InboundMessage) int {
	failed := 0
	for i, msg := range msgs {
		if ctx.Err() != nil {
			return failed + len(msgs) - i
		}
		err := d.Dispatch(ctx, msg)
		switch {
		case err == nil:
		case errors.Is(err, ErrGaveUp):
			d.logger.Warn("giving up message", "platform", msg.Platform, "message_id", msg.ID, "error", err)
		default:
			failed++
			d.logger.Error("dispatching message", "platform", msg.Platform, "message_id", msg.ID, "error", err)
		}
	}
	return failed
}
