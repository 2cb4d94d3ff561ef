package replies

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codegangsta/chartbot/internal/commands"
	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/songs"
	"github.com/codegangsta/chartbot/internal/types"
)

// SongResolver finds the number-one song of a date
type SongResolver interface {
	Resolve(ctx context.Context, d dates.Date) (songs.Resolution, error)
}

// Reply is the outcome of one reply cycle
type Reply struct {
	CycleID string
	Command commands.Command
	Outcome Outcome
	Text    string
}

// Handler runs classify, extract, resolve or store, and compose for one message
type Handler struct {
	classifier *commands.Classifier
	resolver   SongResolver
	store      BirthdayStore
	composer   *Composer
	now        func() time.Time
	logger     *slog.Logger
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithClock sets the source of "today" used to reject birthdays in the future
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a reply handler
func NewHandler(classifier *commands.Classifier, resolver SongResolver, store BirthdayStore, composer *Composer, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		classifier: classifier,
		resolver:   resolver,
		store:      store,
		composer:   composer,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle computes the reply to msg. Faults of the chart, catalog and store are
// logged and turned into apology replies, so Handle always has a text.
func (h *Handler) Handle(ctx context.Context, msg types.InboundMessage) Reply {
	cycleID := uuid.NewString()
	log := h.logger.With(
		"cycle_id", cycleID,
		"platform", msg.Platform,
		"message_id", msg.ID,
		"sender", msg.SenderHandle,
	)

	cmd := h.classifier.Classify(msg)
	log = log.With("command", cmd.Kind.String())

	var out Outcome
	switch cmd.Kind {
	case commands.SongLookup:
		out = h.lookupSong(ctx, log, cmd)
	case commands.BirthdayRegister:
		out = h.registerBirthday(ctx, log, msg.SenderHandle, cmd)
	}

	log.Info("reply composed", "outcome", out.Kind.String())
	return Reply{
		CycleID: cycleID,
		Command: cmd,
		Outcome: out,
		Text:    h.composer.Compose(cmd, out),
	}
}

func (h *Handler) lookupSong(ctx context.Context, log *slog.Logger, cmd commands.Command) Outcome {
	d, err := dates.Extract(cmd.RawDate)
	if err != nil {
		log.Info("invalid date in song lookup", "raw_date", cmd.RawDate)
		return Outcome{Kind: DateInvalid}
	}

	res, err := h.resolver.Resolve(ctx, d)
	if err != nil {
		var se *songs.ServiceError
		if errors.As(err, &se) {
			log.Error("song lookup failed", "op", se.Op, "date", se.Date.String(), "query", se.Query, "error", se.Err)
		} else {
			log.Error("song lookup failed", "date", d.String(), "error", err)
		}
		return Outcome{Kind: ServiceFault, Date: d}
	}
	return Outcome{Kind: SongResolved, Resolution: res}
}

func (h *Handler) registerBirthday(ctx context.Context, log *slog.Logger, handle string, cmd commands.Command) Outcome {
	d, err := dates.Extract(cmd.RawDate)
	if err != nil {
		log.Info("invalid date in birthday registration", "raw_date", cmd.RawDate)
		return Outcome{Kind: DateInvalid}
	}
	if d.After(dates.FromTime(h.now())) {
		log.Info("birthday in the future", "date", d.String())
		return Outcome{Kind: DateInvalid}
	}

	if err := h.store.Put(ctx, types.BirthdayRecord{Handle: handle, Date: d}); err != nil {
		log.Error("storing birthday failed", "handle", handle, "date", d.String(), "error", err)
		return Outcome{Kind: StoreFailed}
	}
	return Outcome{Kind: BirthdayStored}
}
