package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codegangsta/chartbot/internal/birthdays"
	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/replies"
	"github.com/codegangsta/chartbot/internal/types"
)

// BirthdaySource lists people born on a month and day
type BirthdaySource interface {
	BornOn(ctx context.Context, month time.Month, day int) ([]types.BirthdayRecord, error)
}

// Greeter posts a happy birthday for everyone whose birthday is today
type Greeter struct {
	source    BirthdaySource
	publisher types.Publisher
	composer  *replies.Composer
	clock     Clock
	logger    *slog.Logger
}

// NewGreeter creates a birthday greeter
func NewGreeter(source BirthdaySource, publisher types.Publisher, composer *replies.Composer, clock Clock, logger *slog.Logger) *Greeter {
	return &Greeter{
		source:    source,
		publisher: publisher,
		composer:  composer,
		clock:     clock,
		logger:    logger,
	}
}

// Run greets today's birthdays and returns how many greetings were posted.
// A failed post is logged and does not stop the others.
func (g *Greeter) Run(ctx context.Context) (int, error) {
	today := dates.FromTime(g.clock.Now())

	people, err := g.source.BornOn(ctx, today.Month, today.Day)
	if err != nil {
		return 0, fmt.Errorf("listing birthdays: %w", err)
	}

	// Feb 29 birthdays are celebrated on Mar 1 outside leap years
	if today.Month == time.March && today.Day == 1 && !birthdays.IsLeap(today.Year) {
		leap, err := g.source.BornOn(ctx, time.February, 29)
		if err != nil {
			return 0, fmt.Errorf("listing leap day birthdays: %w", err)
		}
		people = append(people, leap...)
	}

	g.logger.Info("greeting birthdays", "date", today.String(), "count", len(people))

	posted := 0
	for _, p := range people {
		if ctx.Err() != nil {
			return posted, ctx.Err()
		}
		age := birthdays.Age(p.Date, today)
		if age < 0 {
			continue
		}
		if err := g.publisher.Publish(ctx, g.composer.BirthdayGreeting(p.Handle, age)); err != nil {
			g.logger.Error("posting birthday greeting", "handle", p.Handle, "error", err)
			continue
		}
		posted++
	}
	return posted, nil
}
