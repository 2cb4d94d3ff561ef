package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/replies"
	"github.com/codegangsta/chartbot/internal/types"
)

// ErrNoSong is returned when no attempted date resolved to a song
var ErrNoSong = errors.New("no number one found")

// DefaultEarliest is the first date the number-one post draws from
var DefaultEarliest = dates.Date{Year: 1970, Month: time.January, Day: 1}

// NumberOne posts the number-one song of a random past date
type NumberOne struct {
	resolver  replies.SongResolver
	publisher types.Publisher
	composer  *replies.Composer
	clock     Clock
	rng       *rand.Rand
	earliest  dates.Date
	attempts  int
	logger    *slog.Logger
}

// NewNumberOne creates the job. Dates that resolve to NotFound are redrawn, up to attempts times.
func NewNumberOne(resolver replies.SongResolver, publisher types.Publisher, composer *replies.Composer, clock Clock, rng *rand.Rand, attempts int, logger *slog.Logger) *NumberOne {
	if attempts < 1 {
		attempts = 1
	}
	return &NumberOne{
		resolver:  resolver,
		publisher: publisher,
		composer:  composer,
		clock:     clock,
		rng:       rng,
		earliest:  DefaultEarliest,
		attempts:  attempts,
		logger:    logger,
	}
}

// Run draws dates until one resolves, then publishes it
func (n *NumberOne) Run(ctx context.Context) (dates.Date, error) {
	today := dates.FromTime(n.clock.Now())

	for i := 0; i < n.attempts; i++ {
		d := dates.Random(n.rng, n.earliest, today)

		res, err := n.resolver.Resolve(ctx, d)
		if err != nil {
			return d, fmt.Errorf("resolving %s: %w", d, err)
		}
		if !res.Found {
			n.logger.Info("no number one for drawn date", "date", d.String(), "attempt", i+1)
			continue
		}

		if err := n.publisher.Publish(ctx, n.composer.NumberOne(res)); err != nil {
			return d, fmt.Errorf("publishing number one: %w", err)
		}
		n.logger.Info("number one posted", "date", d.String(), "song", res.Song, "artist", res.Artist)
		return d, nil
	}
	return dates.Date{}, ErrNoSong
}
