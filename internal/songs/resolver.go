// Package songs resolves the number-one song of a date to a playable catalog link
package songs

//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=../mocks/mock_songs.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/codegangsta/chartbot/internal/catalog"
	"github.com/codegangsta/chartbot/internal/chart"
	"github.com/codegangsta/chartbot/internal/dates"
)

// ChartSource returns the number-one entry for a date. ok is false when the chart has no entry.
type ChartSource interface {
	TopEntry(ctx context.Context, d dates.Date) (entry chart.Entry, ok bool, err error)
}

// Catalog runs free-text track searches
type Catalog interface {
	Search(ctx context.Context, query string) ([]catalog.Item, error)
}

// Strategy builds one catalog query from a chart entry
type Strategy struct {
	Name  string
	Query func(chart.Entry) string
}

// DefaultStrategies searches artist and title first, then the title alone
var DefaultStrategies = []Strategy{
	{Name: "artist_track", Query: func(e chart.Entry) string {
		return fmt.Sprintf("artist:%s track:%s", e.Artist, e.Song)
	}},
	{Name: "track", Query: func(e chart.Entry) string {
		return fmt.Sprintf("track:%s", e.Song)
	}},
}

// Resolution is the outcome of a lookup: Found carries a link, otherwise the date had no match
type Resolution struct {
	Date   dates.Date
	Found  bool
	Song   string
	Artist string
	Link   string
}

// Found builds a successful resolution
func Found(d dates.Date, song, artist, link string) Resolution {
	return Resolution{Date: d, Found: true, Song: song, Artist: artist, Link: link}
}

// NotFound builds a resolution for a date without a match
func NotFound(d dates.Date) Resolution {
	return Resolution{Date: d}
}

// ServiceError reports a transport failure of the chart or catalog service
type ServiceError struct {
	Op    string // "chart" or "catalog"
	Date  dates.Date
	Query string
	Err   error
}

func (e *ServiceError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s lookup for %s (query %q): %v", e.Op, e.Date, e.Query, e.Err)
	}
	return fmt.Sprintf("%s lookup for %s: %v", e.Op, e.Date, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Resolver finds the number-one song of a date and its catalog link
type Resolver struct {
	chart      ChartSource
	catalog    Catalog
	strategies []Strategy
	earliest   dates.Date
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithStrategies replaces the ordered search strategies
func WithStrategies(s ...Strategy) Option {
	return func(r *Resolver) { r.strategies = s }
}

// WithEarliest sets the first date the chart covers
func WithEarliest(d dates.Date) Option {
	return func(r *Resolver) { r.earliest = d }
}

// WithClock sets the source of "today"
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver over a chart source and a catalog
func NewResolver(source ChartSource, cat Catalog, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		chart:      source,
		catalog:    cat,
		strategies: DefaultStrategies,
		earliest:   chart.FirstIssue,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up the number-one song for d. Missing chart entries and
// empty searches are reported as NotFound; only transport failures return an error.
func (r *Resolver) Resolve(ctx context.Context, d dates.Date) (Resolution, error) {
	log := r.logger.With("date", d.String())

	today := dates.FromTime(r.now())
	if d.Before(r.earliest) || d.After(today) {
		log.Debug("date outside chart range", "earliest", r.earliest.String(), "today", today.String())
		return NotFound(d), nil
	}

	entry, ok, err := r.chart.TopEntry(ctx, d)
	if err != nil {
		return Resolution{}, &ServiceError{Op: "chart", Date: d, Err: err}
	}
	if !ok {
		log.Info("no chart entry for date")
		return NotFound(d), nil
	}

	for _, s := range r.strategies {
		query := s.Query(entry)
		items, err := r.catalog.Search(ctx, query)
		if err != nil {
			return Resolution{}, &ServiceError{Op: "catalog", Date: d, Query: query, Err: err}
		}

		code, found := firstCode(items)
		if !found {
			log.Debug("search strategy found nothing", "strategy", s.Name, "query", query)
			continue
		}

		log.Info("resolved song", "strategy", s.Name, "song", entry.Song, "artist", entry.Artist, "code", code)
		return Found(d, entry.Song, entry.Artist, catalog.TrackLink(code)), nil
	}

	log.Info("no catalog match", "song", entry.Song, "artist", entry.Artist)
	return NotFound(d), nil
}

func firstCode(items []catalog.Item) (string, bool) {
	first, ok := lo.First(items)
	if !ok {
		return "", false
	}
	return first.Code()
}
