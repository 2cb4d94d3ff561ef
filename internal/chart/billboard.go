// Package chart retrieves the number-one entry of the Billboard Hot 100 for a date
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codegangsta/chartbot/internal/dates"
)

const (
	// DefaultBaseURL serves one Hot 100 page per week at /charts/hot-100/{YYYY-MM-DD}/
	DefaultBaseURL   = "https://www.billboard.com/charts/hot-100"
	DefaultUserAgent = "chartbot/1.0 (+https://github.com/codegangsta/chartbot)"

	maxPageSize = 8 << 20
)

// FirstIssue is the date of the first Hot 100 chart
var FirstIssue = dates.Date{Year: 1958, Month: time.August, Day: 4}

// ErrNoChart is returned by Fetch when the source has no page for a date
var ErrNoChart = errors.New("no chart for date")

// Entry is one ranked song on a chart
type Entry struct {
	Song   string
	Artist string
}

// StatusError reports a non-2xx response from the chart source
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chart source returned %d for %s", e.Code, e.URL)
}

// Billboard fetches and parses Hot 100 pages
type Billboard struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	logger    *slog.Logger
}

// NewBillboard creates a chart source with the given request timeout
func NewBillboard(baseURL string, timeout time.Duration, logger *slog.Logger) *Billboard {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Billboard{
		Client:    &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		UserAgent: DefaultUserAgent,
		logger:    logger,
	}
}

// URL returns the chart page address for a date
func (b *Billboard) URL(d dates.Date) string {
	return fmt.Sprintf("%s/%s/", b.BaseURL, d)
}

// Fetch downloads the raw chart page for a date. A 404 yields ErrNoChart.
func (b *Billboard) Fetch(ctx context.Context, d dates.Date) (io.ReadCloser, error) {
	target := b.URL(d)
	log := b.logger.With("component", "chart", "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	log.Debug("fetching chart page")
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching chart page: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, ErrNoChart
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_ = resp.Body.Close()
		log.Warn("chart source returned error status", "status", resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, URL: target}
	}

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, maxPageSize),
		Closer: resp.Body,
	}, nil
}

// TopEntry returns the number-one entry for a date. The boolean is false when
// the source has no chart for the date or the page does not carry a usable entry.
func (b *Billboard) TopEntry(ctx context.Context, d dates.Date) (Entry, bool, error) {
	body, err := b.Fetch(ctx, d)
	if errors.Is(err, ErrNoChart) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	defer body.Close()

	entry, ok, err := ParseTopEntry(body)
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading chart page: %w", err)
	}
	if !ok {
		b.logger.Debug("chart page has no usable top entry", "date", d.String())
	}
	return entry, ok, nil
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}
