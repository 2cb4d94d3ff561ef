// Package dates finds calendar dates in free text and normalizes them to YYYY-MM-DD
package dates

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"
)

// Layout is the canonical textual form of a Date
const Layout = "2006-01-02"

// pattern matches year-first (2009-06-25, 2009/6/5) and day-first (25-06-2009, 5/6/2009) dates
var pattern = regexp.MustCompile(`\b((\d{4})[-/](\d{1,2})[-/](\d{1,2})|(\d{1,2})[-/](\d{1,2})[-/](\d{4}))\b`)

// Date is a valid Gregorian calendar date without a time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseError is returned when no usable date could be read from a text
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no valid date in %q", e.Text)
}

// New builds a Date, rejecting days that do not exist (2009-02-30, 2009-13-01)
func New(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 {
		return Date{}, fmt.Errorf("year %d out of range", year)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("%04d-%02d-%02d is not a calendar date", year, int(month), day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// Parse reads a canonical YYYY-MM-DD string
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, &ParseError{Text: s}
	}
	return FromTime(t), nil
}

// FromTime returns the calendar date of t in t's location
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC on d
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

// FindRaw returns the first date-shaped substring of text, if any
func FindRaw(text string) (string, bool) {
	m := pattern.FindString(text)
	return m, m != ""
}

// Extract finds the first date-shaped substring of text and normalizes it.
// Day-first input is read as DD-MM-YYYY and, if that is not a real date, as MM-DD-YYYY.
func Extract(text string) (Date, error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Date{}, &ParseError{Text: text}
	}

	if m[2] != "" {
		d, err := New(atoi(m[2]), time.Month(atoi(m[3])), atoi(m[4]))
		if err != nil {
			return Date{}, &ParseError{Text: m[1]}
		}
		return d, nil
	}

	year, first, second := atoi(m[7]), atoi(m[5]), atoi(m[6])
	if d, err := New(year, time.Month(second), first); err == nil {
		return d, nil
	}
	if d, err := New(year, time.Month(first), second); err == nil {
		return d, nil
	}
	return Date{}, &ParseError{Text: m[1]}
}

// Random picks a uniformly distributed date in [from, to]
func Random(rng *rand.Rand, from, to Date) Date {
	if to.Before(from) {
		from, to = to, from
	}
	days := int(to.Time().Sub(from.Time()).Hours() / 24)
	return FromTime(from.Time().AddDate(0, 0, rng.IntN(days+1)))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
