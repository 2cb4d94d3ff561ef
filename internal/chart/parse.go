package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	rowSelector    = "li.o-chart-results-list__item"
	titleSelector  = "h3.c-title#title-of-a-story"
	artistSelector = "span.c-label"

	// the first list items of a row are rank and movement markers
	topEntryIndex = 3
)

// ParseTopEntry reads the number-one entry from a Hot 100 page.
// Pages with fewer list items than expected, or with an empty title or artist, report false.
func ParseTopEntry(r io.Reader) (Entry, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parsing chart markup: %w", err)
	}

	rows := doc.Find(rowSelector)
	if rows.Length() <= topEntryIndex {
		return Entry{}, false, nil
	}

	top := rows.Eq(topEntryIndex)
	entry := Entry{
		Song:   clean(top.Find(titleSelector).First().Text()),
		Artist: clean(top.Find(artistSelector).First().Text()),
	}
	if entry.Song == "" || entry.Artist == "" {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
